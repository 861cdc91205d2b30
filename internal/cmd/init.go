package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/cheerioskun/globninja/internal/config"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	outputConfig string
	force        bool
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a .globninja.yaml with the current settings",
	Long: `Write the effective settings (defaults, environment and flags) to a
.globninja.yaml file so later runs in that directory pick them up.

Examples:
  globninja init .
  globninja init ./src -p "**/*.go" -i vendor -i "**/*_test.go"
  globninja init . --case-insensitive=false --max-depth 4
  globninja init . -o ./ci/globninja.yaml --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringArrayP("pattern", "p", nil, "include glob to store (repeatable)")
	initCmd.Flags().StringArrayP("ignore", "i", nil, "ignore glob to store (repeatable)")
	initCmd.Flags().StringVarP(&outputConfig, "output-config", "o", "", "config file to write (default is <path>/.globninja.yaml)")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	absPath, err := resolveBase(args)
	if err != nil {
		return err
	}

	target := outputConfig
	if target == "" {
		target = filepath.Join(absPath, config.FileName+"."+config.FileType)
	}

	if exists, err := afero.Exists(fs, target); err != nil {
		return errors.Errorf("failed to check %s: %w", target, err)
	} else if exists && !force {
		return errors.Errorf("%s already exists, use --force to replace it", target)
	}

	settings.Set(config.KeyBasePath, absPath)
	if err := config.Write(settings, fs, target); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration saved to: %s\n", target)
	fmt.Fprintf(out, "  Base path: %s\n", absPath)
	fmt.Fprintf(out, "  Include patterns: %d\n", len(current.Patterns))
	fmt.Fprintf(out, "  Ignore patterns: %d\n", len(current.IgnorePatterns))
	fmt.Fprintf(out, "  Case insensitive: %t\n", current.CaseInsensitive)
	fmt.Fprintf(out, "  Max depth: %d\n", current.MaxDepth)
	return nil
}
