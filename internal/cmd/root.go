package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cheerioskun/globninja/internal/config"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/export"
	"github.com/cheerioskun/globninja/internal/glob"
	"github.com/cheerioskun/globninja/internal/matcher"
	"github.com/cheerioskun/globninja/internal/scanner"
	"github.com/cheerioskun/globninja/internal/utils"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// fs is the filesystem every command works on
	fs afero.Fs = afero.NewOsFs()

	settings = config.New(fs)
	current  *config.Settings

	cfgFile string
	verbose bool
)

// flagKeys maps flag names to the setting they override
var flagKeys = map[string]string{
	"log-level":           config.KeyLogLevel,
	"max-depth":           config.KeyMaxDepth,
	"case-insensitive":    config.KeyCaseInsensitive,
	"ignore-inaccessible": config.KeyIgnoreInaccessible,
	"cache-capacity":      config.KeyCacheCapacity,
	"timeout":             config.KeyTimeout,
	"pattern":             config.KeyPatterns,
	"ignore":              config.KeyIgnorePatterns,
}

var rootCmd = &cobra.Command{
	Use:   "globninja",
	Short: "Fast include/exclude glob matching over directory trees",
	Long: `GlobNinja finds files under a directory using include and ignore globs.

Matches can be printed as they are found, collected as JSON, copied to an
export directory or explored interactively. Settings are read from
.globninja.yaml, GLOBNINJA_* environment variables and flags.

Examples:
  globninja match ./src -p "**/*.go" -i vendor
  globninja match . -p "**/*.md" --stream --timeout 5s
  globninja discover ./repo
  globninja tui ./src -p "**/*.ts"`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./.globninja.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("log-level", config.DefaultLog, "log level (debug, info, warn, error)")
	flags.Int("max-depth", -1, "maximum directory depth to walk (-1 for unlimited)")
	flags.Bool("case-insensitive", true, "match patterns and paths ignoring case")
	flags.Bool("ignore-inaccessible", true, "skip entries that cannot be read instead of failing")
	flags.Int("cache-capacity", matcher.DefaultCapacity, "number of compiled pattern sets to keep")
	flags.Duration("timeout", 0, "cancel the query after this long (0 disables)")
}

// Execute runs the root command
func Execute() {
	err := rootCmd.Execute()
	_ = utils.GetLogger().Close()
	if err != nil {
		os.Exit(1)
	}
}

// loadSettings merges flags, environment and the config file into current
func loadSettings(cmd *cobra.Command, args []string) error {
	if err := bindFlags(settings, cmd); err != nil {
		return err
	}

	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	if err := config.ReadFile(settings, cfgFile, dir); err != nil {
		return err
	}

	loaded, err := config.Load(settings)
	if err != nil {
		return err
	}

	level := loaded.LogLevel
	if verbose {
		level = "debug"
	}
	if err := utils.SetLevel(level); err != nil {
		return err
	}

	if used := settings.ConfigFileUsed(); used != "" {
		utils.Debug("using config file %s", used)
	}

	current = loaded
	return nil
}

// bindFlags binds the running command's flags only, so commands sharing a
// flag name do not override each other's bindings
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func loggerBase() *log.Logger {
	return utils.GetLogger().Base()
}

// newGlob builds a Glob over basePath configured from current
func newGlob(basePath string) (*glob.Glob, error) {
	logger := loggerBase()

	cache := glob.SharedCache()
	if current.CacheCapacity != cache.Capacity() {
		var err error
		cache, err = matcher.NewCache(current.CacheCapacity, nil, matcher.WithCacheLogger(logger))
		if err != nil {
			return nil, err
		}
	}

	return glob.New(basePath,
		glob.WithFs(fs),
		glob.WithCache(cache),
		glob.WithCaseInsensitive(current.CaseInsensitive),
		glob.WithIgnoreInaccessible(current.IgnoreInaccessible),
		glob.WithMaxDepth(current.MaxDepth),
		glob.WithLogger(logger),
	)
}

// resolveBase picks the directory argument, falling back to the configured
// base path, and checks that it exists
func resolveBase(args []string) (string, error) {
	base := current.BasePath
	if len(args) > 0 {
		base = args[0]
	}

	absPath, err := filepath.Abs(base)
	if err != nil {
		return "", errors.Errorf("failed to resolve absolute path: %w", err)
	}

	ts := scanner.NewTreeScanner(fs)
	ts.SetCaseInsensitive(current.CaseInsensitive)
	if _, err := ts.ResolveRoot(absPath); err != nil {
		return "", errors.Errorf("path does not exist: %s", absPath)
	}
	return absPath, nil
}

// absoluteExportPath resolves path and checks that its parent exists
func absoluteExportPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Errorf("failed to resolve absolute path: %w", err)
	}
	if err := export.ValidateExportPath(fs, absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

func formatElapsed(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
