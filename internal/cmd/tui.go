package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/ui"
	"github.com/spf13/cobra"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui [path]",
	Short: "Explore glob matches interactively",
	Long: `Start the interactive Terminal User Interface.

The TUI provides:
- An editor for include and ignore globs
- A live list of matches, updated while the walk is running
- Per-pattern match counts
- Export of the current matches to a directory

Every edit restarts the query; the previous walk is cancelled first.

Examples:
  globninja tui ./src
  globninja tui . -p "**/*.go" -i vendor --timeout 10s`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringArrayP("pattern", "p", nil, "initial include glob (repeatable)")
	tuiCmd.Flags().StringArrayP("ignore", "i", nil, "initial ignore glob (repeatable)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	absPath, err := resolveBase(args)
	if err != nil {
		return err
	}

	g, err := newGlob(absPath)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Starting TUI at: %s\n", absPath)
	}

	model := ui.NewAppModel(cmd.Context(), g, fs, ui.Options{
		Patterns:       current.Patterns,
		IgnorePatterns: current.IgnorePatterns,
		Timeout:        current.Timeout,
	})
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return errors.Errorf("TUI error: %w", err)
	}
	return nil
}
