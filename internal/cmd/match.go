package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/export"
	"github.com/cheerioskun/globninja/internal/glob"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/cheerioskun/globninja/internal/scanner"
	"github.com/spf13/cobra"
)

var (
	streamOutput bool
	printStems   bool
	printRel     bool
	jsonOutput   bool
	exportTo     string
	overwrite    bool
	quickScan    bool
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match [path]",
	Short: "List files matching include globs and not matching ignore globs",
	Long: `Walk a directory and print every file selected by the include patterns
and not removed by the ignore patterns.

An ignore pattern removes a path when it matches the path itself or any of
its parent directories, so "-i vendor" drops everything below vendor/.
Without include patterns every file that is not ignored matches.

Examples:
  globninja match ./src -p "**/*.go" -i "**/*_test.go"
  globninja match . -p "docs/**" --stems
  globninja match /var/log -p "**/*.log" --stream --timeout 10s
  globninja match . -p "**/*.md" --json
  globninja match . -p "**/*.yaml" --export-to ./configs
  globninja match . --quick`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringArrayP("pattern", "p", nil, "include glob (repeatable)")
	matchCmd.Flags().StringArrayP("ignore", "i", nil, "ignore glob (repeatable)")
	matchCmd.Flags().BoolVar(&streamOutput, "stream", false, "print matches while the walk is still running")
	matchCmd.Flags().BoolVar(&printStems, "stems", false, "print the part of each path below the pattern's literal prefix")
	matchCmd.Flags().BoolVar(&printRel, "relative", false, "print paths relative to the search root")
	matchCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the collected matches as JSON")
	matchCmd.Flags().StringVar(&exportTo, "export-to", "", "copy matched files to this directory, preserving layout")
	matchCmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite existing files when exporting")
	matchCmd.Flags().BoolVar(&quickScan, "quick", false, "only count the entries directly under path")
}

func runMatch(cmd *cobra.Command, args []string) error {
	absPath, err := resolveBase(args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if quickScan {
		return runQuickScan(out, absPath)
	}

	g, err := newGlob(absPath)
	if err != nil {
		return err
	}

	patterns := current.Patterns
	if patterns == nil {
		patterns = []string{}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	started := time.Now()

	var set *models.MatchSet
	if streamOutput || current.Timeout > 0 {
		set, err = collectStream(ctx, g, patterns, current.IgnorePatterns, out)
	} else {
		set, err = g.MatchResults(patterns, current.IgnorePatterns)
		if err == nil && !jsonOutput {
			printMatches(out, set)
		}
	}
	if err != nil {
		if errors.IsCanceled(err) {
			return errors.Errorf("query canceled after %s: %w", formatElapsed(time.Since(started)), err)
		}
		return err
	}

	if jsonOutput {
		data, err := json.MarshalIndent(set, "", "  ")
		if err != nil {
			return errors.Errorf("failed to marshal matches: %w", err)
		}
		fmt.Fprintln(out, string(data))
	}

	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Matched %d files under %s in %s\n",
			set.Len(), set.BasePath, formatElapsed(time.Since(started)))
	}

	if exportTo != "" {
		return exportMatches(cmd, set)
	}
	return nil
}

// collectStream prints matches as they arrive unless JSON output was asked
// for, and returns everything delivered
func collectStream(ctx context.Context, g *glob.Glob, patterns, ignorePatterns []string, out io.Writer) (*models.MatchSet, error) {
	var (
		stream *glob.Stream
		err    error
	)
	if current.Timeout > 0 {
		stream, err = g.StreamWithTimeout(ctx, current.Timeout, patterns, ignorePatterns)
	} else {
		stream, err = g.Stream(ctx, patterns, ignorePatterns)
	}
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	set := models.NewMatchSet(stream.Root())
	for stream.Next() {
		match := stream.Match()
		if set.Add(match) && !jsonOutput {
			fmt.Fprintln(out, formatMatch(match, stream.Root()))
		}
	}
	set.CollectedAt = time.Now()

	return set, stream.Err()
}

func printMatches(out io.Writer, set *models.MatchSet) {
	for _, match := range set.Matches {
		fmt.Fprintln(out, formatMatch(match, set.BasePath))
	}
}

func formatMatch(match models.MatchResult, root string) string {
	switch {
	case printStems:
		return match.Stem
	case printRel:
		return match.Path
	default:
		return match.ResolvePath(root)
	}
}

func exportMatches(cmd *cobra.Command, set *models.MatchSet) error {
	dest, err := absoluteExportPath(exportTo)
	if err != nil {
		return err
	}

	service := export.NewService(fs)
	service.SetLogger(loggerBase())

	summary, err := service.Export(set, export.Options{DestinationPath: dest, Overwrite: overwrite})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d files (%s) to %s\n",
		summary.FileCount, export.FormatSize(summary.TotalSize), summary.DestinationPath)
	return nil
}

func runQuickScan(out io.Writer, absPath string) error {
	ts := scanner.NewTreeScanner(fs)
	ts.SetCaseInsensitive(current.CaseInsensitive)

	summary, err := ts.QuickScan(absPath)
	if err != nil {
		return errors.Errorf("quick scan failed: %w", err)
	}

	fmt.Fprintln(out, "Quick Scan Results:")
	fmt.Fprintf(out, "  Root: %s\n", summary.Root)
	fmt.Fprintf(out, "  Files: %d\n", summary.FileCount)
	fmt.Fprintf(out, "  Directories: %d\n", summary.DirCount)
	return nil
}
