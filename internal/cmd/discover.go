package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/cheerioskun/globninja/internal/discovery"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/glob"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/spf13/cobra"
)

var discoverJSON bool

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover [path]",
	Short: "Find .NET solutions, projects and Dockerfiles",
	Long: `Discover .NET solutions, projects and dotnet based Dockerfiles under a
directory. Solutions, projects and Dockerfiles are searched concurrently with
the patterns from the discovery section of .globninja.yaml.

Projects referenced by a solution are listed under it; the rest are shown as
standalone projects. Dockerfiles that do not use a dotnet image are skipped.

Examples:
  globninja discover ./repo
  globninja discover . --json
  globninja discover ./repo --timeout 30s`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "print the result as JSON")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	absPath, err := resolveBase(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if current.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, current.Timeout)
		defer cancel()
	}

	cache := glob.SharedCache()
	service := discovery.NewService(fs,
		discovery.WithOptions(current.DiscoveryOptions()),
		discovery.WithCache(cache),
		discovery.WithLogger(loggerBase()),
	)

	started := time.Now()
	result, err := service.DiscoverAll(ctx, absPath)
	if err != nil {
		if errors.IsCanceled(err) {
			return errors.Errorf("discovery canceled after %s: %w", formatElapsed(time.Since(started)), err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if discoverJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errors.Errorf("failed to marshal discovery result: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		printDiscovery(out, absPath, result)
	}

	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Discovery finished in %s (%d pattern sets cached)\n",
			formatElapsed(time.Since(started)), cache.Len())
	}
	return nil
}

func printDiscovery(out io.Writer, root string, result *models.DiscoveryResultSet) {
	rel := func(path string) string {
		if r, err := filepath.Rel(root, path); err == nil {
			return r
		}
		return path
	}

	fmt.Fprintf(out, "Solutions (%d):\n", len(result.Solutions))
	for _, s := range result.Solutions {
		fmt.Fprintf(out, "  %s  %s\n", rel(s.FullPath), s)
		for _, p := range s.Projects {
			fmt.Fprintf(out, "    - %s  %s\n", rel(p.FullPath), p)
		}
	}

	fmt.Fprintf(out, "Standalone projects (%d):\n", len(result.StandaloneProjects))
	for _, p := range result.StandaloneProjects {
		fmt.Fprintf(out, "  %s  %s\n", rel(p.FullPath), p)
	}

	fmt.Fprintf(out, "Dockerfiles (%d):\n", len(result.Dockerfiles))
	for _, d := range result.Dockerfiles {
		fmt.Fprintf(out, "  %s\n", rel(d.FullPath))
		for _, image := range d.ImageDetails {
			fmt.Fprintf(out, "    - %s:%s (%s, line %d)\n",
				image.Image, image.Tag, image.TargetFrameworkMoniker, image.LineNumber)
		}
	}
}
