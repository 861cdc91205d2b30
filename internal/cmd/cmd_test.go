package cmd

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/cheerioskun/globninja/internal/config"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/cheerioskun/globninja/internal/testutil"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if slice, ok := f.Value.(pflag.SliceValue); ok {
			_ = slice.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI against memFs and returns everything it printed
func execute(t *testing.T, memFs afero.Fs, args ...string) (string, error) {
	t.Helper()

	fs = memFs
	settings = config.New(memFs)
	current = nil
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func scenarioFs(t *testing.T) afero.Fs {
	t.Helper()

	memFs := afero.NewMemMapFs()
	testutil.WriteTree(t, memFs, "/root", testutil.ScenarioFiles())
	return memFs
}

func lines(out string) []string {
	var result []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			result = append(result, line)
		}
	}
	sort.Strings(result)
	return result
}

func TestMatchPrintsRelativePaths(t *testing.T) {
	out, err := execute(t, scenarioFs(t), "match", "/root",
		"-p", "**/*.txt", "-p", "**/*.md", "-i", "folder3", "--relative")

	require.NoError(t, err)
	assert.Equal(t, []string{"folder1/a.md", "folder1/a.txt", "folder2/b.txt"}, lines(out))
}

func TestMatchPrintsFullPathsByDefault(t *testing.T) {
	out, err := execute(t, scenarioFs(t), "match", "/root", "-p", "folder2/*.txt")

	require.NoError(t, err)
	assert.Equal(t, []string{"/root/folder2/b.txt"}, lines(out))
}

func TestMatchStreamsStems(t *testing.T) {
	out, err := execute(t, scenarioFs(t), "match", "/root", "-p", "folder1/*", "--stream", "--stems")

	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "a.txt"}, lines(out))
}

func TestMatchJSON(t *testing.T) {
	out, err := execute(t, scenarioFs(t), "match", "/root", "-p", "**/*.txt", "--json")
	require.NoError(t, err)

	var set models.MatchSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	assert.Equal(t, "/root", set.BasePath)
	assert.Len(t, set.Matches, 3)
}

func TestMatchExport(t *testing.T) {
	memFs := scenarioFs(t)

	_, err := execute(t, memFs, "match", "/root", "-p", "**/*.md", "--export-to", "/out")
	require.NoError(t, err)

	exists, err := afero.Exists(memFs, "/out/folder1/a.md")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMatchRejectsInvalidPattern(t *testing.T) {
	_, err := execute(t, scenarioFs(t), "match", "/root", "-p", "[abc")

	var validation errors.ValidationError
	assert.True(t, errors.As(err, &validation))
}

func TestMatchMissingPath(t *testing.T) {
	_, err := execute(t, scenarioFs(t), "match", "/nowhere", "-p", "*")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "path does not exist")
}

func TestMatchQuickScan(t *testing.T) {
	out, err := execute(t, scenarioFs(t), "match", "/root", "--quick")

	require.NoError(t, err)
	assert.Contains(t, out, "Files: 0")
	assert.Contains(t, out, "Directories: 3")
}

func TestInitWritesConfig(t *testing.T) {
	memFs := scenarioFs(t)

	out, err := execute(t, memFs, "init", "/root", "-p", "**/*.go", "-i", "vendor", "--max-depth", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "/root/.globninja.yaml")

	v := config.New(memFs)
	require.NoError(t, config.ReadFile(v, "", "/root"))
	s, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.go"}, s.Patterns)
	assert.Equal(t, []string{"vendor"}, s.IgnorePatterns)
	assert.Equal(t, 4, s.MaxDepth)
	assert.Equal(t, "/root", s.BasePath)

	_, err = execute(t, memFs, "init", "/root")
	assert.Error(t, err, "existing config is kept without --force")

	_, err = execute(t, memFs, "init", "/root", "--force")
	assert.NoError(t, err)
}

func TestConfigFileSuppliesPatterns(t *testing.T) {
	memFs := scenarioFs(t)
	require.NoError(t, afero.WriteFile(memFs, "/etc/globninja.yaml", []byte(`
patterns:
  - "**/*.txt"
ignore_patterns:
  - folder3
`), 0644))

	out, err := execute(t, memFs, "match", "/root", "--config", "/etc/globninja.yaml", "--relative")

	require.NoError(t, err)
	assert.Equal(t, []string{"folder1/a.txt", "folder2/b.txt"}, lines(out))
}

func TestDiscover(t *testing.T) {
	memFs := afero.NewMemMapFs()
	testutil.WriteTree(t, memFs, "/repo", map[string]string{
		"tools/Tool.csproj": `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
</Project>`,
		"Dockerfile": "FROM mcr.microsoft.com/dotnet/aspnet:8.0\n",
	})

	out, err := execute(t, memFs, "discover", "/repo")

	require.NoError(t, err)
	assert.Contains(t, out, "Solutions (0)")
	assert.Contains(t, out, "Standalone projects (1)")
	assert.Contains(t, out, "tools/Tool.csproj")
	assert.Contains(t, out, "Dockerfiles (1)")
	assert.Contains(t, out, "net8.0")
}
