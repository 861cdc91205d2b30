package config_test

import (
	"testing"
	"time"

	"github.com/cheerioskun/globninja/internal/config"
	"github.com/cheerioskun/globninja/internal/discovery"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := config.New(afero.NewMemMapFs())
	require.NoError(t, config.ReadFile(v, "", "/nowhere"))

	s, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, ".", s.BasePath)
	assert.True(t, s.CaseInsensitive)
	assert.True(t, s.IgnoreInaccessible)
	assert.Equal(t, 20, s.CacheCapacity)
	assert.Equal(t, -1, s.MaxDepth)
	assert.Zero(t, s.Timeout)
	assert.Empty(t, s.Patterns)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, discovery.DefaultSolutionPatterns, s.Discovery.SolutionPatterns)
	assert.Equal(t, discovery.DefaultProjectPatterns, s.Discovery.ProjectPatterns)
	assert.Equal(t, discovery.DefaultDockerfilePatterns, s.Discovery.DockerfilePatterns)
}

func TestLoadFromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/.globninja.yaml", []byte(`
base_path: /srv/code
case_insensitive: false
cache_capacity: 5
max_depth: 3
timeout: 1500ms
patterns:
  - "**/*.go"
ignore_patterns:
  - vendor
discovery:
  dockerfile_patterns:
    - "**/*.Dockerfile"
`), 0644))

	v := config.New(fs)
	require.NoError(t, config.ReadFile(v, "", "/proj"))

	s, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/srv/code", s.BasePath)
	assert.False(t, s.CaseInsensitive)
	assert.Equal(t, 5, s.CacheCapacity)
	assert.Equal(t, 3, s.MaxDepth)
	assert.Equal(t, 1500*time.Millisecond, s.Timeout)
	assert.Equal(t, []string{"**/*.go"}, s.Patterns)
	assert.Equal(t, []string{"vendor"}, s.IgnorePatterns)
	assert.Equal(t, []string{"**/*.Dockerfile"}, s.Discovery.DockerfilePatterns)
	assert.Equal(t, discovery.DefaultSolutionPatterns, s.Discovery.SolutionPatterns)
}

func TestExplicitFileMustExist(t *testing.T) {
	v := config.New(afero.NewMemMapFs())
	assert.Error(t, config.ReadFile(v, "/missing.yaml", ""))
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("GLOBNINJA_CACHE_CAPACITY", "7")
	t.Setenv("GLOBNINJA_LOG_LEVEL", "debug")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/.globninja.yaml", []byte("cache_capacity: 3\n"), 0644))

	v := config.New(fs)
	require.NoError(t, config.ReadFile(v, "", "/proj"))

	s, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, 7, s.CacheCapacity)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() config.Settings {
		return config.Settings{BasePath: ".", CacheCapacity: 1, LogLevel: "info"}
	}

	tests := []struct {
		name   string
		mutate func(*config.Settings)
	}{
		{"empty base path", func(s *config.Settings) { s.BasePath = "" }},
		{"zero capacity", func(s *config.Settings) { s.CacheCapacity = 0 }},
		{"negative timeout", func(s *config.Settings) { s.Timeout = -time.Second }},
		{"unknown level", func(s *config.Settings) { s.LogLevel = "loud" }},
		{"blank pattern", func(s *config.Settings) { s.Patterns = []string{"*.go", " "} }},
		{"blank discovery pattern", func(s *config.Settings) { s.Discovery.ProjectPatterns = []string{""} }},
	}

	ok := valid()
	require.NoError(t, ok.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)

			var validation errors.ValidationError
			assert.True(t, errors.As(s.Validate(), &validation))
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()

	v := config.New(fs)
	v.Set(config.KeyPatterns, []string{"**/*.go", "**/*.md"})
	v.Set(config.KeyIgnorePatterns, []string{"vendor"})
	v.Set(config.KeyCaseInsensitive, false)
	require.NoError(t, config.Write(v, fs, "/proj/.globninja.yaml"))

	exists, err := afero.Exists(fs, "/proj/.globninja.yaml")
	require.NoError(t, err)
	require.True(t, exists)

	loaded := config.New(fs)
	require.NoError(t, config.ReadFile(loaded, "", "/proj"))
	s, err := config.Load(loaded)
	require.NoError(t, err)

	assert.Equal(t, []string{"**/*.go", "**/*.md"}, s.Patterns)
	assert.Equal(t, []string{"vendor"}, s.IgnorePatterns)
	assert.False(t, s.CaseInsensitive)
	assert.Equal(t, 20, s.CacheCapacity)
}

func TestDiscoveryOptions(t *testing.T) {
	v := config.New(afero.NewMemMapFs())
	v.Set(config.KeyCaseInsensitive, false)

	s, err := config.Load(v)
	require.NoError(t, err)

	options := s.DiscoveryOptions()
	assert.Equal(t, discovery.DefaultProjectPatterns, options.ProjectPatterns)
	assert.Equal(t, config.DefaultDiscoveryIgnores, options.ProjectIgnorePatterns)
	assert.Equal(t, config.DefaultDiscoveryIgnores, options.DockerfileIgnorePatterns)
	assert.False(t, options.CaseInsensitive)
	assert.True(t, options.IgnoreInaccessible)
}
