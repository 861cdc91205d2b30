// Package config loads globninja settings from defaults, a .globninja.yaml
// file, GLOBNINJA_* environment variables and command line flags, in
// increasing order of precedence.
package config

import (
	stderrors "errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cheerioskun/globninja/internal/discovery"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/matcher"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/cheerioskun/globninja/internal/scanner"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "GLOBNINJA"
	FileName   = ".globninja"
	FileType   = "yaml"
	DefaultLog = "info"
)

// Setting keys
const (
	KeyBasePath           = "base_path"
	KeyCaseInsensitive    = "case_insensitive"
	KeyIgnoreInaccessible = "ignore_inaccessible"
	KeyCacheCapacity      = "cache_capacity"
	KeyMaxDepth           = "max_depth"
	KeyTimeout            = "timeout"
	KeyPatterns           = "patterns"
	KeyIgnorePatterns     = "ignore_patterns"
	KeyLogLevel           = "log_level"

	KeyDiscoverySolutions   = "discovery.solution_patterns"
	KeyDiscoveryProjects    = "discovery.project_patterns"
	KeyDiscoveryDockerfiles = "discovery.dockerfile_patterns"
	KeyDiscoveryIgnores     = "discovery.ignore_patterns"
)

// DefaultDiscoveryIgnores keeps build output and tooling folders out of discovery
var DefaultDiscoveryIgnores = []string{"**/.git", "**/node_modules", "**/bin", "**/obj"}

// DiscoverySettings holds the patterns used by `globninja discover`
type DiscoverySettings struct {
	SolutionPatterns   []string `mapstructure:"solution_patterns"`
	ProjectPatterns    []string `mapstructure:"project_patterns"`
	DockerfilePatterns []string `mapstructure:"dockerfile_patterns"`
	IgnorePatterns     []string `mapstructure:"ignore_patterns"`
}

// Settings is the resolved configuration
type Settings struct {
	BasePath           string            `mapstructure:"base_path"`
	CaseInsensitive    bool              `mapstructure:"case_insensitive"`
	IgnoreInaccessible bool              `mapstructure:"ignore_inaccessible"`
	CacheCapacity      int               `mapstructure:"cache_capacity"`
	MaxDepth           int               `mapstructure:"max_depth"`
	Timeout            time.Duration     `mapstructure:"timeout"`
	Patterns           []string          `mapstructure:"patterns"`
	IgnorePatterns     []string          `mapstructure:"ignore_patterns"`
	LogLevel           string            `mapstructure:"log_level"`
	Discovery          DiscoverySettings `mapstructure:"discovery"`
}

// New returns a viper instance reading from fs with defaults and environment
// bindings installed
func New(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

// SetDefaults installs the default value of every setting
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBasePath, models.DefaultBasePath)
	v.SetDefault(KeyCaseInsensitive, models.DefaultCaseInsensitive)
	v.SetDefault(KeyIgnoreInaccessible, true)
	v.SetDefault(KeyCacheCapacity, matcher.DefaultCapacity)
	v.SetDefault(KeyMaxDepth, scanner.UnlimitedDepth)
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyPatterns, []string{})
	v.SetDefault(KeyIgnorePatterns, []string{})
	v.SetDefault(KeyLogLevel, DefaultLog)

	v.SetDefault(KeyDiscoverySolutions, discovery.DefaultSolutionPatterns)
	v.SetDefault(KeyDiscoveryProjects, discovery.DefaultProjectPatterns)
	v.SetDefault(KeyDiscoveryDockerfiles, discovery.DefaultDockerfilePatterns)
	v.SetDefault(KeyDiscoveryIgnores, DefaultDiscoveryIgnores)
}

// ReadFile merges a config file into v. With an empty path .globninja.yaml is
// searched in dir; a missing file is not an error in that case.
func ReadFile(v *viper.Viper, path, dir string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Errorf("failed to read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(FileName)
	v.SetConfigType(FileType)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if stderrors.As(err, &notFound) {
			return nil
		}
		return errors.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load decodes and validates the settings held by v
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Errorf("failed to decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks values that would otherwise fail deep inside a query
func (s *Settings) Validate() error {
	if s.BasePath == "" {
		return errors.NewValidation("%s must not be empty", KeyBasePath)
	}
	if s.CacheCapacity <= 0 {
		return errors.NewValidation("%s must be positive, got %d", KeyCacheCapacity, s.CacheCapacity)
	}
	if s.Timeout < 0 {
		return errors.NewValidation("%s must not be negative, got %s", KeyTimeout, s.Timeout)
	}
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		return errors.NewValidation("unknown %s %q", KeyLogLevel, s.LogLevel)
	}

	for _, patterns := range [][]string{
		s.Patterns,
		s.IgnorePatterns,
		s.Discovery.SolutionPatterns,
		s.Discovery.ProjectPatterns,
		s.Discovery.DockerfilePatterns,
		s.Discovery.IgnorePatterns,
	} {
		for _, p := range patterns {
			if strings.TrimSpace(p) == "" {
				return errors.NewValidation("config contains an empty pattern")
			}
		}
	}

	return nil
}

// DiscoveryOptions maps the discovery settings onto discovery.Options. The
// shared ignore patterns apply to every kind of file.
func (s *Settings) DiscoveryOptions() discovery.Options {
	return discovery.Options{
		SolutionPatterns:         s.Discovery.SolutionPatterns,
		ProjectPatterns:          s.Discovery.ProjectPatterns,
		DockerfilePatterns:       s.Discovery.DockerfilePatterns,
		SolutionIgnorePatterns:   s.Discovery.IgnorePatterns,
		ProjectIgnorePatterns:    s.Discovery.IgnorePatterns,
		DockerfileIgnorePatterns: s.Discovery.IgnorePatterns,
		CaseInsensitive:          s.CaseInsensitive,
		IgnoreInaccessible:       s.IgnoreInaccessible,
	}
}

// Write stores the settings currently held by v at path on fs
func Write(v *viper.Viper, fs afero.Fs, path string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("failed to create config directory: %w", err)
	}

	v.SetFs(fs)
	v.SetConfigType(FileType)
	if err := v.WriteConfigAs(path); err != nil {
		return errors.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
