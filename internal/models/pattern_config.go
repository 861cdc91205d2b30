package models

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cheerioskun/globninja/internal/errors"
)

const (
	// DefaultBasePath is the search root used when none is configured
	DefaultBasePath = "."
	// DefaultCaseInsensitive is the default case mode for matching and walking
	DefaultCaseInsensitive = true
)

// BasePather is anything that carries a search root
type BasePather interface {
	BasePath() string
}

// PatternConfig describes a single search. It is immutable once built and is
// compared structurally, which makes it usable as a cache key.
type PatternConfig struct {
	basePath        string
	caseInsensitive bool
	inclusions      []string
	exclusions      []string
}

// BasePath returns the root of the search
func (c PatternConfig) BasePath() string {
	return c.basePath
}

// CaseInsensitive reports whether matching ignores case
func (c PatternConfig) CaseInsensitive() bool {
	return c.caseInsensitive
}

// Inclusions returns a copy of the include patterns in insertion order
func (c PatternConfig) Inclusions() []string {
	return slices.Clone(c.inclusions)
}

// Exclusions returns a copy of the exclude patterns in insertion order
func (c PatternConfig) Exclusions() []string {
	return slices.Clone(c.exclusions)
}

// Equal reports structural equality. Pattern order matters.
func (c PatternConfig) Equal(other PatternConfig) bool {
	return c.basePath == other.basePath &&
		c.caseInsensitive == other.caseInsensitive &&
		slices.Equal(c.inclusions, other.inclusions) &&
		slices.Equal(c.exclusions, other.exclusions)
}

// Key returns a canonical encoding of the configuration. Two configurations
// are Equal exactly when their keys are equal.
func (c PatternConfig) Key() string {
	var sb strings.Builder
	writeField := func(s string) {
		sb.WriteString(strconv.Itoa(len(s)))
		sb.WriteByte(':')
		sb.WriteString(s)
	}

	writeField(c.basePath)
	if c.caseInsensitive {
		sb.WriteString("|i")
	} else {
		sb.WriteString("|s")
	}

	sb.WriteString("|+")
	sb.WriteString(strconv.Itoa(len(c.inclusions)))
	for _, p := range c.inclusions {
		writeField(p)
	}

	sb.WriteString("|-")
	sb.WriteString(strconv.Itoa(len(c.exclusions)))
	for _, p := range c.exclusions {
		writeField(p)
	}

	return sb.String()
}

// String renders the configuration for logs
func (c PatternConfig) String() string {
	mode := "case-insensitive"
	if !c.caseInsensitive {
		mode = "case-sensitive"
	}
	return "base=" + c.basePath + " " + mode +
		" include=[" + strings.Join(c.inclusions, ", ") + "]" +
		" exclude=[" + strings.Join(c.exclusions, ", ") + "]"
}

// PatternConfigBuilder assembles a PatternConfig. Every With method returns a
// new builder and never changes the receiver, so a partially configured
// builder can be shared and extended independently.
//
// Argument errors are sticky: the first one is returned by Build.
type PatternConfigBuilder struct {
	basePath        string
	caseInsensitive bool
	patterns        []string
	ignorePatterns  []string
	err             error
}

// NewPatternConfigBuilder returns a builder rooted at the current directory
// with case-insensitive matching
func NewPatternConfigBuilder() PatternConfigBuilder {
	return PatternConfigBuilder{
		basePath:        DefaultBasePath,
		caseInsensitive: DefaultCaseInsensitive,
	}
}

// WithBasePath sets the search root. An empty path is an absent argument.
func (b PatternConfigBuilder) WithBasePath(path string) PatternConfigBuilder {
	if path == "" {
		return b.fail(errors.NewInvalidArgument("basePath", ""))
	}
	b.basePath = path
	return b
}

// WithCaseInsensitive sets the case mode
func (b PatternConfigBuilder) WithCaseInsensitive(caseInsensitive bool) PatternConfigBuilder {
	b.caseInsensitive = caseInsensitive
	return b
}

// WithPattern appends one include pattern
func (b PatternConfigBuilder) WithPattern(pattern string) PatternConfigBuilder {
	b.patterns = appendCopy(b.patterns, pattern)
	return b
}

// WithPatterns appends include patterns. Passing a nil slice is an absent argument.
func (b PatternConfigBuilder) WithPatterns(patterns ...string) PatternConfigBuilder {
	if patterns == nil {
		return b.fail(errors.NewInvalidArgument("patterns", ""))
	}
	b.patterns = appendCopy(b.patterns, patterns...)
	return b
}

// WithIgnorePattern appends one exclude pattern
func (b PatternConfigBuilder) WithIgnorePattern(ignorePattern string) PatternConfigBuilder {
	b.ignorePatterns = appendCopy(b.ignorePatterns, ignorePattern)
	return b
}

// WithIgnorePatterns appends exclude patterns. Passing a nil slice is an absent argument.
func (b PatternConfigBuilder) WithIgnorePatterns(ignorePatterns ...string) PatternConfigBuilder {
	if ignorePatterns == nil {
		return b.fail(errors.NewInvalidArgument("ignorePatterns", ""))
	}
	b.ignorePatterns = appendCopy(b.ignorePatterns, ignorePatterns...)
	return b
}

// Build validates the builder and freezes it into a PatternConfig
func (b PatternConfigBuilder) Build() (PatternConfig, error) {
	if b.err != nil {
		return PatternConfig{}, b.err
	}
	if b.basePath == "" {
		return PatternConfig{}, errors.NewInvalidArgument("basePath", "")
	}
	if err := ValidatePatterns(b.patterns, b.ignorePatterns); err != nil {
		return PatternConfig{}, err
	}

	return PatternConfig{
		basePath:        b.basePath,
		caseInsensitive: b.caseInsensitive,
		inclusions:      slices.Clone(b.patterns),
		exclusions:      slices.Clone(b.ignorePatterns),
	}, nil
}

// Validate reports whether c could have come out of Build. The zero value
// fails because it has no base path and no patterns.
func (c PatternConfig) Validate() error {
	if c.basePath == "" {
		return errors.NewInvalidArgument("cfg", "base path is empty")
	}
	return ValidatePatterns(c.inclusions, c.exclusions)
}

// ValidatePatterns checks that no pattern is blank and that at least one
// include or exclude pattern is present
func ValidatePatterns(patterns, ignorePatterns []string) error {
	for i, p := range patterns {
		if strings.TrimSpace(p) == "" {
			return errors.NewValidation("pattern at index %d is empty or whitespace", i)
		}
	}
	for i, p := range ignorePatterns {
		if strings.TrimSpace(p) == "" {
			return errors.NewValidation("ignore pattern at index %d is empty or whitespace", i)
		}
	}
	if len(patterns) == 0 && len(ignorePatterns) == 0 {
		return errors.NewValidation("at least one pattern or ignore pattern must be specified")
	}
	return nil
}

func (b PatternConfigBuilder) fail(err error) PatternConfigBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// appendCopy never writes into the backing array of src
func appendCopy(src []string, items ...string) []string {
	out := make([]string, 0, len(src)+len(items))
	out = append(out, src...)
	return append(out, items...)
}
