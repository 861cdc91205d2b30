package patterns

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Kind says whether a pattern selects paths or removes them
type Kind int

const (
	IncludeKind Kind = iota
	IgnoreKind
)

// String returns a human-readable representation of the kind
func (k Kind) String() string {
	switch k {
	case IncludeKind:
		return "Include"
	case IgnoreKind:
		return "Ignore"
	default:
		return "Unknown"
	}
}

// Pattern is one entry of the editor
type Pattern struct {
	Text       string
	Kind       Kind
	Valid      bool
	MatchCount int
	Error      string
}

// newPattern checks text with the same rules the matcher applies
func newPattern(text string, kind Kind) Pattern {
	p := Pattern{Text: text, Kind: kind, Valid: true}

	normalized := strings.TrimPrefix(filepath.ToSlash(text), "./")
	if strings.TrimSpace(normalized) == "" || !doublestar.ValidatePattern(normalized) {
		p.Valid = false
		p.Error = "invalid glob"
	}
	return p
}

// matches reports whether the include pattern selects rel
func (p Pattern) matches(rel string, caseInsensitive bool) bool {
	pattern := strings.TrimPrefix(filepath.ToSlash(p.Text), "./")
	if caseInsensitive {
		pattern = strings.ToLower(pattern)
		rel = strings.ToLower(rel)
	}
	return doublestar.MatchUnvalidated(pattern, rel)
}
