package models

import "time"

// MatchSet is the collected result of a glob query
type MatchSet struct {
	BasePath    string        `json:"base_path"`    // Root the matches are relative to
	Matches     []MatchResult `json:"matches"`      // Matches in discovery order
	CollectedAt time.Time     `json:"collected_at"` // When collection finished
	index       map[string]int
}

// NewMatchSet creates an empty MatchSet rooted at basePath
func NewMatchSet(basePath string) *MatchSet {
	return &MatchSet{
		BasePath: basePath,
		Matches:  make([]MatchResult, 0),
		index:    make(map[string]int),
	}
}

// Add appends a match. Duplicate paths are ignored and Add reports false.
func (ms *MatchSet) Add(match MatchResult) bool {
	if ms.index == nil {
		ms.reindex()
	}
	if _, ok := ms.index[match.Path]; ok {
		return false
	}
	ms.index[match.Path] = len(ms.Matches)
	ms.Matches = append(ms.Matches, match)
	return true
}

// Contains checks if a relative path is in the MatchSet
func (ms *MatchSet) Contains(path string) bool {
	if ms.index == nil {
		ms.reindex()
	}
	_, ok := ms.index[path]
	return ok
}

// Get returns the match for a relative path
func (ms *MatchSet) Get(path string) (MatchResult, bool) {
	if ms.index == nil {
		ms.reindex()
	}
	i, ok := ms.index[path]
	if !ok {
		return MatchResult{}, false
	}
	return ms.Matches[i], true
}

// Paths returns the relative paths in discovery order
func (ms *MatchSet) Paths() []string {
	paths := make([]string, 0, len(ms.Matches))
	for _, m := range ms.Matches {
		paths = append(paths, m.Path)
	}
	return paths
}

// FullPaths returns every match joined with the base path
func (ms *MatchSet) FullPaths() []string {
	paths := make([]string, 0, len(ms.Matches))
	for _, m := range ms.Matches {
		paths = append(paths, m.ResolvePath(ms.BasePath))
	}
	return paths
}

// Resolved returns a ResolvedPath per match
func (ms *MatchSet) Resolved() []ResolvedPath {
	out := make([]ResolvedPath, 0, len(ms.Matches))
	for _, m := range ms.Matches {
		out = append(out, ResolvedPath{FullPath: m.ResolvePath(ms.BasePath), Match: m})
	}
	return out
}

// IsEmpty returns true if the MatchSet contains no matches
func (ms *MatchSet) IsEmpty() bool {
	return len(ms.Matches) == 0
}

// Len returns the number of matches
func (ms *MatchSet) Len() int {
	return len(ms.Matches)
}

// Clone creates a deep copy of the MatchSet
func (ms *MatchSet) Clone() *MatchSet {
	clone := &MatchSet{
		BasePath:    ms.BasePath,
		Matches:     make([]MatchResult, len(ms.Matches)),
		CollectedAt: ms.CollectedAt,
	}
	copy(clone.Matches, ms.Matches)
	clone.reindex()
	return clone
}

func (ms *MatchSet) reindex() {
	ms.index = make(map[string]int, len(ms.Matches))
	for i, m := range ms.Matches {
		ms.index[m.Path] = i
	}
}
