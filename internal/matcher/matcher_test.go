package matcher_test

import (
	"io/fs"
	"sort"
	"testing"

	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/matcher"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/cheerioskun/globninja/internal/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileIncludeExclude(t *testing.T) {
	t.Parallel()

	m, err := matcher.Compile([]string{"**/*.txt", "**/*.md"}, []string{"folder3"}, true)
	require.NoError(t, err)

	tests := []struct {
		rel  string
		want bool
	}{
		{"folder1/a.txt", true},
		{"folder1/a.md", true},
		{"folder2/b.txt", true},
		{"top.txt", true},
		{"folder3/c.txt", false},
		{"folder3/deep/d.md", false},
		{"folder1/image.png", false},
		{"FOLDER1/UPPER.TXT", true},
		{"Folder3/c.txt", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Test(tt.rel), tt.rel)
	}

	assert.True(t, m.SkipDir("folder3"))
	assert.True(t, m.SkipDir("FOLDER3"))
	assert.False(t, m.SkipDir("folder1"))
}

func TestCompileCaseSensitive(t *testing.T) {
	t.Parallel()

	m, err := matcher.Compile([]string{"**/*.txt"}, []string{"Vendor"}, false)
	require.NoError(t, err)

	assert.True(t, m.Test("a/b.txt"))
	assert.False(t, m.Test("a/b.TXT"))
	assert.False(t, m.Test("Vendor/x.txt"))
	assert.True(t, m.Test("vendor/x.txt"))
}

func TestCompileExclusionsOnlyMatchesEverythingElse(t *testing.T) {
	t.Parallel()

	m, err := matcher.Compile(nil, []string{"**/*.log", "tmp"}, true)
	require.NoError(t, err)

	assert.True(t, m.Test("src/main.go"))
	assert.False(t, m.Test("logs/app.log"))
	assert.False(t, m.Test("tmp/scratch.go"))

	match, ok := m.Match("src/main.go")
	require.True(t, ok)
	assert.Equal(t, "src/main.go", match.Stem)
}

func TestCompileNormalizesPatterns(t *testing.T) {
	t.Parallel()

	m, err := matcher.Compile([]string{"./src/**/*.go"}, []string{"src/gen/"}, false)
	require.NoError(t, err)

	assert.True(t, m.Test("src/a/b.go"))
	assert.False(t, m.Test("src/gen/c.go"))
}

func TestCompileRejectsInvalidPatterns(t *testing.T) {
	t.Parallel()

	for _, patterns := range [][]string{{"[unclosed"}, {"  "}, {"{a,b"}} {
		_, err := matcher.Compile(patterns, nil, true)

		var validation errors.ValidationError
		assert.True(t, errors.As(err, &validation), "%v", patterns)
	}

	_, err := matcher.Compile([]string{"*"}, []string{"[bad"}, true)
	assert.Error(t, err)
}

func TestMatchStem(t *testing.T) {
	t.Parallel()

	m, err := matcher.Compile([]string{"src/**/*.go", "**/*.md", "docs/readme.txt"}, nil, false)
	require.NoError(t, err)

	tests := []struct {
		rel      string
		wantStem string
	}{
		{"src/pkg/a.go", "pkg/a.go"},
		{"src/a.go", "a.go"},
		{"docs/guide.md", "docs/guide.md"},
		{"docs/readme.txt", "readme.txt"},
	}

	for _, tt := range tests {
		match, ok := m.Match(tt.rel)
		require.True(t, ok, tt.rel)
		assert.Equal(t, tt.rel, match.Path)
		assert.Equal(t, tt.wantStem, match.Stem, tt.rel)
	}

	_, ok := m.Match("other/a.go")
	assert.False(t, ok)
}

func TestMatchStemKeepsOriginalCase(t *testing.T) {
	t.Parallel()

	m, err := matcher.Compile([]string{"SRC/**/*.go"}, nil, true)
	require.NoError(t, err)

	match, ok := m.Match("Src/Pkg/Main.go")
	require.True(t, ok)
	assert.Equal(t, "Pkg/Main.go", match.Stem)
}

func TestMatchStemKeepsCaseWhenFoldingChangesLength(t *testing.T) {
	t.Parallel()

	// U+212A KELVIN SIGN folds to a one-byte "k"
	m, err := matcher.Compile([]string{"SRC/**/*.go", "\u212A/**"}, nil, true)
	require.NoError(t, err)

	match, ok := m.Match("Src/\u212Aelvin/Main.go")
	require.True(t, ok)
	assert.Equal(t, "\u212Aelvin/Main.go", match.Stem)

	match, ok = m.Match("\u212A/Docs/Read.md")
	require.True(t, ok)
	assert.Equal(t, "Docs/Read.md", match.Stem)
}

func TestEnumerateUnder(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	testutil.WriteTree(t, fsys, "/root", testutil.ScenarioFiles())
	testutil.WriteTree(t, fsys, "/root", map[string]string{"folder1/image.png": "", "deep/x/y/z.txt": ""})

	m, err := matcher.Compile([]string{"**/*.txt", "**/*.md"}, []string{"folder3"}, true)
	require.NoError(t, err)

	results, err := m.EnumerateUnder(fsys, "/root", matcher.EnumerateOptions{IgnoreInaccessible: true, MaxDepth: -1})
	require.NoError(t, err)

	var paths []string
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{"deep/x/y/z.txt", "folder1/a.md", "folder1/a.txt", "folder2/b.txt"}, paths)

	results, err = m.EnumerateUnder(fsys, "/root", matcher.EnumerateOptions{IgnoreInaccessible: true, MaxDepth: 1})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestEnumerateUnderFaults(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	testutil.WriteTree(t, base, "/root", testutil.ScenarioFiles())
	faulty := testutil.NewFaultyFs(base)
	faulty.FailOpen("/root/folder2", fs.ErrPermission)

	m, err := matcher.Compile([]string{"**/*.txt"}, nil, true)
	require.NoError(t, err)

	results, err := m.EnumerateUnder(faulty, "/root", matcher.EnumerateOptions{IgnoreInaccessible: true, MaxDepth: -1})
	require.NoError(t, err)
	assert.Equal(t, []models.MatchResult{
		{Path: "folder1/a.txt", Stem: "folder1/a.txt"},
		{Path: "folder3/c.txt", Stem: "folder3/c.txt"},
	}, results)

	results, err = m.EnumerateUnder(faulty, "/root", matcher.EnumerateOptions{MaxDepth: -1})
	var enumeration *errors.EnumerationError
	require.True(t, errors.As(err, &enumeration))
	assert.Len(t, results, 1)

	_, err = m.EnumerateUnder(base, "/missing", matcher.EnumerateOptions{IgnoreInaccessible: true, MaxDepth: -1})
	assert.True(t, errors.As(err, &enumeration))
}
