package models_test

import (
	"path/filepath"
	"testing"

	"github.com/cheerioskun/globninja/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestMatchSetAddDeduplicates(t *testing.T) {
	t.Parallel()

	ms := models.NewMatchSet("/base")
	assert.True(t, ms.IsEmpty())

	assert.True(t, ms.Add(models.MatchResult{Path: "a/b.txt", Stem: "b.txt"}))
	assert.True(t, ms.Add(models.MatchResult{Path: "c.txt"}))
	assert.False(t, ms.Add(models.MatchResult{Path: "a/b.txt"}))

	assert.Equal(t, 2, ms.Len())
	assert.True(t, ms.Contains("c.txt"))
	assert.False(t, ms.Contains("missing"))

	got, ok := ms.Get("a/b.txt")
	assert.True(t, ok)
	assert.Equal(t, "b.txt", got.Stem)

	assert.Equal(t, []string{"a/b.txt", "c.txt"}, ms.Paths())
	assert.Equal(t, []string{filepath.Join("/base", "a", "b.txt"), filepath.Join("/base", "c.txt")}, ms.FullPaths())
	assert.Len(t, ms.Resolved(), 2)
}

func TestMatchSetCloneIsIndependent(t *testing.T) {
	t.Parallel()

	ms := models.NewMatchSet("/base")
	ms.Add(models.MatchResult{Path: "one"})

	clone := ms.Clone()
	clone.Add(models.MatchResult{Path: "two"})

	assert.Equal(t, 1, ms.Len())
	assert.Equal(t, 2, clone.Len())
	assert.True(t, clone.Contains("one"))
}

func TestMatchSetZeroValue(t *testing.T) {
	t.Parallel()

	var ms models.MatchSet
	assert.False(t, ms.Contains("x"))
	assert.True(t, ms.Add(models.MatchResult{Path: "x"}))
	assert.True(t, ms.Contains("x"))
}
