package histogram

import (
	"testing"

	"github.com/cheerioskun/globninja/internal/messages"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBinsByTopLevelDirectory(t *testing.T) {
	m := NewModel()
	for _, rel := range []string{"src/a.go", "src/b/c.go", "docs/x.md", "README.md", "src/d.go"} {
		m.Update(messages.MatchFoundMsg{Match: models.MatchResult{Path: rel}})
	}

	assert.Equal(t, []Bin{
		{Dir: "src", Count: 3},
		{Dir: ".", Count: 1},
		{Dir: "docs", Count: 1},
	}, m.Bins())
	assert.Contains(t, m.View(), "5 matches in 3 directories")
}

func TestOverflowIsSummarised(t *testing.T) {
	m := NewModel()
	m.SetSize(40, 5)
	for _, rel := range []string{"a/1", "b/1", "c/1", "d/1", "e/1"} {
		m.Add(rel)
	}

	assert.Contains(t, m.View(), "... 4 more")

	m.Reset()
	assert.Empty(t, m.Bins())
	assert.Contains(t, m.View(), "No data")
}
