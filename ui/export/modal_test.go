package export

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cheerioskun/globninja/internal/export"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/cheerioskun/globninja/internal/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModal(t *testing.T) (*Model, afero.Fs, *models.MatchSet) {
	t.Helper()

	fs := afero.NewMemMapFs()
	testutil.WriteTree(t, fs, "/src", map[string]string{"docs/a.md": "hello"})
	require.NoError(t, fs.MkdirAll("/out", 0755))

	set := models.NewMatchSet("/src")
	set.Add(models.MatchResult{Path: "docs/a.md", Stem: "a.md"})

	m := NewModel(fs, export.NewService(fs))
	m.SetSize(80, 24)
	return m, fs, set
}

func TestModalExportsSnapshot(t *testing.T) {
	m, fs, set := newModal(t)

	m.Show(set)
	require.True(t, m.IsVisible())
	set.Add(models.MatchResult{Path: "docs/late.md"})

	m.input.SetValue("/out/copy")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, stepCopying, m.step)

	done, ok := cmd().(CompletedMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)
	assert.Equal(t, 1, done.Summary.FileCount)

	m.Update(done)
	assert.Equal(t, stepDone, m.step)
	assert.Contains(t, m.View(), "Export Complete")

	exists, err := afero.Exists(fs, "/out/copy/docs/a.md")
	require.NoError(t, err)
	assert.True(t, exists)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.False(t, m.IsVisible())
}

func TestModalRejectsMissingParent(t *testing.T) {
	m, _, set := newModal(t)
	m.Show(set)

	m.input.SetValue("/missing/dir/copy")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, stepDestination, m.step)
	assert.Contains(t, m.notice, "parent directory does not exist")
}

func TestModalEscCancels(t *testing.T) {
	m, _, set := newModal(t)
	m.Show(set)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.IsType(t, CancelledMsg{}, cmd())
	assert.False(t, m.IsVisible())
}
