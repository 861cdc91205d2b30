package histogram

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cheerioskun/globninja/internal/messages"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	emptyBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111"))
)

// rootBucket collects matches directly under the search root
const rootBucket = "."

// Bin is the number of matches below one top-level directory
type Bin struct {
	Dir   string
	Count int
}

// Model shows how the matches of the running query spread over the
// top-level directories of the search root
type Model struct {
	counts map[string]int
	total  int

	width       int
	height      int
	maxBarWidth int
}

// NewModel creates an empty histogram
func NewModel() *Model {
	return &Model{
		counts:      make(map[string]int),
		width:       40,
		height:      10,
		maxBarWidth: 20,
	}
}

// Update counts streamed matches
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if found, ok := msg.(messages.MatchFoundMsg); ok {
		m.Add(found.Match.Path)
	}
	return m, nil
}

// Add counts one slash-separated relative path
func (m *Model) Add(rel string) {
	dir := rootBucket
	if i := strings.IndexByte(rel, '/'); i > 0 {
		dir = rel[:i]
	}
	m.counts[dir]++
	m.total++
}

// Reset clears every bin
func (m *Model) Reset() {
	m.counts = make(map[string]int)
	m.total = 0
}

// Bins returns the bins by descending count, then by name
func (m *Model) Bins() []Bin {
	bins := make([]Bin, 0, len(m.counts))
	for dir, count := range m.counts {
		bins = append(bins, Bin{Dir: dir, Count: count})
	}
	sort.Slice(bins, func(i, j int) bool {
		if bins[i].Count != bins[j].Count {
			return bins[i].Count > bins[j].Count
		}
		return bins[i].Dir < bins[j].Dir
	})
	return bins
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	// label and count take about 20 columns
	m.maxBarWidth = width - 20
	if m.maxBarWidth < 5 {
		m.maxBarWidth = 5
	}
}

// View renders the histogram
func (m *Model) View() string {
	parts := []string{titleStyle.Render("Matches by Directory"), m.renderBars()}
	if m.total > 0 {
		parts = append(parts, statusStyle.Render(fmt.Sprintf("%d matches in %d directories", m.total, len(m.counts))))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderBars() string {
	bins := m.Bins()
	if len(bins) == 0 {
		return emptyBarStyle.Render("No data")
	}

	available := m.height - 3 // title and status
	if available < 1 {
		available = 1
	}
	hidden := 0
	if len(bins) > available {
		hidden = len(bins) - available + 1
		bins = bins[:available-1]
	}

	peak := bins[0].Count
	lines := make([]string, 0, len(bins)+1)
	for _, bin := range bins {
		length := bin.Count * m.maxBarWidth / peak
		lines = append(lines, fmt.Sprintf("%s %s %s",
			labelStyle.Render(fmt.Sprintf("%-12s", truncate(bin.Dir, 12))),
			createBar(length),
			labelStyle.Render(fmt.Sprintf("%d", bin.Count)),
		))
	}
	if hidden > 0 {
		lines = append(lines, emptyBarStyle.Render(fmt.Sprintf("... %d more", hidden)))
	}
	return strings.Join(lines, "\n")
}

func createBar(length int) string {
	if length <= 0 {
		return emptyBarStyle.Render("▏")
	}
	return barStyle.Render(strings.Repeat("█", length))
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-1] + "…"
}
