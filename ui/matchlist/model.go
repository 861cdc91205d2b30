package matchlist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cheerioskun/globninja/internal/messages"
	"github.com/cheerioskun/globninja/internal/models"
)

// Model lists the matches of the running query in arrival order
type Model struct {
	set       *models.MatchSet
	showStems bool

	focused  bool
	width    int
	height   int
	viewport viewport.Model

	titleStyle lipgloss.Style
	pathStyle  lipgloss.Style
	stemStyle  lipgloss.Style
	emptyStyle lipgloss.Style
	infoStyle  lipgloss.Style
}

// NewModel creates an empty match list rooted at basePath
func NewModel(basePath string) *Model {
	vp := viewport.New(40, 6) // resized by SetSize
	vp.SetContent("")

	return &Model{
		set:      models.NewMatchSet(basePath),
		width:    40,
		height:   10,
		viewport: vp,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Margin(0, 0, 1, 0),

		pathStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")),

		stemStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")),

		emptyStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true),

		infoStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Align(lipgloss.Right),
	}
}

// Update appends streamed matches and scrolls on key input while focused
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case messages.MatchFoundMsg:
		if m.set.Add(msg.Match) {
			follow := m.viewport.AtBottom()
			m.updateViewportContent()
			if follow {
				m.viewport.GotoBottom()
			}
		}
		return m, nil

	case tea.KeyMsg:
		if m.focused {
			switch msg.String() {
			case "j", "down":
				m.viewport.LineDown(1)
			case "k", "up":
				m.viewport.LineUp(1)
			case "pgdown", " ":
				m.viewport.ViewDown()
			case "pgup":
				m.viewport.ViewUp()
			case "home", "g":
				m.viewport.GotoTop()
			case "end", "G":
				m.viewport.GotoBottom()
			case "s":
				m.showStems = !m.showStems
				m.updateViewportContent()
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the component
func (m *Model) View() string {
	title := "Matches"
	if m.showStems {
		title += " (stems)"
	}
	if m.focused {
		title += " *"
	}

	var content string
	if m.set.IsEmpty() {
		content = m.emptyStyle.Render("No matches yet")
	} else {
		content = m.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.titleStyle.Render(title), content, m.renderSummary())
}

// Reset drops every match and starts over at basePath
func (m *Model) Reset(basePath string) {
	m.set = models.NewMatchSet(basePath)
	m.viewport.SetContent("")
	m.viewport.GotoTop()
}

// Set returns the matches received so far
func (m *Model) Set() *models.MatchSet {
	return m.set
}

// Len returns the number of matches received so far
func (m *Model) Len() int {
	return m.set.Len()
}

func (m *Model) updateViewportContent() {
	if m.set.IsEmpty() {
		m.viewport.SetContent(m.emptyStyle.Render("No matches yet"))
		return
	}

	maxWidth := m.width - 8
	if maxWidth < 10 {
		maxWidth = 10
	}

	lines := make([]string, 0, m.set.Len())
	for i, match := range m.set.Matches {
		text, style := match.Path, m.pathStyle
		if m.showStems {
			text, style = match.Stem, m.stemStyle
		}
		if len(text) > maxWidth {
			text = "..." + text[len(text)-maxWidth+3:]
		}
		lines = append(lines, fmt.Sprintf("%4d. %s", i+1, style.Render(text)))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) renderSummary() string {
	if m.set.IsEmpty() {
		return ""
	}
	return m.infoStyle.Render(fmt.Sprintf("%d matches • %d/%d",
		m.set.Len(),
		m.viewport.YOffset+1,
		m.set.Len(),
	))
}

func (m *Model) Focus() {
	m.focused = true
}

func (m *Model) Blur() {
	m.focused = false
}

func (m *Model) IsFocused() bool {
	return m.focused
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	// title takes 2 lines, summary 1
	viewportHeight := height - 4
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = viewportHeight

	if !m.set.IsEmpty() {
		m.updateViewportContent()
	}
}
