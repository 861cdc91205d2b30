package patterns

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cheerioskun/globninja/internal/messages"
)

var (
	primaryColor   = lipgloss.Color("205")
	secondaryColor = lipgloss.Color("240")
	includeColor   = lipgloss.Color("46")
	ignoreColor    = lipgloss.Color("196")
	warningColor   = lipgloss.Color("214")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Italic(true).
			Padding(0, 1)

	editInputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	selectedPatternStyle = lipgloss.NewStyle().
				Background(primaryColor).
				Foreground(lipgloss.Color("0")).
				Padding(0, 1)

	patternStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// Model edits the include and ignore globs of the running query. Every
// change that leaves the query valid emits a messages.QueryChangedMsg.
type Model struct {
	patterns []Pattern

	cursor    int
	editMode  bool
	editInput textinput.Model
	editIndex int // -1 while adding
	newKind   Kind

	focused bool
	width   int
	height  int

	caseInsensitive bool
	matched         []string
}

// NewModel creates an editor seeded with the given globs
func NewModel(include, ignore []string, caseInsensitive bool) *Model {
	input := textinput.New()
	input.Placeholder = "Enter glob pattern..."
	input.CharLimit = 256

	m := &Model{
		editInput:       input,
		editIndex:       -1,
		newKind:         IncludeKind,
		width:           40,
		height:          20,
		caseInsensitive: caseInsensitive,
	}
	for _, text := range include {
		m.patterns = append(m.patterns, newPattern(text, IncludeKind))
	}
	for _, text := range ignore {
		m.patterns = append(m.patterns, newPattern(text, IgnoreKind))
	}
	return m
}

// Update handles key input while the editor is focused
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.editMode {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "enter":
				return m.confirmEdit()
			case "esc":
				return m.cancelEdit(), nil
			}
		}
		m.editInput, cmd = m.editInput.Update(msg)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		m.moveCursorUp()
	case "down", "j":
		m.moveCursorDown()
	case "a":
		m.newKind = IncludeKind
		m.startAddPattern()
	case "A", "i":
		m.newKind = IgnoreKind
		m.startAddPattern()
	case "e", "enter":
		if m.hasPatternAtCursor() {
			m.startEditPattern()
		} else {
			m.newKind = IncludeKind
			m.startAddPattern()
		}
	case "t":
		if m.hasPatternAtCursor() {
			m.toggleKind()
			return m, m.emitQueryChangedCmd()
		}
	case "d", "delete":
		return m, m.deletePattern()
	}

	return m, nil
}

// View renders the editor
func (m *Model) View() string {
	if m.editMode {
		return m.renderEditMode()
	}
	return m.renderNormalMode()
}

func (m *Model) Focus() {
	m.focused = true
}

func (m *Model) Blur() {
	m.focused = false
	if m.editMode {
		m.cancelEdit()
	}
}

func (m *Model) IsFocused() bool {
	return m.focused
}

// IsEditing reports whether keystrokes are going to the text input
func (m *Model) IsEditing() bool {
	return m.editMode
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetMatched refreshes the per-pattern match counts from the relative paths
// the current query produced
func (m *Model) SetMatched(paths []string) {
	m.matched = paths
	m.countMatches()
}

// AddMatched counts a single newly streamed path
func (m *Model) AddMatched(rel string) {
	m.matched = append(m.matched, rel)
	for i := range m.patterns {
		p := &m.patterns[i]
		if p.Valid && p.Kind == IncludeKind && p.matches(rel, m.caseInsensitive) {
			p.MatchCount++
		}
	}
}

// Patterns returns the valid include globs in order
func (m *Model) Patterns() []string {
	return m.textsOf(IncludeKind)
}

// IgnorePatterns returns the valid ignore globs in order
func (m *Model) IgnorePatterns() []string {
	return m.textsOf(IgnoreKind)
}

// Valid reports whether every pattern in the editor compiles
func (m *Model) Valid() bool {
	for _, p := range m.patterns {
		if !p.Valid {
			return false
		}
	}
	return true
}

func (m *Model) textsOf(kind Kind) []string {
	texts := make([]string, 0, len(m.patterns))
	for _, p := range m.patterns {
		if p.Valid && p.Kind == kind {
			texts = append(texts, p.Text)
		}
	}
	return texts
}

func (m *Model) renderNormalMode() string {
	title := "Patterns"
	header := headerStyle.Foreground(primaryColor).Render(title)
	if m.focused {
		header = headerStyle.
			Foreground(primaryColor).
			Background(lipgloss.Color("235")).
			Render(title + " *")
	}

	help := ""
	if m.focused {
		help = helpStyle.Render(strings.Join([]string{
			"↑/↓: Navigate",
			"a: Add Include",
			"A: Add Ignore",
			"e: Edit",
			"t: Toggle",
			"d: Delete",
		}, " • "))
	}

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(help)
	if contentHeight < 1 {
		contentHeight = 1
	}

	content := lipgloss.NewStyle().
		Height(contentHeight).
		Render(m.renderPatterns(contentHeight))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, help)
}

func (m *Model) renderEditMode() string {
	title := fmt.Sprintf("Edit %s Pattern", m.newKind)
	if m.editIndex == -1 {
		title = fmt.Sprintf("Add %s Pattern", m.newKind)
	}

	header := headerStyle.Foreground(primaryColor).Render(title)
	input := editInputStyle.Render(m.editInput.View())
	help := helpStyle.Render("Enter: Confirm • Esc: Cancel")

	return lipgloss.JoinVertical(lipgloss.Left, header, input, help)
}

func (m *Model) renderPatterns(maxHeight int) string {
	if len(m.patterns) == 0 {
		empty := "No patterns, every file matches"
		if m.focused {
			empty += " (press 'a' to add one)"
		}
		return lipgloss.NewStyle().
			Foreground(secondaryColor).
			Italic(true).
			Render(empty)
	}

	start, end := 0, len(m.patterns)
	if maxHeight > 0 && len(m.patterns) > maxHeight {
		if m.cursor >= maxHeight {
			start = m.cursor - maxHeight + 1
		}
		end = start + maxHeight
	}

	var lines []string
	if start > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(secondaryColor).Render("↑ ..."))
	}
	for i := start; i < end; i++ {
		lines = append(lines, m.renderPattern(m.patterns[i], m.focused && i == m.cursor))
	}
	if end < len(m.patterns) {
		lines = append(lines, lipgloss.NewStyle().Foreground(secondaryColor).Render("↓ ..."))
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderPattern(p Pattern, selected bool) string {
	sign, color := "+", includeColor
	if p.Kind == IgnoreKind {
		sign, color = "-", ignoreColor
	}

	status := "✓"
	if !p.Valid {
		status = "✗"
		color = warningColor
	}

	text := p.Text
	maxText := m.width - 16
	if maxText < 10 {
		maxText = 10
	}
	if len(text) > maxText {
		text = text[:maxText-3] + "..."
	}

	info := ""
	switch {
	case !p.Valid:
		info = " (" + p.Error + ")"
	case p.Kind == IncludeKind:
		info = fmt.Sprintf(" (%d)", p.MatchCount)
	}

	content := fmt.Sprintf("%s %s %s%s", sign, status, text, info)
	if selected {
		return selectedPatternStyle.Render(content)
	}
	return patternStyle.Foreground(color).Render(content)
}

func (m *Model) hasPatternAtCursor() bool {
	return m.cursor >= 0 && m.cursor < len(m.patterns)
}

func (m *Model) moveCursorUp() {
	if m.cursor > 0 {
		m.cursor--
	} else if len(m.patterns) > 0 {
		m.cursor = len(m.patterns) - 1
	}
}

func (m *Model) moveCursorDown() {
	if len(m.patterns) == 0 {
		m.cursor = 0
		return
	}
	if m.cursor < len(m.patterns)-1 {
		m.cursor++
	} else {
		m.cursor = 0
	}
}

func (m *Model) startAddPattern() {
	m.editMode = true
	m.editIndex = -1
	m.editInput.SetValue("")
	m.editInput.Focus()
}

func (m *Model) startEditPattern() {
	p := m.patterns[m.cursor]
	m.editMode = true
	m.editIndex = m.cursor
	m.newKind = p.Kind
	m.editInput.SetValue(p.Text)
	m.editInput.Focus()
}

func (m *Model) confirmEdit() (*Model, tea.Cmd) {
	value := strings.TrimSpace(m.editInput.Value())
	if value == "" {
		return m.cancelEdit(), nil
	}

	p := newPattern(value, m.newKind)
	if m.editIndex == -1 {
		m.patterns = append(m.patterns, p)
		m.cursor = len(m.patterns) - 1
	} else {
		m.patterns[m.editIndex] = p
	}
	m.cancelEdit()

	if !p.Valid {
		return m, nil
	}
	return m, m.emitQueryChangedCmd()
}

func (m *Model) cancelEdit() *Model {
	m.editMode = false
	m.editIndex = -1
	m.editInput.Blur()
	m.editInput.SetValue("")
	return m
}

func (m *Model) toggleKind() {
	p := &m.patterns[m.cursor]
	if p.Kind == IncludeKind {
		p.Kind = IgnoreKind
	} else {
		p.Kind = IncludeKind
	}
	p.MatchCount = 0
}

func (m *Model) deletePattern() tea.Cmd {
	if !m.hasPatternAtCursor() {
		return nil
	}

	m.patterns = append(m.patterns[:m.cursor], m.patterns[m.cursor+1:]...)
	if m.cursor >= len(m.patterns) && len(m.patterns) > 0 {
		m.cursor = len(m.patterns) - 1
	} else if len(m.patterns) == 0 {
		m.cursor = 0
	}

	return m.emitQueryChangedCmd()
}

func (m *Model) countMatches() {
	for i := range m.patterns {
		p := &m.patterns[i]
		p.MatchCount = 0
		if !p.Valid || p.Kind != IncludeKind {
			continue
		}
		for _, rel := range m.matched {
			if p.matches(rel, m.caseInsensitive) {
				p.MatchCount++
			}
		}
	}
}

// emitQueryChangedCmd publishes the current valid globs
func (m *Model) emitQueryChangedCmd() tea.Cmd {
	include, ignore := m.Patterns(), m.IgnorePatterns()
	return func() tea.Msg {
		return messages.QueryChangedMsg{
			Patterns:       include,
			IgnorePatterns: ignore,
		}
	}
}
