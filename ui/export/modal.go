package export

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cheerioskun/globninja/internal/export"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/spf13/afero"
)

const modalWidth = 60

type styles struct {
	frame, title, input, detail, hint, failure, success lipgloss.Style
}

func newStyles() styles {
	accent := lipgloss.Color("62")
	margin := lipgloss.NewStyle().Margin(1, 0)

	return styles{
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2).
			Width(modalWidth),
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		input:   lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(accent).Padding(0, 1),
		detail:  margin.Foreground(lipgloss.Color("245")),
		hint:    margin.Foreground(lipgloss.Color("241")).Italic(true),
		failure: margin.Foreground(lipgloss.Color("196")).Bold(true),
		success: margin.Foreground(lipgloss.Color("46")).Bold(true),
	}
}

// step is where the modal is in the export flow
type step int

const (
	stepDestination step = iota
	stepCopying
	stepDone
	stepFailed
)

// Model asks for a destination and copies a snapshot of the matches there
type Model struct {
	input   textinput.Model
	styles  styles
	step    step
	visible bool
	width   int
	height  int

	fs      afero.Fs
	service *export.Service
	set     *models.MatchSet
	preview *export.Summary
	notice  string
}

// CancelledMsg is sent when the modal is dismissed without exporting
type CancelledMsg struct{}

// CompletedMsg carries the outcome of a copy
type CompletedMsg struct {
	Summary *export.Summary
	Err     error
}

// NewModel creates a hidden export modal
func NewModel(fs afero.Fs, service *export.Service) *Model {
	input := textinput.New()
	input.Placeholder = "destination directory"
	input.CharLimit = 256
	input.Width = modalWidth - 10

	return &Model{
		input:   input,
		styles:  newStyles(),
		fs:      fs,
		service: service,
	}
}

// Show opens the modal for a copy of set, so later matches do not change
// what gets exported
func (m *Model) Show(set *models.MatchSet) {
	m.set = set.Clone()
	m.step = stepDestination
	m.visible = true
	m.notice = ""

	dest, err := export.DefaultExportPath(set.BasePath)
	if err != nil {
		dest = "./matches"
	}
	m.input.SetValue(dest)
	m.input.CursorEnd()
	m.input.Focus()

	if m.preview, err = m.service.Summarize(m.set, dest); err != nil {
		m.notice = err.Error()
	}
}

// Hide closes the modal
func (m *Model) Hide() {
	m.visible = false
	m.step = stepDestination
	m.input.Blur()
}

func (m *Model) IsVisible() bool {
	return m.visible
}

// SetSize sets the area the modal is centred in
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
}

func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	if done, ok := msg.(CompletedMsg); ok {
		m.finish(done)
		return m, nil
	}

	key, isKey := msg.(tea.KeyMsg)
	switch m.step {
	case stepCopying:
		return m, nil
	case stepDone, stepFailed:
		if isKey {
			m.Hide()
		}
		return m, nil
	}

	if isKey {
		switch key.String() {
		case "enter":
			return m, m.start()
		case "esc":
			m.Hide()
			return m, func() tea.Msg { return CancelledMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// start validates the destination and kicks off the copy
func (m *Model) start() tea.Cmd {
	dest := strings.TrimSpace(m.input.Value())

	if m.set == nil || m.set.IsEmpty() {
		m.notice = "No matches to export"
		return nil
	}
	if err := export.ValidateExportPath(m.fs, dest); err != nil {
		m.notice = err.Error()
		return nil
	}

	m.notice = ""
	m.step = stepCopying

	set, service := m.set, m.service
	return func() tea.Msg {
		summary, err := service.Export(set, export.Options{DestinationPath: dest, Overwrite: true})
		return CompletedMsg{Summary: summary, Err: err}
	}
}

func (m *Model) finish(done CompletedMsg) {
	if done.Err != nil {
		m.step = stepFailed
		m.notice = fmt.Sprintf("Export failed: %v", done.Err)
		return
	}
	m.step = stepDone
	m.notice = fmt.Sprintf("Exported %d files (%s) to %s",
		done.Summary.FileCount, export.FormatSize(done.Summary.TotalSize), done.Summary.DestinationPath)
}

func (m *Model) View() string {
	if !m.visible {
		return ""
	}

	s := m.styles
	var lines []string

	switch m.step {
	case stepDestination:
		lines = append(lines, s.title.Render("Export Matches"))
		if m.preview != nil {
			lines = append(lines, s.detail.Render(fmt.Sprintf("%d files, %s",
				m.preview.FileCount, export.FormatSize(m.preview.TotalSize))))
		}
		lines = append(lines, "Destination:", s.input.Render(m.input.View()))
		if m.notice != "" {
			lines = append(lines, s.failure.Render(m.notice))
		}
		lines = append(lines, s.hint.Render("enter export · esc cancel"))
	case stepCopying:
		lines = append(lines, s.title.Render("Exporting"), s.detail.Render("Copying matched files..."))
	case stepDone:
		lines = append(lines, s.title.Render("Export Complete"), s.success.Render(m.notice), s.hint.Render("any key to close"))
	case stepFailed:
		lines = append(lines, s.title.Render("Export Failed"), s.failure.Render(m.notice), s.hint.Render("any key to close"))
	}

	box := s.frame.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
