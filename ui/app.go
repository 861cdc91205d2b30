package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/export"
	"github.com/cheerioskun/globninja/internal/glob"
	"github.com/cheerioskun/globninja/internal/messages"
	"github.com/cheerioskun/globninja/internal/utils"
	exportui "github.com/cheerioskun/globninja/ui/export"
	"github.com/cheerioskun/globninja/ui/histogram"
	"github.com/cheerioskun/globninja/ui/matchlist"
	"github.com/cheerioskun/globninja/ui/patterns"
	"github.com/spf13/afero"
)

// FocusedPanel represents which panel is currently focused
type FocusedPanel int

const (
	PatternsPanel FocusedPanel = iota
	MatchesPanel
)

// Options configures the interactive viewer
type Options struct {
	Patterns       []string
	IgnorePatterns []string
	Timeout        time.Duration // zero disables the per-query timeout
}

// AppModel runs one streaming query at a time and shows its matches as they
// arrive. Editing a pattern closes the running stream and starts a new one.
type AppModel struct {
	glob    *glob.Glob
	options Options
	ctx     context.Context

	stream  *glob.Stream
	query   int
	running bool
	started time.Time
	elapsed time.Duration
	lastErr error

	patterns  *patterns.Model
	matches   *matchlist.Model
	histogram *histogram.Model
	export    *exportui.Model
	spinner   spinner.Model

	focused  FocusedPanel
	width    int
	height   int
	status   string
	quitting bool
}

// NewAppModel creates the viewer. ctx bounds every query it starts.
func NewAppModel(ctx context.Context, g *glob.Glob, fs afero.Fs, opts Options) *AppModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	exportService := export.NewService(fs)
	exportService.SetLogger(utils.GetLogger().Base())

	m := &AppModel{
		glob:     g,
		options:  opts,
		ctx:      ctx,
		patterns:  patterns.NewModel(opts.Patterns, opts.IgnorePatterns, g.CaseInsensitive()),
		matches:   matchlist.NewModel(g.BasePath()),
		histogram: histogram.NewModel(),
		export:    exportui.NewModel(fs, exportService),
		spinner:   s,
		focused:   PatternsPanel,
		width:     80,
		height:    24,
		status:    "Ready",
	}
	m.patterns.Focus()
	return m
}

// Init implements tea.Model
func (m *AppModel) Init() tea.Cmd {
	return m.startQuery(m.options.Patterns, m.options.IgnorePatterns)
}

// Update implements tea.Model
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case messages.MatchFoundMsg:
		if msg.Query != m.query {
			return m, nil
		}
		m.matches, _ = m.matches.Update(msg)
		m.histogram, _ = m.histogram.Update(msg)
		m.patterns.AddMatched(msg.Match.Path)
		return m, waitForMatch(m.stream, m.query)

	case messages.StreamDoneMsg:
		if msg.Query != m.query {
			return m, nil
		}
		m.finishQuery(msg.Err)
		return m, nil

	case messages.QueryChangedMsg:
		return m, m.restart(msg.Patterns, msg.IgnorePatterns)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case exportui.CompletedMsg:
		m.export, cmd = m.export.Update(msg)
		if msg.Err != nil {
			m.status = "Export failed"
		} else {
			m.status = fmt.Sprintf("Exported %d files", msg.Summary.FileCount)
		}
		return m, cmd

	case exportui.CancelledMsg:
		m.status = "Export cancelled"
		return m, nil

	case tea.KeyMsg:
		if m.export.IsVisible() {
			m.export, cmd = m.export.Update(msg)
			return m, cmd
		}

		if !m.patterns.IsEditing() {
			switch msg.String() {
			case "ctrl+c", "q":
				m.quitting = true
				m.closeStream()
				return m, tea.Quit

			case "tab", "shift+tab":
				m.toggleFocus()
				return m, nil

			case "r":
				return m, m.restart(m.patterns.Patterns(), m.patterns.IgnorePatterns())

			case "ctrl+x":
				if m.running {
					m.closeStream()
					m.finishQuery(errors.Canceled(context.Canceled))
				}
				return m, nil

			case "x":
				m.export.Show(m.matches.Set())
				return m, nil
			}
		} else if msg.String() == "ctrl+c" {
			m.quitting = true
			m.closeStream()
			return m, tea.Quit
		}

		if m.focused == PatternsPanel {
			m.patterns, cmd = m.patterns.Update(msg)
		} else {
			m.matches, cmd = m.matches.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m *AppModel) View() string {
	if m.quitting {
		return "Thanks for using GlobNinja!\n"
	}
	if m.export.IsVisible() {
		return m.export.View()
	}
	return m.renderLayout()
}

// Matched returns the number of matches the current query has delivered
func (m *AppModel) Matched() int {
	return m.matches.Len()
}

// Running reports whether a query is still streaming
func (m *AppModel) Running() bool {
	return m.running
}

// Err returns how the last finished query ended
func (m *AppModel) Err() error {
	return m.lastErr
}

// Close stops the running query, if any
func (m *AppModel) Close() {
	m.closeStream()
}

// restart replaces the running query
func (m *AppModel) restart(patterns, ignorePatterns []string) tea.Cmd {
	m.closeStream()
	m.matches.Reset(m.glob.BasePath())
	m.histogram.Reset()
	m.patterns.SetMatched(nil)
	return m.startQuery(patterns, ignorePatterns)
}

func (m *AppModel) startQuery(patterns, ignorePatterns []string) tea.Cmd {
	if patterns == nil {
		patterns = []string{}
	}

	m.query++
	m.lastErr = nil
	m.elapsed = 0

	var (
		stream *glob.Stream
		err    error
	)
	if m.options.Timeout > 0 {
		stream, err = m.glob.StreamWithTimeout(m.ctx, m.options.Timeout, patterns, ignorePatterns)
	} else {
		stream, err = m.glob.Stream(m.ctx, patterns, ignorePatterns)
	}
	if err != nil {
		m.stream = nil
		m.running = false
		m.lastErr = err
		m.status = "Invalid query"
		utils.Warning("query rejected: %v", err)
		return nil
	}

	m.stream = stream
	m.running = true
	m.started = time.Now()
	m.status = "Searching"
	m.matches.Reset(stream.Root())
	utils.Debug("query %d started under %s", m.query, stream.Root())

	return tea.Batch(m.spinner.Tick, waitForMatch(stream, m.query))
}

func (m *AppModel) finishQuery(err error) {
	m.running = false
	m.lastErr = err
	m.elapsed = time.Since(m.started)

	switch {
	case err == nil:
		m.status = "Done"
	case errors.IsCanceled(err):
		m.status = "Canceled"
	default:
		m.status = "Failed"
		utils.Error("query %d failed: %v", m.query, err)
	}
}

// closeStream stops the current producer. Pending waitForMatch commands
// return a StreamDoneMsg for a stale query and are dropped.
func (m *AppModel) closeStream() {
	if m.stream == nil {
		return
	}
	if err := m.stream.Close(); err != nil && !errors.IsCanceled(err) {
		utils.Debug("closing query %d: %v", m.query, err)
	}
	m.stream = nil
	m.query++
}

// waitForMatch reads a single item from the stream off the UI goroutine
func waitForMatch(stream *glob.Stream, query int) tea.Cmd {
	if stream == nil {
		return nil
	}
	return func() tea.Msg {
		if stream.Next() {
			return messages.MatchFoundMsg{
				Query:    query,
				Match:    stream.Match(),
				FullPath: stream.Path(),
			}
		}
		return messages.StreamDoneMsg{Query: query, Err: stream.Err()}
	}
}

func (m *AppModel) toggleFocus() {
	if m.focused == PatternsPanel {
		m.focused = MatchesPanel
		m.patterns.Blur()
		m.matches.Focus()
	} else {
		m.focused = PatternsPanel
		m.matches.Blur()
		m.patterns.Focus()
	}
}

func (m *AppModel) resize() {
	_, contentHeight, leftWidth, rightWidth := m.dimensions()
	patternsHeight, histogramHeight := splitLeft(contentHeight)
	m.patterns.SetSize(leftWidth-4, patternsHeight-2)
	m.histogram.SetSize(leftWidth-4, histogramHeight-2)
	m.matches.SetSize(rightWidth-4, contentHeight-2)
	m.export.SetSize(m.width, m.height)
}

func (m *AppModel) dimensions() (headerHeight, contentHeight, leftWidth, rightWidth int) {
	headerHeight = 3
	statusHeight := 3
	contentHeight = m.height - headerHeight - statusHeight
	if contentHeight < 4 {
		contentHeight = 4
	}
	leftWidth = m.width * 2 / 5
	rightWidth = m.width - leftWidth
	return headerHeight, contentHeight, leftWidth, rightWidth
}

// splitLeft divides the left column between the pattern editor and the
// histogram
func splitLeft(height int) (patterns, histogram int) {
	patterns = height * 3 / 5
	return patterns, height - patterns
}

func (m *AppModel) renderLayout() string {
	_, contentHeight, leftWidth, rightWidth := m.dimensions()

	patternsHeight, histogramHeight := splitLeft(contentHeight)
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.panelStyle(PatternsPanel, leftWidth, patternsHeight).Render(m.patterns.View()),
		m.panelStyle(-1, leftWidth, histogramHeight).Render(m.histogram.View()),
	)
	right := m.panelStyle(MatchesPanel, rightWidth, contentHeight).Render(m.matches.View())

	content := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), content, m.renderStatusPanel())
}

func (m *AppModel) renderHeader() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Render("GlobNinja - Live Glob Matcher")

	root := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render(fmt.Sprintf("Root: %s", m.matches.Set().BasePath))

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render("Tab: Switch | r: Rerun | ctrl+x: Stop | x: Export | q: Quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, root, help)
}

func (m *AppModel) renderStatusPanel() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width-2).
		Padding(0, 1)

	state := m.status
	if m.running {
		state = m.spinner.View() + " " + state
	}

	elapsed := m.elapsed
	if m.running {
		elapsed = time.Since(m.started)
	}

	parts := []string{
		fmt.Sprintf("Matches: %d", m.matches.Len()),
		fmt.Sprintf("Elapsed: %s", elapsed.Round(time.Millisecond)),
		fmt.Sprintf("Status: %s", state),
	}
	if m.lastErr != nil && !errors.IsCanceled(m.lastErr) {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render(m.lastErr.Error()))
	}

	return style.Render(strings.Join(parts, " | "))
}

func (m *AppModel) panelStyle(panel FocusedPanel, width, height int) lipgloss.Style {
	borderColor := lipgloss.Color("240")
	if panel == m.focused {
		borderColor = lipgloss.Color("205")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(width-2).
		Height(height-2).
		Padding(0, 1)
}
