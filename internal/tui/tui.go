// Package tui provides a Bubble Tea terminal user interface for
// rednote-downloader.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/askoura/rednote-downloader/internal/config"
	"github.com/askoura/rednote-downloader/internal/ledger"
	"github.com/askoura/rednote-downloader/internal/pipeline"
	"github.com/askoura/rednote-downloader/internal/progress"
	"github.com/askoura/rednote-downloader/internal/watch"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	watchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateWorking
	StateWatching
)

const maxLogLines = 200

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	settings  *config.Settings
	pipe      *pipeline.Pipeline
	monitor   *watch.Monitor
	events    chan progress.Event
	logs      []progress.Event

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
}

type progressMsg progress.Event

type extractDoneMsg struct{ posts int }

type watchStoppedMsg struct{}

// NewModel creates a new TUI model around an existing pipeline.
func NewModel(settings *config.Settings, pipe *pipeline.Pipeline, events chan progress.Event) Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.xiaohongshu.com/explore/... (or paste anything containing links)"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 70

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		settings:  settings,
		pipe:      pipe,
		events:    events,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForEvent(m.events))
}

func waitForEvent(ch chan progress.Event) tea.Cmd {
	return func() tea.Msg {
		return progressMsg(<-ch)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case progressMsg:
		m.logs = append(m.logs, progress.Event(msg))
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		return m, waitForEvent(m.events)

	case extractDoneMsg:
		if m.state == StateWorking {
			m.state = StateInput
			m.textInput.Focus()
		}
		return m, nil

	case watchStoppedMsg:
		m.monitor = nil
		m.state = StateInput
		m.textInput.Focus()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.shutdown()
			return m, tea.Quit

		case "ctrl+v":
			if text, err := clipboard.ReadAll(); err == nil {
				m.textInput.SetValue(strings.TrimSpace(text))
			}
			return m, nil

		case "ctrl+w":
			return m.toggleWatch()

		case "enter":
			if m.state != StateInput || strings.TrimSpace(m.textInput.Value()) == "" {
				break
			}
			text := m.textInput.Value()
			m.textInput.SetValue("")
			m.state = StateWorking
			return m, m.startExtract(text)
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) startExtract(text string) tea.Cmd {
	ctx := m.ctx
	pipe := m.pipe
	opts := pipeline.Options{Download: true, Efficient: m.settings.EfficientMode}
	return func() tea.Msg {
		posts := pipe.Extract(ctx, text, opts)
		return extractDoneMsg{posts: len(posts)}
	}
}

func (m Model) toggleWatch() (tea.Model, tea.Cmd) {
	if m.monitor != nil {
		m.monitor.Stop()
		return m, nil
	}
	if m.state != StateInput {
		return m, nil
	}

	monitor := m.pipe.NewMonitor(pipeline.Options{Download: true, Efficient: m.settings.EfficientMode})
	m.monitor = monitor
	m.state = StateWatching
	m.textInput.Blur()

	ctx := m.ctx
	return m, func() tea.Msg {
		monitor.Run(ctx)
		return watchStoppedMsg{}
	}
}

func (m *Model) shutdown() {
	if m.monitor != nil {
		m.monitor.Stop()
	}
	m.cancel()
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("RedNote Downloader"))
	b.WriteString("\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.textInput.View())
		b.WriteString("\n")
	case StateWorking:
		b.WriteString(fmt.Sprintf("%s Working...", m.spinner.View()))
		b.WriteString("\n")
	case StateWatching:
		b.WriteString(watchStyle.Render(fmt.Sprintf("%s Watching clipboard: copy post links, or copy %q to stop", m.spinner.View(), watch.StopCommand)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderLogs())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: download • ctrl+v: paste • ctrl+w: toggle watch • esc: quit"))

	return b.String()
}

func (m Model) renderLogs() string {
	visible := 12
	if m.height > 20 {
		visible = m.height - 8
	}
	logs := m.logs
	if len(logs) > visible {
		logs = logs[len(logs)-visible:]
	}

	var lines []string
	for _, e := range logs {
		var style lipgloss.Style
		switch e.Level {
		case progress.LevelError:
			style = errorStyle
		case progress.LevelWarning:
			style = warningStyle
		case progress.LevelSuccess:
			style = successStyle
		case progress.LevelVerbose:
			style = dimStyle
		default:
			style = infoStyle
		}
		lines = append(lines, style.Render(e.Message))
	}
	return strings.Join(lines, "\n")
}

// Run opens the ledger, builds the pipeline, and runs the TUI until quit.
func Run(settings *config.Settings) error {
	led, err := ledger.Open(settings.LedgerPath)
	if err != nil {
		return err
	}
	defer led.Close()

	events := make(chan progress.Event, 256)
	onProgress := progress.Func(func(e progress.Event) {
		select {
		case events <- e:
		default:
			// UI is backed up; drop rather than stall downloads.
		}
	})

	pipe := pipeline.New(settings, led, onProgress)

	p := tea.NewProgram(NewModel(settings, pipe, events), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
