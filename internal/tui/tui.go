// Package tui provides a Bubble Tea operator console for the signage viewer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/signage-viewer/internal/player"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

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

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1D1D1D")).
			Background(lipgloss.Color("#F8B500")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// maxLogs is how many log lines the console keeps.
const maxLogs = 10

// StatusSource reports the playback position.
type StatusSource interface {
	Status() player.Status
}

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Time    time.Time
	Message string
	Level   player.Level
}

// Model is the Bubble Tea model for the console.
type Model struct {
	source  StatusSource
	events  <-chan player.Event
	done    <-chan error
	cancel  context.CancelFunc
	spinner spinner.Model
	bar     progress.Model

	status  player.Status
	logs    []LogEntry
	verbose bool
	stopped bool
	err     error

	width  int
	height int
}

// NewModel creates a console that polls source and shows events.
// cancel stops playback when the operator quits. done receives the
// result of the playback loop.
func NewModel(source StatusSource, events <-chan player.Event, done <-chan error, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 50

	return Model{
		source:  source,
		events:  events,
		done:    done,
		cancel:  cancel,
		spinner: sp,
		bar:     bar,
		logs:    make([]LogEntry, 0, maxLogs),
	}
}

// Message types
type (
	// EventMsg carries one controller event.
	EventMsg struct {
		Event player.Event
	}

	// StoppedMsg is sent when the playback loop returns.
	StoppedMsg struct {
		Err error
	}

	// TickMsg is for periodic status updates.
	TickMsg struct{}
)

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tickStatus(), m.waitForEvent(), m.waitForStop())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit

		case "v":
			m.verbose = !m.verbose
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case EventMsg:
		cmds = append(cmds, m.waitForEvent())
		if msg.Event.Level == player.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Time:    time.Now(),
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case StoppedMsg:
		m.stopped = true
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}

	case TickMsg:
		if m.source != nil {
			m.status = m.source.Status()
		}
		if !m.stopped {
			cmds = append(cmds, m.tickStatus())
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) tickStatus() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg{Event: e}
	}
}

func (m Model) waitForStop() tea.Cmd {
	if m.done == nil {
		return nil
	}
	done := m.done
	return func() tea.Msg {
		return StoppedMsg{Err: <-done}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Signage Viewer"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Playback console"))
	b.WriteString("\n\n")

	if m.stopped {
		b.WriteString(m.viewStopped())
	} else {
		b.WriteString(m.viewPlaying())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewPlaying() string {
	var b strings.Builder
	st := m.status

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(stateLabel(st.State)))
	if st.NightMode {
		b.WriteString(" ")
		b.WriteString(badgeStyle.Render("night mode"))
	}
	b.WriteString("\n\n")

	if st.Path != "" {
		b.WriteString(successStyle.Render(fmt.Sprintf("  ▶ %s", filepath.Base(st.Path))))
		b.WriteString("\n\n")
	}

	if st.Total > 0 {
		b.WriteString(m.bar.ViewAs(float64(st.Index+1) / float64(st.Total)))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf(
			"Item: %d/%d | Images: %d | Videos: %d",
			st.Index+1,
			st.Total,
			st.Images,
			st.Videos,
		)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewStopped() string {
	if m.err != nil {
		return errorStyle.Render("✗ Playback failed:") + "\n\n  " + m.err.Error() + "\n"
	}
	return boxStyle.Render("Playback stopped") + "\n"
}

func stateLabel(s player.State) string {
	switch s {
	case player.StateShowingImage:
		return "Showing image"
	case player.StateShowingVideo:
		return "Playing video"
	case player.StateBlackScreen:
		return "Black screen"
	default:
		return "Waiting for media"
	}
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case player.LevelError:
			style = errorStyle
			prefix = "✗"
		case player.LevelWarning:
			style = warningStyle
			prefix = "!"
		case player.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		stamp := log.Time.Format("15:04:05")
		b.WriteString(style.Render(prefix + " " + stamp + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	if m.stopped {
		return "q: quit"
	}
	verbose := "v: verbose"
	if m.verbose {
		verbose = "v: quiet"
	}
	return verbose + " • q: quit"
}

// Run plays with opts and shows the console until the operator quits.
func Run(ctx context.Context, opts player.Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan player.Event, 64)
	forward := opts.OnEvent
	opts.OnEvent = func(e player.Event) {
		if forward != nil {
			forward(e)
		}
		select {
		case events <- e:
		default:
			// Drop when the console falls behind.
		}
	}

	controller := player.New(opts)
	done := make(chan error, 1)
	result := make(chan error, 1)
	go func() {
		err := controller.Run(ctx)
		done <- err
		result <- err
	}()

	p := tea.NewProgram(NewModel(controller, events, done, cancel), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	cancel()

	runErr := <-result
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return runErr
}
