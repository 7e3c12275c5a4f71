package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/signage-viewer/internal/player"
)

type fakeSource struct {
	status player.Status
}

func (f *fakeSource) Status() player.Status { return f.status }

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func TestUpdate_QuitCancelsPlayback(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(key.String(), func(t *testing.T) {
			cancelled := false
			m := NewModel(&fakeSource{}, nil, nil, func() { cancelled = true })

			_, cmd := update(t, m, key)
			if !cancelled {
				t.Error("quit did not cancel playback")
			}
			if cmd == nil {
				t.Fatal("quit returned no command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("quit command does not quit")
			}
		})
	}
}

func TestUpdate_TickPollsStatus(t *testing.T) {
	src := &fakeSource{status: player.Status{
		State:  player.StateShowingImage,
		Index:  1,
		Total:  4,
		Path:   "/srv/media/b.jpg",
		Images: 3,
		Videos: 1,
	}}
	m := NewModel(src, nil, nil, nil)

	m, cmd := update(t, m, TickMsg{})
	if cmd == nil {
		t.Error("tick was not rescheduled")
	}
	if m.status != src.status {
		t.Errorf("status = %+v, want %+v", m.status, src.status)
	}

	view := m.View()
	for _, want := range []string{"Showing image", "b.jpg", "Item: 2/4", "Images: 3", "Videos: 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestUpdate_NightModeBadge(t *testing.T) {
	src := &fakeSource{status: player.Status{State: player.StateBlackScreen, NightMode: true}}
	m, _ := update(t, NewModel(src, nil, nil, nil), TickMsg{})

	view := m.View()
	if !strings.Contains(view, "Black screen") || !strings.Contains(view, "night mode") {
		t.Errorf("view = %s", view)
	}
}

func TestUpdate_EventsFilteredByVerbosity(t *testing.T) {
	m := NewModel(&fakeSource{}, nil, nil, nil)

	m, _ = update(t, m, EventMsg{Event: player.Event{Message: "Showing image a.jpg", Level: player.LevelVerbose}})
	m, _ = update(t, m, EventMsg{Event: player.Event{Message: "Skipping x.jpg", Level: player.LevelWarning}})
	if len(m.logs) != 1 || m.logs[0].Message != "Skipping x.jpg" {
		t.Fatalf("logs = %+v, want only the warning", m.logs)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})
	m, _ = update(t, m, EventMsg{Event: player.Event{Message: "Showing image b.jpg", Level: player.LevelVerbose}})
	if len(m.logs) != 2 {
		t.Errorf("verbose event dropped in verbose mode: %+v", m.logs)
	}
}

func TestUpdate_LogsAreBounded(t *testing.T) {
	m := NewModel(&fakeSource{}, nil, nil, nil)
	for i := 0; i < maxLogs+5; i++ {
		m, _ = update(t, m, EventMsg{Event: player.Event{Message: "tick", Level: player.LevelInfo}})
	}
	if len(m.logs) != maxLogs {
		t.Errorf("len(logs) = %d, want %d", len(m.logs), maxLogs)
	}
}

func TestUpdate_Stopped(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"clean", nil, "Playback stopped"},
		{"failed", errors.New("display closed"), "display closed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := update(t, NewModel(&fakeSource{}, nil, nil, nil), StoppedMsg{Err: tt.err})
			if !strings.Contains(m.View(), tt.want) {
				t.Errorf("view missing %q", tt.want)
			}
			if _, cmd := update(t, m, TickMsg{}); cmd != nil {
				if msg := cmd(); msg != nil {
					t.Errorf("tick rescheduled after stop: %T", msg)
				}
			}
		})
	}
}
