package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/session"
	"github.com/desertthunder/vidstyle/internal/shared"
	tu "github.com/desertthunder/vidstyle/internal/testing"
)

func newTestModel(t *testing.T) (*Model, *session.Controller, *tu.ManualScheduler) {
	t.Helper()

	scheduler := tu.NewManualScheduler()
	ctrl, err := session.New(session.Options{ID: "tui", Previews: tu.NewFakePreviews(), Scheduler: scheduler})
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	t.Cleanup(func() { ctrl.Close() })

	m := NewModel(ctrl)
	t.Cleanup(m.Close)
	return m, ctrl, scheduler
}

func press(m *Model, keys string) tea.Cmd {
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte(tu.MP4Header), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStyleSelection(t *testing.T) {
	m, ctrl, _ := newTestModel(t)

	if m.State() != StyleListView {
		t.Fatalf("expected style list view, got %v", m.State())
	}
	if !strings.Contains(m.View(), "Cinematic Hero") {
		t.Error("style list should render preset titles")
	}

	press(m, "down")
	press(m, "enter")

	if got := ctrl.Snapshot().StyleID(); got != models.StyleAction {
		t.Errorf("expected action selected, got %q", got)
	}
	if m.State() != FileInputView {
		t.Errorf("expected file input view, got %v", m.State())
	}
	if !strings.Contains(m.View(), "Action Style") {
		t.Error("file input view should show the selected style")
	}

	press(m, "esc")
	if m.State() != StyleListView {
		t.Errorf("esc should return to style list, got %v", m.State())
	}
}

func TestLoadMediaAndTransform(t *testing.T) {
	m, ctrl, scheduler := newTestModel(t)

	press(m, "enter")
	m.input.SetValue(" '" + writeVideo(t) + "' ")

	cmd := press(m, "enter")
	if cmd == nil {
		t.Fatal("expected load command")
	}
	m.Update(cmd())

	if m.Err() != nil {
		t.Fatalf("unexpected error: %v", m.Err())
	}
	if m.State() != TransformView {
		t.Fatalf("expected transform view, got %v", m.State())
	}

	view := m.View()
	for _, want := range []string{"clip.mp4", "video/mp4", "Transform with Cinematic Hero", "Effects Applied:", "Deep shadows"} {
		if !strings.Contains(view, want) {
			t.Errorf("transform view missing %q", want)
		}
	}

	press(m, "t")
	if !ctrl.Snapshot().Processing {
		t.Fatal("expected processing after t")
	}
	if !strings.Contains(m.View(), "Transforming...") {
		t.Error("expected Transforming... label")
	}

	press(m, "t")
	if !errors.Is(m.Err(), shared.ErrProcessing) {
		t.Errorf("second start: expected ErrProcessing, got %v", m.Err())
	}

	scheduler.FireN(50)
	m.Update(snapshotMsg(ctrl.Snapshot()))

	if snap := m.Snapshot(); snap.Progress != 100 || snap.Processing {
		t.Errorf("expected completed snapshot, got %+v", snap)
	}
	if !strings.Contains(m.View(), "Transform complete") {
		t.Error("expected completion line")
	}

	press(m, "c")
	if m.State() != FileInputView {
		t.Errorf("clear should return to file input, got %v", m.State())
	}
	if ctrl.Snapshot().Media != nil {
		t.Error("media should be cleared")
	}
}

func TestLoadMediaErrors(t *testing.T) {
	m, ctrl, _ := newTestModel(t)
	press(m, "enter")

	t.Run("missing file", func(t *testing.T) {
		m.input.SetValue(filepath.Join(t.TempDir(), "missing.mp4"))
		m.Update(press(m, "enter")())

		if m.Err() == nil || m.State() != FileInputView {
			t.Errorf("expected error on file input view, got %v in %v", m.Err(), m.State())
		}
	})

	t.Run("not a video", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		os.WriteFile(path, []byte("hello"), 0644)
		m.input.SetValue(path)
		m.Update(press(m, "enter")())

		if !errors.Is(m.Err(), shared.ErrUnsupportedMedia) {
			t.Errorf("expected ErrUnsupportedMedia, got %v", m.Err())
		}
		if ctrl.Snapshot().Media != nil {
			t.Error("rejected file should not be selected")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		m.input.SetValue("   ")
		if cmd := press(m, "enter"); cmd != nil {
			t.Error("empty path should not load")
		}
	})
}

func TestWaitForChange(t *testing.T) {
	m, ctrl, _ := newTestModel(t)

	wait := m.Init()
	if err := ctrl.SelectStyle(models.StyleRealistic); err != nil {
		t.Fatal(err)
	}

	msg, ok := wait().(Msg)
	if !ok || msg.kind != MsgSnapshot {
		t.Fatalf("expected snapshot message, got %#v", msg)
	}
	_, next := m.Update(msg)
	if m.Snapshot().StyleID() != models.StyleRealistic {
		t.Errorf("expected realistic, got %q", m.Snapshot().StyleID())
	}

	ctrl.Close()
	if msg := next().(Msg); msg.kind != MsgSessionClosed {
		t.Errorf("expected session closed message, got %v", msg.kind)
	}
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  /tmp/a.mp4 ", "/tmp/a.mp4"},
		{"'/tmp/my clip.mp4'", "/tmp/my clip.mp4"},
		{`"/tmp/b.mov"`, "/tmp/b.mov"},
		{`'/tmp/c.mp4"`, `'/tmp/c.mp4"`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cleanPath(tt.in); got != tt.want {
			t.Errorf("cleanPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
