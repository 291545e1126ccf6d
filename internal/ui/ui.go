package ui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidstyle/internal/session"
	"github.com/desertthunder/vidstyle/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	StyleListView ViewState = iota
	FileInputView
	TransformView
)

const (
	defaultWidth  = 72
	defaultHeight = 20
	barWidth      = 48
)

// Model represents the TUI application state.
type Model struct {
	ctrl        *session.Controller
	view        ViewState
	width       int
	height      int
	styleList   list.Model
	input       textinput.Model
	bar         progress.Model
	barTheme    string
	snapshot    session.Snapshot
	changes     chan struct{}
	unsubscribe func()
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a TUI model bound to ctrl. The caller owns ctrl and closes it after the program exits.
func NewModel(ctrl *session.Controller) *Model {
	styleList := list.New(styleItems(ctrl.Catalog().All()), list.NewDefaultDelegate(), defaultWidth, defaultHeight)
	styleList.Title = "Choose Your Style"
	styleList.SetFilteringEnabled(false)
	styleList.SetShowHelp(false)

	input := textinput.New()
	input.Placeholder = "/path/to/video.mp4"
	input.Prompt = "› "
	input.CharLimit = 4096
	input.Width = defaultWidth - 4

	m := &Model{
		ctrl:      ctrl,
		view:      StyleListView,
		width:     defaultWidth,
		height:    defaultHeight,
		styleList: styleList,
		input:     input,
		bar:       newBar("", barWidth),
		snapshot:  ctrl.Snapshot(),
		changes:   make(chan struct{}, 1),
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.subscribe()
	return m
}

// subscribe forwards controller notifications into the one-slot change channel.
// The channel is closed once the session is.
func (m *Model) subscribe() {
	var once sync.Once
	m.unsubscribe = m.ctrl.Subscribe(func(ev session.Event) {
		if ev.Kind == session.SessionClosed {
			once.Do(func() { close(m.changes) })
			return
		}
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
}

// Init starts listening for controller changes.
func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.styleList.SetSize(msg.Width-4, max(msg.Height-12, 8))
		m.input.Width = max(msg.Width-8, 20)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case StyleListView:
			return m.handleStyleListKeys(msg)
		case FileInputView:
			return m.handleFileInputKeys(msg)
		case TransformView:
			return m.handleTransformKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSnapshot:
		m.setSnapshot(msg.data.(session.Snapshot))
		return m, m.waitForChange()

	case MsgMediaLoaded:
		data := msg.data.(struct {
			path string
			err  error
		})
		if data.err != nil {
			m.err = fmt.Errorf("could not load %s: %w", data.path, data.err)
			return m, nil
		}
		m.err = nil
		m.input.Reset()
		m.input.Blur()
		m.setSnapshot(m.ctrl.Snapshot())
		m.view = TransformView
		return m, nil

	case MsgSessionClosed:
		return m, tea.Quit
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(palette.title.Render("Video Style Transformer"))
	b.WriteString("\n")
	b.WriteString(palette.help.Render("Transform your videos with AI-powered cinematic effects"))
	b.WriteString("\n\n")

	switch m.view {
	case StyleListView:
		b.WriteString(m.renderStyleList())
	case FileInputView:
		b.WriteString(m.renderFileInput())
	case TransformView:
		b.WriteString(m.renderTransform())
	}

	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(palette.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	return b.String()
}

// State returns the view the model is showing.
func (m *Model) State() ViewState { return m.view }

// Snapshot returns the last snapshot the model rendered.
func (m *Model) Snapshot() session.Snapshot { return m.snapshot }

// Err returns the error currently displayed, if any.
func (m *Model) Err() error { return m.err }

// Close stops listening to the controller.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Model) handleStyleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.snapshot.Media != nil {
			m.view = TransformView
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		item, ok := m.styleList.SelectedItem().(styleItem)
		if !ok {
			return m, nil
		}
		if err := m.ctrl.SelectStyle(item.preset.ID); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.setSnapshot(m.ctrl.Snapshot())
		if m.snapshot.Media != nil {
			m.view = TransformView
			return m, nil
		}
		m.view = FileInputView
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.styleList, cmd = m.styleList.Update(msg)
	return m, cmd
}

func (m *Model) handleFileInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.forceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.input.Blur()
		m.err = nil
		m.view = StyleListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		path := cleanPath(m.input.Value())
		if path == "" {
			return m, nil
		}
		return m, m.loadMedia(path)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleTransformKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.transform):
		m.err = m.ctrl.StartTransform()
	case key.Matches(msg, m.keys.clear):
		if m.err = m.ctrl.ClearMedia(); m.err == nil {
			m.view = FileInputView
			return m, m.input.Focus()
		}
	case key.Matches(msg, m.keys.back):
		m.err = nil
		m.view = StyleListView
	}
	m.setSnapshot(m.ctrl.Snapshot())
	return m, nil
}

// setSnapshot records snap and recolors the bar when the selected style changes.
func (m *Model) setSnapshot(snap session.Snapshot) {
	if snap.Version < m.snapshot.Version {
		return
	}
	m.snapshot = snap
	if snap.Style != nil && snap.Style.Theme != m.barTheme {
		m.barTheme = snap.Style.Theme
		m.bar = newBar(m.barTheme, barWidth)
	}
}

// waitForChange blocks until the controller reports a change, then reads its current snapshot.
func (m *Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return sessionClosedMsg()
		}
		return snapshotMsg(m.ctrl.Snapshot())
	}
}

// loadMedia opens path and hands it to the controller off the update loop.
func (m *Model) loadMedia(path string) tea.Cmd {
	return func() tea.Msg {
		upload, closeFile, err := tasks.OpenUpload(path)
		if err != nil {
			return mediaLoadedMsg(path, err)
		}
		defer closeFile()
		return mediaLoadedMsg(path, m.ctrl.SelectMedia(upload))
	}
}

func (m *Model) renderStyleList() string {
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit}
	if m.snapshot.Media != nil {
		helpKeys = append(helpKeys, m.keys.back)
	}
	return fmt.Sprintf("%s\n\n%s", m.styleList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderFileInput() string {
	var b strings.Builder
	b.WriteString(m.renderSelectedStyle())
	b.WriteString("\n\n")
	b.WriteString(palette.title.Render("Upload Your Video"))
	b.WriteString("\n")
	b.WriteString(palette.help.Render("MP4, MOV, AVI"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	loadKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "load"))
	b.WriteString(m.help.ShortHelpView([]key.Binding{loadKey, m.keys.back, m.keys.forceQuit}))
	return b.String()
}

func (m *Model) renderTransform() string {
	snap := m.snapshot

	var b strings.Builder
	b.WriteString(m.renderSelectedStyle())
	b.WriteString("\n\n")

	if snap.Media != nil {
		b.WriteString(fmt.Sprintf("%s\n%s • %s\n\n", palette.ok.Render(snap.Media.Name), snap.MediaSize, snap.Media.ContentType))
	}

	switch {
	case snap.Processing:
		b.WriteString("Processing...\n")
		b.WriteString(m.bar.ViewAs(float64(snap.Progress) / 100))
		b.WriteString("\n\n")
	case snap.State == session.Complete:
		b.WriteString(palette.ok.Render("✓ Transform complete"))
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(1))
		b.WriteString("\n\n")
	}

	label := snap.ActionLabel
	if snap.CanTransform {
		label = palette.title.Render("[t] " + label)
	} else {
		label = palette.help.Render(label)
	}
	b.WriteString(label)

	if snap.Style != nil {
		b.WriteString("\n\n")
		b.WriteString(palette.title.Render("Effects Applied:"))
		b.WriteString("\n")
		chips := make([]string, len(snap.Style.Effects))
		for i, effect := range snap.Style.Effects {
			chips[i] = palette.chip.Render(effect)
		}
		b.WriteString(strings.Join(chips, " "))
	}

	b.WriteString("\n\n")
	helpKeys := []key.Binding{m.keys.transform, m.keys.clear, m.keys.back, m.keys.quit}
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderSelectedStyle() string {
	if m.snapshot.Style == nil {
		return palette.warn.Render("No style selected")
	}
	s := m.snapshot.Style
	return fmt.Sprintf("Style: %s %s", s.Emoji, palette.title.Render(s.Title))
}

// cleanPath trims whitespace and the quotes terminals add when a file is dropped in.
func cleanPath(raw string) string {
	path := strings.TrimSpace(raw)
	if len(path) >= 2 && (path[0] == '\'' || path[0] == '"') && path[len(path)-1] == path[0] {
		path = path[1 : len(path)-1]
	}
	return path
}
