package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidstyle/internal/session"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSnapshot MsgKind = iota
	MsgMediaLoaded
	MsgSessionClosed
)

// snapshotMsg is the constructor for [MsgSnapshot]
func snapshotMsg(snap session.Snapshot) Msg {
	return Msg{kind: MsgSnapshot, data: snap}
}

// mediaLoadedMsg is the constructor for [MsgMediaLoaded]
func mediaLoadedMsg(path string, err error) Msg {
	return Msg{
		kind: MsgMediaLoaded,
		data: struct {
			path string
			err  error
		}{path, err},
	}
}

// sessionClosedMsg is the constructor for [MsgSessionClosed]
func sessionClosedMsg() Msg {
	return Msg{kind: MsgSessionClosed}
}
