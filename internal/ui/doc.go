// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the web page over a single [session.Controller]:
//  1. [StyleListView] : Browse the preset catalog and pick a style
//  2. [FileInputView] : Enter the path of a video file
//  3. [TransformView] : Start the transform and watch the progress bar fill
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Controller notifications are coalesced into a one-slot channel; each wake-up becomes a snapshot message, so the
// ticker never waits on rendering.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, t, c, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
