package session

import (
	"fmt"

	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/shared"
)

// State is the derived position of a session in the transform state machine.
type State int

const (
	Idle State = iota
	MediaSelected
	Ready
	Processing
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case MediaSelected:
		return "media_selected"
	case Ready:
		return "ready"
	case Processing:
		return "processing"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

// MarshalText renders the state by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a name produced by [State.MarshalText].
func (s *State) UnmarshalText(b []byte) error {
	for _, candidate := range []State{Idle, MediaSelected, Ready, Processing, Complete} {
		if candidate.String() == string(b) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("%w: unknown session state %q", shared.ErrInvalidInput, b)
}

const (
	labelSelectStyle  = "Select a style to continue"
	labelTransforming = "Transforming..."
)

// Snapshot is a read-only copy of a session with the view fields derived from it.
type Snapshot struct {
	SessionID    string              `json:"session_id"`
	Version      uint64              `json:"version"`
	Style        *models.StylePreset `json:"style,omitempty"`
	Media        *models.Media       `json:"media,omitempty"`
	MediaSize    string              `json:"media_size,omitempty"`
	PreviewURL   string              `json:"preview_url,omitempty"`
	Processing   bool                `json:"processing"`
	Progress     int                 `json:"progress"`
	State        State               `json:"state"`
	CanTransform bool                `json:"can_transform"`
	ActionLabel  string              `json:"action_label"`
}

// StyleID returns the selected preset identifier, or "" when none is selected.
func (s Snapshot) StyleID() models.StyleID {
	if s.Style == nil {
		return ""
	}
	return s.Style.ID
}

// deriveState maps the raw fields to a [State].
//
// Complete holds while progress sits at 100, including after a new style is picked; selecting or
// clearing media, or starting another run, resets progress and leaves Complete.
func deriveState(hasStyle, hasMedia, processing bool, progress int) State {
	switch {
	case !hasMedia:
		return Idle
	case processing:
		return Processing
	case !hasStyle:
		return MediaSelected
	case progress == 100:
		return Complete
	default:
		return Ready
	}
}

func actionLabel(style *models.StylePreset, processing bool) string {
	switch {
	case processing:
		return labelTransforming
	case style != nil:
		return fmt.Sprintf("Transform with %s", style.Title)
	default:
		return labelSelectStyle
	}
}

func mediaSize(m *models.Media) string {
	if m == nil {
		return ""
	}
	return shared.FormatMegabytes(m.Size)
}

// EventKind enumerates the changes a [Controller] reports.
type EventKind int

const (
	StyleSelected EventKind = iota
	MediaChanged
	MediaCleared
	TransformStarted
	ProgressAdvanced
	TransformCompleted
	TransformCancelled
	SessionClosed
)

func (k EventKind) String() string {
	switch k {
	case StyleSelected:
		return "style_selected"
	case MediaChanged:
		return "media_selected"
	case MediaCleared:
		return "media_cleared"
	case TransformStarted:
		return "transform_started"
	case ProgressAdvanced:
		return "progress"
	case TransformCompleted:
		return "transform_completed"
	case TransformCancelled:
		return "transform_cancelled"
	case SessionClosed:
		return "session_closed"
	default:
		return ""
	}
}

// Event is a change notification.
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
	Run      uint64 // transform run the event belongs to; 0 when none has started
	Reached  int    // progress reached by a cancelled run
}
