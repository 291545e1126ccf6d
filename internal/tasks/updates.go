package tasks

import (
	"fmt"
	"path/filepath"

	"github.com/desertthunder/vidstyle/internal/models"
)

// ProgressUpdate represents a progress event during a transform.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Prepare Phase = iota
	Upload
	Transform
	Complete
	Failed
)

func (p Phase) String() string {
	switch p {
	case Prepare:
		return "prepare"
	case Upload:
		return "upload"
	case Transform:
		return "transform"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func prepareUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Prepare,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Reading %s...", filepath.Base(path)),
	}
}

func uploadUpdate(m models.Media) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Upload,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %s (%s)", m.Name, m.ContentType),
		Data:    m,
	}
}

func transformUpdate(progress int, style models.StylePreset) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Transform,
		Step:    progress,
		Total:   100,
		Message: fmt.Sprintf("%s %s %d%%", style.Emoji, style.Title, progress),
	}
}

func completeUpdate(res *Result) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    100,
		Total:   100,
		Message: fmt.Sprintf("✓ %s transformed with %s", res.Media.Name, res.Style.Title),
		Data:    res,
	}
}

func batchUpdate(step, total int, res *Result) ProgressUpdate {
	if res.Err != nil {
		return ProgressUpdate{
			Phase:   Failed,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, filepath.Base(res.Path), res.Err),
			Data:    res,
		}
	}
	return ProgressUpdate{
		Phase:   Complete,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, filepath.Base(res.Path)),
		Data:    res,
	}
}
