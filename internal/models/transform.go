package models

import (
	"fmt"
	"time"
)

// TransformStatus is the lifecycle state of a [TransformJob].
type TransformStatus string

const (
	TransformRunning   TransformStatus = "running"
	TransformComplete  TransformStatus = "complete"
	TransformCancelled TransformStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s TransformStatus) Valid() bool {
	switch s {
	case TransformRunning, TransformComplete, TransformCancelled:
		return true
	}
	return false
}

// TransformJob records one simulated transform run.
type TransformJob struct {
	id          string
	sequence    int
	sessionID   string
	styleID     StyleID
	styleTitle  string
	media       Media
	status      TransformStatus
	progress    int
	startedAt   time.Time
	completedAt *time.Time
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

var _ Model = (*TransformJob)(nil)

// NewTransformJob creates a running job started now.
func NewTransformJob(sequence int, sessionID string, style StylePreset, media Media) *TransformJob {
	now := time.Now()
	return &TransformJob{
		sequence:   sequence,
		sessionID:  sessionID,
		styleID:    style.ID,
		styleTitle: style.Title,
		media:      media,
		status:     TransformRunning,
		startedAt:  now,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (j *TransformJob) ID() string               { return j.id }
func (j *TransformJob) Sequence() int            { return j.sequence }
func (j *TransformJob) SessionID() string        { return j.sessionID }
func (j *TransformJob) StyleID() StyleID         { return j.styleID }
func (j *TransformJob) StyleTitle() string       { return j.styleTitle }
func (j *TransformJob) Media() Media             { return j.media }
func (j *TransformJob) Status() TransformStatus  { return j.status }
func (j *TransformJob) Progress() int            { return j.progress }
func (j *TransformJob) StartedAt() time.Time     { return j.startedAt }
func (j *TransformJob) CompletedAt() *time.Time  { return j.completedAt }
func (j *TransformJob) CreatedAt() time.Time     { return j.createdAt }
func (j *TransformJob) UpdatedAt() time.Time     { return j.updatedAt }
func (j *TransformJob) DeletedAt() *time.Time    { return j.deletedAt }
func (j *TransformJob) SetID(id string)          { j.id = id }
func (j *TransformJob) SetSequence(seq int)      { j.sequence = seq }
func (j *TransformJob) SetUpdatedAt(t time.Time) { j.updatedAt = t }
func (j *TransformJob) SetDeletedAt(t *time.Time) {
	j.deletedAt = t
}

// Restore sets the fields that are only known when loading from storage.
func (j *TransformJob) Restore(status TransformStatus, progress int, startedAt, createdAt time.Time, completedAt *time.Time) {
	j.status = status
	j.progress = progress
	j.startedAt = startedAt
	j.createdAt = createdAt
	j.completedAt = completedAt
}

// SetProgress records the furthest progress reached, clamped to [0,100].
func (j *TransformJob) SetProgress(p int) {
	j.progress = min(max(p, 0), 100)
}

// Complete marks the job finished at 100%.
func (j *TransformJob) Complete(at time.Time) {
	j.status = TransformComplete
	j.progress = 100
	j.completedAt = &at
}

// Cancel marks the job abandoned at its current progress.
func (j *TransformJob) Cancel(at time.Time, progress int) {
	j.status = TransformCancelled
	j.SetProgress(progress)
	j.completedAt = &at
}

// Duration returns how long the job ran, or 0 while still running.
func (j *TransformJob) Duration() time.Duration {
	if j.completedAt == nil {
		return 0
	}
	return j.completedAt.Sub(j.startedAt)
}

// Validate checks required fields and the progress range.
func (j *TransformJob) Validate() error {
	switch {
	case j.sessionID == "":
		return fmt.Errorf("session ID is required")
	case j.styleID == "":
		return fmt.Errorf("style ID is required")
	case j.media.Name == "":
		return fmt.Errorf("media name is required")
	case !j.status.Valid():
		return fmt.Errorf("invalid status: %q", j.status)
	case j.progress < 0 || j.progress > 100:
		return fmt.Errorf("progress %d out of range", j.progress)
	}
	return nil
}
