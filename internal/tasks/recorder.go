package tasks

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/session"
	"github.com/desertthunder/vidstyle/internal/shared"
)

// JobStore persists transform history. Implemented by repositories.TransformRepository.
type JobStore interface {
	Create(job *models.TransformJob) error
	Update(job *models.TransformJob) error
}

// Recorder persists one [models.TransformJob] per transform run of the controllers it is attached to.
//
// Store errors are logged and never reach the controller; history is best effort.
type Recorder struct {
	store  JobStore
	logger *log.Logger
	now    func() time.Time

	mu   sync.Mutex
	jobs map[string]*models.TransformJob
}

// NewRecorder creates a recorder writing to store.
func NewRecorder(store JobStore, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Recorder{
		store:  store,
		logger: shared.WithLogger(logger, "component", "recorder"),
		now:    time.Now,
		jobs:   make(map[string]*models.TransformJob),
	}
}

// Attach subscribes the recorder to ctrl and returns the unsubscribe function.
func (r *Recorder) Attach(ctrl *session.Controller) func() {
	return ctrl.Subscribe(r.Handle)
}

// Handle applies one controller event to the job of its session.
func (r *Recorder) Handle(ev session.Event) {
	sid := ev.Snapshot.SessionID

	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case session.TransformStarted:
		snap := ev.Snapshot
		if snap.Style == nil || snap.Media == nil {
			return
		}
		job := models.NewTransformJob(0, sid, *snap.Style, *snap.Media)
		if err := r.store.Create(job); err != nil {
			r.logger.Error("failed to record transform", "session", sid, "error", err)
			return
		}
		r.jobs[sid] = job
	case session.ProgressAdvanced:
		if job, ok := r.jobs[sid]; ok {
			job.SetProgress(ev.Snapshot.Progress)
		}
	case session.TransformCompleted:
		r.finish(sid, func(job *models.TransformJob) { job.Complete(r.now()) })
	case session.TransformCancelled:
		r.finish(sid, func(job *models.TransformJob) { job.Cancel(r.now(), ev.Reached) })
	case session.SessionClosed:
		delete(r.jobs, sid)
	}
}

// Pending returns the number of runs that have started but not finished.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func (r *Recorder) finish(sid string, apply func(*models.TransformJob)) {
	job, ok := r.jobs[sid]
	if !ok {
		return
	}
	delete(r.jobs, sid)

	apply(job)
	if err := r.store.Update(job); err != nil {
		r.logger.Error("failed to update transform record", "session", sid, "job", job.ID(), "error", err)
		return
	}
	r.logger.Debug("transform recorded", "job", job.ID(), "status", job.Status(), "progress", job.Progress())
}
