package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/vidstyle/internal/media"
	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/repositories"
	"github.com/desertthunder/vidstyle/internal/session"
	"github.com/desertthunder/vidstyle/internal/shared"
	tu "github.com/desertthunder/vidstyle/internal/testing"
)

// memStore is an in-memory [JobStore]
type memStore struct {
	mu      sync.Mutex
	created []*models.TransformJob
	updated []*models.TransformJob
	err     error
}

func (m *memStore) Create(job *models.TransformJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	job.SetID(shared.GenerateID())
	m.created = append(m.created, job)
	return nil
}

func (m *memStore) Update(job *models.TransformJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, job)
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func newTestEngine(t *testing.T, interval time.Duration, recorder *Recorder) (*Engine, *media.DiskPreviews) {
	t.Helper()

	previews, err := media.NewDiskPreviews(media.DiskPreviewsOpts{Dir: filepath.Join(t.TempDir(), "previews")})
	if err != nil {
		t.Fatalf("failed to create previews: %v", err)
	}
	t.Cleanup(func() { previews.Close() })

	factory := func(id string) (*session.Controller, error) {
		ctrl, err := session.New(session.Options{
			ID:        id,
			Previews:  previews,
			Scheduler: session.NewTickerScheduler(t.Context()),
			Interval:  interval,
			Step:      25,
		})
		if err == nil && recorder != nil {
			recorder.Attach(ctrl)
		}
		return ctrl, err
	}
	return NewEngine(factory, nil), previews
}

func TestEngineRun(t *testing.T) {
	t.Run("transforms a video file", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "clip.mp4", tu.MP4Header+strings.Repeat("\x00", 1024))
		store := &memStore{}
		engine, previews := newTestEngine(t, time.Millisecond, NewRecorder(store, nil))

		progress := make(chan ProgressUpdate, 32)
		res, err := engine.Run(context.Background(), progress, Request{Style: models.StyleCinematic, Path: path})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if res.Progress != 100 {
			t.Errorf("Progress = %d, want 100", res.Progress)
		}
		if res.Style.ID != models.StyleCinematic {
			t.Errorf("Style = %q", res.Style.ID)
		}
		if res.Media.Name != "clip.mp4" || res.Media.ContentType != "video/mp4" {
			t.Errorf("Media = %+v", res.Media)
		}
		if previews.Live() != 0 {
			t.Errorf("%d live previews after Run, want 0", previews.Live())
		}

		close(progress)
		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		if len(phases) < 3 || phases[0] != Prepare || phases[1] != Upload || phases[len(phases)-1] != Complete {
			t.Errorf("unexpected phases: %v", phases)
		}

		if len(store.created) != 1 || len(store.updated) != 1 {
			t.Fatalf("recorded %d created, %d updated, want 1 and 1", len(store.created), len(store.updated))
		}
		if store.updated[0].Status() != models.TransformComplete {
			t.Errorf("recorded status = %s", store.updated[0].Status())
		}
	})

	t.Run("rejects non-video files", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "notes.txt", "just some notes")
		engine, previews := newTestEngine(t, time.Millisecond, nil)

		_, err := engine.Run(context.Background(), nil, Request{Style: models.StyleAction, Path: path})
		if !errors.Is(err, shared.ErrUnsupportedMedia) {
			t.Errorf("Run() error = %v, want ErrUnsupportedMedia", err)
		}
		if previews.Live() != 0 {
			t.Error("rejected file acquired a preview")
		}
	})

	t.Run("unknown style", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "clip.mp4", tu.MP4Header)
		engine, _ := newTestEngine(t, time.Millisecond, nil)

		_, err := engine.Run(context.Background(), nil, Request{Style: "noir", Path: path})
		if !errors.Is(err, shared.ErrUnknownStyle) {
			t.Errorf("Run() error = %v, want ErrUnknownStyle", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		engine, _ := newTestEngine(t, time.Millisecond, nil)

		if _, err := engine.Run(context.Background(), nil, Request{Style: models.StyleAction, Path: "/no/such/clip.mp4"}); err == nil {
			t.Error("expected error for missing file")
		}
		if _, err := engine.Run(context.Background(), nil, Request{Style: models.StyleAction}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("Run() error = %v, want ErrMissingArgument", err)
		}
	})

	t.Run("cancelled by context", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "clip.mp4", tu.MP4Header)
		store := &memStore{}
		engine, previews := newTestEngine(t, time.Hour, NewRecorder(store, nil))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		res, err := engine.Run(ctx, nil, Request{Style: models.StyleAction, Path: path})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("Run() error = %v, want DeadlineExceeded", err)
		}
		if res == nil || res.Progress != 0 {
			t.Errorf("Result = %+v", res)
		}
		if previews.Live() != 0 {
			t.Error("cancelled run leaked its preview")
		}
		if len(store.updated) != 1 || store.updated[0].Status() != models.TransformCancelled {
			t.Error("cancelled run should be recorded as cancelled")
		}
	})

	t.Run("unreadable upload", func(t *testing.T) {
		engine, previews := newTestEngine(t, time.Millisecond, nil)
		ctrl, err := engine.newSession("unreadable")
		if err != nil {
			t.Fatalf("factory error = %v", err)
		}
		defer ctrl.Close()

		err = ctrl.SelectMedia(media.Upload{Name: "clip.mp4", ContentType: "video/mp4", Body: &tu.FReader{}})
		if err == nil {
			t.Fatal("expected read failure")
		}
		if previews.Live() != 0 {
			t.Error("failed copy left a live preview")
		}
		if ctrl.Snapshot().Media != nil {
			t.Error("failed copy changed the selection")
		}
	})
}

func TestEngineRunBatch(t *testing.T) {
	dir := t.TempDir()
	reqs := []Request{
		{Style: models.StyleAction, Path: writeFile(t, dir, "a.mp4", tu.MP4Header)},
		{Style: models.StyleAesthetic, Path: writeFile(t, dir, "b.txt", "not a video")},
		{Style: models.StyleRealistic, Path: writeFile(t, dir, "c.mp4", tu.MP4Header)},
	}
	engine, _ := newTestEngine(t, time.Millisecond, nil)

	progress := make(chan ProgressUpdate, 16)
	batch, err := engine.RunBatch(context.Background(), progress, reqs, BatchOpts{Workers: 2, RateLimit: 1000})
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}

	if batch.Succeeded != 2 || batch.Failed != 1 {
		t.Errorf("Succeeded = %d, Failed = %d, want 2 and 1", batch.Succeeded, batch.Failed)
	}
	for i, res := range batch.Results {
		if res.Path != reqs[i].Path {
			t.Errorf("result %d is for %s, want %s", i, res.Path, reqs[i].Path)
		}
	}
	if !errors.Is(batch.Results[1].Err, shared.ErrUnsupportedMedia) {
		t.Errorf("result 1 error = %v, want ErrUnsupportedMedia", batch.Results[1].Err)
	}
	if len(progress) != 3 {
		t.Errorf("got %d progress updates, want 3", len(progress))
	}

	if _, err := engine.RunBatch(context.Background(), nil, nil, BatchOpts{}); !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("RunBatch(nil) error = %v, want ErrMissingArgument", err)
	}
}

func TestRecorder(t *testing.T) {
	newCtrl := func(t *testing.T) (*session.Controller, *tu.ManualScheduler) {
		scheduler := tu.NewManualScheduler()
		ctrl, err := session.New(session.Options{Previews: tu.NewFakePreviews(), Scheduler: scheduler})
		if err != nil {
			t.Fatalf("session.New() error = %v", err)
		}
		t.Cleanup(func() { ctrl.Close() })
		ctrl.SelectStyle(models.StyleAction)
		ctrl.SelectMedia(media.Upload{Name: "clip.mp4", ContentType: "video/mp4", Size: 2048, Body: strings.NewReader(tu.MP4Header)})
		return ctrl, scheduler
	}

	t.Run("records completed runs in sqlite", func(t *testing.T) {
		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		db.SetMaxOpenConns(1)
		defer db.Close()
		if err := shared.RunMigrations(context.Background(), db); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}

		repo := repositories.NewTransformRepository(db)
		recorder := NewRecorder(repo, nil)
		ctrl, scheduler := newCtrl(t)
		recorder.Attach(ctrl)

		ctrl.StartTransform()
		scheduler.FireN(50)

		jobs, err := repo.List(map[string]any{"session_id": ctrl.ID()})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(jobs) != 1 {
			t.Fatalf("got %d jobs, want 1", len(jobs))
		}
		job := jobs[0]
		if job.Status() != models.TransformComplete || job.Progress() != 100 {
			t.Errorf("job = %s at %d", job.Status(), job.Progress())
		}
		if job.StyleTitle() != "Action Style" || job.Media().Size != 2048 {
			t.Errorf("job style %q size %d", job.StyleTitle(), job.Media().Size)
		}
		if recorder.Pending() != 0 {
			t.Errorf("Pending() = %d, want 0", recorder.Pending())
		}
	})

	t.Run("records cancellation progress", func(t *testing.T) {
		store := &memStore{}
		recorder := NewRecorder(store, nil)
		ctrl, scheduler := newCtrl(t)
		recorder.Attach(ctrl)

		ctrl.StartTransform()
		scheduler.FireN(15)
		ctrl.ClearMedia()

		if len(store.updated) != 1 {
			t.Fatalf("got %d updates, want 1", len(store.updated))
		}
		job := store.updated[0]
		if job.Status() != models.TransformCancelled || job.Progress() != 30 {
			t.Errorf("job = %s at %d, want cancelled at 30", job.Status(), job.Progress())
		}
	})

	t.Run("store failures are not fatal", func(t *testing.T) {
		store := &memStore{err: errors.New("disk full")}
		recorder := NewRecorder(store, nil)
		ctrl, scheduler := newCtrl(t)
		recorder.Attach(ctrl)

		if err := ctrl.StartTransform(); err != nil {
			t.Fatalf("StartTransform() error = %v", err)
		}
		scheduler.FireN(50)

		if got := ctrl.Snapshot().Progress; got != 100 {
			t.Errorf("Progress = %d, want 100", got)
		}
		if len(store.updated) != 0 || recorder.Pending() != 0 {
			t.Error("failed create should not be updated later")
		}
	})
}
