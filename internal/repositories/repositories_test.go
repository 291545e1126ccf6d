package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// every pooled connection would get its own in-memory database
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func newJob(session string, style models.StyleID) *models.TransformJob {
	preset := models.StylePreset{ID: style, Title: "Action"}
	return models.NewTransformJob(0, session, preset, models.Media{Name: "clip.mp4", Size: 10 * 1024 * 1024, ContentType: "video/mp4"})
}

func TestTransformRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewTransformRepository(setupTestDB(t))
		job := newJob("s1", models.StyleAction)

		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create transform: %v", err)
		}
		if job.ID() == "" {
			t.Error("transform ID should be set after creation")
		}
		if job.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", job.Sequence())
		}
	})

	t.Run("Create rejects invalid jobs", func(t *testing.T) {
		repo := NewTransformRepository(setupTestDB(t))
		job := newJob("", models.StyleAction)

		if err := repo.Create(job); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewTransformRepository(setupTestDB(t))
		job := newJob("s1", models.StyleAction)
		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create transform: %v", err)
		}

		got, err := repo.Get(job.ID())
		if err != nil {
			t.Fatalf("failed to get transform: %v", err)
		}

		if got.StyleID() != models.StyleAction || got.StyleTitle() != "Action" {
			t.Errorf("expected action/Action, got %s/%s", got.StyleID(), got.StyleTitle())
		}
		if got.Media() != job.Media() {
			t.Errorf("expected media %+v, got %+v", job.Media(), got.Media())
		}
		if got.Status() != models.TransformRunning {
			t.Errorf("expected running, got %s", got.Status())
		}
		if got.CompletedAt() != nil {
			t.Error("running transform should have no completion time")
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := NewTransformRepository(setupTestDB(t))
		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrJobNotFound) {
			t.Errorf("expected ErrJobNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewTransformRepository(setupTestDB(t))
		job := newJob("s1", models.StyleAction)
		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create transform: %v", err)
		}

		job.Complete(job.StartedAt().Add(5 * time.Second))
		if err := repo.Update(job); err != nil {
			t.Fatalf("failed to update transform: %v", err)
		}

		got, err := repo.Get(job.ID())
		if err != nil {
			t.Fatalf("failed to get transform: %v", err)
		}
		if got.Status() != models.TransformComplete || got.Progress() != 100 {
			t.Errorf("expected complete at 100, got %s at %d", got.Status(), got.Progress())
		}
		if got.CompletedAt() == nil {
			t.Fatal("expected completion time")
		}
		if d := got.Duration().Round(time.Second); d != 5*time.Second {
			t.Errorf("expected 5s duration, got %v", d)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewTransformRepository(setupTestDB(t))
		job := newJob("s1", models.StyleAction)
		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create transform: %v", err)
		}

		if err := repo.Delete(job.ID()); err != nil {
			t.Fatalf("failed to delete transform: %v", err)
		}
		if _, err := repo.Get(job.ID()); !errors.Is(err, shared.ErrJobNotFound) {
			t.Errorf("deleted transform should not be found, got %v", err)
		}
		if err := repo.Delete(job.ID()); !errors.Is(err, shared.ErrJobNotFound) {
			t.Errorf("second delete should fail with ErrJobNotFound, got %v", err)
		}
		if err := repo.Update(job); !errors.Is(err, shared.ErrJobNotFound) {
			t.Errorf("update after delete should fail with ErrJobNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewTransformRepository(setupTestDB(t))

		jobs := []*models.TransformJob{
			newJob("s1", models.StyleAction),
			newJob("s1", models.StyleCinematic),
			newJob("s2", models.StyleAction),
		}
		for _, job := range jobs {
			if err := repo.Create(job); err != nil {
				t.Fatalf("failed to create transform: %v", err)
			}
		}
		jobs[0].Cancel(time.Now(), 40)
		if err := repo.Update(jobs[0]); err != nil {
			t.Fatalf("failed to update transform: %v", err)
		}

		tests := []struct {
			name     string
			criteria map[string]any
			want     []int
		}{
			{name: "all newest first", criteria: map[string]any{}, want: []int{3, 2, 1}},
			{name: "by session", criteria: map[string]any{"session_id": "s1"}, want: []int{2, 1}},
			{name: "by status", criteria: map[string]any{"status": models.TransformCancelled}, want: []int{1}},
			{name: "by status string", criteria: map[string]any{"status": "running"}, want: []int{3, 2}},
			{name: "by style", criteria: map[string]any{"style_id": "action"}, want: []int{3, 1}},
			{name: "limit", criteria: map[string]any{"limit": 1}, want: []int{3}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("failed to list transforms: %v", err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("expected %d transforms, got %d", len(tt.want), len(got))
				}
				for i, seq := range tt.want {
					if got[i].Sequence() != seq {
						t.Errorf("position %d: expected sequence %d, got %d", i, seq, got[i].Sequence())
					}
				}
			})
		}
	})

	t.Run("CountByStatus", func(t *testing.T) {
		repo := NewTransformRepository(setupTestDB(t))
		a, b := newJob("s1", models.StyleAction), newJob("s1", models.StyleAction)
		repo.Create(a)
		repo.Create(b)
		b.Complete(time.Now())
		repo.Update(b)

		counts, err := repo.CountByStatus()
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if counts[models.TransformRunning] != 1 || counts[models.TransformComplete] != 1 {
			t.Errorf("unexpected counts: %v", counts)
		}
	})

	t.Run("MarkAbandoned", func(t *testing.T) {
		repo := NewTransformRepository(setupTestDB(t))
		a, b := newJob("s1", models.StyleAction), newJob("s2", models.StyleAction)
		repo.Create(a)
		repo.Create(b)
		b.Complete(time.Now())
		repo.Update(b)

		n, err := repo.MarkAbandoned()
		if err != nil {
			t.Fatalf("failed to mark abandoned: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 abandoned transform, got %d", n)
		}

		got, _ := repo.Get(a.ID())
		if got.Status() != models.TransformCancelled {
			t.Errorf("expected cancelled, got %s", got.Status())
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	seq1, err := NextSequence(db, "transforms")
	if err != nil {
		t.Fatalf("failed to get first sequence: %v", err)
	}
	if seq1 != 1 {
		t.Errorf("expected first sequence to be 1, got %d", seq1)
	}

	seq2, err := NextSequence(db, "transforms")
	if err != nil {
		t.Fatalf("failed to get second sequence: %v", err)
	}
	if seq2 != 2 {
		t.Errorf("expected second sequence to be 2, got %d", seq2)
	}

	if _, err := NextSequence(db, "users; DROP TABLE transforms"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unknown table, got %v", err)
	}
}
