package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/shared"
)

const transformColumns = `id, sequence, session_id, style_id, style_title, media_name, media_size, media_type,
	status, progress, started_at, completed_at, created_at, updated_at, deleted_at`

// TransformRepository implements models.Repository[*models.TransformJob] for transform history.
type TransformRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.TransformJob] = (*TransformRepository)(nil)

// NewTransformRepository creates a new TransformRepository with the given database connection
func NewTransformRepository(db *sql.DB) *TransformRepository {
	return &TransformRepository{db: db}
}

// Create inserts a new [models.TransformJob] with a generated ID and sequence
func (r *TransformRepository) Create(job *models.TransformJob) error {
	sequence, err := NextSequence(r.db, "transforms")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	job.SetID(shared.GenerateID())
	job.SetSequence(sequence)

	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	m := job.Media()
	query := `
		INSERT INTO transforms (id, sequence, session_id, style_id, style_title, media_name, media_size, media_type,
			status, progress, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		job.ID(),
		job.Sequence(),
		job.SessionID(),
		string(job.StyleID()),
		job.StyleTitle(),
		m.Name,
		m.Size,
		m.ContentType,
		string(job.Status()),
		job.Progress(),
		job.StartedAt(),
		nullTime(job.CompletedAt()),
		job.CreatedAt(),
		job.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transform: %w", err)
	}

	return nil
}

// Get retrieves a transform by ID, excluding soft-deleted rows
func (r *TransformRepository) Get(id string) (*models.TransformJob, error) {
	query := `SELECT ` + transformColumns + ` FROM transforms WHERE id = ? AND deleted_at IS NULL`

	job, err := scanTransform(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrJobNotFound, id)
	}
	return job, err
}

// Update persists the status, progress, and completion time of a transform
func (r *TransformRepository) Update(job *models.TransformJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	query := `
		UPDATE transforms
		SET status = ?, progress = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, string(job.Status()), job.Progress(), nullTime(job.CompletedAt()), now, job.ID())
	if err != nil {
		return fmt.Errorf("failed to update transform: %w", err)
	}

	return requireAffected(result, job.ID())
}

// Delete soft-deletes a transform by ID
func (r *TransformRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE transforms SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete transform: %w", err)
	}

	return requireAffected(result, id)
}

// List retrieves transforms newest first, excluding soft-deleted rows.
//
// Supported criteria: "status" (string or [models.TransformStatus]), "session_id" (string),
// "style_id" (string or [models.StyleID]), and "limit" (int).
func (r *TransformRepository) List(criteria map[string]any) ([]*models.TransformJob, error) {
	query := `SELECT ` + transformColumns + ` FROM transforms WHERE deleted_at IS NULL`
	args := []any{}

	if status := criterion[models.TransformStatus](criteria, "status"); status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	if sessionID := criterion[string](criteria, "session_id"); sessionID != "" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}
	if styleID := criterion[models.StyleID](criteria, "style_id"); styleID != "" {
		query += " AND style_id = ?"
		args = append(args, styleID)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transforms: %w", err)
	}
	defer rows.Close()

	var jobs []*models.TransformJob
	for rows.Next() {
		job, err := scanTransform(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

// CountByStatus returns the number of live transforms per status.
func (r *TransformRepository) CountByStatus() (map[models.TransformStatus]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM transforms WHERE deleted_at IS NULL GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count transforms: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.TransformStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[models.TransformStatus(status)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return counts, nil
}

// MarkAbandoned cancels transforms left running by a previous process and returns how many were changed.
func (r *TransformRepository) MarkAbandoned() (int64, error) {
	now := time.Now()
	result, err := r.db.Exec(
		`UPDATE transforms SET status = ?, completed_at = ?, updated_at = ? WHERE status = ? AND deleted_at IS NULL`,
		string(models.TransformCancelled), now, now, string(models.TransformRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark abandoned transforms: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTransform scans a single row into a [models.TransformJob]
func scanTransform(row rowScanner) (*models.TransformJob, error) {
	var (
		id          string
		sequence    int
		sessionID   string
		styleID     string
		styleTitle  string
		media       models.Media
		status      string
		progress    int
		startedAt   time.Time
		completedAt sql.NullTime
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := row.Scan(&id, &sequence, &sessionID, &styleID, &styleTitle, &media.Name, &media.Size, &media.ContentType,
		&status, &progress, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transform: %w", err)
	}

	style := models.StylePreset{ID: models.StyleID(styleID), Title: styleTitle}
	job := models.NewTransformJob(sequence, sessionID, style, media)
	job.SetID(id)
	job.Restore(models.TransformStatus(status), progress, startedAt, createdAt, timePtr(completedAt))
	job.SetUpdatedAt(updatedAt)
	job.SetDeletedAt(timePtr(deletedAt))

	return job, nil
}

func criterion[T ~string](criteria map[string]any, key string) T {
	switch v := criteria[key].(type) {
	case T:
		return v
	case string:
		return T(v)
	}
	return ""
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s not found or already deleted", shared.ErrJobNotFound, id)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
