// Package repositories implements SQLite persistence for transform history.
//
// [TransformRepository] implements models.Repository[*models.TransformJob]: one row per started transform,
// updated when the run completes or is cancelled. Rows are soft-deleted via deleted_at and excluded from queries
// by default.
//
// Sequence numbers provide stable, human-readable ordering (e.g., transform #42) independent of UUIDs and
// creation timestamps. The [NextSequence] function atomically increments per-table sequence counters in
// dedicated sequence tables.
package repositories
