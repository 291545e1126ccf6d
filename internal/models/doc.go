// Package models defines domain entities and persistence interfaces for vidstyle.
//
// The package contains two categories of types:
//
// 1. Value types shared by every surface (web, TUI, CLI):
//   - [StyleID] : identifier of a preset in the fixed catalog
//   - [StylePreset] : immutable catalog entry with title, description, effects and theme token
//   - [Media] : metadata of the user-chosen video file
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [TransformJob] : one simulated transform run, from start to completion or cancellation
//
// All persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
