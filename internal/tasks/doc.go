// Package tasks runs style transforms outside an interactive surface and records their history.
//
// # Core Operations
//
//  1. [Engine.Run] : headless transform of one file
//     - Sniffs the file's content type and rejects non-video input
//     - Drives a fresh [session.Controller] through style, media, and transform
//     - Waits for completion or context cancellation
//
//  2. [Engine.RunBatch] : several files concurrently
//     - Bounded worker count via errgroup, paced by a rate limiter
//     - Partial failures are collected per file rather than aborting the batch
//
//  3. [Recorder] : transform history
//     - Subscribes to controllers and persists one [models.TransformJob] per run through a [JobStore]
//
// # Progress Reporting
//
// Operations report [ProgressUpdate] values on an optional channel. Sends use select with default,
// so a slow or absent reader never stalls a transform.
package tasks
