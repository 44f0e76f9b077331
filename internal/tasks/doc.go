// Package tasks runs the fetch pipeline with real-time progress reporting.
//
// # Pipeline
//
// [ImportEngine.Run] drives one request through:
//
//  1. Resolve : search the catalogue (or take the direct URL) and build a [models.Descriptor]
//  2. Gate : refuse descriptors with unavailable tracks before anything is downloaded
//  3. Presence : skip source ids already imported, unless forced
//  4. Download : per track on a bounded worker pool, or the whole URL when no track list is known
//  5. Tag : stamp each file with its video id, or the descriptor source id
//  6. Import : hand the staging directory to beets
//  7. Clean : remove the staging directory unless files are kept
//
// Every outcome is recorded in the optional [HistoryRecorder].
//
// # Missing items
//
// [ImportEngine.Missing] re-drives the same pipeline for library items whose file is gone
// but which carry a stored source id. Items are grouped by source id; a failing group is
// logged and counted and the scan moves on.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
