// Package repositories implements SQLite persistence for ytbeets.
//
// Two databases are involved:
//   - the download history owned by ytbeets, with embedded migrations ([DownloadRepository])
//   - the beets library, opened read-only ([LibraryRepository])
//
// History records support soft deletes via deleted_at timestamps and are excluded from queries once deleted.
// Sequence numbers provide stable, human-readable ordering (download #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// [PresenceChecker] combines both sources to decide whether a source identifier has already been fetched.
package repositories
