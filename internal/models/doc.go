// Package models defines domain entities and persistence interfaces for ytbeets.
//
// The package contains two categories of types:
//
// 1. Descriptors: value records produced by the metadata resolver or rebuilt from the beets library
//   - [Descriptor] : An album, playlist or track to fetch, with its source identifier
//   - [Track] : One track of a descriptor, with its availability flag
//   - [LibraryItem] : A row from the beets library carrying a stored source identifier
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedDownload] : One fetch request and its outcome (history)
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
