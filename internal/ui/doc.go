// Package ui implements the interactive picker using bubbletea's Elm architecture.
//
// The picker walks through:
//  1. [ResultListView] : Browse catalogue search results
//  2. [TrackListView] : Preview the tracklist and availability of the chosen release
//  3. [ConfirmView] : Confirm the fetch
//  4. [RunView] : Follow pipeline progress
//  5. [ResultView] : Outcome of the run
//
// Progress updates flow through a channel from the ImportEngine, so rendering never waits on
// downloads or imports.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help from
// charmbracelet/bubbles/help.
package ui
