package models

// LibraryItem is a beets library item joined with its stored source identifier.
type LibraryItem struct {
	ID          int64
	Path        string
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	SourceID    string
}
