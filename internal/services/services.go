// package services defines the metadata, download and import collaborators
package services

import (
	"context"

	"github.com/desertthunder/ytbeets/internal/models"
)

// MetadataService resolves albums and songs from a music catalogue.
type MetadataService interface {
	// SearchAlbums searches the catalogue with the albums filter.
	SearchAlbums(ctx context.Context, query string) ([]SearchResult, error)

	// SearchSongs searches the catalogue with the songs filter.
	SearchSongs(ctx context.Context, query string) ([]SearchResult, error)

	// GetAlbum fetches an album and its track list by browse id.
	GetAlbum(ctx context.Context, browseID string) (*models.Descriptor, error)

	// GetSong fetches a single song by video id.
	GetSong(ctx context.Context, videoID string) (*models.Descriptor, error)

	// Health checks that the catalogue is reachable.
	Health(ctx context.Context) error

	// Name returns the name of the service (e.g., "YouTube Music")
	Name() string
}

// Downloader fetches audio into a staging directory.
type Downloader interface {
	// Download fetches req.URL into req.Dir and returns the produced audio files.
	Download(ctx context.Context, req DownloadRequest) ([]string, error)

	// Version reports the downloader version.
	Version(ctx context.Context) (string, error)
}

// Importer hands staged files to the library manager.
type Importer interface {
	// Import runs the library import against the staged path.
	Import(ctx context.Context, req ImportRequest) error

	// Version reports the library manager version.
	Version(ctx context.Context) (string, error)
}

// SearchResult is one hit from a catalogue search.
//
// Albums carry a BrowseID; songs carry a VideoID.
type SearchResult struct {
	Kind     models.Kind     `json:"kind"`
	BrowseID string          `json:"browseId,omitempty"`
	VideoID  string          `json:"videoId,omitempty"`
	Title    string          `json:"title"`
	Artists  []models.Artist `json:"artists,omitempty"`
	Album    string          `json:"album,omitempty"`
	Year     string          `json:"year,omitempty"`
	Duration int             `json:"duration,omitempty"`
}

// ArtistNames returns the credited artist names.
func (r SearchResult) ArtistNames() []string {
	names := make([]string, 0, len(r.Artists))
	for _, a := range r.Artists {
		names = append(names, a.Name)
	}
	return names
}

// ID returns the identifier used to fetch the full record.
func (r SearchResult) ID() string {
	if r.Kind == models.KindTrack {
		return r.VideoID
	}
	return r.BrowseID
}

// DownloadRequest describes one downloader invocation.
//
// PlaylistItems restricts a playlist download to the given 1-based positions. SplitChapters
// asks for one file per chapter of a single video, replacing the whole file.
type DownloadRequest struct {
	URL           string
	Dir           string
	PlaylistItems []int
	SplitChapters bool
}

// ImportRequest describes one import invocation.
//
// Dir is imported when it exists, otherwise File.
type ImportRequest struct {
	Dir       string
	File      string
	SourceID  string
	Singleton bool
}
