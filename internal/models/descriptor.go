package models

import (
	"fmt"
	"strings"
)

// Kind is the shape of a fetch request.
type Kind string

const (
	KindAlbum    Kind = "album"
	KindTrack    Kind = "track"
	KindPlaylist Kind = "playlist"
)

// ParseKind validates s as a [Kind].
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindAlbum, KindTrack, KindPlaylist:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

// Collection reports whether k groups several tracks under one source id.
func (k Kind) Collection() bool {
	return k == KindAlbum || k == KindPlaylist
}

// Origin records where a [Descriptor] came from.
type Origin string

const (
	OriginSearch  Origin = "search"  // resolved through the metadata API
	OriginDirect  Origin = "direct"  // built from a caller-supplied URL
	OriginMissing Origin = "missing" // rebuilt from library records
)

// Artist is a credited artist as returned by the metadata API.
type Artist struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// Track is one entry of an album or a standalone song.
type Track struct {
	VideoID     string   `json:"videoId"`
	Title       string   `json:"title"`
	Artists     []Artist `json:"artists,omitempty"`
	Album       string   `json:"album,omitempty"`
	TrackNumber int      `json:"trackNumber,omitempty"`
	Duration    int      `json:"duration,omitempty"` // seconds
	Available   bool     `json:"isAvailable"`
}

// ArtistNames returns the credited artist names.
func (t Track) ArtistNames() []string {
	return artistNames(t.Artists)
}

// Descriptor describes an album, playlist or track to fetch.
//
// SourceID is the opaque identifier stamped into tags and handed to beets:
// the audio playlist id for albums, the video id for tracks and the list/v query
// value for direct URLs.
type Descriptor struct {
	Kind     Kind     `json:"kind"`
	Origin   Origin   `json:"origin"`
	SourceID string   `json:"sourceId"`
	BrowseID string   `json:"browseId,omitempty"`
	Title    string   `json:"title"`
	Artists  []Artist `json:"artists,omitempty"`
	Year     string   `json:"year,omitempty"`
	URL      string   `json:"url,omitempty"`
	Tracks   []Track  `json:"tracks,omitempty"`
}

// Artist returns the first credited artist name or "".
func (d *Descriptor) Artist() string {
	if d == nil || len(d.Artists) == 0 {
		return ""
	}
	return d.Artists[0].Name
}

// ArtistNames returns every credited artist name.
func (d *Descriptor) ArtistNames() []string {
	return artistNames(d.Artists)
}

// Unavailable returns the tracks that cannot be downloaded.
func (d *Descriptor) Unavailable() []Track {
	var out []Track
	for _, t := range d.Tracks {
		if !t.Available {
			out = append(out, t)
		}
	}
	return out
}

// Duration sums the track durations in seconds.
func (d *Descriptor) Duration() int {
	total := 0
	for _, t := range d.Tracks {
		total += t.Duration
	}
	return total
}

// TrackByVideoID finds the track with the given video id.
func (d *Descriptor) TrackByVideoID(id string) (Track, bool) {
	for _, t := range d.Tracks {
		if t.VideoID == id {
			return t, true
		}
	}
	return Track{}, false
}

func (d *Descriptor) String() string {
	if a := d.Artist(); a != "" {
		return fmt.Sprintf("%s - %s", a, d.Title)
	}
	return d.Title
}

func artistNames(artists []Artist) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}
