package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/services"
	"github.com/desertthunder/ytbeets/internal/shared"
)

var (
	_ list.Item = resultItem{}
	_ list.Item = trackItem{}
)

// resultItem wraps [services.SearchResult] to implement [list.Item].
type resultItem struct {
	result services.SearchResult
}

func (i resultItem) FilterValue() string {
	return strings.Join(i.result.ArtistNames(), " ") + " " + i.result.Title
}
func (i resultItem) Title() string { return i.result.Title }
func (i resultItem) Description() string {
	desc := strings.Join(i.result.ArtistNames(), ", ")
	switch {
	case i.result.Kind == models.KindTrack:
		desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.result.Duration))
	case i.result.Year != "":
		desc = fmt.Sprintf("%s • %s", desc, i.result.Year)
	}
	return desc
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string {
	if !i.track.Available {
		return i.track.Title + " (unavailable)"
	}
	return i.track.Title
}
func (i trackItem) Description() string {
	return fmt.Sprintf("#%d • %s", i.track.TrackNumber, shared.FormatDuration(i.track.Duration))
}
