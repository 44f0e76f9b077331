// YouTube Music [MetadataService] implementation
//
// Communicates with the FastAPI proxy server wrapping the ytmusicapi Python library.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/shared"
)

const defaultYTBaseURL string = "http://localhost:8080"

// StatusError is a non-2xx proxy response.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("youtube music API error (status %d): %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("youtube music API error: status %d", e.Code)
}

func (e *StatusError) Unwrap() error { return shared.ErrAPIRequest }

type youtubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeRef struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeSearchResult struct {
	ResultType  string          `json:"resultType"`
	BrowseID    string          `json:"browseId"`
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	Artists     []youtubeArtist `json:"artists"`
	Album       *youtubeRef     `json:"album"`
	Year        string          `json:"year"`
	DurationSec int             `json:"duration_seconds"`
}

type youtubeTrack struct {
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	Artists     []youtubeArtist `json:"artists"`
	Album       string          `json:"album"`
	TrackNumber int             `json:"trackNumber"`
	DurationSec int             `json:"duration_seconds"`
	IsAvailable *bool           `json:"isAvailable"`
}

type youtubeAlbum struct {
	Title           string          `json:"title"`
	Artists         []youtubeArtist `json:"artists"`
	Year            string          `json:"year"`
	AudioPlaylistID string          `json:"audioPlaylistId"`
	Tracks          []youtubeTrack  `json:"tracks"`
}

type youtubeSong struct {
	VideoDetails struct {
		VideoID       string `json:"videoId"`
		Title         string `json:"title"`
		Author        string `json:"author"`
		ChannelID     string `json:"channelId"`
		LengthSeconds string `json:"lengthSeconds"`
	} `json:"videoDetails"`
	PlayabilityStatus struct {
		Status string `json:"status"`
	} `json:"playabilityStatus"`
}

// YouTubeMusicService implements [MetadataService] for YouTube Music via proxy.
type YouTubeMusicService struct {
	baseURL    string
	authFile   string
	httpClient *http.Client
}

// NewYouTubeMusicService creates a new YouTube Music service instance.
//
// A nil client falls back to [http.DefaultClient].
func NewYouTubeMusicService(baseURL string, client *http.Client) *YouTubeMusicService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &YouTubeMusicService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// Name returns the service name.
func (y *YouTubeMusicService) Name() string {
	return "YouTube Music"
}

// SetAuthFile stores the authentication file path sent with every request.
//
// The path points at the browser.json or oauth.json understood by the proxy.
func (y *YouTubeMusicService) SetAuthFile(path string) {
	y.authFile = path
}

func (y *YouTubeMusicService) doRequest(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return &StatusError{Code: resp.StatusCode, Detail: errResp.Detail}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Health calls GET /health on the proxy.
func (y *YouTubeMusicService) Health(ctx context.Context) error {
	return y.doRequest(ctx, "/health", nil)
}

// SearchAlbums calls GET /api/search?q={query}&filter=albums on the proxy.
func (y *YouTubeMusicService) SearchAlbums(ctx context.Context, query string) ([]SearchResult, error) {
	return y.search(ctx, query, "albums", models.KindAlbum)
}

// SearchSongs calls GET /api/search?q={query}&filter=songs on the proxy.
func (y *YouTubeMusicService) SearchSongs(ctx context.Context, query string) ([]SearchResult, error) {
	return y.search(ctx, query, "songs", models.KindTrack)
}

func (y *YouTubeMusicService) search(ctx context.Context, query, filter string, kind models.Kind) ([]SearchResult, error) {
	params := url.Values{"q": {query}, "filter": {filter}}

	var raw []youtubeSearchResult
	if err := y.doRequest(ctx, "/api/search?"+params.Encode(), &raw); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(raw))
	for _, r := range raw {
		result := SearchResult{
			Kind:     kind,
			BrowseID: r.BrowseID,
			VideoID:  r.VideoID,
			Title:    r.Title,
			Artists:  toArtists(r.Artists),
			Year:     r.Year,
			Duration: r.DurationSec,
		}
		if r.Album != nil {
			result.Album = r.Album.Name
		}
		if result.ID() == "" {
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

// GetAlbum calls GET /api/albums/{browseId} on the proxy.
func (y *YouTubeMusicService) GetAlbum(ctx context.Context, browseID string) (*models.Descriptor, error) {
	var album youtubeAlbum
	if err := y.doRequest(ctx, "/api/albums/"+url.PathEscape(browseID), &album); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrAlbumNotFound, browseID)
		}
		return nil, err
	}

	desc := &models.Descriptor{
		Kind:     models.KindAlbum,
		Origin:   models.OriginSearch,
		SourceID: album.AudioPlaylistID,
		BrowseID: browseID,
		Title:    album.Title,
		Artists:  toArtists(album.Artists),
		Year:     album.Year,
		Tracks:   make([]models.Track, 0, len(album.Tracks)),
	}

	for i, t := range album.Tracks {
		track := models.Track{
			VideoID:     t.VideoID,
			Title:       t.Title,
			Artists:     toArtists(t.Artists),
			Album:       album.Title,
			TrackNumber: t.TrackNumber,
			Duration:    t.DurationSec,
			Available:   t.VideoID != "" && (t.IsAvailable == nil || *t.IsAvailable),
		}
		if track.TrackNumber == 0 {
			track.TrackNumber = i + 1
		}
		if len(track.Artists) == 0 {
			track.Artists = desc.Artists
		}
		desc.Tracks = append(desc.Tracks, track)
	}

	return desc, nil
}

// GetSong calls GET /api/songs/{videoId} on the proxy.
func (y *YouTubeMusicService) GetSong(ctx context.Context, videoID string) (*models.Descriptor, error) {
	var song youtubeSong
	if err := y.doRequest(ctx, "/api/songs/"+url.PathEscape(videoID), &song); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, videoID)
		}
		return nil, err
	}

	details := song.VideoDetails
	if details.VideoID == "" {
		details.VideoID = videoID
	}
	duration, _ := strconv.Atoi(details.LengthSeconds)

	var artists []models.Artist
	if details.Author != "" {
		artists = []models.Artist{{Name: details.Author, ID: details.ChannelID}}
	}

	status := song.PlayabilityStatus.Status
	return &models.Descriptor{
		Kind:     models.KindTrack,
		Origin:   models.OriginSearch,
		SourceID: details.VideoID,
		Title:    details.Title,
		Artists:  artists,
		Tracks: []models.Track{{
			VideoID:     details.VideoID,
			Title:       details.Title,
			Artists:     artists,
			TrackNumber: 1,
			Duration:    duration,
			Available:   status == "" || status == "OK",
		}},
	}, nil
}

func toArtists(in []youtubeArtist) []models.Artist {
	out := make([]models.Artist, 0, len(in))
	for _, a := range in {
		out = append(out, models.Artist{Name: a.Name, ID: a.ID})
	}
	return out
}

func isNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}
