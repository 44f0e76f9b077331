package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/shared"
)

func TestYouTubeMusicService(t *testing.T) {
	t.Run("NewYouTubeMusicService", func(t *testing.T) {
		t.Run("creates service with default URL", func(t *testing.T) {
			if svc := NewYouTubeMusicService("", nil); svc == nil {
				t.Fatal("expected service to be created")
			} else if svc.baseURL != defaultYTBaseURL {
				t.Errorf("expected baseURL to be %s, got %s", defaultYTBaseURL, svc.baseURL)
			}
		})

		t.Run("trims trailing slash", func(t *testing.T) {
			if svc := NewYouTubeMusicService("http://localhost:9000/", nil); svc.baseURL != "http://localhost:9000" {
				t.Errorf("unexpected baseURL %s", svc.baseURL)
			}
		})
	})

	t.Run("Name", func(t *testing.T) {
		if svc := NewYouTubeMusicService("", nil); svc.Name() != "YouTube Music" {
			t.Errorf("expected name to be 'YouTube Music', got %s", svc.Name())
		}
	})

	t.Run("SearchAlbums", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/search" {
				t.Errorf("expected path /api/search, got %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("q"); got != "Daft Punk Discovery" {
				t.Errorf("unexpected query %q", got)
			}
			if got := r.URL.Query().Get("filter"); got != "albums" {
				t.Errorf("expected albums filter, got %q", got)
			}
			if r.Header.Get("X-Auth-File") != "/path/to/auth.json" {
				t.Errorf("expected X-Auth-File header")
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]map[string]any{
				{"resultType": "album", "browseId": "MPREb_1", "title": "Discovery", "year": "2001", "artists": []map[string]string{{"name": "Daft Punk", "id": "UC1"}}},
				{"resultType": "album", "title": "No id"},
			})
		}))
		defer server.Close()

		svc := NewYouTubeMusicService(server.URL, server.Client())
		svc.SetAuthFile("/path/to/auth.json")

		results, err := svc.SearchAlbums(context.Background(), "Daft Punk Discovery")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected results without ids to be dropped, got %d", len(results))
		}
		if results[0].Kind != models.KindAlbum || results[0].ID() != "MPREb_1" {
			t.Errorf("unexpected result %+v", results[0])
		}
		if results[0].Artists[0].Name != "Daft Punk" {
			t.Errorf("unexpected artist %+v", results[0].Artists)
		}
	})

	t.Run("SearchSongs", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("filter"); got != "songs" {
				t.Errorf("expected songs filter, got %q", got)
			}
			json.NewEncoder(w).Encode([]map[string]any{
				{"resultType": "song", "videoId": "dQw4w9WgXcQ", "title": "Never Gonna Give You Up", "duration_seconds": 213, "album": map[string]string{"name": "Whenever You Need Somebody"}},
			})
		}))
		defer server.Close()

		results, err := NewYouTubeMusicService(server.URL, nil).SearchSongs(context.Background(), "rick")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(results) != 1 || results[0].ID() != "dQw4w9WgXcQ" {
			t.Fatalf("unexpected results %+v", results)
		}
		if results[0].Album != "Whenever You Need Somebody" || results[0].Duration != 213 {
			t.Errorf("unexpected fields %+v", results[0])
		}
	})

	t.Run("GetAlbum", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/albums/MPREb_1":
				json.NewEncoder(w).Encode(map[string]any{
					"title":           "Discovery",
					"year":            "2001",
					"audioPlaylistId": "OLAK5uy_discovery",
					"artists":         []map[string]string{{"name": "Daft Punk"}},
					"tracks": []map[string]any{
						{"videoId": "aaaaaaaaaaa", "title": "One More Time", "trackNumber": 1, "duration_seconds": 320, "isAvailable": true},
						{"videoId": "bbbbbbbbbbb", "title": "Aerodynamic", "trackNumber": 2, "isAvailable": false},
						{"videoId": "ccccccccccc", "title": "Digital Love"},
						{"videoId": nil, "title": "Ghost"},
					},
				})
			default:
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"detail": "album not found"})
			}
		}))
		defer server.Close()

		svc := NewYouTubeMusicService(server.URL, nil)

		t.Run("maps album", func(t *testing.T) {
			desc, err := svc.GetAlbum(context.Background(), "MPREb_1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if desc.SourceID != "OLAK5uy_discovery" || desc.BrowseID != "MPREb_1" {
				t.Errorf("unexpected ids %+v", desc)
			}
			if len(desc.Tracks) != 4 {
				t.Fatalf("expected 4 tracks, got %d", len(desc.Tracks))
			}
			if desc.Tracks[2].TrackNumber != 3 {
				t.Errorf("expected positional track number, got %d", desc.Tracks[2].TrackNumber)
			}
			if !desc.Tracks[2].Available {
				t.Error("track without isAvailable should default to available")
			}
			if len(desc.Unavailable()) != 2 {
				t.Errorf("expected 2 unavailable tracks, got %d", len(desc.Unavailable()))
			}
			if desc.Tracks[0].Artists[0].Name != "Daft Punk" {
				t.Error("tracks without artists should inherit album artists")
			}
		})

		t.Run("not found", func(t *testing.T) {
			_, err := svc.GetAlbum(context.Background(), "missing")
			if !errors.Is(err, shared.ErrAlbumNotFound) {
				t.Errorf("expected ErrAlbumNotFound, got %v", err)
			}
		})
	})

	t.Run("GetSong", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/songs/dQw4w9WgXcQ" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"videoDetails":      map[string]string{"videoId": "dQw4w9WgXcQ", "title": "Never Gonna Give You Up", "author": "Rick Astley", "lengthSeconds": "213"},
				"playabilityStatus": map[string]string{"status": "OK"},
			})
		}))
		defer server.Close()

		svc := NewYouTubeMusicService(server.URL, nil)
		desc, err := svc.GetSong(context.Background(), "dQw4w9WgXcQ")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if desc.Kind != models.KindTrack || desc.SourceID != "dQw4w9WgXcQ" {
			t.Errorf("unexpected descriptor %+v", desc)
		}
		if desc.Artist() != "Rick Astley" || desc.Tracks[0].Duration != 213 || !desc.Tracks[0].Available {
			t.Errorf("unexpected track %+v", desc.Tracks[0])
		}

		if _, err := svc.GetSong(context.Background(), "nope"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("API errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"detail": "ytmusicapi exploded"})
		}))
		defer server.Close()

		_, err := NewYouTubeMusicService(server.URL, nil).SearchAlbums(context.Background(), "x")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}

		var se *StatusError
		if !errors.As(err, &se) || se.Detail != "ytmusicapi exploded" {
			t.Errorf("expected detail to be carried, got %v", err)
		}
	})

	t.Run("Health", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("expected /health, got %s", r.URL.Path)
			}
			w.Write([]byte(`{"status":"ok"}`))
		}))

		svc := NewYouTubeMusicService(server.URL, nil)
		if err := svc.Health(context.Background()); err != nil {
			t.Errorf("expected healthy proxy, got %v", err)
		}

		server.Close()
		if err := svc.Health(context.Background()); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
