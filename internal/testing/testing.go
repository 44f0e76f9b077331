// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/services"
)

// MockMetadataService is a test double for [services.MetadataService]
type MockMetadataService struct {
	mu           sync.Mutex
	Albums       []services.SearchResult
	Songs        []services.SearchResult
	AlbumByID    map[string]*models.Descriptor
	SongByID     map[string]*models.Descriptor
	SearchErr    error
	HealthErr    error
	Queries      []string
	AlbumFetches []string
}

func (m *MockMetadataService) SearchAlbums(ctx context.Context, query string) ([]services.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, "albums:"+query)
	return m.Albums, m.SearchErr
}

func (m *MockMetadataService) SearchSongs(ctx context.Context, query string) ([]services.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, "songs:"+query)
	return m.Songs, m.SearchErr
}

func (m *MockMetadataService) GetAlbum(ctx context.Context, browseID string) (*models.Descriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AlbumFetches = append(m.AlbumFetches, browseID)
	if d, ok := m.AlbumByID[browseID]; ok {
		cp := *d
		cp.Tracks = append([]models.Track(nil), d.Tracks...)
		return &cp, nil
	}
	return nil, fmt.Errorf("album %s not found", browseID)
}

func (m *MockMetadataService) GetSong(ctx context.Context, videoID string) (*models.Descriptor, error) {
	if d, ok := m.SongByID[videoID]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("song %s not found", videoID)
}

func (m *MockMetadataService) Health(ctx context.Context) error { return m.HealthErr }
func (m *MockMetadataService) Name() string                     { return "mock" }

// Calls returns how many metadata requests were made.
func (m *MockMetadataService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries) + len(m.AlbumFetches)
}

// MockDownloader is a test double for [services.Downloader] that writes one file per request.
//
// The file is named after the v= or list= value of the URL, or FileName when set.
type MockDownloader struct {
	mu       sync.Mutex
	Requests []services.DownloadRequest
	FileName string
	Ext      string
	Err      error
	FailURL  string
}

func (m *MockDownloader) Download(ctx context.Context, req services.DownloadRequest) ([]string, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.Err != nil && (m.FailURL == "" || m.FailURL == req.URL) {
		return nil, m.Err
	}

	name := m.FileName
	if name == "" {
		name = lastQueryValue(req.URL)
	}
	ext := m.Ext
	if ext == "" {
		ext = ".mp3"
	}

	path := filepath.Join(req.Dir, name+ext)
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (m *MockDownloader) Version(ctx context.Context) (string, error) { return "mock", nil }

// Count returns how many downloads were requested.
func (m *MockDownloader) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// MockImporter is a test double for [services.Importer]
type MockImporter struct {
	Requests []services.ImportRequest
	Err      error
}

func (m *MockImporter) Import(ctx context.Context, req services.ImportRequest) error {
	m.Requests = append(m.Requests, req)
	return m.Err
}

func (m *MockImporter) Version(ctx context.Context) (string, error) { return "mock", nil }

// MockTagger records WriteSource calls.
type MockTagger struct {
	mu     sync.Mutex
	Tagged map[string]string // path -> source id
	Err    error
}

func (m *MockTagger) WriteSource(path, sourceID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Tagged == nil {
		m.Tagged = map[string]string{}
	}
	if m.Err != nil {
		return m.Err
	}
	m.Tagged[path] = sourceID
	return nil
}

// MockPresence reports the ids in IDs as already fetched.
type MockPresence struct {
	IDs map[string]bool
	Err error
}

func (m *MockPresence) Present(id string) (bool, error) {
	return m.IDs[id], m.Err
}

func lastQueryValue(u string) string {
	for i := len(u) - 1; i >= 0; i-- {
		if u[i] == '=' || u[i] == '/' {
			return u[i+1:]
		}
	}
	return u
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func AssertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Path should not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
