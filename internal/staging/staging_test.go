package staging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/shared"
)

func TestSafeComponent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Discovery", "Discovery"},
		{"separators", "AC/DC\\Live", "ACDCLive"},
		{"whitespace", "  Random   Access\tMemories ", "Random Access Memories"},
		{"dots", "..", "Unknown"},
		{"empty", "", "Unknown"},
		{"unicode kept", "Sigur Rós", "Sigur Rós"},
		{"nul", "a\x00b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeComponent(tt.in); got != tt.want {
				t.Errorf("SafeComponent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCache(t *testing.T) {
	album := &models.Descriptor{Kind: models.KindAlbum, SourceID: "OLAK5uy_x", Title: "Discovery", Artists: []models.Artist{{Name: "Daft Punk"}}}
	track := &models.Descriptor{Kind: models.KindTrack, SourceID: "dQw4w9WgXcQ", Title: "Song", Artists: []models.Artist{{Name: "Rick Astley"}}}

	t.Run("Dir", func(t *testing.T) {
		c := New("/cache")
		if got := c.Dir(album); got != filepath.Join("/cache", "Daft Punk", "Discovery") {
			t.Errorf("unexpected album dir %s", got)
		}
		if got := c.Dir(track); got != filepath.Join("/cache", "Rick Astley", "singles", "dQw4w9WgXcQ") {
			t.Errorf("unexpected track dir %s", got)
		}
	})

	t.Run("Prepare and Clean prune empty parents", func(t *testing.T) {
		root := t.TempDir()
		c := New(root)

		dir, err := c.Prepare(track)
		if err != nil {
			t.Fatalf("Prepare failed: %v", err)
		}
		os.WriteFile(filepath.Join(dir, "dQw4w9WgXcQ.mp3"), []byte("x"), 0o644)

		if err := c.Clean(dir); err != nil {
			t.Fatalf("Clean failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "Rick Astley")); !os.IsNotExist(err) {
			t.Error("expected empty artist directory to be pruned")
		}
		if _, err := os.Stat(root); err != nil {
			t.Error("root must survive cleaning")
		}
	})

	t.Run("Clean keeps non-empty parents", func(t *testing.T) {
		root := t.TempDir()
		c := New(root)

		albumDir, _ := c.Prepare(album)
		other := &models.Descriptor{Kind: models.KindAlbum, Title: "Homework", Artists: album.Artists}
		otherDir, _ := c.Prepare(other)

		if err := c.Clean(albumDir); err != nil {
			t.Fatalf("Clean failed: %v", err)
		}
		if _, err := os.Stat(otherDir); err != nil {
			t.Error("sibling album should be untouched")
		}
	})

	t.Run("Clean refuses paths outside the root", func(t *testing.T) {
		root := t.TempDir()
		c := New(filepath.Join(root, "cache"))

		outside := filepath.Join(root, "important")
		os.MkdirAll(outside, 0o755)

		for _, p := range []string{outside, c.Root(), filepath.Join(c.Root(), "..", "important")} {
			if err := c.Clean(p); !errors.Is(err, shared.ErrOutsideCache) {
				t.Errorf("Clean(%s): expected ErrOutsideCache, got %v", p, err)
			}
		}
		if _, err := os.Stat(outside); err != nil {
			t.Error("outside directory must not be removed")
		}
	})

	t.Run("Size and Report", func(t *testing.T) {
		root := t.TempDir()
		c := New(root)

		dir, _ := c.Prepare(album)
		os.WriteFile(filepath.Join(dir, "a.mp3"), make([]byte, 2048), 0o644)
		os.WriteFile(filepath.Join(dir, "b.mp3"), make([]byte, 2048), 0o644)

		u, err := c.Size()
		if err != nil {
			t.Fatalf("Size failed: %v", err)
		}
		if u.Bytes != 4096 || u.Files != 2 {
			t.Errorf("unexpected usage %+v", u)
		}
		if len(u.Dirs) != 1 || u.Dirs[0] != filepath.Join("Daft Punk", "Discovery") {
			t.Errorf("unexpected dirs %v", u.Dirs)
		}

		report, err := c.Report()
		if err != nil {
			t.Fatalf("Report failed: %v", err)
		}
		if !strings.Contains(report, "4.0 KiB") || !strings.Contains(report, "2 files") {
			t.Errorf("unexpected report %q", report)
		}
	})

	t.Run("Size of missing root", func(t *testing.T) {
		c := New(filepath.Join(t.TempDir(), "nope"))
		u, err := c.Size()
		if err != nil || u.Files != 0 {
			t.Errorf("expected empty usage, got %+v (%v)", u, err)
		}
	})

	t.Run("Purge", func(t *testing.T) {
		root := t.TempDir()
		c := New(root)
		c.Prepare(album)
		c.Prepare(track)

		if err := c.Purge(); err != nil {
			t.Fatalf("Purge failed: %v", err)
		}
		entries, _ := os.ReadDir(root)
		if len(entries) != 0 {
			t.Errorf("expected empty root, got %d entries", len(entries))
		}
	})
}
