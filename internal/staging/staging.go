// Package staging manages the download staging cache.
//
// Albums and playlists are staged under <root>/<artist>/<album>; tracks under
// <root>/<artist>/singles/<source id>. The janitor removes a staged tree once it has been
// imported and prunes the parent directories left empty.
package staging

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rainycape/unidecode"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/shared"
)

const (
	singlesDir   = "singles"
	unknownEntry = "Unknown"
)

// Cache is the staging cache rooted at a directory.
type Cache struct {
	root string
}

// New creates a Cache rooted at root.
func New(root string) *Cache {
	return &Cache{root: filepath.Clean(root)}
}

// Root returns the cache root directory.
func (c *Cache) Root() string { return c.root }

// Dir returns the staging directory for desc.
func (c *Cache) Dir(desc *models.Descriptor) string {
	artist := SafeComponent(desc.Artist())
	if desc.Kind == models.KindTrack {
		return filepath.Join(c.root, artist, singlesDir, SafeComponent(desc.SourceID))
	}
	return filepath.Join(c.root, artist, SafeComponent(desc.Title))
}

// Prepare creates the staging directory for desc and returns it.
func (c *Cache) Prepare(desc *models.Descriptor) (string, error) {
	dir := c.Dir(desc)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return dir, nil
}

// Clean removes dir and then every parent left empty, stopping at the root.
func (c *Cache) Clean(dir string) error {
	dir = filepath.Clean(dir)
	if !c.contains(dir) {
		return fmt.Errorf("%w: %s", shared.ErrOutsideCache, dir)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}

	for parent := filepath.Dir(dir); parent != c.root && c.contains(parent); parent = filepath.Dir(parent) {
		entries, err := os.ReadDir(parent)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(parent); err != nil {
			break
		}
	}

	return nil
}

// Purge removes everything below the root, keeping the root itself.
func (c *Cache) Purge() error {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache: %w", err)
	}

	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.root, e.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Usage summarises what is in the cache.
type Usage struct {
	Bytes int64
	Files int
	Dirs  []string // staged leaf directories relative to the root
}

// Size walks the cache and returns its usage. A missing root is empty.
func (c *Cache) Size() (Usage, error) {
	var u Usage
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == c.root {
				return fs.SkipDir
			}
			return err
		}

		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		u.Bytes += info.Size()
		u.Files++

		rel, _ := filepath.Rel(c.root, filepath.Dir(path))
		if rel != "." && (len(u.Dirs) == 0 || u.Dirs[len(u.Dirs)-1] != rel) {
			u.Dirs = append(u.Dirs, rel)
		}
		return nil
	})
	if err != nil {
		return Usage{}, fmt.Errorf("failed to walk cache: %w", err)
	}
	return u, nil
}

// Report renders the cache usage for humans, e.g. "12 MiB in 3 files".
func (c *Cache) Report() (string, error) {
	u, err := c.Size()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s in %d files", humanize.IBytes(uint64(u.Bytes)), u.Files), nil
}

func (c *Cache) contains(path string) bool {
	rel, err := filepath.Rel(c.root, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// SafeComponent turns s into a single path component.
//
// Separators and NUL are dropped and whitespace is collapsed. When nothing printable is
// left the ASCII transliteration is tried before falling back to "Unknown".
func SafeComponent(s string) string {
	clean := func(s string) string {
		s = strings.Map(func(r rune) rune {
			switch r {
			case '/', '\\', 0:
				return -1
			}
			return r
		}, s)
		s = strings.Join(strings.Fields(s), " ")
		return strings.Trim(s, ".")
	}

	if out := clean(s); out != "" {
		return out
	}
	if out := clean(unidecode.Unidecode(s)); out != "" {
		return out
	}
	return unknownEntry
}
