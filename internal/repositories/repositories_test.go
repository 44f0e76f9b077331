package repositories

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// setupLibraryDB creates a file-backed database with the beets library tables.
func setupLibraryDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "library.db")
	db, err := shared.NewDatabase(path)
	if err != nil {
		t.Fatalf("failed to create library database: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE albums (id INTEGER PRIMARY KEY, album TEXT, albumartist TEXT)`,
		`CREATE TABLE items (id INTEGER PRIMARY KEY, path BLOB, album_id INTEGER, title TEXT, artist TEXT, album TEXT, track INTEGER)`,
		`CREATE TABLE item_attributes (id INTEGER PRIMARY KEY, entity_id INTEGER, key TEXT, value TEXT, UNIQUE(entity_id, key))`,
		`CREATE TABLE album_attributes (id INTEGER PRIMARY KEY, entity_id INTEGER, key TEXT, value TEXT, UNIQUE(entity_id, key))`,
		`INSERT INTO albums (id, album, albumartist) VALUES (1, 'Discovery', 'Daft Punk')`,
		`INSERT INTO items (id, path, album_id, title, artist, album, track) VALUES
			(1, CAST('/music/Daft Punk/Discovery/01.mp3' AS BLOB), 1, 'One More Time', 'Daft Punk', 'Discovery', 1),
			(2, CAST('/music/Daft Punk/Discovery/02.mp3' AS BLOB), 1, 'Aerodynamic', 'Daft Punk', 'Discovery', 2),
			(3, CAST('/music/Rick Astley/Song.mp3' AS BLOB), NULL, 'Never Gonna Give You Up', 'Rick Astley', NULL, 0),
			(4, CAST('/music/Other/Untracked.mp3' AS BLOB), NULL, 'Untracked', 'Other', '', 0)`,
		`INSERT INTO album_attributes (entity_id, key, value) VALUES (1, 'ydl', 'OLAK5uy_discovery')`,
		`INSERT INTO item_attributes (entity_id, key, value) VALUES
			(2, 'ydl', 'bbbbbbbbbbb'),
			(3, 'ydl', 'dQw4w9WgXcQ'),
			(4, 'genre_extra', 'x')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to seed library: %v\n%s", err, stmt)
		}
	}

	return path
}

func newDownload(sourceID string) *models.PersistedDownload {
	return models.NewPersistedDownload(0, &models.Descriptor{
		Kind:     models.KindAlbum,
		Origin:   models.OriginSearch,
		SourceID: sourceID,
		Title:    "Discovery",
		Artists:  []models.Artist{{Name: "Daft Punk"}},
		URL:      "https://music.youtube.com/playlist?list=" + sourceID,
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "downloads")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "users; DROP TABLE downloads"); err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestDownloadRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		d := newDownload("OLAK5uy_a")

		if err := repo.Create(d); err != nil {
			t.Fatalf("failed to create download: %v", err)
		}
		if d.ID() == "" {
			t.Error("download ID should be set after creation")
		}
		if d.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", d.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		d := newDownload("OLAK5uy_a")
		d.SetStagingDir("/cache/Daft Punk/Discovery")
		if err := repo.Create(d); err != nil {
			t.Fatalf("failed to create download: %v", err)
		}

		got, err := repo.Get(d.ID())
		if err != nil {
			t.Fatalf("failed to get download: %v", err)
		}
		if got.SourceID() != "OLAK5uy_a" || got.Artist() != "Daft Punk" || got.Kind() != models.KindAlbum {
			t.Errorf("unexpected download %+v", got)
		}
		if got.StagingDir() != "/cache/Daft Punk/Discovery" || got.Status() != models.StatusPending {
			t.Errorf("unexpected staging/status %s %s", got.StagingDir(), got.Status())
		}
	})

	t.Run("GetBySourceID returns newest", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		first := newDownload("OLAK5uy_a")
		second := newDownload("OLAK5uy_a")
		repo.Create(first)
		repo.Create(second)

		got, err := repo.GetBySourceID("OLAK5uy_a")
		if err != nil {
			t.Fatalf("failed to get download: %v", err)
		}
		if got.ID() != second.ID() {
			t.Errorf("expected newest record %s, got %s", second.ID(), got.ID())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		d := newDownload("OLAK5uy_a")
		repo.Create(d)

		d.SetStatus(models.StatusImported, "")
		d.SetFileCount(11)
		if err := repo.Update(d); err != nil {
			t.Fatalf("failed to update download: %v", err)
		}

		got, _ := repo.Get(d.ID())
		if got.Status() != models.StatusImported || got.FileCount() != 11 {
			t.Errorf("update not persisted: %s %d", got.Status(), got.FileCount())
		}
	})

	t.Run("MarkStatus and HasImported", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		d := newDownload("OLAK5uy_a")
		repo.Create(d)

		if ok, _ := repo.HasImported("OLAK5uy_a"); ok {
			t.Error("pending download should not count as imported")
		}

		if err := repo.MarkStatus(d.ID(), models.StatusFailed, "boom"); err != nil {
			t.Fatalf("MarkStatus failed: %v", err)
		}
		got, _ := repo.Get(d.ID())
		if got.Status() != models.StatusFailed || got.Error() != "boom" {
			t.Errorf("unexpected status %s %q", got.Status(), got.Error())
		}

		repo.MarkStatus(d.ID(), models.StatusImported, "")
		if ok, err := repo.HasImported("OLAK5uy_a"); err != nil || !ok {
			t.Errorf("expected imported, got %v (%v)", ok, err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		d := newDownload("OLAK5uy_a")
		repo.Create(d)
		repo.MarkStatus(d.ID(), models.StatusImported, "")

		if err := repo.Delete(d.ID()); err != nil {
			t.Fatalf("failed to delete download: %v", err)
		}
		if _, err := repo.Get(d.ID()); err == nil {
			t.Error("deleted download should not be returned")
		}
		if ok, _ := repo.HasImported("OLAK5uy_a"); ok {
			t.Error("deleted download should not count as imported")
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		for _, id := range []string{"a", "b", "c"} {
			repo.Create(newDownload(id))
		}
		b, _ := repo.GetBySourceID("b")
		repo.MarkStatus(b.ID(), models.StatusFailed, "x")

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list downloads: %v", err)
		}
		if len(all) != 3 || all[0].SourceID() != "c" {
			t.Errorf("expected newest first, got %d records", len(all))
		}

		failed, _ := repo.List(map[string]any{"status": models.StatusFailed})
		if len(failed) != 1 || failed[0].SourceID() != "b" {
			t.Errorf("unexpected failed list %v", failed)
		}

		limited, _ := repo.List(map[string]any{"limit": 2})
		if len(limited) != 2 {
			t.Errorf("expected 2 records, got %d", len(limited))
		}
	})
}

func TestLibraryRepository(t *testing.T) {
	path := setupLibraryDB(t)

	lib, err := OpenLibrary(path)
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}
	defer lib.Close()

	t.Run("Items", func(t *testing.T) {
		items, err := lib.Items("ydl")
		if err != nil {
			t.Fatalf("Items failed: %v", err)
		}
		if len(items) != 4 {
			t.Fatalf("expected 4 items, got %d", len(items))
		}

		want := map[int64]string{1: "OLAK5uy_discovery", 2: "bbbbbbbbbbb", 3: "dQw4w9WgXcQ", 4: ""}
		for _, item := range items {
			if item.SourceID != want[item.ID] {
				t.Errorf("item %d: expected source %q, got %q", item.ID, want[item.ID], item.SourceID)
			}
		}

		if items[0].Path != "/music/Daft Punk/Discovery/01.mp3" {
			t.Errorf("expected path decoded from blob, got %q", items[0].Path)
		}
		if items[1].TrackNumber != 2 || items[2].Album != "" {
			t.Errorf("unexpected fields %+v %+v", items[1], items[2])
		}
	})

	t.Run("HasSource", func(t *testing.T) {
		tests := []struct {
			id   string
			want bool
		}{
			{"OLAK5uy_discovery", true},
			{"dQw4w9WgXcQ", true},
			{"nope", false},
		}
		for _, tt := range tests {
			got, err := lib.HasSource("ydl", tt.id)
			if err != nil {
				t.Fatalf("HasSource failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasSource(%s) = %v, want %v", tt.id, got, tt.want)
			}
		}
	})

	t.Run("read-only", func(t *testing.T) {
		if _, err := lib.db.Exec(`DELETE FROM items`); err == nil {
			t.Error("expected write to fail on read-only connection")
		}
	})

	t.Run("missing library", func(t *testing.T) {
		if _, err := OpenLibrary(filepath.Join(t.TempDir(), "none.db")); err == nil {
			t.Error("expected error for missing library")
		}
	})
}

func TestPresenceChecker(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	history := NewDownloadRepository(db)
	d := newDownload("hist_only")
	history.Create(d)
	history.MarkStatus(d.ID(), models.StatusImported, "")

	lib, err := OpenLibrary(setupLibraryDB(t))
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}
	defer lib.Close()

	tests := []struct {
		name    string
		checker *PresenceChecker
		id      string
		want    bool
	}{
		{"history hit", NewPresenceChecker(history, lib, "ydl"), "hist_only", true},
		{"library hit", NewPresenceChecker(history, lib, "ydl"), "dQw4w9WgXcQ", true},
		{"miss", NewPresenceChecker(history, lib, "ydl"), "unknown", false},
		{"other field", NewPresenceChecker(nil, lib, "yt"), "dQw4w9WgXcQ", false},
		{"history only", NewPresenceChecker(history, nil, "ydl"), "dQw4w9WgXcQ", false},
		{"empty id", NewPresenceChecker(history, lib, "ydl"), "", false},
		{"no sources", NewPresenceChecker(nil, nil, "ydl"), "hist_only", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.checker.Present(tt.id)
			if err != nil {
				t.Fatalf("Present failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Present(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
