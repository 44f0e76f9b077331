package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/shared"
)

// LibraryRepository reads the beets library database.
//
// beets stores custom fields as flexible attributes in item_attributes and
// album_attributes; item paths are stored as BLOBs.
type LibraryRepository struct {
	db *sql.DB
}

// NewLibraryRepository wraps an open beets library connection.
func NewLibraryRepository(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// OpenLibrary opens the beets library at path read-only.
func OpenLibrary(path string) (*LibraryRepository, error) {
	db, err := shared.OpenReadOnly(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open beets library: %w", err)
	}
	return NewLibraryRepository(db), nil
}

// Close closes the underlying connection.
func (r *LibraryRepository) Close() error {
	return r.db.Close()
}

// Items returns every library item with its value for field.
//
// Item-level attributes win over album-level ones; items with neither have an empty SourceID.
func (r *LibraryRepository) Items(field string) ([]models.LibraryItem, error) {
	rows, err := r.db.Query(`
		SELECT i.id, i.path, i.title, i.artist, i.album, i.track,
		       COALESCE(ia.value, aa.value, '')
		FROM items i
		LEFT JOIN item_attributes ia ON ia.entity_id = i.id AND ia.key = ?
		LEFT JOIN album_attributes aa ON aa.entity_id = i.album_id AND aa.key = ?
		ORDER BY i.id`, field, field)
	if err != nil {
		return nil, fmt.Errorf("failed to query library items: %w", err)
	}
	defer rows.Close()

	var items []models.LibraryItem
	for rows.Next() {
		var (
			item   models.LibraryItem
			path   []byte
			title  sql.NullString
			artist sql.NullString
			album  sql.NullString
			track  sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &path, &title, &artist, &album, &track, &item.SourceID); err != nil {
			return nil, fmt.Errorf("failed to scan library item: %w", err)
		}
		item.Path = string(path)
		item.Title = title.String
		item.Artist = artist.String
		item.Album = album.String
		item.TrackNumber = int(track.Int64)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// HasSource reports whether any item or album carries field = id.
func (r *LibraryRepository) HasSource(field, id string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM item_attributes WHERE key = ? AND value = ?)
		    OR EXISTS(SELECT 1 FROM album_attributes WHERE key = ? AND value = ?)`,
		field, id, field, id,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to query library: %w", err)
	}
	return ok, nil
}
