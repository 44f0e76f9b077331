package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/shared"
)

const downloadColumns = `id, sequence, source_id, kind, origin, artist, title, url, staging_dir, status, error, file_count, created_at, updated_at, deleted_at`

var _ models.Repository[*models.PersistedDownload] = (*DownloadRepository)(nil)

// DownloadRepository stores the download history.
type DownloadRepository struct {
	db *sql.DB
}

// NewDownloadRepository creates a new DownloadRepository with the given database connection
func NewDownloadRepository(db *sql.DB) *DownloadRepository {
	return &DownloadRepository{db: db}
}

// Create inserts a new [models.PersistedDownload] with generated ID and sequence
func (r *DownloadRepository) Create(d *models.PersistedDownload) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "downloads")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	d.SetID(shared.GenerateID())
	d.SetSequence(sequence)

	_, err = r.db.Exec(`
		INSERT INTO downloads (id, sequence, source_id, kind, origin, artist, title, url, staging_dir, status, error, file_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID(), d.Sequence(), d.SourceID(), string(d.Kind()), string(d.Origin()),
		d.Artist(), d.Title(), d.URL(), d.StagingDir(), string(d.Status()), d.Error(), d.FileCount(),
		d.CreatedAt(), d.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert download: %w", err)
	}

	return nil
}

// Get retrieves a download by ID, excluding soft-deleted records
func (r *DownloadRepository) Get(id string) (*models.PersistedDownload, error) {
	row := r.db.QueryRow(`SELECT `+downloadColumns+` FROM downloads WHERE id = ? AND deleted_at IS NULL`, id)
	return scanDownload(row)
}

// GetBySourceID retrieves the most recent download for a source identifier
func (r *DownloadRepository) GetBySourceID(sourceID string) (*models.PersistedDownload, error) {
	row := r.db.QueryRow(`
		SELECT `+downloadColumns+` FROM downloads
		WHERE source_id = ? AND deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1`, sourceID)
	return scanDownload(row)
}

// HasImported reports whether any live record for sourceID reached the imported status.
func (r *DownloadRepository) HasImported(sourceID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM downloads WHERE source_id = ? AND status = ? AND deleted_at IS NULL)`,
		sourceID, string(models.StatusImported),
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to query downloads: %w", err)
	}
	return ok, nil
}

// Update modifies the mutable fields of an existing download
func (r *DownloadRepository) Update(d *models.PersistedDownload) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	d.SetUpdatedAt(now)

	result, err := r.db.Exec(`
		UPDATE downloads
		SET source_id = ?, artist = ?, title = ?, url = ?, staging_dir = ?, status = ?, error = ?, file_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		d.SourceID(), d.Artist(), d.Title(), d.URL(), d.StagingDir(), string(d.Status()), d.Error(), d.FileCount(), now,
		d.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update download: %w", err)
	}

	return expectRow(result, d.ID())
}

// MarkStatus moves a download to status, storing errText.
func (r *DownloadRepository) MarkStatus(id string, status models.Status, errText string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status %q", shared.ErrInvalidInput, status)
	}

	result, err := r.db.Exec(`
		UPDATE downloads SET status = ?, error = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		string(status), errText, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update download status: %w", err)
	}

	return expectRow(result, id)
}

// Delete soft-deletes a download by ID
func (r *DownloadRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE downloads SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete download: %w", err)
	}

	return expectRow(result, id)
}

// List retrieves downloads matching the given criteria, newest first.
//
// Supported criteria: "status" (string or models.Status), "source_id", "kind" and "limit" (int).
func (r *DownloadRepository) List(criteria map[string]any) ([]*models.PersistedDownload, error) {
	query := `SELECT ` + downloadColumns + ` FROM downloads WHERE deleted_at IS NULL`
	args := []any{}

	for _, key := range []string{"status", "source_id", "kind"} {
		var value string
		switch v := criteria[key].(type) {
		case string:
			value = v
		case models.Status:
			value = string(v)
		case models.Kind:
			value = string(v)
		}
		if value != "" {
			query += " AND " + key + " = ?"
			args = append(args, value)
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var downloads []*models.PersistedDownload
	for rows.Next() {
		d, err := scanDownload(rows)
		if err != nil {
			return nil, err
		}
		downloads = append(downloads, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return downloads, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDownload(s scanner) (*models.PersistedDownload, error) {
	var (
		id, sourceID, kind, origin  string
		artist, title, url, staging string
		status, errText             string
		sequence, fileCount         int
		createdAt, updatedAt        time.Time
		deletedAt                   sql.NullTime
	)

	err := s.Scan(&id, &sequence, &sourceID, &kind, &origin, &artist, &title, &url, &staging, &status, &errText, &fileCount, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan download: %w", err)
	}

	d := models.NewPersistedDownload(sequence, &models.Descriptor{
		Kind:     models.Kind(kind),
		Origin:   models.Origin(origin),
		SourceID: sourceID,
		Title:    title,
		Artists:  []models.Artist{{Name: artist}},
		URL:      url,
	})
	d.SetID(id)
	d.SetStagingDir(staging)
	d.SetStatus(models.Status(status), errText)
	d.SetFileCount(fileCount)
	d.SetCreatedAt(createdAt)
	d.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		d.SetDeletedAt(&deletedAt.Time)
	}

	return d, nil
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRecordNotFound, id)
	}
	return nil
}
