package models

import (
	"fmt"
	"slices"
	"time"
)

// Status is the lifecycle state of a [PersistedDownload].
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusImported    Status = "imported"
	StatusFailed      Status = "failed"
	StatusSkipped     Status = "skipped"
)

var statuses = []Status{StatusPending, StatusDownloading, StatusImported, StatusFailed, StatusSkipped}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return slices.Contains(statuses, s)
}

// PersistedDownload records one fetch request and its outcome.
//
// Implements [Model].
type PersistedDownload struct {
	id         string
	sequence   int
	sourceID   string
	kind       Kind
	origin     Origin
	artist     string
	title      string
	url        string
	stagingDir string
	status     Status
	errText    string
	fileCount  int
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewPersistedDownload creates a pending download record for desc.
func NewPersistedDownload(sequence int, desc *Descriptor) *PersistedDownload {
	now := time.Now()
	return &PersistedDownload{
		sequence:  sequence,
		sourceID:  desc.SourceID,
		kind:      desc.Kind,
		origin:    desc.Origin,
		artist:    desc.Artist(),
		title:     desc.Title,
		url:       desc.URL,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}
}

func (d *PersistedDownload) ID() string            { return d.id }
func (d *PersistedDownload) Sequence() int         { return d.sequence }
func (d *PersistedDownload) SourceID() string      { return d.sourceID }
func (d *PersistedDownload) Kind() Kind            { return d.kind }
func (d *PersistedDownload) Origin() Origin        { return d.origin }
func (d *PersistedDownload) Artist() string        { return d.artist }
func (d *PersistedDownload) Title() string         { return d.title }
func (d *PersistedDownload) URL() string           { return d.url }
func (d *PersistedDownload) StagingDir() string    { return d.stagingDir }
func (d *PersistedDownload) Status() Status        { return d.status }
func (d *PersistedDownload) Error() string         { return d.errText }
func (d *PersistedDownload) FileCount() int        { return d.fileCount }
func (d *PersistedDownload) CreatedAt() time.Time  { return d.createdAt }
func (d *PersistedDownload) UpdatedAt() time.Time  { return d.updatedAt }
func (d *PersistedDownload) DeletedAt() *time.Time { return d.deletedAt }

func (d *PersistedDownload) SetID(id string)            { d.id = id }
func (d *PersistedDownload) SetSequence(seq int)        { d.sequence = seq }
func (d *PersistedDownload) SetStagingDir(dir string)   { d.stagingDir = dir }
func (d *PersistedDownload) SetFileCount(n int)         { d.fileCount = n }
func (d *PersistedDownload) SetCreatedAt(t time.Time)   { d.createdAt = t }
func (d *PersistedDownload) SetUpdatedAt(t time.Time)   { d.updatedAt = t }
func (d *PersistedDownload) SetDeletedAt(t *time.Time)  { d.deletedAt = t }
func (d *PersistedDownload) SetURL(u string)            { d.url = u }
func (d *PersistedDownload) SetArtistTitle(a, t string) { d.artist, d.title = a, t }
func (d *PersistedDownload) SetOrigin(o Origin)         { d.origin = o }
func (d *PersistedDownload) SetKind(k Kind)             { d.kind = k }
func (d *PersistedDownload) SetSourceID(id string)      { d.sourceID = id }

// SetStatus moves the record to s and stores errText (empty clears it).
func (d *PersistedDownload) SetStatus(s Status, errText string) {
	d.status = s
	d.errText = errText
}

// Validate checks that the source id is set and the status is known.
func (d *PersistedDownload) Validate() error {
	if d.sourceID == "" {
		return fmt.Errorf("source id is required")
	}
	if !d.status.Valid() {
		return fmt.Errorf("invalid status %q", d.status)
	}
	return nil
}
