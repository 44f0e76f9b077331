// Package tags stamps provenance tags on downloaded audio files.
//
// The source identifier is written to a custom field (the beets flexible attribute name,
// upper-cased in the file) and the source URL to <FIELD>_URL. MP3 files get ID3v2.4 TXXX
// frames; other formats get TagLib property map entries merged into the existing tags.
package tags

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertthunder/ytbeets/internal/shared"
)

// Writer stamps and reads back the source identifier field.
type Writer struct {
	field string
}

// NewWriter creates a Writer for the given beets field name (e.g. "ydl").
func NewWriter(field string) *Writer {
	if field == "" {
		field = "ydl"
	}
	return &Writer{field: field}
}

// Field returns the lower-case field name.
func (w *Writer) Field() string { return w.field }

// Key returns the tag key written to files.
func (w *Writer) Key() string { return strings.ToUpper(w.field) }

// URLKey returns the tag key holding the source URL.
func (w *Writer) URLKey() string { return w.Key() + "_URL" }

// WriteSource stamps sourceID and url into the file at path.
func (w *Writer) WriteSource(path, sourceID, url string) error {
	if sourceID == "" {
		return fmt.Errorf("%w: empty source id for %s", shared.ErrTagFailed, path)
	}

	values := map[string]string{w.Key(): sourceID}
	if url != "" {
		values[w.URLKey()] = url
	}

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".mp3":
		err = writeMP3(path, values)
	case supported(ext):
		err = writeTagLib(path, values)
	default:
		return fmt.Errorf("%w: %s", shared.ErrUnsupportedFormat, ext)
	}

	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrTagFailed, filepath.Base(path), err)
	}
	return nil
}

// ReadSource returns the stamped source identifier, or "" when the file has none.
func (w *Writer) ReadSource(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".mp3":
		return readMP3(path, w.Key())
	case supported(ext):
		return readTagLib(path, w.Key())
	default:
		return "", fmt.Errorf("%w: %s", shared.ErrUnsupportedFormat, ext)
	}
}

func supported(ext string) bool {
	return ext != ".mp3" && shared.IsAudioFile("x"+ext)
}
