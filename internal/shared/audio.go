package shared

import (
	"path/filepath"
	"slices"
	"strings"
)

// AudioExtensions lists the file extensions treated as audio in the staging cache.
var AudioExtensions = []string{".mp3", ".flac", ".opus", ".ogg", ".m4a", ".mp4", ".wav", ".aiff"}

// IsAudioFile reports whether path has a known audio extension.
func IsAudioFile(path string) bool {
	return slices.Contains(AudioExtensions, strings.ToLower(filepath.Ext(path)))
}

// FileStem returns the base name of path without its extension.
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
