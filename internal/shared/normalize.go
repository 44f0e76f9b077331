package shared

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/rainycape/unidecode"
)

// NormalizeName folds s for identity comparisons: ASCII transliteration, lower case,
// punctuation dropped and whitespace collapsed.
func NormalizeName(s string) string {
	s = strings.ToLower(unidecode.Unidecode(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		if r == '&' {
			return ' '
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// fullAlbumMarker matches "full album" decorations in upload titles, with their brackets and a
// dangling separator.
var fullAlbumMarker = regexp.MustCompile(`(?i)\s*(?:[-|:]\s*)?[(\[]?\s*\bfull[\s-]+album\b\s*[)\]]?`)

// StripFullAlbum removes "(Full Album)" style decorations from title.
func StripFullAlbum(title string) string {
	return strings.TrimSpace(fullAlbumMarker.ReplaceAllString(title, ""))
}

// creditSeparator splits joint credits such as "A & B", "A, B" or "A feat. B".
var creditSeparator = regexp.MustCompile(`(?i)\s*(?:,|&|\bfeat\b\.?|\bft\b\.?|\bfeaturing\b)\s*`)

// ContainsName reports whether want equals one of names, or one of the credits joined in a
// name, after [NormalizeName]. Partial names do not match.
//
// An empty want matches everything.
func ContainsName(names []string, want string) bool {
	want = NormalizeName(want)
	if want == "" {
		return true
	}
	for _, name := range names {
		if NormalizeName(name) == want {
			return true
		}
		for _, credit := range creditSeparator.Split(name, -1) {
			if NormalizeName(credit) == want {
				return true
			}
		}
	}
	return false
}

// FormatDuration renders seconds as m:ss, or h:mm:ss past an hour.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// MarshalJSON encodes v, indented when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
