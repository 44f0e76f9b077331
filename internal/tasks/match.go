package tasks

import (
	"github.com/desertthunder/ytbeets/internal/services"
	"github.com/desertthunder/ytbeets/internal/shared"
)

// BestMatch picks the first result whose normalised title equals title and whose artists
// contain artist, falling back to the first result. results must not be empty.
func BestMatch(results []services.SearchResult, artist, title string) services.SearchResult {
	want := shared.NormalizeName(title)
	for _, r := range results {
		if shared.NormalizeName(r.Title) == want && shared.ContainsName(r.ArtistNames(), artist) {
			return r
		}
	}
	return results[0]
}
