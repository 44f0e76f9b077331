package tasks

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/desertthunder/ytbeets/internal/models"
)

// MissingGroup is a set of missing items sharing one source id.
//
// TrackNumbers is nil when the whole source must be fetched.
type MissingGroup struct {
	SourceID     string
	Kind         models.Kind
	Items        []models.LibraryItem
	TrackNumbers []int
}

// MissingResult describes the outcome of [ImportEngine.Missing].
type MissingResult struct {
	Scanned int
	Missing []models.LibraryItem
	Groups  []MissingGroup
	Fetched int
	Failed  int
	Errors  map[string]error // keyed by source id
	DryRun  bool
}

// FileExists reports whether path exists on disk.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FindMissing returns the items that carry a source id and whose file does not exist.
func FindMissing(items []models.LibraryItem, exists func(string) bool) []models.LibraryItem {
	var missing []models.LibraryItem
	for _, item := range items {
		if item.SourceID == "" || exists(item.Path) {
			continue
		}
		missing = append(missing, item)
	}
	return missing
}

// GroupMissing groups items by source id in first-seen order.
//
// Video ids become track groups. Other ids are playlists restricted to the items' track
// numbers, unless one of them is unknown (0).
func GroupMissing(items []models.LibraryItem) []MissingGroup {
	var groups []MissingGroup
	index := map[string]int{}

	for _, item := range items {
		i, ok := index[item.SourceID]
		if !ok {
			kind := models.KindPlaylist
			if IsVideoID(item.SourceID) {
				kind = models.KindTrack
			}
			groups = append(groups, MissingGroup{SourceID: item.SourceID, Kind: kind})
			i = len(groups) - 1
			index[item.SourceID] = i
		}
		groups[i].Items = append(groups[i].Items, item)
	}

	for i := range groups {
		g := &groups[i]
		if g.Kind == models.KindTrack {
			continue
		}
		var nums []int
		for _, item := range g.Items {
			if item.TrackNumber <= 0 {
				nums = nil
				break
			}
			nums = append(nums, item.TrackNumber)
		}
		slices.Sort(nums)
		g.TrackNumbers = slices.Compact(nums)
	}

	return groups
}

// descriptor rebuilds a fetchable descriptor from the group's library records.
func (g MissingGroup) descriptor() *models.Descriptor {
	first := g.Items[0]
	title := first.Album
	if g.Kind == models.KindTrack || title == "" {
		title = first.Title
	}

	desc := &models.Descriptor{
		Kind:     g.Kind,
		Origin:   models.OriginMissing,
		SourceID: g.SourceID,
		Title:    title,
	}
	if first.Artist != "" {
		desc.Artists = []models.Artist{{Name: first.Artist}}
	}
	return desc
}

// Missing finds library items whose file is gone and re-fetches them group by group.
//
// The presence check is bypassed. A failing group is logged and counted; the scan continues
// until every group was tried or ctx is cancelled.
func (e *ImportEngine) Missing(ctx context.Context, items []models.LibraryItem, opts Options, progress chan<- ProgressUpdate) (*MissingResult, error) {
	exists := e.exists
	if exists == nil {
		exists = FileExists
	}

	result := &MissingResult{
		Scanned: len(items),
		Missing: FindMissing(items, exists),
		Errors:  map[string]error{},
		DryRun:  opts.DryRun,
	}
	result.Groups = GroupMissing(result.Missing)

	e.logger.Info("scanned library", "items", len(items), "missing", len(result.Missing), "sources", len(result.Groups))

	if opts.DryRun {
		return result, nil
	}

	opts.Force = true
	for i, group := range result.Groups {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e.sendProgress(progress, scanUpdate(i+1, len(result.Groups), group))

		desc := group.descriptor()
		desc.URL = e.sourceURL(desc)

		if _, err := e.process(ctx, desc, group.TrackNumbers, opts, progress); err != nil {
			e.logger.Error("failed to re-fetch", "source_id", group.SourceID, "items", len(group.Items), "err", err)
			result.Failed++
			result.Errors[group.SourceID] = fmt.Errorf("%s: %w", desc, err)
			continue
		}
		result.Fetched++
	}

	return result, nil
}
