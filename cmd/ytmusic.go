package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytbeets/internal/formatter"
	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/services"
	"github.com/desertthunder/ytbeets/internal/shared"
)

// Search searches YouTube Music for albums or songs.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	meta := r.metadata()
	r.logger.Info("searching youtube music", "query", query, "type", cmd.String("type"))

	var (
		results []services.SearchResult
		err     error
	)
	switch strings.ToLower(cmd.String("type")) {
	case "albums", "album":
		results, err = meta.SearchAlbums(ctx, query)
	case "songs", "song", "tracks", "track":
		results, err = meta.SearchSongs(ctx, query)
	default:
		return fmt.Errorf("%w: --type must be albums or songs, got %q", shared.ErrInvalidFlag, cmd.String("type"))
	}
	if err != nil {
		return err
	}

	if limit := int(cmd.Int("limit")); limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if cmd.Bool("json") {
		if results == nil {
			results = []services.SearchResult{}
		}
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	if len(results) == 0 {
		return fmt.Errorf("%w: %s", shared.ErrNoResults, query)
	}
	return r.writeBytes(formatter.SearchResults(results))
}

// Show prints an album by browse id, or a song by video id with --song.
func (r *Runner) Show(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	meta := r.metadata()

	var desc *models.Descriptor
	if cmd.Bool("song") {
		desc, err = meta.GetSong(ctx, id)
	} else {
		desc, err = meta.GetAlbum(ctx, id)
	}
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		path, err := formatter.WriteExport(desc, format, output)
		if err != nil {
			return err
		}
		r.logger.Info("export written", "path", path, "format", format)
		return r.writePlain("✓ Written to %s\n", path)
	}

	data, err := formatter.Render(desc, format)
	if err != nil {
		return err
	}
	if err := r.writeBytes(data); err != nil {
		return err
	}
	if format == formatter.FormatJSON {
		return r.writePlain("\n")
	}

	if n := len(desc.Unavailable()); n > 0 && format == formatter.FormatText {
		r.logger.Warn("release has unavailable tracks", "unavailable", n, "tracks", len(desc.Tracks))
	}
	return nil
}
