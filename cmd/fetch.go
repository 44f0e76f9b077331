package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytbeets/internal/formatter"
	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/shared"
	"github.com/desertthunder/ytbeets/internal/tasks"
)

// Album fetches an album by artist and title, or from --url.
func (r *Runner) Album(ctx context.Context, cmd *cli.Command) error {
	return r.fetch(ctx, cmd, models.KindAlbum)
}

// Track fetches a single track by artist and title, or from --url.
func (r *Runner) Track(ctx context.Context, cmd *cli.Command) error {
	return r.fetch(ctx, cmd, models.KindTrack)
}

func (r *Runner) fetch(ctx context.Context, cmd *cli.Command, kind models.Kind) error {
	req := tasks.Request{
		Kind:   kind,
		Artist: strings.TrimSpace(cmd.StringArg("artist")),
		Title:  strings.TrimSpace(cmd.StringArg("title")),
		URL:    strings.TrimSpace(cmd.String("url")),
	}
	if req.URL == "" && (req.Artist == "" || req.Title == "") {
		return fmt.Errorf("%w: %s requires <artist> and <title>, or --url", shared.ErrMissingArgument, kind)
	}

	engine, err := r.wire()
	if err != nil {
		return err
	}

	opts := r.options(cmd)
	r.logger.Info("fetching", "kind", kind, "artist", req.Artist, "title", req.Title, "url", req.URL)

	progress, wait := r.reportProgress()
	result, err := engine.Run(ctx, req, opts, progress)
	wait()

	if result != nil && (opts.DryRun || r.debug()) {
		if text, ferr := formatter.ExportToText(result.Descriptor); ferr == nil {
			r.writePlainln("%s", strings.TrimRight(string(text), "\n"))
		}
	}

	if err != nil {
		if dir := failedStagingDir(result); dir != "" {
			r.logger.Warn("staging directory kept for inspection", "dir", dir)
			r.writePlain("Files kept in %s\n", dir)
		}
		return err
	}

	r.reportResult(result)
	return nil
}

// failedStagingDir returns the staging directory a failed run left behind, or "".
func failedStagingDir(result *tasks.Result) string {
	if result == nil || result.StagingDir == "" {
		return ""
	}
	if _, err := os.Stat(result.StagingDir); err != nil {
		return ""
	}
	return result.StagingDir
}

// reportResult prints the outcome of a single run.
func (r *Runner) reportResult(result *tasks.Result) {
	desc := result.Descriptor

	switch {
	case result.Skipped:
		r.writePlainln("%s is already in the library (%s); use --force to fetch it again", desc, desc.SourceID)
	case result.DryRun:
		r.writePlainln("Dry run: would download %s into %s", desc, result.StagingDir)
	case result.Imported:
		r.writePlainln("✓ Imported %s (%d files)", desc, len(result.Files))
	default:
		r.writePlainln("✓ Downloaded %s (%d files), import skipped", desc, len(result.Files))
	}

	if result.Kept {
		r.writePlain("Files kept in %s\n", result.StagingDir)
	}
}
