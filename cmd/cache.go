package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/staging"
)

func (r *Runner) stagingCache() *staging.Cache {
	if r.cache == nil {
		r.cache = staging.New(r.config.Paths.CacheDir)
	}
	return r.cache
}

// CacheStatus prints the staging cache location and size.
func (r *Runner) CacheStatus(ctx context.Context, cmd *cli.Command) error {
	cache := r.stagingCache()

	report, err := cache.Report()
	if err != nil {
		return err
	}

	r.writePlain("Staging cache: %s\n", cache.Root())
	r.writePlain("Usage: %s\n", report)
	return nil
}

// CacheClean removes staging directories kept after a successful import.
//
// Directories of failed downloads and of runs with import disabled are left alone unless --all
// is given, which empties the whole cache.
func (r *Runner) CacheClean(ctx context.Context, cmd *cli.Command) error {
	cache := r.stagingCache()

	if cmd.Bool("all") {
		before, err := cache.Report()
		if err != nil {
			return err
		}
		if err := cache.Purge(); err != nil {
			return err
		}
		r.logger.Info("staging cache purged", "root", cache.Root())
		return r.writePlain("✓ Removed %s from %s\n", before, cache.Root())
	}

	history, err := r.openHistory()
	if err != nil {
		return err
	}

	downloads, err := history.List(map[string]any{"status": models.StatusImported})
	if err != nil {
		return err
	}

	removed := 0
	seen := map[string]bool{}
	for _, d := range downloads {
		dir := d.StagingDir()
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true

		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := cache.Clean(dir); err != nil {
			r.logger.Warn("failed to clean staging directory", "dir", dir, "err", err)
			continue
		}
		r.logger.Debug("removed staging directory", "dir", dir, "source_id", d.SourceID())
		removed++
	}

	return r.writePlain("✓ Removed %d staging directories\n", removed)
}
