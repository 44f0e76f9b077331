package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytbeets/internal/formatter"
	"github.com/desertthunder/ytbeets/internal/shared"
)

// Missing re-downloads beets library items whose files no longer exist.
//
// Failures of single sources are reported and the scan continues; the command only fails when
// the library cannot be read or every source failed.
func (r *Runner) Missing(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.wire()
	if err != nil {
		return err
	}

	library := r.openLibrary()
	if library == nil {
		return fmt.Errorf("%w: beets library %s cannot be opened", shared.ErrMissingConfig, r.config.Import.Library)
	}

	items, err := library.Items(r.config.Import.Field)
	if err != nil {
		return err
	}

	opts := r.options(cmd)
	r.logger.Info("scanning library for missing items", "items", len(items), "field", r.config.Import.Field)

	progress, wait := r.reportProgress()
	result, err := engine.Missing(ctx, items, opts, progress)
	wait()
	if err != nil {
		return err
	}

	if err := r.writeBytes(formatter.MissingReport(result)); err != nil {
		return err
	}

	if result.Failed > 0 && result.Fetched == 0 {
		return fmt.Errorf("%w: all %d sources failed", shared.ErrDownloadFailed, result.Failed)
	}
	return nil
}
