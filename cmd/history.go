package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytbeets/internal/formatter"
	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/shared"
)

// History lists recorded downloads, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	criteria := map[string]any{"limit": int(cmd.Int("limit"))}

	if status := cmd.String("status"); status != "" {
		if !models.Status(status).Valid() {
			return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidFlag, status)
		}
		criteria["status"] = models.Status(status)
	}
	if source := cmd.String("source"); source != "" {
		criteria["source_id"] = source
	}

	history, err := r.openHistory()
	if err != nil {
		return err
	}

	downloads, err := history.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, err := formatter.HistoryJSON(downloads, cmd.Bool("pretty"))
		if err != nil {
			return err
		}
		if err := r.writeBytes(data); err != nil {
			return err
		}
		return r.writePlain("\n")
	}

	if len(downloads) == 0 {
		return r.writePlain("No downloads recorded.\n")
	}
	return r.writeBytes(formatter.History(downloads))
}

// HistoryMark sets the status of the most recent download of a source.
//
// Marking an imported source as failed lets the next fetch run without --force.
func (r *Runner) HistoryMark(ctx context.Context, cmd *cli.Command) error {
	source := strings.TrimSpace(cmd.StringArg("source"))
	status := models.Status(strings.TrimSpace(cmd.StringArg("status")))
	if source == "" || status == "" {
		return fmt.Errorf("%w: history mark requires <source-id> and <status>", shared.ErrMissingArgument)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidArgument, status)
	}

	history, err := r.openHistory()
	if err != nil {
		return err
	}

	d, err := history.GetBySourceID(source)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	note := ""
	if status == models.StatusFailed {
		note = "marked by user"
	}
	if err := history.MarkStatus(d.ID(), status, note); err != nil {
		return err
	}

	r.logger.Info("download status changed", "source_id", source, "from", d.Status(), "to", status)
	return r.writePlain("✓ #%d %s: %s -> %s\n", d.Sequence(), source, d.Status(), status)
}

// HistoryForget soft-deletes every download record of a source.
func (r *Runner) HistoryForget(ctx context.Context, cmd *cli.Command) error {
	source := strings.TrimSpace(cmd.StringArg("source"))
	if source == "" {
		return fmt.Errorf("%w: history forget requires <source-id>", shared.ErrMissingArgument)
	}

	history, err := r.openHistory()
	if err != nil {
		return err
	}

	removed := 0
	for {
		d, err := history.GetBySourceID(source)
		if errors.Is(err, shared.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return err
		}
		if err := history.Delete(d.ID()); err != nil {
			return err
		}
		removed++
	}

	if removed == 0 {
		return fmt.Errorf("%s: %w", source, shared.ErrRecordNotFound)
	}
	return r.writePlain("✓ Forgot %d records for %s\n", removed, source)
}
