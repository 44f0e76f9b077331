package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/shared"
	"github.com/desertthunder/ytbeets/internal/tasks"
	"github.com/desertthunder/ytbeets/internal/ui"
)

// Pick launches the interactive picker for query.
func (r *Runner) Pick(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	engine, err := r.pickEngine()
	if err != nil {
		return err
	}

	kind := models.KindAlbum
	if cmd.Bool("song") {
		kind = models.KindTrack
	}

	model := ui.NewModel(ctx, r.metadata(), engine, query, kind, r.options(cmd))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// pickEngine wires the engine for the picker: logs go to the log file and beets runs without
// prompts, since bubbletea owns the terminal.
func (r *Runner) pickEngine() (*tasks.ImportEngine, error) {
	fileLogger, err := shared.NewFileLogger(r.config.Paths.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	r.quietImport = true
	return r.wire()
}
