package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytbeets/internal/repositories"
	"github.com/desertthunder/ytbeets/internal/services"
	"github.com/desertthunder/ytbeets/internal/shared"
	"github.com/desertthunder/ytbeets/internal/staging"
	"github.com/desertthunder/ytbeets/internal/tags"
	"github.com/desertthunder/ytbeets/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Collaborators left nil in [RunnerOpts] are built from configuration by [Runner.wire].
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	exec       services.CommandRunner
	db         *sql.DB
	meta       services.MetadataService
	downloader services.Downloader
	importer   services.Importer
	tagger     tasks.TagWriter
	cache      *staging.Cache
	history    *repositories.DownloadRepository
	library    *repositories.LibraryRepository
	engine     *tasks.ImportEngine

	// quietImport runs beets without prompts, for commands that own the terminal.
	quietImport bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Exec       services.CommandRunner
	DB         *sql.DB
	Metadata   services.MetadataService
	Downloader services.Downloader
	Importer   services.Importer
	Tagger     tasks.TagWriter
	Library    *repositories.LibraryRepository
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		exec:       opts.Exec,
		db:         opts.DB,
		meta:       opts.Metadata,
		downloader: opts.Downloader,
		importer:   opts.Importer,
		tagger:     opts.Tagger,
		library:    opts.Library,
	}
}

// SetLogger replaces the logger, e.g. to keep log lines out of the picker's screen.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.engine = nil
}

// Before loads the configuration named by --config and applies --verbose.
//
// A missing file falls back to built-in defaults so that `setup config` can create it.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if path == "" {
		path = shared.DefaultConfigPath()
	}
	r.configPath = path

	switch _, err := os.Stat(path); {
	case err == nil:
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		r.config = config
	case cmd.IsSet("config"):
		r.logger.Warn("config file not found, using defaults", "path", path)
	default:
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	if cmd.Bool("verbose") || r.config.Behaviour.Verbose {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// After releases the databases opened by [Runner.wire].
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// Close closes the history and library databases.
func (r *Runner) Close() error {
	var errs []error
	if r.library != nil {
		errs = append(errs, r.library.Close())
		r.library = nil
	}
	if r.db != nil {
		errs = append(errs, r.db.Close())
		r.db = nil
	}
	r.history = nil
	r.engine = nil
	return errors.Join(errs...)
}

// openHistory opens the history database and applies pending migrations.
func (r *Runner) openHistory() (*repositories.DownloadRepository, error) {
	if r.history != nil {
		return r.history, nil
	}

	if r.db == nil {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return nil, err
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		r.db = db
	}

	if err := shared.RunMigrations(r.db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.history = repositories.NewDownloadRepository(r.db)
	return r.history, nil
}

// openLibrary opens the beets library read-only. A missing library is not an error; nil is returned.
func (r *Runner) openLibrary() *repositories.LibraryRepository {
	if r.library != nil {
		return r.library
	}

	library, err := repositories.OpenLibrary(r.config.Import.Library)
	if err != nil {
		r.logger.Warn("beets library unavailable, presence checks use history only", "path", r.config.Import.Library, "err", err)
		return nil
	}
	r.library = library
	return library
}

// metadata returns the metadata client, building it from configuration when needed.
func (r *Runner) metadata() services.MetadataService {
	if r.meta == nil {
		client := services.NewHTTPClient(r.config.Metadata, shared.WithLogger(r.logger, "service", "ytmusic"))
		svc := services.NewYouTubeMusicService(r.config.Metadata.ProxyURL, client)
		svc.SetAuthFile(r.config.Metadata.AuthFile)
		r.meta = svc
	}
	return r.meta
}

// wire builds every collaborator of the import engine that was not injected.
func (r *Runner) wire() (*tasks.ImportEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	if r.exec == nil {
		r.exec = services.NewExecRunner(shared.WithLogger(r.logger, "component", "exec"))
	}
	if r.downloader == nil {
		ytdlp, err := services.NewYTDLP(r.config.Download, r.exec)
		if err != nil {
			return nil, err
		}
		r.downloader = ytdlp
	}
	if r.importer == nil {
		beets, err := services.NewBeets(r.config.Import, r.debug(), r.exec)
		if err != nil {
			return nil, err
		}
		if r.quietImport {
			beets = beets.Quiet()
		}
		r.importer = beets
	}
	if r.tagger == nil {
		r.tagger = tags.NewWriter(r.config.Import.Field)
	}
	if r.cache == nil {
		r.cache = staging.New(r.config.Paths.CacheDir)
	}

	history, err := r.openHistory()
	if err != nil {
		return nil, err
	}

	var library repositories.SourceIndex
	if lib := r.openLibrary(); lib != nil {
		library = lib
	}

	r.engine = tasks.NewImportEngine(tasks.Dependencies{
		Metadata:   r.metadata(),
		Downloader: r.downloader,
		Importer:   r.importer,
		Tagger:     r.tagger,
		Stager:     r.cache,
		Presence:   repositories.NewPresenceChecker(history, library, r.config.Import.Field),
		History:    history,
		Logger:     shared.WithLogger(r.logger, "component", "engine"),
	}, tasks.Settings{
		Concurrency:   r.config.Download.Concurrency,
		PlaylistURL:   r.config.Download.PlaylistURL,
		WatchURL:      r.config.Download.WatchURL,
		SplitChapters: r.config.Download.SplitChapters,
	})

	return r.engine, nil
}

func (r *Runner) debug() bool {
	return r.logger.GetLevel() <= log.DebugLevel
}

// options merges per-run flags with the [behaviour] defaults.
func (r *Runner) options(cmd *cli.Command) tasks.Options {
	return tasks.Options{
		KeepFiles: cmd.Bool("keep-files") || r.config.Behaviour.KeepFiles,
		Force:     cmd.Bool("force") || r.config.Behaviour.Force,
		NoImport:  cmd.Bool("no-import") || !r.config.Import.Enabled,
		DryRun:    cmd.Bool("dry-run"),
	}
}

// reportProgress prints updates from the returned channel until it is closed; wait blocks until
// every update has been written.
func (r *Runner) reportProgress() (progress chan tasks.ProgressUpdate, wait func()) {
	progress = make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			switch update.Phase {
			case tasks.Done:
			case tasks.Scan:
				r.writePlain("\n%s\n", update.Message)
			default:
				r.writePlain("  %s\n", update.Message)
			}
		}
	}()
	return progress, func() {
		close(progress)
		wg.Wait()
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		albumCommand, trackCommand, missingCommand, searchCommand, showCommand, pickCommand,
		historyCommand, cacheCommand, setupCommand, doctorCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
