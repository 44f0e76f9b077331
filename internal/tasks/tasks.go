// package tasks implements the fetch pipeline: resolve, gate, download, tag, import, clean.
//
// The core abstraction is ImportEngine, which orchestrates one request or a missing-items scan.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/services"
	"github.com/desertthunder/ytbeets/internal/shared"
)

// Request is a user request to fetch an album, track or playlist.
//
// When URL is set the catalogue is not searched.
type Request struct {
	Kind   models.Kind
	Artist string
	Title  string
	URL    string
}

// Options tune a single run.
type Options struct {
	KeepFiles bool // keep the staging directory after import
	Force     bool // fetch even when the source id is already present
	NoImport  bool // stop after tagging; implies keeping files
	DryRun    bool // stop after the presence check
}

// Result describes the outcome of [ImportEngine.Run].
type Result struct {
	Descriptor *models.Descriptor
	StagingDir string
	Files      []string
	Skipped    bool
	DryRun     bool
	Imported   bool
	Kept       bool
	Record     *models.PersistedDownload
}

// TagWriter stamps the source id into a downloaded file.
type TagWriter interface {
	WriteSource(path, sourceID, url string) error
}

// Stager owns the staging directories.
type Stager interface {
	Dir(desc *models.Descriptor) string
	Prepare(desc *models.Descriptor) (string, error)
	Clean(dir string) error
}

// PresenceChecker reports whether a source id was already fetched.
type PresenceChecker interface {
	Present(id string) (bool, error)
}

// HistoryRecorder persists download records.
type HistoryRecorder interface {
	Create(d *models.PersistedDownload) error
	Update(d *models.PersistedDownload) error
}

// Dependencies are the collaborators of an [ImportEngine]. Presence and History may be nil.
type Dependencies struct {
	Metadata   services.MetadataService
	Downloader services.Downloader
	Importer   services.Importer
	Tagger     TagWriter
	Stager     Stager
	Presence   PresenceChecker
	History    HistoryRecorder
	Logger     *log.Logger
}

// Settings are the engine knobs taken from configuration.
type Settings struct {
	Concurrency int
	PlaylistURL string // prefix for list= identifiers
	WatchURL    string // prefix for v= identifiers

	// SplitChapters fetches an album given as one video as one file per chapter.
	SplitChapters bool
}

// ImportEngine runs requests through the fetch pipeline.
type ImportEngine struct {
	meta       services.MetadataService
	downloader services.Downloader
	importer   services.Importer
	tagger     TagWriter
	stager     Stager
	presence   PresenceChecker
	history    HistoryRecorder
	logger     *log.Logger
	settings   Settings
	exists     func(string) bool
}

// NewImportEngine creates a new ImportEngine with the provided collaborators.
func NewImportEngine(deps Dependencies, settings Settings) *ImportEngine {
	if settings.Concurrency < 1 {
		settings.Concurrency = 1
	}
	if settings.PlaylistURL == "" {
		settings.PlaylistURL = "https://music.youtube.com/playlist?list="
	}
	if settings.WatchURL == "" {
		settings.WatchURL = "https://music.youtube.com/watch?v="
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &ImportEngine{
		meta:       deps.Metadata,
		downloader: deps.Downloader,
		importer:   deps.Importer,
		tagger:     deps.Tagger,
		stager:     deps.Stager,
		presence:   deps.Presence,
		history:    deps.History,
		logger:     logger,
		settings:   settings,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ImportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Resolve builds the descriptor for req.
//
// A direct URL is used as given without contacting the catalogue. Otherwise the catalogue is
// searched and the best matching result fetched; no results yields [shared.ErrNoResults].
func (e *ImportEngine) Resolve(ctx context.Context, req Request) (*models.Descriptor, error) {
	if req.URL != "" {
		return e.direct(req)
	}

	if e.meta == nil {
		return nil, fmt.Errorf("%w: metadata service not initialized", shared.ErrServiceUnavailable)
	}

	query := strings.TrimSpace(req.Artist + " " + req.Title)
	switch req.Kind {
	case models.KindAlbum:
		results, err := e.meta.SearchAlbums(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("%w: %s - %s", shared.ErrNoResults, req.Artist, req.Title)
		}
		return e.ResolveResult(ctx, BestMatch(results, req.Artist, req.Title))

	case models.KindTrack:
		results, err := e.meta.SearchSongs(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("%w: %s - %s", shared.ErrNoResults, req.Artist, req.Title)
		}
		return e.ResolveResult(ctx, BestMatch(results, req.Artist, req.Title))

	case models.KindPlaylist:
		return nil, fmt.Errorf("%w: playlists require a URL", shared.ErrMissingArgument)

	default:
		return nil, fmt.Errorf("%w: kind %q", shared.ErrInvalidArgument, req.Kind)
	}
}

// ResolveResult fetches the full descriptor for a chosen search result.
func (e *ImportEngine) ResolveResult(ctx context.Context, r services.SearchResult) (*models.Descriptor, error) {
	if r.Kind != models.KindTrack {
		desc, err := e.meta.GetAlbum(ctx, r.BrowseID)
		if err != nil {
			return nil, err
		}
		if desc.SourceID == "" {
			desc.SourceID = r.BrowseID
		}
		desc.URL = e.settings.PlaylistURL + desc.SourceID
		return desc, nil
	}

	artists := r.Artists
	desc := &models.Descriptor{
		Kind:     models.KindTrack,
		Origin:   models.OriginSearch,
		SourceID: r.VideoID,
		Title:    r.Title,
		Artists:  artists,
		URL:      e.settings.WatchURL + r.VideoID,
		Tracks: []models.Track{{
			VideoID:     r.VideoID,
			Title:       r.Title,
			Artists:     artists,
			Album:       r.Album,
			TrackNumber: 1,
			Duration:    r.Duration,
			Available:   true,
		}},
	}

	song, err := e.meta.GetSong(ctx, r.VideoID)
	if err != nil {
		e.logger.Warn("could not check song availability", "video_id", r.VideoID, "err", err)
	} else if len(song.Tracks) > 0 {
		desc.Tracks[0].Available = song.Tracks[0].Available
	}

	return desc, nil
}

// direct builds a descriptor solely from the caller supplied artist, title and URL.
func (e *ImportEngine) direct(req Request) (*models.Descriptor, error) {
	kind := req.Kind
	if kind == "" {
		kind = models.KindAlbum
	}

	desc := &models.Descriptor{
		Kind:     kind,
		Origin:   models.OriginDirect,
		SourceID: SourceIDFromURL(req.URL, kind),
		Title:    shared.StripFullAlbum(req.Title),
		URL:      req.URL,
	}
	if req.Artist != "" {
		desc.Artists = []models.Artist{{Name: req.Artist}}
	}
	return desc, nil
}

// SourceIDFromURL extracts the list= (albums, playlists) or v= (tracks) query value of raw,
// falling back to the other parameter and finally the URL itself.
func SourceIDFromURL(raw string, kind models.Kind) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	order := []string{"list", "v"}
	if kind == models.KindTrack {
		order = []string{"v", "list"}
	}
	for _, key := range order {
		if v := q.Get(key); v != "" {
			return v
		}
	}
	if u.Host == "youtu.be" {
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id
		}
	}
	return raw
}

// Gate refuses descriptors with unavailable tracks.
func (e *ImportEngine) Gate(desc *models.Descriptor) error {
	unavailable := desc.Unavailable()
	if len(unavailable) == 0 {
		return nil
	}

	titles := make([]string, 0, len(unavailable))
	for _, t := range unavailable {
		titles = append(titles, t.Title)
	}
	return fmt.Errorf("%w: %d of %d tracks of %s cannot be downloaded (%s); pass --url with a playlist that has them all",
		shared.ErrUnavailable, len(unavailable), len(desc.Tracks), desc, strings.Join(titles, ", "))
}

// Run resolves req and drives it through the pipeline.
func (e *ImportEngine) Run(ctx context.Context, req Request, opts Options, progress chan<- ProgressUpdate) (*Result, error) {
	e.sendProgress(progress, resolveUpdate(req))

	desc, err := e.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	return e.Process(ctx, desc, opts, progress)
}

// Process drives an already resolved descriptor through gate, presence check, download, tag,
// import and clean.
func (e *ImportEngine) Process(ctx context.Context, desc *models.Descriptor, opts Options, progress chan<- ProgressUpdate) (*Result, error) {
	return e.process(ctx, desc, nil, opts, progress)
}

func (e *ImportEngine) process(ctx context.Context, desc *models.Descriptor, items []int, opts Options, progress chan<- ProgressUpdate) (*Result, error) {
	logger := e.logger.With("source_id", desc.SourceID)
	result := &Result{Descriptor: desc, StagingDir: e.stager.Dir(desc)}

	e.sendProgress(progress, resolvedUpdate(desc))

	if !opts.DryRun {
		result.Record = e.record(desc)
	}

	if err := e.Gate(desc); err != nil {
		return result, e.fail(result, err)
	}

	if !opts.Force && e.presence != nil && desc.Origin != models.OriginMissing {
		e.sendProgress(progress, checkUpdate(desc))
		present, err := e.presence.Present(desc.SourceID)
		if err != nil {
			return result, e.fail(result, fmt.Errorf("presence check: %w", err))
		}
		if present {
			logger.Info("already in library, skipping", "title", desc.Title)
			result.Skipped = true
			e.finish(result, models.StatusSkipped, shared.ErrAlreadyPresent.Error())
			e.sendProgress(progress, doneUpdate(result))
			return result, nil
		}
	}

	if opts.DryRun {
		result.DryRun = true
		e.sendProgress(progress, doneUpdate(result))
		return result, nil
	}

	dir, err := e.stager.Prepare(desc)
	if err != nil {
		return result, e.fail(result, err)
	}
	result.StagingDir = dir
	if result.Record != nil {
		result.Record.SetStagingDir(dir)
	}
	e.finish(result, models.StatusDownloading, "")

	files, err := e.download(ctx, desc, dir, items, progress)
	if err != nil {
		return result, e.fail(result, err)
	}
	result.Files = files
	if result.Record != nil {
		result.Record.SetFileCount(len(files))
	}
	logger.Debug("downloaded", "files", len(files), "dir", dir)

	for i, f := range files {
		id, link := e.fileSource(desc, f)
		if err := e.tagger.WriteSource(f, id, link); err != nil {
			return result, e.fail(result, err)
		}
		e.sendProgress(progress, tagUpdate(i+1, len(files), shared.FileStem(f)))
	}

	if opts.NoImport {
		result.Kept = true
		logger.Info("import disabled, keeping files", "dir", dir)
		e.finish(result, models.StatusSkipped, "import disabled")
		e.sendProgress(progress, doneUpdate(result))
		return result, nil
	}

	e.sendProgress(progress, importUpdate(dir))
	err = e.importer.Import(ctx, services.ImportRequest{
		Dir:       dir,
		File:      files[0],
		SourceID:  desc.SourceID,
		Singleton: desc.Kind == models.KindTrack,
	})
	if err != nil {
		return result, e.fail(result, err)
	}
	result.Imported = true

	if opts.KeepFiles {
		result.Kept = true
		logger.Info("keeping downloaded files", "dir", dir)
	} else {
		e.sendProgress(progress, cleanUpdate(dir))
		if err := e.stager.Clean(dir); err != nil {
			logger.Warn("failed to clean staging directory", "dir", dir, "err", err)
			result.Kept = true
		}
	}

	e.finish(result, models.StatusImported, "")
	e.sendProgress(progress, doneUpdate(result))
	return result, nil
}

// download fetches desc into dir. Known track lists are fetched per track on a bounded pool;
// otherwise the descriptor URL is fetched in one go, restricted to items when given.
func (e *ImportEngine) download(ctx context.Context, desc *models.Descriptor, dir string, items []int, progress chan<- ProgressUpdate) ([]string, error) {
	if len(desc.Tracks) == 0 || len(items) > 0 {
		link := e.sourceURL(desc)
		e.sendProgress(progress, downloadStartUpdate(1, link))
		files, err := e.downloader.Download(ctx, services.DownloadRequest{
			URL:           link,
			Dir:           dir,
			PlaylistItems: items,
			SplitChapters: e.fullAlbumVideo(desc),
		})
		if err != nil {
			return nil, err
		}
		e.sendProgress(progress, downloadUpdate(1, 1, desc.Title))
		return files, nil
	}

	total := len(desc.Tracks)
	perTrack := make([][]string, total)
	var (
		mu   sync.Mutex
		done int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.settings.Concurrency)

	for i, track := range desc.Tracks {
		g.Go(func() error {
			files, err := e.downloader.Download(ctx, services.DownloadRequest{
				URL: e.settings.WatchURL + track.VideoID,
				Dir: dir,
			})
			if err != nil {
				return fmt.Errorf("track %d %q: %w", track.TrackNumber, track.Title, err)
			}
			perTrack[i] = files

			mu.Lock()
			done++
			step := done
			mu.Unlock()
			e.sendProgress(progress, downloadUpdate(step, total, track.Title))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var files []string
	for _, f := range perTrack {
		files = append(files, f...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoFiles, desc)
	}
	return files, nil
}

// fullAlbumVideo reports whether desc is an album uploaded as a single video, whose chapters
// are its tracks.
func (e *ImportEngine) fullAlbumVideo(desc *models.Descriptor) bool {
	return e.settings.SplitChapters && desc.Kind == models.KindAlbum && len(desc.Tracks) == 0 && IsVideoID(desc.SourceID)
}

// fileSource picks the identifier stamped into file: its stem when that is a video id,
// otherwise the descriptor source id.
func (e *ImportEngine) fileSource(desc *models.Descriptor, file string) (string, string) {
	stem := shared.FileStem(file)
	if desc.Kind == models.KindTrack || !IsVideoID(stem) {
		return desc.SourceID, e.sourceURL(desc)
	}
	return stem, e.settings.WatchURL + stem
}

// sourceURL returns the URL yt-dlp is pointed at for the whole descriptor.
func (e *ImportEngine) sourceURL(desc *models.Descriptor) string {
	switch {
	case desc.URL != "":
		return desc.URL
	case desc.Kind == models.KindTrack || IsVideoID(desc.SourceID):
		return e.settings.WatchURL + desc.SourceID
	default:
		return e.settings.PlaylistURL + desc.SourceID
	}
}

func (e *ImportEngine) record(desc *models.Descriptor) *models.PersistedDownload {
	if e.history == nil {
		return nil
	}
	d := models.NewPersistedDownload(0, desc)
	if err := e.history.Create(d); err != nil {
		e.logger.Warn("failed to record download", "source_id", desc.SourceID, "err", err)
		return nil
	}
	return d
}

func (e *ImportEngine) finish(result *Result, status models.Status, note string) {
	if e.history == nil || result.Record == nil {
		return
	}
	result.Record.SetStatus(status, note)
	if err := e.history.Update(result.Record); err != nil {
		e.logger.Warn("failed to update download record", "id", result.Record.ID(), "err", err)
	}
}

// fail records err and leaves the staging directory in place for inspection.
func (e *ImportEngine) fail(result *Result, err error) error {
	e.finish(result, models.StatusFailed, err.Error())
	return err
}

// playlistPrefixes start YouTube playlist ids: album releases, user playlists, mixes,
// uploads, likes, favourites and browse-wrapped playlists.
var playlistPrefixes = []string{"OLAK5uy_", "PL", "RD", "UU", "LL", "FL", "VL"}

// IsVideoID reports whether s looks like an 11 character YouTube video id that does not carry
// a playlist prefix.
func IsVideoID(s string) bool {
	if len(s) != 11 {
		return false
	}
	for _, prefix := range playlistPrefixes {
		if strings.HasPrefix(s, prefix) {
			return false
		}
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
