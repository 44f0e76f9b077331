package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/desertthunder/ytbeets/internal/shared"
)

// YTDLP implements [Downloader] by running yt-dlp.
type YTDLP struct {
	cfg       shared.DownloadConfig
	extraArgs []string
	runner    CommandRunner
}

// NewYTDLP creates a YTDLP from cfg. Extra arguments are split with shell quoting rules.
func NewYTDLP(cfg shared.DownloadConfig, runner CommandRunner) (*YTDLP, error) {
	extra, err := shlex.Split(cfg.ExtraArgs)
	if err != nil {
		return nil, fmt.Errorf("%w: download.extra_args: %v", shared.ErrInvalidConfig, err)
	}
	if cfg.Binary == "" {
		cfg.Binary = "yt-dlp"
	}
	if cfg.ChapterTemplate == "" {
		cfg.ChapterTemplate = "%(section_number)02d - %(section_title)s.%(ext)s"
	}
	return &YTDLP{cfg: cfg, extraArgs: extra, runner: runner}, nil
}

// Args builds the yt-dlp argument list for req.
func (y *YTDLP) Args(req DownloadRequest) []string {
	args := []string{"-f", y.cfg.Format, "-x", "--audio-format", y.cfg.AudioFormat}
	if y.cfg.EmbedMetadata {
		args = append(args, "--embed-metadata")
	}
	args = append(args,
		"--no-simulate",
		"--print", "after_move:filepath",
		"-o", filepath.Join(req.Dir, y.cfg.OutputTemplate),
	)
	if req.SplitChapters {
		args = append(args, "--split-chapters", "-o", "chapter:"+filepath.Join(req.Dir, y.cfg.ChapterTemplate))
	}
	if len(req.PlaylistItems) > 0 {
		args = append(args, "--playlist-items", joinInts(req.PlaylistItems))
	}
	args = append(args, y.extraArgs...)
	return append(args, req.URL)
}

// Download runs yt-dlp for req and returns the audio files it produced.
//
// File paths come from the --print output; when that is empty the staging directory is globbed.
func (y *YTDLP) Download(ctx context.Context, req DownloadRequest) ([]string, error) {
	if y.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.cfg.Timeout)
		defer cancel()
	}

	res, err := y.runner.Run(ctx, Command{Name: y.cfg.Binary, Args: y.Args(req)})
	if err != nil {
		msg := ""
		if res != nil {
			msg = tail(res.Stderr, 5)
			if msg == "" {
				msg = tail(res.Stdout, 5)
			}
		}
		return nil, fmt.Errorf("%w: %s: %v\n%s", shared.ErrDownloadFailed, req.URL, err, msg)
	}

	var files []string
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !shared.IsAudioFile(line) {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(req.Dir, filepath.Base(line))
		}
		if !slices.Contains(files, line) {
			files = append(files, line)
		}
	}

	if req.SplitChapters {
		return chapterFiles(req, files)
	}

	if len(files) == 0 {
		files, err = globAudio(req.Dir)
		if err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoFiles, req.URL)
	}

	return files, nil
}

// chapterFiles returns the chapter files written next to whole and removes whole. A video
// without chapters keeps its single file.
func chapterFiles(req DownloadRequest, whole []string) ([]string, error) {
	staged, err := globAudio(req.Dir)
	if err != nil {
		return nil, err
	}

	var chapters []string
	for _, f := range staged {
		if !slices.Contains(whole, f) {
			chapters = append(chapters, f)
		}
	}

	switch {
	case len(chapters) > 0:
		for _, f := range whole {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to remove unsplit file: %w", err)
			}
		}
		return chapters, nil
	case len(staged) > 0:
		return staged, nil
	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrNoFiles, req.URL)
	}
}

// Version runs yt-dlp --version.
func (y *YTDLP) Version(ctx context.Context) (string, error) {
	res, err := y.runner.Run(ctx, Command{Name: y.cfg.Binary, Args: []string{"--version"}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// globAudio lists audio files directly inside dir.
func globAudio(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read staging directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && shared.IsAudioFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
