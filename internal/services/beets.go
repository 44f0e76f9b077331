package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"

	"github.com/desertthunder/ytbeets/internal/shared"
)

// Beets implements [Importer] by running `beet import`.
type Beets struct {
	cfg       shared.ImportConfig
	verbose   bool
	quiet     bool
	extraArgs []string
	runner    CommandRunner
}

// NewBeets creates a Beets importer from cfg. Verbose adds -v to every invocation.
func NewBeets(cfg shared.ImportConfig, verbose bool, runner CommandRunner) (*Beets, error) {
	extra, err := shlex.Split(cfg.ExtraArgs)
	if err != nil {
		return nil, fmt.Errorf("%w: import.extra_args: %v", shared.ErrInvalidConfig, err)
	}
	if cfg.Binary == "" {
		cfg.Binary = "beet"
	}
	if cfg.Field == "" {
		cfg.Field = "ydl"
	}
	return &Beets{cfg: cfg, verbose: verbose, extraArgs: extra, runner: runner}, nil
}

// Quiet returns a copy of b that runs `beet import -q` with its output captured, for callers
// that own the terminal. beets then applies its quiet_fallback instead of prompting.
func (b *Beets) Quiet() *Beets {
	c := *b
	c.quiet = true
	return &c
}

// Field returns the flexible attribute the source identifier is stored in.
func (b *Beets) Field() string {
	return b.cfg.Field
}

// Args builds the beet argument list for req.
func (b *Beets) Args(req ImportRequest) []string {
	var args []string
	if b.cfg.Config != "" {
		args = append(args, "-c", b.cfg.Config)
	}
	if b.verbose {
		args = append(args, "-v")
	}
	args = append(args, "import")
	if b.quiet {
		args = append(args, "-q")
	}
	args = append(args, b.extraArgs...)
	args = append(args, "--set", b.cfg.Field+"="+req.SourceID)
	if req.Singleton {
		args = append(args, "--singletons")
	}
	return append(args, importPath(req))
}

// Import runs beet import. Unless [Beets.Quiet] was used it is interactive so the user can
// answer beets prompts.
func (b *Beets) Import(ctx context.Context, req ImportRequest) error {
	if importPath(req) == "" {
		return fmt.Errorf("%w: nothing to import for %s", shared.ErrImportFailed, req.SourceID)
	}

	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	res, err := b.runner.Run(ctx, Command{Name: b.cfg.Binary, Args: b.Args(req), Interactive: !b.quiet})
	if err != nil {
		if b.quiet && res != nil {
			out := tail(res.Stderr, 5)
			if out == "" {
				out = tail(res.Stdout, 5)
			}
			if out != "" {
				return fmt.Errorf("%w: %v\n%s", shared.ErrImportFailed, err, out)
			}
		}
		return fmt.Errorf("%w: %v", shared.ErrImportFailed, err)
	}
	return nil
}

// Version runs beet version and returns its first line.
func (b *Beets) Version(ctx context.Context) (string, error) {
	var args []string
	if b.cfg.Config != "" {
		args = append(args, "-c", b.cfg.Config)
	}
	res, err := b.runner.Run(ctx, Command{Name: b.cfg.Binary, Args: append(args, "version")})
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(res.Stdout)), "\n")
	return line, nil
}

// importPath prefers the staging directory and falls back to the single file.
func importPath(req ImportRequest) string {
	if req.Dir != "" {
		if info, err := os.Stat(req.Dir); err == nil && info.IsDir() {
			return req.Dir
		}
	}
	return req.File
}
