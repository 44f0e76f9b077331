package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytbeets/internal/shared"
)

// check is one line of the doctor report.
type check struct {
	name   string
	detail string
	err    error
}

// Doctor checks that yt-dlp, beets, the metadata proxy and the beets library are usable.
func (r *Runner) Doctor(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.wire(); err != nil {
		return err
	}

	checks := []check{
		versionCheck(ctx, "yt-dlp", r.downloader),
		versionCheck(ctx, "beets", r.importer),
	}

	proxy := check{name: "metadata proxy", detail: r.config.Metadata.ProxyURL}
	proxy.err = r.metadata().Health(ctx)
	checks = append(checks, proxy)

	library := check{name: "beets library", detail: r.config.Import.Library}
	if lib := r.openLibrary(); lib == nil {
		library.err = fmt.Errorf("%w: cannot open %s", shared.ErrMissingConfig, r.config.Import.Library)
	} else if items, err := lib.Items(r.config.Import.Field); err != nil {
		library.err = err
	} else {
		library.detail = fmt.Sprintf("%s (%d items)", r.config.Import.Library, len(items))
	}
	checks = append(checks, library)

	if report, err := r.stagingCache().Report(); err == nil {
		checks = append(checks, check{name: "staging cache", detail: fmt.Sprintf("%s, %s", r.config.Paths.CacheDir, report)})
	} else {
		checks = append(checks, check{name: "staging cache", detail: r.config.Paths.CacheDir, err: err})
	}

	r.writePlainHeader("ytbeets doctor")
	failed := 0
	for _, c := range checks {
		if c.err != nil {
			failed++
			r.writePlain("✗ %-15s %v\n", c.name, c.err)
			continue
		}
		r.writePlain("✓ %-15s %s\n", c.name, c.detail)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d checks failed", shared.ErrServiceUnavailable, failed, len(checks))
	}
	return nil
}

type versioned interface {
	Version(ctx context.Context) (string, error)
}

func versionCheck(ctx context.Context, name string, v versioned) check {
	version, err := v.Version(ctx)
	return check{name: name, detail: version, err: err}
}
