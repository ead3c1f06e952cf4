// Package batch turns a folder of videos into captioned covers.
//
// A run checks its configuration up front and fails fast on anything that
// would break every item: a missing folder, invalid render settings or an
// unreadable global font. After that each video is processed on its own;
// a failure is recorded in the Report and the run moves on.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/xob0t/covergen/pkg/config"
	"github.com/xob0t/covergen/pkg/fonts"
	"github.com/xob0t/covergen/pkg/framesource"
	"github.com/xob0t/covergen/pkg/imageio"
	"github.com/xob0t/covergen/pkg/logging"
)

// ErrConfiguration marks a problem found before any item is processed.
var ErrConfiguration = errors.New("configuration error")

// LockFileName is created in the folder for the duration of a run.
const LockFileName = ".covergen.lock"

// Options describes one run. Workers above 1 processes that many videos at
// once; Seek is in seconds from the start of each video.
type Options struct {
	Folder    string
	Render    config.Render
	Seek      float64
	OutputExt string
	Quality   int
	MaxWidth  int
	Workers   int
	Overwrite bool
	Overrides map[string]config.Override
}

// OptionsFromConfig builds run options from loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Folder:    cfg.Batch.Folder,
		Render:    cfg.Render,
		Seek:      cfg.Batch.SeekSeconds,
		OutputExt: cfg.Batch.OutputExt,
		Quality:   cfg.Batch.Quality,
		MaxWidth:  cfg.Batch.MaxWidth,
		Workers:   cfg.Batch.Workers,
		Overwrite: cfg.Batch.Overwrite,
		Overrides: cfg.OverrideMap(),
	}
}

// Coordinator runs batches. Frames is required; Fonts and Logger default
// to a fresh cache and a no-op logger.
type Coordinator struct {
	Frames framesource.Source
	Fonts  *fonts.Cache
	Logger *slog.Logger
}

// Plan validates opts and lists the items a run would process, without
// extracting or writing anything.
func (c *Coordinator) Plan(opts Options) ([]Item, error) {
	folder, err := c.preflight(&opts)
	if err != nil {
		return nil, err
	}
	return plan(folder, opts)
}

// Run processes every video in opts.Folder. Configuration problems return
// an error wrapping ErrConfiguration and a nil report. Otherwise the report
// is always returned, along with report.Err() when some items failed.
func (c *Coordinator) Run(ctx context.Context, opts Options) (*Report, error) {
	started := time.Now()
	runID := uuid.NewString()
	logger := logging.NewComponentLogger(c.Logger, "batch").With(slog.String(logging.FieldRunID, runID))

	folder, err := c.preflight(&opts)
	if err != nil {
		return nil, err
	}

	unlock, err := lockFolder(folder, logger)
	if err != nil {
		return nil, err
	}
	defer unlock()

	items, err := plan(folder, opts)
	if err != nil {
		return nil, err
	}

	logger.Info("batch started",
		slog.String("folder", folder),
		slog.Int("videos", len(items)),
		slog.Int("workers", max(opts.Workers, 1)),
	)

	rec := &recorder{report: &Report{RunID: runID, Folder: folder}}
	if opts.Workers <= 1 {
		for _, item := range items {
			rec.add(c.runItem(ctx, item, opts, logger))
		}
	} else {
		var g errgroup.Group
		g.SetLimit(opts.Workers)
		for _, item := range items {
			g.Go(func() error {
				rec.add(c.runItem(ctx, item, opts, logger))
				return nil
			})
		}
		_ = g.Wait()
	}
	report := rec.finish(started)

	logger.Info("batch finished",
		slog.Int("succeeded", report.Succeeded),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Duration("duration", report.Duration),
	)

	if err := ctx.Err(); err != nil {
		return report, errors.Join(fmt.Errorf("batch interrupted: %w", err), report.Err())
	}
	return report, report.Err()
}

// preflight normalizes opts in place and returns the absolute folder path.
func (c *Coordinator) preflight(opts *Options) (string, error) {
	if c.Frames == nil {
		return "", fmt.Errorf("%w: no frame source configured", ErrConfiguration)
	}
	if c.Fonts == nil {
		c.Fonts = fonts.NewCache()
	}

	folder := strings.TrimSpace(opts.Folder)
	if folder == "" {
		return "", fmt.Errorf("%w: no folder given", ErrConfiguration)
	}
	folder, err := filepath.Abs(folder)
	if err != nil {
		return "", fmt.Errorf("%w: resolve folder: %w", ErrConfiguration, err)
	}
	info, err := os.Stat(folder)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("%w: folder %s does not exist", ErrConfiguration, folder)
	case err != nil:
		return "", fmt.Errorf("%w: stat folder: %w", ErrConfiguration, err)
	case !info.IsDir():
		return "", fmt.Errorf("%w: %s is not a folder", ErrConfiguration, folder)
	}

	if opts.Seek < 0 {
		return "", fmt.Errorf("%w: seek position must not be negative", ErrConfiguration)
	}
	if opts.OutputExt == "" {
		opts.OutputExt = imageio.DefaultExt
	}
	if !imageio.SupportedExt(opts.OutputExt) {
		return "", fmt.Errorf("%w: unsupported output extension %q", ErrConfiguration, opts.OutputExt)
	}
	if opts.Quality == 0 {
		opts.Quality = imageio.DefaultQuality
	}
	if err := opts.Render.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	// The global font must load; override fonts are checked per item.
	if _, err := c.Fonts.Get(opts.Render.FontPath); err != nil {
		return "", fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return folder, nil
}

// lockFolder keeps two runs from writing covers into the same folder. A
// folder where the lock file cannot be created is still processed.
func lockFolder(folder string, logger *slog.Logger) (func(), error) {
	path := filepath.Join(folder, LockFileName)
	lock := flock.New(path)

	ok, err := lock.TryLock()
	if err != nil {
		logger.Warn("folder lock unavailable; continuing without it", slog.String("lock", path), logging.Error(err))
		return func() {}, nil
	}
	if !ok {
		return nil, fmt.Errorf("%w: another run is using %s", ErrConfiguration, folder)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release folder lock", slog.String("lock", path), logging.Error(err))
			return
		}
		_ = os.Remove(path)
	}, nil
}
