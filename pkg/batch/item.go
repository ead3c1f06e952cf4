package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/xob0t/covergen/pkg/caption"
	"github.com/xob0t/covergen/pkg/imageio"
	"github.com/xob0t/covergen/pkg/logging"
)

// stageError tags an item error with the reason it is reported under.
type stageError struct {
	reason string
	err    error
}

func (e *stageError) Error() string { return e.reason + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func failAt(reason string, err error) error {
	return &stageError{reason: reason, err: err}
}

// runItem processes one video and converts every outcome, panics included,
// into an itemResult.
func (c *Coordinator) runItem(ctx context.Context, item Item, opts Options, logger *slog.Logger) (res itemResult) {
	logger = logger.With(slog.String(logging.FieldItem, item.Name))
	res.name = item.Name

	defer func() {
		if r := recover(); r != nil {
			res = failed(item.Name, failAt(ReasonUnknown, fmt.Errorf("panic: %v", r)))
			logger.Error("item failed", slog.String("reason", ReasonUnknown), slog.Any("panic", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return failed(item.Name, failAt(ReasonCanceled, err))
	}

	if !opts.Overwrite {
		if _, err := os.Stat(item.Output); err == nil {
			logger.Info("cover exists, skipping", slog.String("output", item.Output))
			return itemResult{name: item.Name, output: item.Output, skipped: true}
		}
	}

	if err := c.processItem(ctx, item, opts, logger); err != nil {
		res = failed(item.Name, err)
		logger.Warn("item failed",
			slog.String("reason", res.failure.Reason),
			logging.Error(err),
		)
		return res
	}

	logger.Info("cover written", slog.String("output", item.Output))
	return itemResult{name: item.Name, output: item.Output}
}

// processItem extracts, captions and saves one cover. The returned error is
// always a *stageError.
func (c *Coordinator) processItem(ctx context.Context, item Item, opts Options, logger *slog.Logger) error {
	frame, err := c.Frames.ExtractFrame(ctx, item.Source, opts.Seek)
	if err != nil {
		if ctx.Err() != nil {
			return failAt(ReasonCanceled, err)
		}
		return failAt(ReasonFrame, err)
	}
	if frame == nil || frame.Bounds().Empty() {
		return failAt(ReasonFrame, errors.New("empty frame"))
	}

	font, err := c.Fonts.Get(item.Render.FontPath)
	if err != nil {
		return failAt(ReasonFont, err)
	}
	if missing := font.MissingGlyphs(item.Title); len(missing) > 0 {
		logger.Warn("font has no glyphs for some title characters; set render.font_path to a font that covers them",
			slog.String("missing", string(missing)),
			slog.String("font", font.Path()),
		)
	}
	style, err := item.Render.Style()
	if err != nil {
		return failAt(ReasonRender, err)
	}
	captioner, err := caption.New(font, style)
	if err != nil {
		return failAt(ReasonFont, err)
	}
	defer captioner.Close()

	canvas := imageio.ToDrawable(imageio.FitWidth(frame, opts.MaxWidth))
	if _, err := captioner.Apply(canvas, item.Title); err != nil {
		return failAt(ReasonRender, err)
	}

	if err := imageio.Save(item.Output, canvas, opts.Quality); err != nil {
		return failAt(ReasonEncode, err)
	}
	return nil
}

func failed(name string, err error) itemResult {
	reason := ReasonUnknown
	var se *stageError
	if errors.As(err, &se) {
		reason = se.reason
		err = se.err
	}
	return itemResult{
		name:    name,
		failure: &Failure{Name: name, Reason: reason, Detail: err.Error()},
	}
}
