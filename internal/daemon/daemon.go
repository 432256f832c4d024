// Package daemon watches the system clipboard and records every change into
// the history, expiring old entries on a separate schedule.
package daemon

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/yiblet/clippy/internal/clipboard"
	"github.com/yiblet/clippy/internal/history"
	"github.com/yiblet/clippy/internal/logging"
)

// fingerprint identifies a clipboard payload without keeping it around.
type fingerprint struct {
	format clipboard.Format
	sum    [sha256.Size]byte
}

// Daemon polls the clipboard and captures changes.
type Daemon struct {
	clip    clipboard.Clipboard
	mgr     *history.Manager
	poll    time.Duration
	cleanup time.Duration
	log     zerolog.Logger
	logSet  bool

	last    fingerprint
	hasLast bool
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithLogger sets the daemon logger. Without it Run uses the logger carried
// by its context.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Daemon) {
		d.log = log
		d.logSet = true
	}
}

// WithIntervals overrides the poll and cleanup periods from the config.
func WithIntervals(poll, cleanup time.Duration) Option {
	return func(d *Daemon) {
		d.poll = poll
		d.cleanup = cleanup
	}
}

// New creates a Daemon that records clip into mgr.
func New(clip clipboard.Clipboard, mgr *history.Manager, opts ...Option) *Daemon {
	cfg := mgr.Config()
	d := &Daemon{
		clip:    clip,
		mgr:     mgr,
		poll:    cfg.PollInterval(),
		cleanup: cfg.CleanupInterval(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run polls the clipboard and runs the expiry sweep until ctx is cancelled.
// Capture failures are logged and never stop the loops.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.logSet {
		d.log = logging.FromContext(ctx)
	}
	if err := d.mgr.Blobs().EnsureDirectory(); err != nil {
		d.log.Warn().Err(err).Msg("image directory unavailable, image capture will fail")
	}

	d.log.Info().
		Dur("poll", d.poll).
		Dur("cleanup", d.cleanup).
		Msg("daemon started")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.pollLoop(ctx)
	})
	g.Go(func() error {
		return d.cleanupLoop(ctx)
	})

	err := g.Wait()
	d.log.Info().Msg("daemon stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (d *Daemon) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	for {
		if _, err := d.Poll(); err != nil {
			d.log.Warn().Err(err).Msg("clipboard capture failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (d *Daemon) cleanupLoop(ctx context.Context) error {
	ticker := time.NewTicker(d.cleanup)
	defer ticker.Stop()

	for {
		d.sweep()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (d *Daemon) sweep() {
	removed, err := d.mgr.CleanupExpired()
	if err != nil {
		d.log.Warn().Err(err).Msg("cleanup failed")
		return
	}
	if removed > 0 {
		d.log.Info().Int("removed", removed).Msg("expired entries cleaned up")
	}
}

// Poll reads the clipboard once and records it if it changed since the last
// poll. The first call only records a baseline so whatever was on the
// clipboard before the daemon started is not captured. An empty clipboard
// leaves the baseline untouched.
func (d *Daemon) Poll() (bool, error) {
	format, data, err := d.read()
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}

	fp := fingerprint{format: format, sum: sha256.Sum256(data)}
	if !d.hasLast {
		d.last, d.hasLast = fp, true
		d.log.Debug().Stringer("format", format).Msg("baseline recorded")
		return false, nil
	}
	if fp == d.last {
		return false, nil
	}
	d.last = fp

	if format == clipboard.FormatImage {
		rec, err := d.mgr.AddImage(data)
		if err != nil {
			return false, err
		}
		d.log.Info().Str("id", rec.ID).Int("bytes", len(data)).Msg("image captured")
		return true, nil
	}

	rec, err := d.mgr.AddText(string(data))
	if err != nil {
		if errors.Is(err, history.ErrTooLong) {
			d.log.Debug().Int("bytes", len(data)).Msg("text too long, skipped")
			return false, nil
		}
		return false, err
	}
	d.log.Info().Str("id", rec.ID).Str("preview", history.PreviewText(rec.Content, 40)).Msg("text captured")
	return true, nil
}

// read returns the clipboard text, or the image when there is no text.
func (d *Daemon) read() (clipboard.Format, []byte, error) {
	text, err := d.clip.Read(clipboard.FormatText)
	if err != nil {
		return clipboard.FormatText, nil, errors.Errorf("failed to read clipboard text: %w", err)
	}
	if len(text) > 0 {
		return clipboard.FormatText, text, nil
	}

	img, err := d.clip.Read(clipboard.FormatImage)
	if err != nil {
		if errors.Is(err, clipboard.ErrUnsupported) {
			return clipboard.FormatText, nil, nil
		}
		return clipboard.FormatImage, nil, errors.Errorf("failed to read clipboard image: %w", err)
	}
	return clipboard.FormatImage, img, nil
}
