// Package history implements the clipboard history and pins on top of two
// record stores and the image blob store.
package history

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/yiblet/clippy/internal/blob"
	"github.com/yiblet/clippy/internal/clipfs"
	"github.com/yiblet/clippy/internal/config"
	"github.com/yiblet/clippy/internal/retention"
	"github.com/yiblet/clippy/internal/store"
	"github.com/yiblet/clippy/internal/store/filestore"
)

// Kind selects one of the two record lists.
type Kind int

const (
	KindHistory Kind = iota
	KindPins
)

func (k Kind) String() string {
	if k == KindPins {
		return "pins"
	}
	return "history"
}

// KindFor maps a --pins style flag onto a Kind.
func KindFor(pins bool) Kind {
	if pins {
		return KindPins
	}
	return KindHistory
}

var (
	// ErrEmptyText is returned when asked to record an empty string.
	ErrEmptyText = errors.Base("text is empty")

	// ErrTooLong is returned for text longer than max_entry_length bytes.
	ErrTooLong = errors.Base("text exceeds max entry length")
)

// Manager owns the history and pins stores and the blob store they share.
type Manager struct {
	cfg     *config.Config
	history *store.RecordStore
	pins    *store.RecordStore
	blobs   *blob.Store
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	now func() time.Time
	log zerolog.Logger
}

// WithClock overrides the time source for new records and expiry.
func WithClock(now func() time.Time) Option {
	return func(o *managerOptions) {
		o.now = now
	}
}

// WithLogger sets the logger shared by the manager and its stores.
func WithLogger(log zerolog.Logger) Option {
	return func(o *managerOptions) {
		o.log = log
	}
}

// Open creates a Manager over the on-disk layout described by cfs.
func Open(cfs *clipfs.ClipFS, cfg *config.Config, opts ...Option) *Manager {
	o := resolve(opts)
	return New(cfg,
		filestore.New(cfs.HistoryPath(), filestore.WithLogger(o.log)),
		filestore.New(cfs.PinsPath(), filestore.WithLogger(o.log)),
		blob.New(cfs.ImagesPath(), o.log),
		opts...,
	)
}

// New creates a Manager over arbitrary backends.
//
// History is bounded by max_history_items and expires after max_age_days.
// Pins are bounded by max_pins and never expire by age.
func New(cfg *config.Config, historyBackend, pinsBackend store.Backend, blobs *blob.Store, opts ...Option) *Manager {
	o := resolve(opts)
	storeOpts := []store.Option{
		store.WithBlobs(blobs),
		store.WithClock(o.now),
		store.WithLogger(o.log),
	}
	return &Manager{
		cfg: cfg,
		history: store.New(KindHistory.String(), historyBackend, retention.Policy{
			MaxItems: cfg.MaxHistoryItems,
			MaxAge:   cfg.MaxAge(),
		}, storeOpts...),
		pins: store.New(KindPins.String(), pinsBackend, retention.Policy{
			MaxItems: cfg.MaxPins,
		}, storeOpts...),
		blobs: blobs,
		now:   o.now,
		log:   o.log,
	}
}

func resolve(opts []Option) managerOptions {
	o := managerOptions{now: time.Now, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Store returns the record store for kind.
func (m *Manager) Store(kind Kind) *store.RecordStore {
	if kind == KindPins {
		return m.pins
	}
	return m.history
}

// Blobs returns the image blob store.
func (m *Manager) Blobs() *blob.Store {
	return m.blobs
}

// AddText records text at the front of history.
func (m *Manager) AddText(text string) (store.Record, error) {
	if text == "" {
		return store.Record{}, store.NewError("add text", "", store.KindInvalidInput, ErrEmptyText)
	}
	if len(text) > m.cfg.MaxEntryLength {
		return store.Record{}, store.NewError("add text", "", store.KindInvalidInput,
			errors.WithDetails(ErrTooLong, "length", len(text), "max", m.cfg.MaxEntryLength))
	}

	rec := store.NewText(text, m.now())
	if _, err := m.history.Prepend(rec); err != nil {
		return store.Record{}, err
	}
	m.log.Debug().Str("id", rec.ID).Int("bytes", len(text)).Msg("text captured")
	return rec, nil
}

// AddImage stores png as a blob and records it at the front of history.
// The blob is removed again if the record cannot be stored.
func (m *Manager) AddImage(png []byte) (store.Record, error) {
	path, err := m.blobs.Save(png)
	if err != nil {
		return store.Record{}, err
	}

	rec := store.NewImage(path, m.now())
	if _, err := m.history.Prepend(rec); err != nil {
		if delErr := m.blobs.Delete(path); delErr != nil {
			m.log.Warn().Err(delErr).Str("path", path).Msg("failed to remove unused image")
		}
		return store.Record{}, err
	}
	m.log.Debug().Str("id", rec.ID).Str("path", path).Msg("image captured")
	return rec, nil
}

// List returns the records of kind, newest first.
func (m *Manager) List(kind Kind) []store.Record {
	records, _ := m.Store(kind).Load()
	return records
}

// Get returns the record of kind at index (0 = newest).
func (m *Manager) Get(kind Kind, index int) (store.Record, error) {
	return m.Store(kind).At(index)
}

// Pin moves the history record at index to the front of pins.
func (m *Manager) Pin(index int) (store.Record, error) {
	return m.move(m.history, m.pins, index)
}

// Unpin moves the pin at index back to the front of history.
func (m *Manager) Unpin(index int) (store.Record, error) {
	return m.move(m.pins, m.history, index)
}

func (m *Manager) move(from, to *store.RecordStore, index int) (store.Record, error) {
	rec, err := from.At(index)
	if err != nil {
		return store.Record{}, err
	}
	rec, err = from.Take(rec.ID)
	if err != nil {
		return store.Record{}, err
	}
	if _, err := to.Prepend(rec); err != nil {
		if _, restoreErr := from.Prepend(rec); restoreErr != nil {
			m.log.Error().Err(restoreErr).Str("id", rec.ID).Msg("failed to restore record after failed move")
		}
		return store.Record{}, errors.Errorf("failed to move record to %s: %w", to.Name(), err)
	}
	m.log.Debug().Str("id", rec.ID).Str("from", from.Name()).Str("to", to.Name()).Msg("record moved")
	return rec, nil
}

// Delete removes the record of kind at index and its blob.
func (m *Manager) Delete(kind Kind, index int) (store.Record, error) {
	s := m.Store(kind)
	rec, err := s.At(index)
	if err != nil {
		return store.Record{}, err
	}
	if err := s.Delete(rec.ID); err != nil {
		return store.Record{}, err
	}
	return rec, nil
}

// Clear removes every record of kind and returns how many were removed.
func (m *Manager) Clear(kind Kind) (int, error) {
	return m.Store(kind).Clear()
}

// CleanupExpired drops expired records from both lists.
func (m *Manager) CleanupExpired() (int, error) {
	removed, err := m.history.CleanupExpired()
	if err != nil {
		return 0, err
	}
	pinned, err := m.pins.CleanupExpired()
	if err != nil {
		return removed, err
	}
	return removed + pinned, nil
}

// PruneBlobs deletes images referenced by neither history nor pins.
func (m *Manager) PruneBlobs() (int, error) {
	var live []string
	for _, kind := range []Kind{KindHistory, KindPins} {
		for _, rec := range m.List(kind) {
			if rec.IsImage() {
				live = append(live, rec.ImagePath)
			}
		}
	}
	return m.blobs.Prune(live)
}

// Payload returns the bytes a record puts back on the clipboard: the text
// itself, or the PNG read from the blob.
func (m *Manager) Payload(rec store.Record) ([]byte, error) {
	if !rec.IsImage() {
		return []byte(rec.Content), nil
	}
	data, err := os.ReadFile(rec.ImagePath)
	if err != nil {
		return nil, store.Wrap("read blob", rec.ImagePath, err)
	}
	return data, nil
}
