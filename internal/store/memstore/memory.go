// Package memstore provides an in-memory store.Backend.
// It keeps the same two generations as the file backend, encoded as JSON,
// so recovery paths can be exercised without touching disk.
package memstore

import (
	"bytes"
	"encoding/json"
	"sync"

	"gitlab.com/tozd/go/errors"

	"github.com/yiblet/clippy/internal/store"
)

// Backend is an in-memory implementation of store.Backend.
// It is safe for concurrent use.
type Backend struct {
	mu       sync.Mutex
	name     string
	primary  []byte
	backup   []byte
	failNext error
	saves    int
}

var _ store.Backend = (*Backend)(nil)

// New creates an empty in-memory backend.
func New(name string) *Backend {
	return &Backend{name: name}
}

// Location returns a pseudo path for diagnostics.
func (b *Backend) Location() string {
	return "mem://" + b.name
}

// Load returns the primary generation, or the backup if the primary cannot
// be decoded.
func (b *Backend) Load() ([]store.Record, store.Report) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.primary == nil {
		return []store.Record{}, store.Report{
			Primary: store.NewError("load", b.Location(), store.KindNotFound, errors.New("no data")),
		}
	}

	records, err := decode(b.primary)
	if err == nil {
		return records, store.Report{Source: store.SourcePrimary}
	}
	report := store.Report{Primary: store.NewError("load", b.Location(), store.KindCorrupt, err)}

	records, err = decode(b.backup)
	if err != nil {
		report.Backup = store.NewError("load", b.Location(), store.KindCorrupt, err)
		return []store.Record{}, report
	}
	report.Source = store.SourceBackup
	return records, report
}

// Save replaces the primary generation, moving the previous one to backup.
func (b *Backend) Save(records []store.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.failNext; err != nil {
		b.failNext = nil
		return store.Wrap("save", b.Location(), err)
	}
	if records == nil {
		records = []store.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return store.NewError("save", b.Location(), store.KindInvalidInput, err)
	}

	if _, err := decode(b.primary); err == nil {
		b.backup = b.primary
	}
	b.primary = data
	b.saves++
	return nil
}

// FailNextSave makes the next Save return err without storing anything.
func (b *Backend) FailNextSave(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = err
}

// SetRaw overwrites the primary generation with raw bytes.
func (b *Backend) SetRaw(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.primary = bytes.Clone(data)
}

// Raw returns a copy of the primary generation.
func (b *Backend) Raw() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.primary)
}

// Saves returns how many saves succeeded.
func (b *Backend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

func decode(data []byte) ([]store.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("not a JSON array")
	}
	var records []store.Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, errors.WithStack(err)
	}
	if records == nil {
		records = []store.Record{}
	}
	return records, nil
}
