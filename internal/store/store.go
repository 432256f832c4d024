// Package store defines the clipboard record model and the RecordStore that
// applies retention and blob lifecycle on top of a persistence backend.
// History and pins are two RecordStores over two backends; the semantics are
// identical, only the policy differs.
package store

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/yiblet/clippy/internal/retention"
)

// Backend persists an ordered sequence of records.
type Backend interface {
	// Load returns the stored sequence. It never fails: when nothing usable
	// is stored it returns an empty sequence and a Report saying why.
	Load() ([]Record, Report)

	// Save replaces the stored sequence atomically.
	Save(records []Record) error

	// Location names the backend for diagnostics.
	Location() string
}

// BlobReleaser deletes the blob behind an image record.
type BlobReleaser interface {
	Delete(path string) error
}

// RecordStore is a bounded, ordered record collection, newest first.
type RecordStore struct {
	mu      sync.Mutex
	name    string
	backend Backend
	policy  retention.Policy
	blobs   BlobReleaser
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures a RecordStore.
type Option func(*RecordStore)

// WithBlobs makes the store delete the blobs of records it drops.
func WithBlobs(blobs BlobReleaser) Option {
	return func(s *RecordStore) {
		s.blobs = blobs
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *RecordStore) {
		s.now = now
	}
}

// WithLogger sets the logger used for degraded operations.
func WithLogger(log zerolog.Logger) Option {
	return func(s *RecordStore) {
		s.log = log
	}
}

// New creates a RecordStore named name over backend.
func New(name string, backend Backend, policy retention.Policy, opts ...Option) *RecordStore {
	s := &RecordStore{
		name:    name,
		backend: backend,
		policy:  policy,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("store", name).Logger()
	return s
}

// Name returns the store name ("history", "pins").
func (s *RecordStore) Name() string {
	return s.name
}

// Policy returns the retention policy of the store.
func (s *RecordStore) Policy() retention.Policy {
	return s.policy
}

// Load returns the current sequence. Recovery from the backup generation and
// total loss are logged; the caller always gets a usable sequence.
func (s *RecordStore) Load() ([]Record, Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save replaces the stored sequence.
func (s *RecordStore) Save(records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(records)
}

// CleanupExpired removes records older than the policy's MaxAge and deletes
// their blobs. Nothing is written when no record expired.
func (s *RecordStore) CleanupExpired() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, _ := s.loadLocked()
	if len(records) == 0 {
		return 0, nil
	}

	kept, expired := retention.Expire(records, s.now(), s.policy.MaxAge, Record.Time)
	if len(expired) == 0 {
		return 0, nil
	}
	if err := s.saveLocked(kept); err != nil {
		return 0, err
	}
	s.release(expired, kept)

	s.log.Info().Int("removed", len(expired)).Msg("expired entries removed")
	return len(expired), nil
}

// Prepend inserts r at the front of the sequence. An existing record with the
// same id, or a text record with identical content, is replaced so the entry
// moves to the front instead of appearing twice. Records pushed past
// MaxItems are evicted and returned; their blobs are deleted.
func (s *RecordStore) Prepend(r Record) ([]Record, error) {
	if err := r.Validate(); err != nil {
		return nil, NewError("prepend", s.backend.Location(), KindInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, _ := s.loadLocked()
	next := make([]Record, 0, len(records)+1)
	next = append(next, r)
	var replaced []Record
	for _, existing := range records {
		if existing.ID == r.ID || isSameText(existing, r) {
			replaced = append(replaced, existing)
			continue
		}
		next = append(next, existing)
	}

	kept, evicted := retention.Truncate(next, s.policy.MaxItems)
	if err := s.saveLocked(kept); err != nil {
		return nil, err
	}
	s.release(append(replaced, evicted...), kept)

	if len(evicted) > 0 {
		s.log.Debug().Int("evicted", len(evicted)).Msg("capacity eviction")
	}
	return evicted, nil
}

// Take removes the record with id and returns it. Its blob is left in place
// so the record can be moved into another store.
func (s *RecordStore) Take(id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, _ := s.loadLocked()
	idx := indexOf(records, id)
	if idx < 0 {
		return Record{}, NewError("take", s.backend.Location(), KindNotFound, errors.WithDetails(ErrRecordNotFound, "id", id))
	}

	taken := records[idx]
	rest := append(records[:idx:idx], records[idx+1:]...)
	if err := s.saveLocked(rest); err != nil {
		return Record{}, err
	}
	return taken, nil
}

// Delete removes the record with id and deletes its blob.
func (s *RecordStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, _ := s.loadLocked()
	idx := indexOf(records, id)
	if idx < 0 {
		return NewError("delete", s.backend.Location(), KindNotFound, errors.WithDetails(ErrRecordNotFound, "id", id))
	}

	removed := records[idx]
	rest := append(records[:idx:idx], records[idx+1:]...)
	if err := s.saveLocked(rest); err != nil {
		return err
	}
	s.release([]Record{removed}, rest)
	return nil
}

// Clear removes every record and its blob, returning how many were removed.
func (s *RecordStore) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, _ := s.loadLocked()
	if len(records) == 0 {
		return 0, nil
	}
	if err := s.saveLocked([]Record{}); err != nil {
		return 0, err
	}
	s.release(records, nil)
	return len(records), nil
}

// Find returns the record with id and its index.
func (s *RecordStore) Find(id string) (Record, int, error) {
	records, _ := s.Load()
	idx := indexOf(records, id)
	if idx < 0 {
		return Record{}, -1, NewError("find", s.backend.Location(), KindNotFound, errors.WithDetails(ErrRecordNotFound, "id", id))
	}
	return records[idx], idx, nil
}

// At returns the record at index (0 = newest).
func (s *RecordStore) At(index int) (Record, error) {
	records, _ := s.Load()
	if index < 0 || index >= len(records) {
		return Record{}, NewError("at", s.backend.Location(), KindNotFound,
			errors.Errorf("index %d out of range (%d entries): %w", index, len(records), ErrRecordNotFound))
	}
	return records[index], nil
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	records, _ := s.Load()
	return len(records)
}

func (s *RecordStore) loadLocked() ([]Record, Report) {
	records, report := s.backend.Load()
	switch {
	case report.Recovered():
		s.log.Warn().Err(report.Primary).Str("path", s.backend.Location()).Msg("primary unreadable, recovered from backup")
	case report.Lost():
		s.log.Error().Err(report.Primary).AnErr("backup", report.Backup).Str("path", s.backend.Location()).Msg("primary and backup unreadable, starting empty")
	}
	if records == nil {
		records = []Record{}
	}
	return records, report
}

func (s *RecordStore) saveLocked(records []Record) error {
	if err := s.backend.Save(records); err != nil {
		s.log.Error().Err(err).Str("path", s.backend.Location()).Msg("save failed")
		return err
	}
	return nil
}

// release deletes the blobs of dropped records unless a kept record still
// references the same path.
func (s *RecordStore) release(dropped, kept []Record) {
	if s.blobs == nil {
		return
	}
	live := make(map[string]bool, len(kept))
	for _, r := range kept {
		if r.ImagePath != "" {
			live[r.ImagePath] = true
		}
	}
	for _, r := range dropped {
		if r.ImagePath == "" || live[r.ImagePath] {
			continue
		}
		if err := s.blobs.Delete(r.ImagePath); err != nil {
			s.log.Warn().Err(err).Str("blob", r.ImagePath).Msg("failed to delete blob")
		}
	}
}

func indexOf(records []Record, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func isSameText(a, b Record) bool {
	return a.Type == TypeText && b.Type == TypeText && a.Content == b.Content
}
