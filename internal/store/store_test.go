package store_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/yiblet/clippy/internal/retention"
	"github.com/yiblet/clippy/internal/store"
	"github.com/yiblet/clippy/internal/store/memstore"
)

type fakeBlobs struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeBlobs) Delete(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeBlobs) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

var base = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newStore(policy retention.Policy) (*store.RecordStore, *memstore.Backend, *fakeBlobs) {
	backend := memstore.New("history")
	blobs := &fakeBlobs{}
	s := store.New("history", backend, policy,
		store.WithBlobs(blobs),
		store.WithClock(func() time.Time { return base }),
	)
	return s, backend, blobs
}

func contents(records []store.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		if r.IsImage() {
			out = append(out, r.ImagePath)
			continue
		}
		out = append(out, r.Content)
	}
	return out
}

func TestPrepend_NewestFirst(t *testing.T) {
	s, _, _ := newStore(retention.Policy{MaxItems: 10})

	for _, text := range []string{"one", "two", "three"} {
		_, err := s.Prepend(store.NewText(text, base))
		require.NoError(t, err)
	}

	records, _ := s.Load()
	assert.Equal(t, []string{"three", "two", "one"}, contents(records))
}

func TestPrepend_EvictsOldest(t *testing.T) {
	s, _, blobs := newStore(retention.Policy{MaxItems: 2})

	_, err := s.Prepend(store.NewImage("/blobs/old.png", base))
	require.NoError(t, err)
	_, err = s.Prepend(store.NewText("middle", base))
	require.NoError(t, err)

	evicted, err := s.Prepend(store.NewText("newest", base))
	require.NoError(t, err)
	require.Len(t, evicted, 1)
	assert.Equal(t, "/blobs/old.png", evicted[0].ImagePath)

	records, _ := s.Load()
	assert.Equal(t, []string{"newest", "middle"}, contents(records))
	assert.Equal(t, []string{"/blobs/old.png"}, blobs.Deleted())
}

func TestPrepend_DuplicateTextMovesToFront(t *testing.T) {
	s, _, _ := newStore(retention.Policy{MaxItems: 10})

	for _, text := range []string{"a", "b", "a"} {
		_, err := s.Prepend(store.NewText(text, base))
		require.NoError(t, err)
	}

	records, _ := s.Load()
	assert.Equal(t, []string{"a", "b"}, contents(records))
}

func TestPrepend_RejectsInvalidRecord(t *testing.T) {
	s, backend, _ := newStore(retention.Policy{MaxItems: 10})

	_, err := s.Prepend(store.Record{ID: "x", Type: store.TypeImage})
	require.Error(t, err)
	assert.Equal(t, store.KindInvalidInput, store.KindOf(err))
	assert.Equal(t, 0, backend.Saves())
}

func TestPrepend_SaveFailureKeepsState(t *testing.T) {
	s, backend, blobs := newStore(retention.Policy{MaxItems: 1})
	_, err := s.Prepend(store.NewImage("/blobs/keep.png", base))
	require.NoError(t, err)

	backend.FailNextSave(errors.New("disk full"))
	_, err = s.Prepend(store.NewText("lost", base))
	require.Error(t, err)

	records, _ := s.Load()
	assert.Equal(t, []string{"/blobs/keep.png"}, contents(records))
	assert.Empty(t, blobs.Deleted())
}

func TestCleanupExpired(t *testing.T) {
	s, _, blobs := newStore(retention.Policy{MaxItems: 50, MaxAge: 30 * 24 * time.Hour})

	recent := store.NewText("recent", base.Add(-24*time.Hour))
	stale := store.NewImage("/blobs/stale.png", base.Add(-40*24*time.Hour))
	edge := store.NewText("edge", base.Add(-29*24*time.Hour))
	require.NoError(t, s.Save([]store.Record{recent, stale, edge}))

	removed, err := s.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	records, _ := s.Load()
	assert.Equal(t, []string{"recent", "edge"}, contents(records))
	assert.Equal(t, []string{"/blobs/stale.png"}, blobs.Deleted())
}

func TestCleanupExpired_NothingToDoSkipsWrite(t *testing.T) {
	s, backend, _ := newStore(retention.Policy{MaxItems: 50, MaxAge: time.Hour})
	require.NoError(t, s.Save([]store.Record{store.NewText("fresh", base)}))
	saves := backend.Saves()

	removed, err := s.CleanupExpired()
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, saves, backend.Saves())
}

func TestCleanupExpired_UnstampedNeverExpires(t *testing.T) {
	s, _, _ := newStore(retention.Policy{MaxItems: 50, MaxAge: time.Hour})
	legacy := store.Record{ID: "legacy", Type: store.TypeText, Content: "no timestamp"}
	require.NoError(t, s.Save([]store.Record{legacy}))

	removed, err := s.CleanupExpired()
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, 1, s.Len())
}

func TestTake_KeepsBlob(t *testing.T) {
	s, _, blobs := newStore(retention.Policy{MaxItems: 10})
	img := store.NewImage("/blobs/move.png", base)
	_, err := s.Prepend(img)
	require.NoError(t, err)

	taken, err := s.Take(img.ID)
	require.NoError(t, err)
	assert.Equal(t, img, taken)
	assert.Zero(t, s.Len())
	assert.Empty(t, blobs.Deleted())
}

func TestDelete_ReleasesBlob(t *testing.T) {
	s, _, blobs := newStore(retention.Policy{MaxItems: 10})
	img := store.NewImage("/blobs/gone.png", base)
	_, err := s.Prepend(img)
	require.NoError(t, err)

	require.NoError(t, s.Delete(img.ID))
	assert.Equal(t, []string{"/blobs/gone.png"}, blobs.Deleted())

	err = s.Delete(img.ID)
	require.Error(t, err)
	assert.Equal(t, store.KindNotFound, store.KindOf(err))
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestRelease_SkipsSharedBlob(t *testing.T) {
	s, _, blobs := newStore(retention.Policy{MaxItems: 10})
	a := store.NewImage("/blobs/shared.png", base)
	b := store.NewImage("/blobs/shared.png", base)
	require.NoError(t, s.Save([]store.Record{a, b}))

	require.NoError(t, s.Delete(a.ID))
	assert.Empty(t, blobs.Deleted())
}

func TestClear(t *testing.T) {
	s, _, blobs := newStore(retention.Policy{MaxItems: 10})
	require.NoError(t, s.Save([]store.Record{
		store.NewText("x", base),
		store.NewImage("/blobs/y.png", base),
	}))

	n, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Zero(t, s.Len())
	assert.Equal(t, []string{"/blobs/y.png"}, blobs.Deleted())
}

func TestFindAndAt(t *testing.T) {
	s, _, _ := newStore(retention.Policy{MaxItems: 10})
	first := store.NewText("first", base)
	second := store.NewText("second", base)
	require.NoError(t, s.Save([]store.Record{second, first}))

	got, idx, err := s.Find(first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, first, got)

	at, err := s.At(0)
	require.NoError(t, err)
	assert.Equal(t, second, at)

	_, err = s.At(2)
	assert.Equal(t, store.KindNotFound, store.KindOf(err))
	_, _, err = s.Find("missing")
	assert.Equal(t, store.KindNotFound, store.KindOf(err))
}

func TestLoad_RecoveryIsTransparent(t *testing.T) {
	s, backend, _ := newStore(retention.Policy{MaxItems: 10})
	_, err := s.Prepend(store.NewText("safe", base))
	require.NoError(t, err)
	_, err = s.Prepend(store.NewText("newer", base))
	require.NoError(t, err)

	backend.SetRaw([]byte(""))

	records, report := s.Load()
	assert.True(t, report.Recovered())
	assert.Equal(t, []string{"safe"}, contents(records))
}

func TestConcurrentPrepend(t *testing.T) {
	s, _, _ := newStore(retention.Policy{MaxItems: 100})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Prepend(store.NewText(string(rune('A'+i)), base))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len())
}
