package memstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/yiblet/clippy/internal/store"
)

func TestBackend_EmptyLoad(t *testing.T) {
	b := New("history")

	records, report := b.Load()
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Equal(t, store.KindNotFound, store.KindOf(report.Primary))
	assert.False(t, report.Lost())
}

func TestBackend_SaveLoad(t *testing.T) {
	b := New("history")
	records := []store.Record{store.NewText("hello", time.Now())}

	require.NoError(t, b.Save(records))

	loaded, report := b.Load()
	assert.Equal(t, store.SourcePrimary, report.Source)
	assert.Equal(t, records, loaded)
	assert.Equal(t, 1, b.Saves())
}

func TestBackend_RecoversFromBackup(t *testing.T) {
	b := New("pins")
	first := []store.Record{store.NewText("first", time.Now())}
	require.NoError(t, b.Save(first))
	require.NoError(t, b.Save([]store.Record{store.NewText("second", time.Now())}))

	b.SetRaw([]byte("not json"))

	loaded, report := b.Load()
	assert.True(t, report.Recovered())
	assert.Equal(t, first, loaded)
}

func TestBackend_FailNextSave(t *testing.T) {
	b := New("history")
	require.NoError(t, b.Save([]store.Record{}))

	boom := errors.New("disk full")
	b.FailNextSave(boom)

	err := b.Save([]store.Record{store.NewText("lost", time.Now())})
	assert.ErrorIs(t, err, boom)

	loaded, _ := b.Load()
	assert.Empty(t, loaded)

	require.NoError(t, b.Save([]store.Record{store.NewText("kept", time.Now())}))
	loaded, _ = b.Load()
	assert.Len(t, loaded, 1)
}
