package blob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yiblet/clippy/internal/store"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), ".clippy_data", "images"), zerolog.Nop())
}

func TestEnsureDirectory(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.EnsureDirectory())
	require.NoError(t, s.EnsureDirectory())

	info, err := os.Stat(s.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestEnsureDirectory_TightensExistingDirectory(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))
	require.NoError(t, os.Chmod(s.Dir(), 0o755))

	require.NoError(t, s.EnsureDirectory())

	info, err := os.Stat(s.Dir())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestSave(t *testing.T) {
	s := newStore(t)

	path, err := s.Save(pngHeader)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, ".png", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	other, err := s.Save(pngHeader)
	require.NoError(t, err)
	assert.NotEqual(t, path, other)
}

func TestSave_RejectsEmpty(t *testing.T) {
	s := newStore(t)

	_, err := s.Save(nil)
	require.Error(t, err)
	assert.Equal(t, store.KindInvalidInput, store.KindOf(err))

	_, statErr := os.Stat(s.Dir())
	assert.True(t, os.IsNotExist(statErr), "no directory should be created for empty input")
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	path, err := s.Save(pngHeader)
	require.NoError(t, err)

	require.NoError(t, s.Delete(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	err = s.Delete(path)
	require.Error(t, err)
	assert.Equal(t, store.KindNotFound, store.KindOf(err))

	err = s.Delete("")
	require.Error(t, err)
	assert.Equal(t, store.KindInvalidInput, store.KindOf(err))
}

func TestOrphansAndPrune(t *testing.T) {
	s := newStore(t)
	live, err := s.Save(pngHeader)
	require.NoError(t, err)
	orphan, err := s.Save(pngHeader)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0o600))

	orphans, err := s.Orphans([]string{live, ""})
	require.NoError(t, err)
	assert.Equal(t, []string{orphan}, orphans)

	removed, err := s.Prune([]string{live})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(live)
	assert.NoError(t, err)
	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err))
}

func TestOrphans_MissingDirectory(t *testing.T) {
	s := newStore(t)

	orphans, err := s.Orphans(nil)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}
