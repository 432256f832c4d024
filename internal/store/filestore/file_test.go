package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/yiblet/clippy/internal/store"
)

func newFile(t *testing.T) *File {
	t.Helper()
	return New(filepath.Join(t.TempDir(), ".clipboard_history"))
}

func sampleRecords(n int) []store.Record {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	records := make([]store.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, store.NewText(string(rune('a'+i)), now.Add(-time.Duration(i)*time.Minute)))
	}
	return records
}

func TestLoad_MissingPrimary(t *testing.T) {
	f := newFile(t)
	require.NoError(t, os.WriteFile(f.BackupLocation(), []byte(`[{"id":"x","type":"text","content":"old"}]`), 0o600))

	records, report := f.Load()
	assert.Empty(t, records)
	assert.NotNil(t, records)
	assert.Equal(t, store.SourceNone, report.Source)
	assert.Equal(t, store.KindNotFound, store.KindOf(report.Primary))
	assert.False(t, report.Lost())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	f := newFile(t)
	records := sampleRecords(3)

	require.NoError(t, f.Save(records))

	loaded, report := f.Load()
	assert.Equal(t, store.SourcePrimary, report.Source)
	assert.Equal(t, records, loaded)
}

func TestSaveLoad_PreservesUnknownFields(t *testing.T) {
	f := newFile(t)
	input := `[
  {"id": "1", "type": "text", "content": "hi", "timestamp": 1714564800.25, "source": {"app": "term"}},
  {"id": "2", "type": "image", "imagePath": "/tmp/a.png", "tags": ["x", "y"]}
]`
	require.NoError(t, os.WriteFile(f.Location(), []byte(input), 0o600))

	loaded, _ := f.Load()
	require.Len(t, loaded, 2)
	require.NoError(t, f.Save(loaded))

	reloaded, _ := f.Load()
	assert.Equal(t, loaded, reloaded)
	assert.JSONEq(t, `{"app":"term"}`, string(reloaded[0].Extra["source"]))
	assert.JSONEq(t, `["x","y"]`, string(reloaded[1].Extra["tags"]))
}

func TestSaveLoad_PreservesMistypedAndEmptyFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"content with wrong type", `{"id":"a","type":"text","content":5,"timestamp":1}`},
		{"empty content without type", `{"id":"b","content":"","pinned":true}`},
		{"empty content on text", `{"id":"c","type":"text","content":""}`},
		{"null content", `{"id":"d","type":"text","content":null}`},
		{"image with stray content", `{"id":"e","type":"image","imagePath":"/tmp/e.png","content":["x"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFile(t)
			require.NoError(t, os.WriteFile(f.Location(), []byte("["+tt.input+"]"), 0o600))

			loaded, report := f.Load()
			require.Equal(t, store.SourcePrimary, report.Source)
			require.NoError(t, f.Save(loaded))

			data, err := os.ReadFile(f.Location())
			require.NoError(t, err)
			assert.JSONEq(t, "["+tt.input+"]", string(data))
		})
	}
}

func TestSave_PrettyPrintedAndPrivate(t *testing.T) {
	f := newFile(t)
	require.NoError(t, f.Save(sampleRecords(1)))

	data, err := os.ReadFile(f.Location())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {")

	info, err := os.Stat(f.Location())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSave_EmptySequenceIsArray(t *testing.T) {
	f := newFile(t)
	require.NoError(t, f.Save(nil))

	data, err := os.ReadFile(f.Location())
	require.NoError(t, err)

	var decoded []any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Empty(t, decoded)
}

func TestSave_RotatesBackup(t *testing.T) {
	f := newFile(t)
	first := sampleRecords(1)
	second := sampleRecords(2)

	require.NoError(t, f.Save(first))
	require.NoError(t, f.Save(second))

	backup, report := New(f.BackupLocation()).Load()
	assert.Equal(t, store.SourcePrimary, report.Source)
	assert.Equal(t, first, backup)
}

func TestLoad_RecoversFromBackup(t *testing.T) {
	tests := []struct {
		name    string
		primary string
	}{
		{"empty file", ""},
		{"whitespace only", "  \n"},
		{"truncated json", `[{"id":"1","type":"te`},
		{"object at top level", `{"id":"1"}`},
		{"null at top level", `null`},
		{"element not an object", `["just a string"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFile(t)
			previous := sampleRecords(2)
			require.NoError(t, f.Save(previous))
			require.NoError(t, f.Save(sampleRecords(3)))
			require.NoError(t, os.WriteFile(f.Location(), []byte(tt.primary), 0o600))

			loaded, report := f.Load()
			assert.True(t, report.Recovered())
			assert.Equal(t, store.KindCorrupt, store.KindOf(report.Primary))
			assert.Equal(t, previous, loaded)
		})
	}
}

func TestLoad_BothGenerationsCorrupt(t *testing.T) {
	f := newFile(t)
	require.NoError(t, os.WriteFile(f.Location(), []byte("{{{"), 0o600))
	require.NoError(t, os.WriteFile(f.BackupLocation(), []byte(""), 0o600))

	loaded, report := f.Load()
	assert.Empty(t, loaded)
	assert.True(t, report.Lost())
	assert.Error(t, report.Backup)
}

func TestLoad_EmptyPrimaryWithoutBackup(t *testing.T) {
	f := newFile(t)
	require.NoError(t, os.WriteFile(f.Location(), nil, 0o600))
	_, err := os.Stat(f.BackupLocation())
	require.True(t, os.IsNotExist(err))

	loaded, report := f.Load()
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
	assert.Equal(t, store.SourceNone, report.Source)
	assert.Equal(t, store.KindCorrupt, store.KindOf(report.Primary))
	assert.Equal(t, store.KindNotFound, store.KindOf(report.Backup))
	assert.True(t, report.Lost())

	// The next save starts a fresh sequence and leaves no backup of the
	// empty primary behind.
	require.NoError(t, f.Save(sampleRecords(1)))
	reloaded, report := f.Load()
	assert.Equal(t, store.SourcePrimary, report.Source)
	assert.Len(t, reloaded, 1)
	_, err = os.Stat(f.BackupLocation())
	assert.True(t, os.IsNotExist(err))
}

func TestSave_CorruptPrimaryDoesNotReplaceBackup(t *testing.T) {
	f := newFile(t)
	good := sampleRecords(2)
	require.NoError(t, f.Save(good))
	require.NoError(t, f.Save(sampleRecords(1)))
	require.NoError(t, os.WriteFile(f.Location(), []byte("garbage"), 0o600))

	// The corrupt primary must not be rotated over the backup.
	require.NoError(t, f.Save(sampleRecords(3)))
	require.NoError(t, os.WriteFile(f.Location(), []byte("garbage"), 0o600))

	loaded, report := f.Load()
	assert.True(t, report.Recovered())
	assert.Equal(t, good, loaded)
}

func TestSave_CrashBeforeRenameKeepsPreviousSequence(t *testing.T) {
	f := newFile(t)
	previous := sampleRecords(2)
	require.NoError(t, f.Save(previous))

	crash := errors.New("simulated crash")
	f.write = func(path string, data []byte, perm os.FileMode) error {
		if path == f.Location() {
			// Leave a half-written temp file behind like an interrupted writer.
			tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp-crash")
			_ = os.WriteFile(tmp, data[:len(data)/2], perm)
			return crash
		}
		return os.WriteFile(path, data, perm)
	}

	err := f.Save(sampleRecords(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, crash)

	loaded, report := New(f.Location()).Load()
	assert.Equal(t, store.SourcePrimary, report.Source)
	assert.Equal(t, previous, loaded)
}

func TestSave_UnwritableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	f := New(filepath.Join(dir, ".clipboard_pins"))
	err := f.Save(sampleRecords(1))
	require.Error(t, err)
	assert.Equal(t, store.KindPermission, store.KindOf(err))
}
