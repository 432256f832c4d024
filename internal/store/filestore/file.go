// Package filestore persists a record sequence as a pretty-printed JSON array
// with one backup generation next to it.
package filestore

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/yiblet/clippy/internal/clipfs"
	"github.com/yiblet/clippy/internal/store"
)

const filePerm = 0o600

var errEmptyFile = errors.Base("file is empty")

var errNotArray = errors.Base("top level is not a JSON array")

// File is a store.Backend backed by path and path+".backup".
//
// Every Save first copies the current, readable primary to the backup and
// then atomically replaces the primary. A crash at any point leaves at least
// one readable generation.
type File struct {
	path   string
	backup string
	log    zerolog.Logger

	// write replaces a file atomically; tests swap it to inject crashes.
	write func(path string, data []byte, perm os.FileMode) error
}

var _ store.Backend = (*File)(nil)

// Option configures a File.
type Option func(*File)

// WithLogger sets the logger used for backup failures.
func WithLogger(log zerolog.Logger) Option {
	return func(f *File) {
		f.log = log
	}
}

// New returns a File backend for path.
func New(path string, opts ...Option) *File {
	f := &File{
		path:   path,
		backup: clipfs.BackupPath(path),
		log:    zerolog.Nop(),
		write:  clipfs.WriteFile,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Location returns the primary file path.
func (f *File) Location() string {
	return f.path
}

// BackupLocation returns the backup file path.
func (f *File) BackupLocation() string {
	return f.backup
}

// Load reads the primary file, falling back to the backup when the primary
// exists but is empty, unreadable, or not a JSON array. A missing primary is
// a first run and yields an empty sequence without consulting the backup.
func (f *File) Load() ([]store.Record, store.Report) {
	records, err := readRecords(f.path)
	if err == nil {
		return records, store.Report{Source: store.SourcePrimary}
	}

	report := store.Report{Source: store.SourceNone, Primary: err}
	if store.KindOf(err) == store.KindNotFound {
		return []store.Record{}, report
	}

	records, backupErr := readRecords(f.backup)
	if backupErr != nil {
		report.Backup = backupErr
		return []store.Record{}, report
	}
	report.Source = store.SourceBackup
	return records, report
}

// Save replaces the stored sequence. The current primary is first copied to
// the backup, unless it cannot be decoded: a corrupt primary never replaces
// the previous backup. Backup failures are logged and do not stop the save.
func (f *File) Save(records []store.Record) error {
	if records == nil {
		records = []store.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return store.NewError("save", f.path, store.KindInvalidInput, err)
	}
	data = append(data, '\n')

	f.rotate()

	if err := f.write(f.path, data, filePerm); err != nil {
		return store.Wrap("save", f.path, err)
	}
	// Rename keeps the temp file mode, but a pre-existing primary with looser
	// permissions is tightened here.
	if err := os.Chmod(f.path, filePerm); err != nil {
		f.log.Warn().Err(err).Str("path", f.path).Msg("failed to restrict permissions")
	}
	return nil
}

// rotate copies the current primary over the backup. A primary that cannot
// be decoded is not copied so a good backup is never replaced by a bad one.
// Failures are logged and do not stop the save.
func (f *File) rotate() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.log.Warn().Err(err).Str("path", f.path).Msg("failed to read primary for backup")
		}
		return
	}
	if _, err := decode(data); err != nil {
		f.log.Warn().Err(err).Str("path", f.path).Msg("primary unreadable, keeping previous backup")
		return
	}
	if err := f.write(f.backup, data, filePerm); err != nil {
		f.log.Warn().Err(err).Str("path", f.backup).Msg("failed to write backup")
	}
}

func readRecords(path string) ([]store.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, store.Wrap("load", path, err)
	}
	records, err := decode(data)
	if err != nil {
		return nil, store.NewError("load", path, store.KindCorrupt, err)
	}
	return records, nil
}

func decode(data []byte) ([]store.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errEmptyFile
	}
	if trimmed[0] != '[' {
		return nil, errNotArray
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
