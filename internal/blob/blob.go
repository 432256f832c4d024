// Package blob stores clipboard images as individual PNG files.
package blob

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/yiblet/clippy/internal/clipfs"
	"github.com/yiblet/clippy/internal/store"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
	ext      = ".png"
)

var errEmptyImage = errors.Base("image data is empty")

var errEmptyPath = errors.Base("blob path is empty")

// Store manages the image directory.
type Store struct {
	dir string
	log zerolog.Logger
}

// New creates a Store rooted at dir. The directory is created lazily.
func New(dir string, log zerolog.Logger) *Store {
	return &Store{dir: dir, log: log.With().Str("component", "blob").Logger()}
}

// Dir returns the image directory.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDirectory creates the image directory if it does not exist.
func (s *Store) EnsureDirectory() error {
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return store.Wrap("mkdir", s.dir, err)
	}
	// MkdirAll leaves an existing directory's mode alone.
	if err := os.Chmod(s.dir, dirPerm); err != nil {
		return store.Wrap("chmod", s.dir, err)
	}
	s.log.Debug().Str("dir", s.dir).Msg("image directory ready")
	return nil
}

// Save writes data to a new uniquely named PNG file and returns its
// absolute path.
func (s *Store) Save(data []byte) (string, error) {
	if len(data) == 0 {
		return "", store.NewError("save blob", s.dir, store.KindInvalidInput, errEmptyImage)
	}
	if err := s.EnsureDirectory(); err != nil {
		return "", err
	}

	path, err := filepath.Abs(filepath.Join(s.dir, uuid.NewString()+ext))
	if err != nil {
		return "", store.Wrap("save blob", s.dir, err)
	}
	if err := clipfs.WriteFile(path, data, filePerm); err != nil {
		return "", store.Wrap("save blob", path, err)
	}

	s.log.Debug().Str("path", path).Int("bytes", len(data)).Msg("image saved")
	return path, nil
}

// Delete removes the blob at path.
func (s *Store) Delete(path string) error {
	if path == "" {
		return store.NewError("delete blob", "", store.KindInvalidInput, errEmptyPath)
	}
	if err := os.Remove(path); err != nil {
		return store.Wrap("delete blob", path, err)
	}
	s.log.Debug().Str("path", path).Msg("image deleted")
	return nil
}

// Orphans returns the blob files in the image directory that no path in live
// refers to, sorted by name. A missing directory has no orphans.
func (s *Store) Orphans(live []string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, store.Wrap("scan blobs", s.dir, err)
	}

	referenced := make(map[string]bool, len(live))
	for _, p := range live {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			referenced[abs] = true
		}
	}

	var orphans []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		path, err := filepath.Abs(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		if !referenced[path] {
			orphans = append(orphans, path)
		}
	}
	sort.Strings(orphans)
	return orphans, nil
}

// Prune deletes every orphaned blob and returns how many were removed.
// Individual failures are logged and skipped.
func (s *Store) Prune(live []string) (int, error) {
	orphans, err := s.Orphans(live)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range orphans {
		if err := s.Delete(path); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("failed to prune image")
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("orphaned images pruned")
	}
	return removed, nil
}
