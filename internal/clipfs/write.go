package clipfs

import (
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// WriteFile atomically replaces path with data.
//
// The data is written to a temp file in the same directory, synced, and
// renamed over path. Readers see either the old or the new contents, never a
// partial file. On failure the temp file is removed and path is untouched.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		return errors.Errorf("failed to chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return errors.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return errors.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Errorf("failed to rename %s: %w", tmpName, err)
	}

	success = true
	return nil
}
