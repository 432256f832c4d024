// Package clipfs resolves the on-disk layout shared by the clippy daemon and CLI.
package clipfs

import (
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

const (
	HistoryFile  = ".clipboard_history"
	PinsFile     = ".clipboard_pins"
	ConfigFile   = ".clippy.conf"
	DataDir      = ".clippy_data"
	ImagesDir    = "images"
	BackupSuffix = ".backup"
)

// ClipFS describes where clippy keeps its files, rooted at a home directory.
type ClipFS struct {
	root string
}

// New creates a ClipFS rooted at the current user's home directory.
func New() (*ClipFS, error) {
	return NewWithHome("")
}

// NewWithHome creates a ClipFS with a custom home directory.
// If home is empty the user's home directory is used. Relative paths are
// made absolute so blob paths stored in records stay valid from any cwd.
func NewWithHome(home string) (*ClipFS, error) {
	if home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Errorf("failed to get user home directory: %w", err)
		}
		home = homeDir
	}

	abs, err := filepath.Abs(home)
	if err != nil {
		return nil, errors.Errorf("failed to resolve home directory %s: %w", home, err)
	}
	return &ClipFS{root: abs}, nil
}

// NewWithRoot creates a ClipFS with a custom root (for testing)
func NewWithRoot(root string) *ClipFS {
	return &ClipFS{root: root}
}

// Root returns the root directory path
func (c *ClipFS) Root() string {
	return c.root
}

func (c *ClipFS) HistoryPath() string {
	return filepath.Join(c.root, HistoryFile)
}

func (c *ClipFS) PinsPath() string {
	return filepath.Join(c.root, PinsFile)
}

func (c *ClipFS) ConfigPath() string {
	return filepath.Join(c.root, ConfigFile)
}

func (c *ClipFS) DataPath() string {
	return filepath.Join(c.root, DataDir)
}

// ImagesPath is the blob directory holding one PNG per image entry.
func (c *ClipFS) ImagesPath() string {
	return filepath.Join(c.root, DataDir, ImagesDir)
}

// BackupPath returns the single backup generation kept next to path.
func BackupPath(path string) string {
	return path + BackupSuffix
}
