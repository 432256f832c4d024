package clipfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewWithHome_Default(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	cfs, err := NewWithHome("")
	if err != nil {
		t.Fatalf("NewWithHome(\"\") failed: %v", err)
	}
	if cfs.Root() != tempDir {
		t.Errorf("Expected root path %s, got %s", tempDir, cfs.Root())
	}
}

func TestNewWithHome_Relative(t *testing.T) {
	tempDir := t.TempDir()
	chdirForTest(t, tempDir)

	cfs, err := NewWithHome("sandbox")
	if err != nil {
		t.Fatalf("NewWithHome failed: %v", err)
	}
	if !filepath.IsAbs(cfs.Root()) {
		t.Errorf("Expected absolute root, got %s", cfs.Root())
	}
	if filepath.Base(cfs.Root()) != "sandbox" {
		t.Errorf("Expected root to end with sandbox, got %s", cfs.Root())
	}
}

func TestLayout(t *testing.T) {
	cfs := NewWithRoot("/home/test")

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"history", cfs.HistoryPath(), "/home/test/.clipboard_history"},
		{"pins", cfs.PinsPath(), "/home/test/.clipboard_pins"},
		{"config", cfs.ConfigPath(), "/home/test/.clippy.conf"},
		{"data", cfs.DataPath(), "/home/test/.clippy_data"},
		{"images", cfs.ImagesPath(), "/home/test/.clippy_data/images"},
		{"backup", BackupPath(cfs.HistoryPath()), "/home/test/.clipboard_history.backup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, tt.got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	cfs, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	home, _ := os.UserHomeDir()
	if cfs.Root() != home {
		t.Errorf("Expected root %s, got %s", home, cfs.Root())
	}
}

// chdirForTest changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldDir); err != nil {
			t.Errorf("restoring working directory failed: %v", err)
		}
	})
}
