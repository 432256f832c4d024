// Package mockboard provides an in-memory clipboard for tests.
package mockboard

import (
	"bytes"
	"sync"

	"github.com/yiblet/clippy/internal/clipboard"
)

// MockClipboard implements clipboard.Clipboard in memory. Like a real
// clipboard it holds one payload; writing one format clears the other.
type MockClipboard struct {
	mu      sync.Mutex
	data    map[clipboard.Format][]byte
	readErr error
	reads   int
	writes  int
}

var _ clipboard.Clipboard = (*MockClipboard)(nil)

// New creates an empty MockClipboard.
func New() *MockClipboard {
	return &MockClipboard{data: make(map[clipboard.Format][]byte)}
}

// Read implements clipboard.Clipboard.
func (m *MockClipboard) Read(format clipboard.Format) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.readErr != nil {
		return nil, m.readErr
	}
	return bytes.Clone(m.data[format]), nil
}

// Write implements clipboard.Clipboard.
func (m *MockClipboard) Write(format clipboard.Format, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.data = map[clipboard.Format][]byte{format: bytes.Clone(data)}
	return nil
}

// SetText replaces the clipboard with text.
func (m *MockClipboard) SetText(text string) {
	_ = m.Write(clipboard.FormatText, []byte(text))
}

// SetImage replaces the clipboard with PNG data.
func (m *MockClipboard) SetImage(png []byte) {
	_ = m.Write(clipboard.FormatImage, png)
}

// GetData returns the current payload of format.
func (m *MockClipboard) GetData(format clipboard.Format) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Clone(m.data[format])
}

// FailReads makes every Read return err until called again with nil.
func (m *MockClipboard) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// Reads returns how many times Read was called.
func (m *MockClipboard) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// IsSupported always returns true for the mock clipboard
func (m *MockClipboard) IsSupported() bool {
	return true
}
