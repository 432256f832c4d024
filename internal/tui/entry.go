package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/yiblet/clippy/internal/history"
	"github.com/yiblet/clippy/internal/store"
)

// Entry is one row of the picker together with its wrapped preview.
type Entry struct {
	Record  store.Record
	Preview string
	Stamp   string

	Lines       []string // Body wrapped to CachedWidth
	CachedWidth int
}

// NewEntries builds picker rows for records, newest first.
func NewEntries(records []store.Record, now time.Time) []*Entry {
	entries := make([]*Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, &Entry{
			Record:  rec,
			Preview: history.Preview(rec),
			Stamp:   history.FormatTimestamp(rec, now),
		})
	}
	return entries
}

// Body returns the full text shown in the preview pane.
func (e *Entry) Body() string {
	if !e.Record.IsImage() {
		return e.Record.Content
	}
	info, err := os.Stat(e.Record.ImagePath)
	if err != nil {
		return fmt.Sprintf("[image]\n\n%s\n(file missing)", e.Record.ImagePath)
	}
	return fmt.Sprintf("[image]\n\n%s\n%d bytes", e.Record.ImagePath, info.Size())
}

// UpdateWrappedLines rewraps the body for width. Nothing is recomputed when
// the width is unchanged.
func (e *Entry) UpdateWrappedLines(width int) {
	if width == e.CachedWidth && e.Lines != nil {
		return
	}
	e.Lines = WrapText(e.Body(), width)
	e.CachedWidth = width
}
