package history

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/yiblet/clippy/internal/store"
)

const (
	// PreviewLength is the number of runes shown before a preview is cut.
	PreviewLength = 60

	newlineMarker = "↵"
	ellipsis      = "..."
)

// Preview renders a record as a single display line.
// Newlines become ↵, other control characters become spaces, runs of
// whitespace collapse, and the result is cut at PreviewLength runes.
func Preview(rec store.Record) string {
	if rec.IsImage() {
		return "[image] " + filepath.Base(rec.ImagePath)
	}
	return PreviewText(rec.Content, PreviewLength)
}

// PreviewText sanitizes text for single-line display and truncates it to
// maxLen runes followed by "...".
func PreviewText(text string, maxLen int) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", " "+newlineMarker+" ")
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)
	text = strings.Join(strings.Fields(text), " ")

	if text == "" {
		return "[empty]"
	}
	return Truncate(text, maxLen)
}

// Truncate cuts s to at most maxLen runes, appending "..." when it does.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:maxLen]), " ") + ellipsis
}

// FormatTimestamp renders the record time relative to now.
func FormatTimestamp(rec store.Record, now time.Time) string {
	t, ok := rec.Time()
	if !ok {
		return "-"
	}
	return FormatTime(t, now)
}

// FormatTime renders t as "Today 15:04:05", "Yesterday 15:04" or
// "Jan 2 15:04", all in now's location.
func FormatTime(t, now time.Time) string {
	t = t.In(now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case !t.Before(today):
		return "Today " + t.Format("15:04:05")
	case !t.Before(today.AddDate(0, 0, -1)):
		return "Yesterday " + t.Format("15:04")
	default:
		return t.Format("Jan 2 15:04")
	}
}
