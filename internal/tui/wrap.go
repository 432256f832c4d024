package tui

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

const tabWidth = 4

// WrapText wraps text to fit within a given display width, breaking on word
// boundaries when possible. Widths are measured in terminal cells, so wide
// runes count double. Tabs are expanded and carriage returns dropped.
// Height truncation is handled by the caller during rendering, not here.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{}
	}

	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\t", strings.Repeat(" ", tabWidth))

	var result []string
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			result = append(result, "")
			continue
		}

		if runewidth.StringWidth(line) <= maxWidth {
			result = append(result, line)
			continue
		}

		result = append(result, wrapLine(line, maxWidth)...)
	}

	return result
}

// wrapLine wraps a single line that is too long, breaking on word boundaries when possible
func wrapLine(line string, maxWidth int) []string {
	var result []string
	var currentLine strings.Builder
	currentWidth := 0

	for _, word := range splitWords(line) {
		wordWidth := runewidth.StringWidth(word)

		// Words wider than the pane are split across lines
		if wordWidth > maxWidth {
			if currentWidth > 0 {
				result = append(result, currentLine.String())
				currentLine.Reset()
				currentWidth = 0
			}
			chunks := breakWord(word, maxWidth)
			result = append(result, chunks[:len(chunks)-1]...)
			last := chunks[len(chunks)-1]
			currentLine.WriteString(last)
			currentWidth = runewidth.StringWidth(last)
			continue
		}

		spaceNeeded := wordWidth
		if currentWidth > 0 {
			spaceNeeded++
		}

		if currentWidth+spaceNeeded > maxWidth {
			result = append(result, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
			currentWidth = wordWidth
			continue
		}

		if currentWidth > 0 {
			currentLine.WriteByte(' ')
			currentWidth++
		}
		currentLine.WriteString(word)
		currentWidth += wordWidth
	}

	if currentWidth > 0 {
		result = append(result, currentLine.String())
	}

	return result
}

// breakWord splits word into chunks no wider than maxWidth cells.
func breakWord(word string, maxWidth int) []string {
	var chunks []string
	var chunk strings.Builder
	width := 0
	for _, r := range word {
		w := runewidth.RuneWidth(r)
		if width+w > maxWidth && width > 0 {
			chunks = append(chunks, chunk.String())
			chunk.Reset()
			width = 0
		}
		chunk.WriteRune(r)
		width += w
	}
	if chunk.Len() > 0 {
		chunks = append(chunks, chunk.String())
	}
	return chunks
}

// splitWords splits text on whitespace
func splitWords(text string) []string {
	return strings.FieldsFunc(text, unicode.IsSpace)
}
