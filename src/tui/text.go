package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// CleanLogText strips ANSI escape sequences from backend-supplied text and
// normalizes line endings. Reasons and report excerpts pass through here
// before any width math.
func CleanLogText(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// Flatten collapses cleaned text onto a single line for list cells.
func Flatten(s string) string {
	return strings.Join(strings.Fields(CleanLogText(s)), " ")
}

// VisualWidth returns the display width of text, accounting for multi-byte characters
func VisualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate truncates text to maxLen visual cells with optional ellipsis
func Truncate(s string, maxLen int, ellipsis bool) string {
	s = strings.TrimSpace(s)
	if maxLen <= 0 {
		return ""
	}
	if VisualWidth(s) <= maxLen {
		return s
	}
	if ellipsis && maxLen > 3 {
		return runewidth.Truncate(s, maxLen-3, "") + "..."
	}
	return runewidth.Truncate(s, maxLen, "")
}

// TruncateAndPad truncates text with optional ellipsis and pads to exact width.
// Used for table cells to keep column edges aligned.
func TruncateAndPad(s string, width int, ellipsis bool) string {
	s = Truncate(s, width, ellipsis)
	if w := VisualWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// Wrap wraps text to the given width, breaking on word boundaries. Words
// wider than the width are split mid-word.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var b strings.Builder
	lineWidth := 0
	for _, word := range words {
		wordWidth := VisualWidth(word)

		if wordWidth > width {
			if lineWidth > 0 {
				b.WriteString("\n")
			}
			lineWidth = writeBroken(&b, word, width)
			continue
		}

		switch {
		case lineWidth == 0:
			b.WriteString(word)
			lineWidth = wordWidth
		case lineWidth+1+wordWidth <= width:
			b.WriteString(" ")
			b.WriteString(word)
			lineWidth += 1 + wordWidth
		default:
			b.WriteString("\n")
			b.WriteString(word)
			lineWidth = wordWidth
		}
	}

	return b.String()
}

// writeBroken emits word in width-sized chunks and returns the width of the
// last chunk written.
func writeBroken(b *strings.Builder, word string, width int) int {
	last := 0
	for word != "" {
		chunk := runewidth.Truncate(word, width, "")
		if chunk == "" {
			// A single rune wider than the width; emit it rather than loop.
			runes := []rune(word)
			chunk = string(runes[0])
		}
		b.WriteString(chunk)
		word = word[len(chunk):]
		last = VisualWidth(chunk)
		if word != "" {
			b.WriteString("\n")
		}
	}
	return last
}
