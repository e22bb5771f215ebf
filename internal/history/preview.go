package history

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PreviewLength is the default preview width in characters.
const PreviewLength = 50

// Preview renders a single-line label for the entry, at most maxLen runes.
// Text entries use their first non-empty line; images show their size.
func (e Entry) Preview(maxLen int) string {
	switch e.kind {
	case KindText:
		return Truncate(firstLine(e.payload), maxLen)
	case KindImage:
		return Truncate(fmt.Sprintf("[image %s]", formatSize(len(e.payload))), maxLen)
	default:
		return "[unknown]"
	}
}

func firstLine(sample []byte) string {
	if len(sample) == 0 {
		return "[empty]"
	}

	for _, line := range strings.Split(string(sample), "\n") {
		if cleaned := strings.TrimSpace(line); cleaned != "" {
			return Sanitize(cleaned)
		}
	}

	// whitespace only
	return "[blank]"
}

// Truncate ensures s is at most maxLen runes, appending "..." when it cuts.
func Truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	if maxLen < 3 {
		return strings.Repeat(".", maxLen)
	}

	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

// Sanitize replaces control characters with spaces and collapses whitespace,
// so labels are safe to print in a terminal.
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func formatSize(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
