package views

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rivo/tview"
)

// sanitizeForTerminal removes codepoints tcell renders badly: skin tone
// modifiers, zero width joiners and variation selectors. A family emoji
// collapses to its members, each drawn two cells wide.
func sanitizeForTerminal(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isProblematicRune(r) {
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

func isProblematicRune(r rune) bool {
	switch {
	// Skin tone modifiers.
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	// Zero Width Joiner.
	case r == 0x200D:
		return true
	// Variation Selectors.
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	// Variation Selectors Supplement.
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	default:
		return false
	}
}

// display prepares server text for a tview cell: one line, sanitized and
// with color tags escaped.
func display(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return tview.Escape(sanitizeForTerminal(s))
}

// formatTimestamp shows the clock for today and the date otherwise.
func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(now.Location())
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}
