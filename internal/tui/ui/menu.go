package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"
)

// menuRows is how many hints a column holds; it matches the header height.
const menuRows = 6

// Menu displays keyboard shortcut hints in columns.
type Menu struct {
	*tview.TextView
	theme *Theme
}

// NewMenu creates a new menu hint panel.
func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	return &Menu{
		TextView: tv,
		theme:    theme,
	}
}

// Update lays hints out top to bottom, then left to right.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()
	_, _ = fmt.Fprint(m, m.layout(hints))
}

func (m *Menu) layout(hints []MenuHint) string {
	keyColor := colorName(m.theme.MenuKeyColor)
	numColor := colorName(m.theme.NumericKeyColor)

	rows := make([]strings.Builder, min(len(hints), menuRows))
	for start := 0; start < len(hints); start += menuRows {
		col := hints[start:min(start+menuRows, len(hints))]
		width := 0
		for _, h := range col {
			width = max(width, runewidth.StringWidth(h.Key)+runewidth.StringWidth(h.Description)+3)
		}
		for i, h := range col {
			kc := keyColor
			if h.Numeric {
				kc = numColor
			}
			pad := width - runewidth.StringWidth(h.Key) - runewidth.StringWidth(h.Description) - 3
			_, _ = fmt.Fprintf(&rows[i], "[%s::b]<%s>[-:-:-] %s%s  ",
				kc, tview.Escape(h.Key), tview.Escape(h.Description), strings.Repeat(" ", pad))
		}
	}
	lines := make([]string, len(rows))
	for i := range rows {
		lines[i] = strings.TrimRight(rows[i].String(), " ")
	}
	return strings.Join(lines, "\n")
}
