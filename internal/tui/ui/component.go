// Package ui holds the widgets shared by the pages: theme, page stack,
// prompt, flash bar and header panels.
package ui

import "github.com/matheus3301/tides/internal/tui/keys"

// Component is the lifecycle interface for all pages. Start runs when the
// page is shown and Stop when it is left.
type Component interface {
	Name() string
	Start()
	Stop()
}

// MenuHints converts registry hints for the menu panel. Digit keys are
// flagged numeric.
func MenuHints(hints []keys.Hint) []MenuHint {
	out := make([]MenuHint, 0, len(hints))
	for _, h := range hints {
		out = append(out, MenuHint{
			Key:         h.Key,
			Description: h.Description,
			Numeric:     len(h.Key) == 1 && h.Key[0] >= '0' && h.Key[0] <= '9',
		})
	}
	return out
}

// MenuHint describes a keyboard shortcut for display in the menu bar.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool
}
