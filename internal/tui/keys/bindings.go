// Package keys maps key presses to page actions.
package keys

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Action represents a keybinding action.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Description string
	Handler     func()
	Visible     bool
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Label is the key as shown in the hint bar.
func (a *Action) Label() string {
	if a.Key == tcell.KeyRune {
		return string(a.Rune)
	}
	if name, ok := tcell.KeyNames[a.Key]; ok {
		return strings.TrimPrefix(name, "Ctrl-")
	}
	return "?"
}

// Hint is a visible binding for the hint bar.
type Hint struct {
	Key         string
	Description string
}

type binding struct {
	name   string
	action *Action
}

// Registry holds keybindings organized by scope. Bindings keep their
// registration order so hints render stably.
type Registry struct {
	global []binding
	views  map[string][]binding
}

// NewRegistry creates a new keybinding registry.
func NewRegistry() *Registry {
	return &Registry{
		views: make(map[string][]binding),
	}
}

// AddGlobal registers a global keybinding. A second registration under the
// same name replaces the first.
func (r *Registry) AddGlobal(name string, action *Action) {
	r.global = put(r.global, name, action)
}

// AddView registers a view-specific keybinding.
func (r *Registry) AddView(view, name string, action *Action) {
	r.views[view] = put(r.views[view], name, action)
}

func put(list []binding, name string, action *Action) []binding {
	for i := range list {
		if list[i].name == name {
			list[i].action = action
			return list
		}
	}
	return append(list, binding{name: name, action: action})
}

// Hints returns visible keybindings for a given view, view bindings first.
func (r *Registry) Hints(view string) []Hint {
	var hints []Hint
	for _, list := range [][]binding{r.views[view], r.global} {
		for _, b := range list {
			if b.action.Visible {
				hints = append(hints, Hint{Key: b.action.Label(), Description: b.action.Description})
			}
		}
	}
	return hints
}

// HandleEvent dispatches a key event to matching action in the given view.
// View bindings shadow global ones. Returns true if a handler matched.
func (r *Registry) HandleEvent(view string, ev *tcell.EventKey) bool {
	for _, list := range [][]binding{r.views[view], r.global} {
		for _, b := range list {
			if b.action.Matches(ev) {
				b.action.Handler()
				return true
			}
		}
	}
	return false
}
