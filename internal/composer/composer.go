package composer

import (
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/matheus3301/tides/internal/bus"
	"github.com/matheus3301/tides/internal/logging"
	"github.com/matheus3301/tides/internal/remote"
	"go.uber.org/zap"
)

// ErrorClearDelay is how long a send error stays visible.
const ErrorClearDelay = 4 * time.Second

// Panel is the auxiliary surface open below the input. At most one is open.
type Panel int

const (
	PanelNone Panel = iota
	PanelOptions
	PanelEmoji
	PanelAttachments
)

func (p Panel) String() string {
	switch p {
	case PanelOptions:
		return "options"
	case PanelEmoji:
		return "emoji"
	case PanelAttachments:
		return "attachments"
	default:
		return "none"
	}
}

// State is a copy of the composer state for rendering.
type State struct {
	Text           string
	Cursor         int // rune offset into Text
	Panel          Panel
	Focused        bool
	Sending        bool
	Template       *remote.Template
	TemplateParams []string
	ErrorMessage   string
}

// Option configures a Composer.
type Option func(*Composer)

// WithErrorDelay overrides ErrorClearDelay.
func WithErrorDelay(d time.Duration) Option {
	return func(c *Composer) { c.errorDelay = d }
}

// Composer is the message input of one conversation: its text and cursor,
// the open panel, the selected template and the transient send error.
type Composer struct {
	conversationType string
	id               string
	sender           Sender
	bus              *bus.Bus
	logger           *zap.Logger
	errorDelay       time.Duration

	mu       sync.Mutex
	state    State
	errTimer *time.Timer
	errSeq   uint64
	inFlight int
}

// New creates the composer for the conversation identified by
// conversationType and id.
func New(conversationType, id string, s Sender, b *bus.Bus, logger *zap.Logger, opts ...Option) *Composer {
	c := &Composer{
		conversationType: conversationType,
		id:               id,
		sender:           s,
		bus:              b,
		logger: logging.OrNop(logger).Named("composer").With(
			zap.String("conversation_type", conversationType),
			zap.String("conversation_id", id),
		),
		errorDelay: ErrorClearDelay,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Composer) snapshotLocked() State {
	s := c.state
	s.TemplateParams = slices.Clone(c.state.TemplateParams)
	return s
}

// ToggleOptions opens the options tray, or closes it when it is open. Either
// way the text field loses focus.
func (c *Composer) ToggleOptions() {
	c.update(func(s *State) {
		s.Focused = false
		if s.Panel == PanelOptions {
			s.Panel = PanelNone
			return
		}
		s.Panel = PanelOptions
	})
}

// ToggleEmoji opens the emoji picker. When it is already open it closes and
// focus returns to the text field.
func (c *Composer) ToggleEmoji() {
	c.update(func(s *State) {
		if s.Panel == PanelEmoji {
			s.Panel = PanelNone
			s.Focused = true
			return
		}
		s.Panel = PanelEmoji
		s.Focused = false
	})
}

// ToggleAttachments opens the attachments tray, or closes it when it is open.
// Either way the text field loses focus.
func (c *Composer) ToggleAttachments() {
	c.update(func(s *State) {
		s.Focused = false
		if s.Panel == PanelAttachments {
			s.Panel = PanelNone
			return
		}
		s.Panel = PanelAttachments
	})
}

// Focus records that the text field gained focus. The emoji picker closes;
// the other panels stay open.
func (c *Composer) Focus() {
	c.update(func(s *State) {
		s.Focused = true
		if s.Panel == PanelEmoji {
			s.Panel = PanelNone
		}
	})
}

// Blur records that the text field lost focus.
func (c *Composer) Blur() {
	c.update(func(s *State) { s.Focused = false })
}

// SetText replaces the text. The cursor is clamped to the new length.
func (c *Composer) SetText(text string) {
	c.update(func(s *State) {
		s.Text = text
		s.Cursor = clampCursor(s.Cursor, text)
	})
}

// SetCursor records the caret position as a rune offset.
func (c *Composer) SetCursor(pos int) {
	c.update(func(s *State) { s.Cursor = clampCursor(pos, s.Text) })
}

// InsertEmoji inserts glyph at the cursor and moves the cursor past it.
func (c *Composer) InsertEmoji(glyph string) {
	c.update(func(s *State) {
		runes := []rune(s.Text)
		at := clampCursor(s.Cursor, s.Text)
		ins := []rune(glyph)
		out := make([]rune, 0, len(runes)+len(ins))
		out = append(out, runes[:at]...)
		out = append(out, ins...)
		out = append(out, runes[at:]...)
		s.Text = string(out)
		s.Cursor = at + len(ins)
	})
}

// SelectTemplate attaches t and its parameters to the next send.
func (c *Composer) SelectTemplate(t remote.Template, params []string) {
	c.update(func(s *State) {
		s.Template = &t
		s.TemplateParams = slices.Clone(params)
	})
}

// ClearTemplate drops the selected template.
func (c *Composer) ClearTemplate() {
	c.update(func(s *State) {
		s.Template = nil
		s.TemplateParams = nil
	})
}

// PrepareSend captures the text and resets the composer: text and cursor are
// cleared, focus is dropped, every panel closes and the template selection is
// consumed. It returns nil when the captured text was empty.
func (c *Composer) PrepareSend() *remote.MessageInput {
	c.mu.Lock()
	text := c.state.Text
	tmpl := c.state.Template
	params := c.state.TemplateParams
	c.state.Text = ""
	c.state.Cursor = 0
	c.state.Focused = false
	c.state.Panel = PanelNone
	c.state.Template = nil
	c.state.TemplateParams = nil
	c.mu.Unlock()
	c.publish(bus.KindComposerChanged, nil)

	if text == "" {
		return nil
	}
	input := &remote.MessageInput{
		Body: text,
		Flow: remote.FlowOutbound,
		Type: remote.KindText,
	}
	if tmpl != nil {
		hsm := tmpl.IsHSM
		input.IsHSM = &hsm
		input.TemplateID = tmpl.ID
		input.Params = params
	}
	return input
}

// Close stops a pending error clear.
func (c *Composer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.errTimer != nil {
		c.errTimer.Stop()
		c.errTimer = nil
	}
}

func (c *Composer) update(fn func(*State)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
	c.publish(bus.KindComposerChanged, nil)
}

func (c *Composer) publish(kind string, payload any) {
	c.bus.Emit(kind, payload)
}

func clampCursor(pos int, text string) int {
	n := utf8.RuneCountInString(text)
	switch {
	case pos < 0:
		return 0
	case pos > n:
		return n
	}
	return pos
}
