package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/matheus3301/tides/internal/remote"
	"github.com/rivo/tview"
)

// FlashLevel represents the severity of a flash message.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
)

// flashLifetime is how long a message of each level stays up.
var flashLifetime = [...]time.Duration{
	FlashInfo: 5 * time.Second,
	FlashWarn: 8 * time.Second,
	FlashErr:  10 * time.Second,
}

var flashGlyph = [...]string{
	FlashInfo: "✔",
	FlashWarn: "!",
	FlashErr:  "✖",
}

// FlashMessage is the transient line above the status bar. Count is how many
// times the same text was raised in a row while it was still up.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
	Count   int
}

// FlashModel holds the current flash message. Raising the text that is
// already up extends it instead of replacing it.
type FlashModel struct {
	mu      sync.Mutex
	now     func() time.Time
	current FlashMessage
	watchCh chan FlashMessage
}

// NewFlashModel creates a new flash model.
func NewFlashModel() *FlashModel {
	return &FlashModel{
		now:     time.Now,
		watchCh: make(chan FlashMessage, 8),
	}
}

// Info raises an info message.
func (f *FlashModel) Info(msg string) { f.raise(msg, FlashInfo) }

// Warn raises a warning.
func (f *FlashModel) Warn(msg string) { f.raise(msg, FlashWarn) }

// Err raises the text the API reported for err.
func (f *FlashModel) Err(err error) { f.raise(remote.UserMessage(err), FlashErr) }

// Clear drops the current message.
func (f *FlashModel) Clear() {
	f.mu.Lock()
	f.current = FlashMessage{}
	f.mu.Unlock()
	f.notify(FlashMessage{})
}

func (f *FlashModel) raise(text string, level FlashLevel) {
	if text == "" {
		f.Clear()
		return
	}
	now := f.now()
	f.mu.Lock()
	count := 1
	if f.current.Text == text && f.current.Level == level && now.Before(f.current.Expires) {
		count = f.current.Count + 1
	}
	f.current = FlashMessage{
		Text:    text,
		Level:   level,
		Expires: now.Add(flashLifetime[level]),
		Count:   count,
	}
	fm := f.current
	f.mu.Unlock()
	f.notify(fm)
}

func (f *FlashModel) notify(fm FlashMessage) {
	select {
	case f.watchCh <- fm:
	default:
	}
}

// GetMessage returns the current flash message, or nil once it expired.
func (f *FlashModel) GetMessage() *FlashMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current.Text == "" || !f.now().Before(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

// Watch returns a channel that receives raised messages. A cleared message
// arrives with empty Text.
func (f *FlashModel) Watch() <-chan FlashMessage {
	return f.watchCh
}

// FlashBar shows the current flash message.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

// NewFlashBar creates a new flash notification bar.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &FlashBar{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders msg, or blanks the bar for nil and empty messages.
func (fb *FlashBar) Update(msg *FlashMessage) {
	fb.Clear()
	if msg == nil || msg.Text == "" {
		return
	}
	color := fb.theme.FlashInfoColor
	switch msg.Level {
	case FlashWarn:
		color = fb.theme.FlashWarnColor
	case FlashErr:
		color = fb.theme.FlashErrColor
	}
	repeat := ""
	if msg.Count > 1 {
		repeat = fmt.Sprintf(" (×%d)", msg.Count)
	}
	_, _ = fmt.Fprintf(fb, " [%s]%s %s%s[-]", colorName(color), flashGlyph[msg.Level], tview.Escape(msg.Text), repeat)
}
