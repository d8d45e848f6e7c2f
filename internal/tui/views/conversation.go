package views

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/tides/internal/composer"
	"github.com/matheus3301/tides/internal/remote"
	"github.com/matheus3301/tides/internal/render"
	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/rivo/tview"
)

// EmptyMessages is shown for a conversation without messages.
const EmptyMessages = "No messages"

const panelHeight = 8

// PanelItems is what the open composer panel lists.
type PanelItems struct {
	Title string
	Items []string
}

// Conversation displays the messages of one conversation above its composer.
type Conversation struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.Table
	input    *tview.TextArea
	footer   *tview.TextView
	panel    *tview.List
	now      func() time.Time

	title    string
	msgs     []remote.Message
	rendered []render.Rendering
	syncing  bool

	onEdit      func(text string, cursor int)
	onSend      func()
	onFocus     func(focused bool)
	onPanelPick func(index int)
}

// NewConversation creates a new conversation view.
func NewConversation(theme *ui.Theme) *Conversation {
	messages := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTitleColor(theme.TitleColor)
	messages.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	input := tview.NewTextArea().
		SetPlaceholder("Type a message (i to focus, Enter to send)")
	input.SetBorder(true)
	input.SetBorderColor(theme.BorderColor)
	input.SetBackgroundColor(theme.BgColor)
	input.SetTextStyle(tcell.StyleDefault.Foreground(theme.FgColor).Background(theme.BgColor))
	input.SetTitleColor(theme.TitleColor)

	footer := tview.NewTextView().SetDynamicColors(true)
	footer.SetBackgroundColor(theme.BgColor)

	panel := tview.NewList().ShowSecondaryText(false)
	panel.SetBorder(true)
	panel.SetBorderColor(theme.BorderFocusColor)
	panel.SetBackgroundColor(theme.BgColor)
	panel.SetMainTextColor(theme.FgColor)
	panel.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(input, 4, 0, false).
		AddItem(footer, 1, 0, false).
		AddItem(panel, 0, 0, false)

	c := &Conversation{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		input:    input,
		footer:   footer,
		panel:    panel,
		now:      time.Now,
	}

	input.SetChangedFunc(c.edited)
	input.SetMovedFunc(c.edited)
	input.SetFocusFunc(func() { c.focusChanged(true) })
	input.SetBlurFunc(func() { c.focusChanged(false) })
	input.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEnter && ev.Modifiers()&tcell.ModAlt == 0 {
			if c.onSend != nil {
				c.onSend()
			}
			return nil
		}
		return ev
	})
	panel.SetSelectedFunc(func(i int, _, _ string, _ rune) {
		if c.onPanelPick != nil {
			c.onPanelPick(i)
		}
	})
	return c
}

// Name implements Component.
func (c *Conversation) Name() string { return "chat" }

// Start implements Component.
func (c *Conversation) Start() {}

// Stop implements Component.
func (c *Conversation) Stop() {}

// SetOnEdit sets the callback for text and cursor changes typed by the user.
func (c *Conversation) SetOnEdit(fn func(text string, cursor int)) { c.onEdit = fn }

// SetOnSend sets the callback for Enter in the composer.
func (c *Conversation) SetOnSend(fn func()) { c.onSend = fn }

// SetOnFocus sets the callback for the composer gaining or losing focus.
func (c *Conversation) SetOnFocus(fn func(focused bool)) { c.onFocus = fn }

// SetOnPanelPick sets the callback for choosing a panel entry.
func (c *Conversation) SetOnPanelPick(fn func(index int)) { c.onPanelPick = fn }

func (c *Conversation) edited() {
	if c.syncing || c.onEdit == nil {
		return
	}
	text := c.input.GetText()
	_, start, _ := c.input.GetSelection()
	if start > len(text) {
		start = len(text)
	}
	c.onEdit(text, utf8.RuneCountInString(text[:start]))
}

func (c *Conversation) focusChanged(focused bool) {
	if c.onFocus != nil {
		c.onFocus(focused)
	}
}

// SetContact shows name in the border and clears the previous conversation.
func (c *Conversation) SetContact(name string) {
	c.title = name
	c.UpdateMessages(nil)
	c.messages.SetTitle(fmt.Sprintf(" %s (loading) ", tview.Escape(name)))
}

// UpdateMessages renders msgs oldest first and selects the newest.
func (c *Conversation) UpdateMessages(msgs []remote.Message) {
	c.msgs = msgs
	c.rendered = make([]render.Rendering, len(msgs))
	c.messages.Clear()
	c.messages.SetTitle(fmt.Sprintf(" %s ", tview.Escape(c.title)))

	if len(msgs) == 0 {
		c.messages.SetCell(0, 1, tview.NewTableCell(EmptyMessages).
			SetSelectable(false).
			SetTextColor(c.theme.MutedColor))
		return
	}

	now := c.now()
	for i, m := range msgs {
		r := render.Render(m)
		c.rendered[i] = r
		who, color := "◀", c.theme.InboundColor
		if r.Outbound {
			who, color = "▶", c.theme.OutboundColor
		}
		body := display(r.Summary())
		if r.Link != "" {
			body += fmt.Sprintf(" [%s]↗[-]", ui.Tag(c.theme.LinkColor))
		}
		c.messages.SetCell(i, 0, tview.NewTableCell(" "+formatTimestamp(m.InsertedAt, now)).
			SetTextColor(c.theme.MutedColor))
		c.messages.SetCell(i, 1, tview.NewTableCell(who).SetTextColor(color))
		c.messages.SetCell(i, 2, tview.NewTableCell(body).SetExpansion(1).SetTextColor(color))
	}
	c.messages.Select(len(msgs)-1, 0)
	c.messages.ScrollToEnd()
}

// Selected returns the message under the cursor and its rendering.
func (c *Conversation) Selected() (remote.Message, render.Rendering, bool) {
	row, _ := c.messages.GetSelection()
	if row < 0 || row >= len(c.msgs) {
		return remote.Message{}, render.Rendering{}, false
	}
	return c.msgs[row], c.rendered[row], true
}

// UpdateComposer mirrors the composer state into the input, footer and
// panel. items describes the open panel and is ignored when none is open.
func (c *Conversation) UpdateComposer(st composer.State, items PanelItems) {
	if c.input.GetText() != st.Text {
		c.syncing = true
		c.input.SetText(st.Text, false)
		c.syncing = false
	}
	if pos := byteOffset(st.Text, st.Cursor); !c.cursorAt(pos) {
		c.syncing = true
		c.input.Select(pos, pos)
		c.syncing = false
	}

	title := " Compose "
	if st.Template != nil {
		title = fmt.Sprintf(" Compose · template: %s ", tview.Escape(st.Template.Label))
	}
	c.input.SetTitle(title)
	border := c.theme.BorderColor
	if st.Focused {
		border = c.theme.BorderFocusColor
	}
	c.input.SetBorderColor(border)

	c.footer.Clear()
	switch {
	case st.ErrorMessage != "":
		_, _ = fmt.Fprintf(c.footer, " [%s]%s[-]", ui.Tag(c.theme.ErrorColor), tview.Escape(st.ErrorMessage))
	case st.Sending:
		_, _ = fmt.Fprintf(c.footer, " [%s]sending…[-]", ui.Tag(c.theme.MutedColor))
	}

	if st.Panel == composer.PanelNone {
		c.ResizeItem(c.panel, 0, 0)
		return
	}
	c.ResizeItem(c.panel, panelHeight, 0)
	c.panel.SetTitle(" " + items.Title + " ")
	current := c.panel.GetCurrentItem()
	c.panel.Clear()
	for _, it := range items.Items {
		c.panel.AddItem(display(it), "", 0, nil)
	}
	if current < len(items.Items) {
		c.panel.SetCurrentItem(current)
	}
}

func (c *Conversation) cursorAt(pos int) bool {
	_, start, end := c.input.GetSelection()
	return start == pos && end == pos
}

func byteOffset(s string, runes int) int {
	off := 0
	for i := 0; i < runes && off < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off
}

// Messages returns the message table (for focus management).
func (c *Conversation) Messages() *tview.Table { return c.messages }

// Input returns the composer text area (for focus management).
func (c *Conversation) Input() *tview.TextArea { return c.input }

// Panel returns the panel list (for focus management).
func (c *Conversation) Panel() *tview.List { return c.panel }

// QuickReplyTitles lists the options of the selected quick reply message.
func QuickReplyTitles(r render.Rendering) string {
	titles := make([]string, len(r.Options))
	for i, o := range r.Options {
		titles[i] = fmt.Sprintf("%d:%s", o.Index+1, o.Title)
	}
	return strings.Join(titles, "  ")
}
