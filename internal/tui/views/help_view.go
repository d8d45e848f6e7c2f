package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "help" }

// Start implements Component.
func (hv *HelpView) Start() {}

// Stop implements Component.
func (hv *HelpView) Stop() {}

var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Global", [][2]string{
		{":", "Command mode"},
		{"?", "Help"},
		{"n", "Notifications"},
		{"Esc", "Back / cancel"},
		{"q", "Back, quit on the contact list"},
		{"Ctrl-C", "Quit immediately"},
	}},
	{"Contacts", [][2]string{
		{"Enter", "Open conversation"},
		{"/", "Search contacts (Up/Down for history)"},
		{"S", "Saved searches"},
		{"d", "Contact details"},
		{"r", "Reload"},
	}},
	{"Conversation", [][2]string{
		{"i", "Focus composer"},
		{"Enter", "Send (composer) / open link (messages)"},
		{"1-9", "Answer the selected quick reply"},
		{"o", "Show link as QR code"},
		{"m", "Menu: flows, clear, block"},
		{"Ctrl-O", "Options: speed sends, templates, interactive"},
		{"Ctrl-G", "Emoji"},
		{"Ctrl-T", "Attachments"},
		{"Ctrl-R", "Remove selected template"},
		{"/", "Filter the open options or emoji list"},
		{"r", "Reload messages and flows"},
	}},
	{"Notifications", [][2]string{
		{"1-4", "All / Critical / Warning / Info"},
		{"/", "Search notifications"},
		{"r", "Reload"},
	}},
	{"Commands", [][2]string{
		{":server", "Choose another organization"},
		{":logout", "Sign out"},
		{":notifications", "Notifications"},
		{":help", "This help"},
		{":quit", "Quit"},
	}},
}

func (hv *HelpView) render() {
	kc := ui.Tag(hv.theme.MenuKeyColor)
	var b strings.Builder
	for _, s := range helpSections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, k := range s.keys {
			fmt.Fprintf(&b, "  [%s]%-15s[-:-:-] %s\n", kc, tview.Escape(k[0]), k[1])
		}
	}
	_, _ = fmt.Fprint(hv, b.String())
}
