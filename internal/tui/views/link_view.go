package views

import (
	"fmt"

	"github.com/matheus3301/tides/internal/render"
	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/rivo/tview"
)

// LinkView shows a message link as a QR code so it can be opened on a phone.
type LinkView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewLinkView creates a new link view.
func NewLinkView(theme *ui.Theme) *LinkView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Open on phone ")
	tv.SetTitleColor(theme.TitleColor)

	return &LinkView{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (lv *LinkView) Name() string { return "link" }

// Start implements Component.
func (lv *LinkView) Start() {}

// Stop implements Component.
func (lv *LinkView) Stop() {}

// ShowLink renders link as a scannable block above the link itself.
func (lv *LinkView) ShowLink(link string) {
	lv.Clear()
	lv.ScrollToBeginning()
	qr, err := render.QR(link)
	if err != nil {
		_, _ = fmt.Fprintf(lv, "\n[%s]QR generation failed: %s[-]\n\n%s",
			ui.Tag(lv.theme.ErrorColor), tview.Escape(err.Error()), tview.Escape(link))
		return
	}
	_, _ = fmt.Fprintf(lv, "\n%s\n[%s]%s[-]", qr, ui.Tag(lv.theme.LinkColor), tview.Escape(link))
}
