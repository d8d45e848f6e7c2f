package views

import (
	"fmt"

	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/rivo/tview"
)

// ServerView asks for the organization code of the server to use.
type ServerView struct {
	*tview.Flex
	theme    *ui.Theme
	form     *tview.Form
	code     *tview.InputField
	message  *tview.TextView
	busy     bool
	onSubmit func(code string)
}

// NewServerView creates the organization code form.
func NewServerView(theme *ui.Theme, domain string) *ServerView {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetTitle(" Select server ")
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitleColor(theme.TitleColor)
	form.SetFieldBackgroundColor(theme.BgColor)
	form.SetFieldTextColor(theme.FgColor)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.BorderColor)

	hint := tview.NewTextView().SetDynamicColors(true)
	hint.SetBackgroundColor(theme.BgColor)
	_, _ = fmt.Fprintf(hint, " [%s]Your server is api.<code>.%s[-]", ui.Tag(theme.MutedColor), tview.Escape(domain))

	message := tview.NewTextView().SetDynamicColors(true)
	message.SetBackgroundColor(theme.BgColor)

	sv := &ServerView{
		theme:   theme,
		form:    form,
		message: message,
	}
	form.AddInputField("Organization code", "", 30, nil, nil)
	sv.code = form.GetFormItem(0).(*tview.InputField)
	form.AddButton("Continue", sv.submit)

	body := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 7, 0, true).
		AddItem(hint, 1, 0, false).
		AddItem(message, 2, 0, false)
	sv.Flex = center(body, 60, 10)
	return sv
}

// Name implements Component.
func (sv *ServerView) Name() string { return "server" }

// Start implements Component.
func (sv *ServerView) Start() {
	sv.form.SetFocus(0)
}

// Stop implements Component.
func (sv *ServerView) Stop() {}

// SetOnSubmit sets the callback for Continue.
func (sv *ServerView) SetOnSubmit(fn func(code string)) {
	sv.onSubmit = fn
}

func (sv *ServerView) submit() {
	if sv.busy || sv.onSubmit == nil {
		return
	}
	sv.onSubmit(sv.code.GetText())
}

// SetBusy shows that the code is being checked and ignores resubmits.
func (sv *ServerView) SetBusy(busy bool) {
	sv.busy = busy
	sv.message.Clear()
	if busy {
		_, _ = fmt.Fprintf(sv.message, " [%s]Checking server…[-]", ui.Tag(sv.theme.MutedColor))
	}
}

// ShowError shows a validation or lookup error under the form.
func (sv *ServerView) ShowError(msg string) {
	sv.busy = false
	sv.message.Clear()
	_, _ = fmt.Fprintf(sv.message, " [%s]%s[-]", ui.Tag(sv.theme.ErrorColor), tview.Escape(msg))
}

// Reset clears the form.
func (sv *ServerView) Reset() {
	sv.busy = false
	sv.code.SetText("")
	sv.message.Clear()
}
