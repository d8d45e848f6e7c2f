package views

import (
	"fmt"

	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/rivo/tview"
)

// LoginView signs in to the selected organization.
type LoginView struct {
	*tview.Flex
	theme    *ui.Theme
	form     *tview.Form
	phone    *tview.InputField
	password *tview.InputField
	org      *tview.TextView
	message  *tview.TextView
	busy     bool
	onSubmit func(phone, password string)
	onServer func()
}

// NewLoginView creates the sign-in form.
func NewLoginView(theme *ui.Theme) *LoginView {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetTitle(" Sign in ")
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitleColor(theme.TitleColor)
	form.SetFieldBackgroundColor(theme.BgColor)
	form.SetFieldTextColor(theme.FgColor)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.BorderColor)

	org := tview.NewTextView().SetDynamicColors(true)
	org.SetBackgroundColor(theme.BgColor)
	message := tview.NewTextView().SetDynamicColors(true)
	message.SetBackgroundColor(theme.BgColor)

	lv := &LoginView{
		theme:   theme,
		form:    form,
		org:     org,
		message: message,
	}
	form.AddInputField("Phone", "", 24, nil, nil)
	form.AddPasswordField("Password", "", 24, '*', nil)
	lv.phone = form.GetFormItem(0).(*tview.InputField)
	lv.password = form.GetFormItem(1).(*tview.InputField)
	form.AddButton("Sign in", lv.submit)
	form.AddButton("Change server", func() {
		if lv.onServer != nil {
			lv.onServer()
		}
	})

	body := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(org, 1, 0, false).
		AddItem(form, 9, 0, true).
		AddItem(message, 2, 0, false)
	lv.Flex = center(body, 60, 12)
	return lv
}

// Name implements Component.
func (lv *LoginView) Name() string { return "login" }

// Start implements Component.
func (lv *LoginView) Start() {
	lv.form.SetFocus(0)
}

// Stop implements Component.
func (lv *LoginView) Stop() {}

// SetHandlers sets the callbacks for Sign in and Change server.
func (lv *LoginView) SetHandlers(onSubmit func(phone, password string), onServer func()) {
	lv.onSubmit, lv.onServer = onSubmit, onServer
}

func (lv *LoginView) submit() {
	if lv.busy || lv.onSubmit == nil {
		return
	}
	lv.onSubmit(lv.phone.GetText(), lv.password.GetText())
}

// SetOrganization shows which server the credentials are for.
func (lv *LoginView) SetOrganization(name, url string) {
	lv.org.Clear()
	_, _ = fmt.Fprintf(lv.org, " [%s::b]%s[-:-:-] [%s]%s[-]",
		ui.Tag(lv.theme.TitleColor), tview.Escape(name),
		ui.Tag(lv.theme.MutedColor), tview.Escape(url))
}

// SetBusy shows a request in flight and ignores resubmits.
func (lv *LoginView) SetBusy(busy bool) {
	lv.busy = busy
	lv.message.Clear()
	if busy {
		_, _ = fmt.Fprintf(lv.message, " [%s]Signing in…[-]", ui.Tag(lv.theme.MutedColor))
	}
}

// ShowError shows why sign-in failed. The password is cleared.
func (lv *LoginView) ShowError(msg string) {
	lv.busy = false
	lv.password.SetText("")
	lv.message.Clear()
	_, _ = fmt.Fprintf(lv.message, " [%s]%s[-]", ui.Tag(lv.theme.ErrorColor), tview.Escape(msg))
}

// Reset clears the credentials.
func (lv *LoginView) Reset() {
	lv.busy = false
	lv.password.SetText("")
	lv.message.Clear()
}
