package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/tides/internal/menu"
	"github.com/matheus3301/tides/internal/tui/ui"
	"github.com/rivo/tview"
)

// MenuDialog is the conversation menu popup: the action list, the flow
// picker and the confirmation modal share one centered frame.
type MenuDialog struct {
	*tview.Flex
	theme   *ui.Theme
	frame   *tview.Pages
	actions *tview.List
	flows   *tview.Form
	confirm *tview.Modal

	building  bool
	onAction  func(menu.Action)
	onFlow    func(index int)
	onConfirm func()
	onCancel  func()
}

// NewMenuDialog creates the popup.
func NewMenuDialog(theme *ui.Theme) *MenuDialog {
	actions := tview.NewList().ShowSecondaryText(false)
	actions.SetBorder(true)
	actions.SetTitle(" Menu ")
	actions.SetBorderColor(theme.BorderFocusColor)
	actions.SetBackgroundColor(theme.BgColor)
	actions.SetMainTextColor(theme.FgColor)
	actions.SetTitleColor(theme.TitleColor)

	flows := tview.NewForm()
	flows.SetBorder(true)
	flows.SetTitle(" Select flow ")
	flows.SetBorderColor(theme.BorderFocusColor)
	flows.SetBackgroundColor(theme.BgColor)
	flows.SetTitleColor(theme.TitleColor)
	flows.SetFieldBackgroundColor(theme.BgColor)
	flows.SetFieldTextColor(theme.FgColor)
	flows.SetButtonBackgroundColor(theme.BorderColor)

	confirm := tview.NewModal()
	confirm.SetBackgroundColor(theme.BgColor)
	confirm.SetBorderColor(theme.BorderFocusColor)

	frame := tview.NewPages().
		AddPage("actions", actions, true, true).
		AddPage("flows", flows, true, false).
		AddPage("confirm", confirm, true, false)

	d := &MenuDialog{
		Flex:    center(frame, 54, 12),
		theme:   theme,
		frame:   frame,
		actions: actions,
		flows:   flows,
		confirm: confirm,
	}

	escape := func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape {
			d.cancel()
			return nil
		}
		return ev
	}
	actions.SetInputCapture(escape)
	flows.SetCancelFunc(d.cancel)
	confirm.SetDoneFunc(func(index int, _ string) {
		if index == 0 && d.onConfirm != nil {
			d.onConfirm()
			return
		}
		d.cancel()
	})
	return d
}

// Name implements Component.
func (d *MenuDialog) Name() string { return "menu" }

// Start implements Component.
func (d *MenuDialog) Start() {}

// Stop implements Component.
func (d *MenuDialog) Stop() {}

// SetHandlers wires the dialog to the dispatcher.
func (d *MenuDialog) SetHandlers(onAction func(menu.Action), onFlow func(int), onConfirm, onCancel func()) {
	d.onAction, d.onFlow, d.onConfirm, d.onCancel = onAction, onFlow, onConfirm, onCancel
}

func (d *MenuDialog) cancel() {
	if d.onCancel != nil {
		d.onCancel()
	}
}

// ShowActions lists the actions of the conversation.
func (d *MenuDialog) ShowActions(actions []menu.Action) tview.Primitive {
	d.actions.Clear()
	for _, a := range actions {
		d.actions.AddItem(a.String(), "", 0, func() {
			if d.onAction != nil {
				d.onAction(a)
			}
		})
	}
	d.frame.SwitchToPage("actions")
	return d.actions
}

// Show renders a dispatcher view and returns the primitive to focus.
func (d *MenuDialog) Show(v menu.View) tview.Primitive {
	switch v.State {
	case menu.StateSelecting:
		return d.showFlows(v)
	case menu.StateConfirming:
		d.confirm.ClearButtons()
		d.confirm.SetText(v.Action.Prompt())
		d.confirm.AddButtons([]string{v.Action.Affirmative(), "Cancel"})
		d.confirm.SetFocus(0)
		d.frame.SwitchToPage("confirm")
		return d.confirm
	}
	d.frame.SwitchToPage("actions")
	return d.actions
}

func (d *MenuDialog) showFlows(v menu.View) tview.Primitive {
	d.flows.Clear(true)
	if len(v.Flows) == 0 {
		d.flows.AddTextView("", "No flows available", 0, 1, true, false)
		d.flows.AddButton("Cancel", d.cancel)
		d.frame.SwitchToPage("flows")
		return d.flows
	}
	names := make([]string, len(v.Flows))
	for i, f := range v.Flows {
		names[i] = display(f.Name)
	}
	d.building = true
	d.flows.AddDropDown("Flow", names, v.Selected, func(_ string, index int) {
		if !d.building && index >= 0 && d.onFlow != nil {
			d.onFlow(index)
		}
	})
	d.building = false
	d.flows.AddButton(v.Action.Affirmative(), func() {
		if d.onConfirm != nil {
			d.onConfirm()
		}
	})
	d.flows.AddButton("Cancel", d.cancel)
	d.frame.SwitchToPage("flows")
	return d.flows
}

// center places p in the middle of the screen at the given size.
func center(p tview.Primitive, width, height int) *tview.Flex {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
