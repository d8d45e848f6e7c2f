package menu

import (
	"strconv"

	"github.com/matheus3301/tides/internal/remote"
)

// Action is an entry of the conversation menu.
type Action int

const (
	ActionStartFlow Action = iota
	ActionTerminateFlow
	ActionClearConversation
	ActionBlockContact
)

func (a Action) String() string {
	switch a {
	case ActionStartFlow:
		return "Start a flow"
	case ActionTerminateFlow:
		return "Terminate flows"
	case ActionClearConversation:
		return "Clear conversation"
	case ActionBlockContact:
		return "Block contact"
	}
	return "Action(" + strconv.Itoa(int(a)) + ")"
}

// Prompt is the question shown in the confirmation dialog.
func (a Action) Prompt() string {
	switch a {
	case ActionStartFlow:
		return "Select a flow to start"
	case ActionTerminateFlow:
		return "Terminate all ongoing flows for this contact?"
	case ActionClearConversation:
		return "All the messages of this contact will be cleared. Continue?"
	case ActionBlockContact:
		return "This contact will be blocked and will not receive any messages. Continue?"
	}
	return ""
}

// Affirmative is the label of the button that fires the action.
func (a Action) Affirmative() string {
	switch a {
	case ActionStartFlow:
		return "Start"
	case ActionTerminateFlow:
		return "Terminate"
	case ActionClearConversation:
		return "Clear"
	case ActionBlockContact:
		return "Block"
	}
	return "Confirm"
}

// Actions lists the menu of a conversation. Groups can only start flows.
func Actions(conversationType string) []Action {
	if conversationType == remote.ConversationContact {
		return []Action{ActionStartFlow, ActionTerminateFlow, ActionClearConversation, ActionBlockContact}
	}
	return []Action{ActionStartFlow}
}
