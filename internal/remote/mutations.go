package remote

import "context"

var (
	sendMessageDoc = mustParse("createAndSendMessage", `
mutation createAndSendMessage($input: MessageInput!) {
  createAndSendMessage(input: $input) {
    message {
      id
      body
    }
    errors {
      key
      message
    }
  }
}`)

	sendGroupMessageDoc = mustParse("createAndSendMessageToGroup", `
mutation createAndSendMessageToGroup($groupId: ID!, $input: MessageInput!) {
  createAndSendMessageToGroup(groupId: $groupId, input: $input) {
    success
    errors {
      key
      message
    }
  }
}`)

	startContactFlowDoc = mustParse("startContactFlow", `
mutation startContactFlow($flowId: ID!, $contactId: ID!) {
  startContactFlow(flowId: $flowId, contactId: $contactId) {
    success
    errors {
      key
      message
    }
  }
}`)

	startGroupFlowDoc = mustParse("startGroupFlow", `
mutation startGroupFlow($flowId: ID!, $groupId: ID!) {
  startGroupFlow(flowId: $flowId, groupId: $groupId) {
    success
    errors {
      key
      message
    }
  }
}`)

	terminateFlowsDoc = mustParse("terminateContactFlows", `
mutation terminateContactFlows($contactId: ID!) {
  terminateContactFlows(contactId: $contactId) {
    success
    errors {
      key
      message
    }
  }
}`)

	clearMessagesDoc = mustParse("clearMessages", `
mutation clearMessages($contactId: ID!) {
  clearMessages(contactId: $contactId) {
    success
    errors {
      key
      message
    }
  }
}`)

	updateContactDoc = mustParse("updateContact", `
mutation updateContact($id: ID!, $input: ContactInput!) {
  updateContact(id: $id, input: $input) {
    contact {
      id
      status
    }
    errors {
      key
      message
    }
  }
}`)
)

// ContactBlocked is the contact status that stops all messaging.
const ContactBlocked = "BLOCKED"

type resultPayload struct {
	Success bool         `json:"success"`
	Errors  []FieldError `json:"errors"`
}

func (c *Client) mutate(ctx context.Context, doc *document, field string, vars map[string]any) error {
	var data map[string]resultPayload
	if err := c.do(ctx, doc, vars, &data); err != nil {
		return err
	}
	return payloadError(doc.name, data[field].Errors)
}

// SendDirectMessage sends input to the contact named by input.ReceiverID.
func (c *Client) SendDirectMessage(ctx context.Context, input MessageInput) error {
	var data struct {
		CreateAndSendMessage struct {
			Message *struct {
				ID string `json:"id"`
			} `json:"message"`
			Errors []FieldError `json:"errors"`
		} `json:"createAndSendMessage"`
	}
	if err := c.do(ctx, sendMessageDoc, map[string]any{"input": input}, &data); err != nil {
		return err
	}
	return payloadError(sendMessageDoc.name, data.CreateAndSendMessage.Errors)
}

// SendBroadcastMessage sends input to every member of the group.
func (c *Client) SendBroadcastMessage(ctx context.Context, groupID string, input MessageInput) error {
	return c.mutate(ctx, sendGroupMessageDoc, "createAndSendMessageToGroup", map[string]any{
		"groupId": groupID,
		"input":   input,
	})
}

// StartContactFlow starts a flow for one contact.
func (c *Client) StartContactFlow(ctx context.Context, flowID, contactID string) error {
	return c.mutate(ctx, startContactFlowDoc, "startContactFlow", map[string]any{
		"flowId":    flowID,
		"contactId": contactID,
	})
}

// StartGroupFlow starts a flow for every member of a group.
func (c *Client) StartGroupFlow(ctx context.Context, flowID, groupID string) error {
	return c.mutate(ctx, startGroupFlowDoc, "startGroupFlow", map[string]any{
		"flowId":  flowID,
		"groupId": groupID,
	})
}

// TerminateFlows stops every running flow for a contact.
func (c *Client) TerminateFlows(ctx context.Context, contactID string) error {
	return c.mutate(ctx, terminateFlowsDoc, "terminateContactFlows", map[string]any{
		"contactId": contactID,
	})
}

// ClearConversation deletes the message history with a contact.
func (c *Client) ClearConversation(ctx context.Context, contactID string) error {
	return c.mutate(ctx, clearMessagesDoc, "clearMessages", map[string]any{
		"contactId": contactID,
	})
}

// BlockContact marks a contact as blocked.
func (c *Client) BlockContact(ctx context.Context, contactID string) error {
	var data struct {
		UpdateContact struct {
			Errors []FieldError `json:"errors"`
		} `json:"updateContact"`
	}
	vars := map[string]any{
		"id":    contactID,
		"input": map[string]any{"status": ContactBlocked},
	}
	if err := c.do(ctx, updateContactDoc, vars, &data); err != nil {
		return err
	}
	return payloadError(updateContactDoc.name, data.UpdateContact.Errors)
}
