package remote

import (
	"context"
)

var (
	searchDoc = mustParse("search", `
query search($filter: SearchFilter!, $messageOpts: Opts!, $contactOpts: Opts!) {
  search(filter: $filter, messageOpts: $messageOpts, contactOpts: $contactOpts) {
    contact {
      id
      name
      maskedPhone
      lastMessageAt
      isOrgRead
      status
    }
    group {
      id
      label
      lastMessageAt
    }
    messages {
      id
      body
      type
      flow
      insertedAt
      media {
        url
        caption
      }
      location {
        latitude
        longitude
      }
      interactiveContent
    }
  }
}`)

	notificationsDoc = mustParse("notifications", `
query notifications($filter: NotificationFilter, $opts: Opts) {
  notifications(filter: $filter, opts: $opts) {
    id
    category
    entity
    message
    severity
    updatedAt
    isRead
  }
}`)

	countNotificationsDoc = mustParse("countNotifications", `
query countNotifications($filter: NotificationFilter) {
  countNotifications(filter: $filter)
}`)

	flowsDoc = mustParse("flows", `
query flows($filter: FlowFilter, $opts: Opts) {
  flows(filter: $filter, opts: $opts) {
    id
    name
    uuid
  }
}`)

	savedSearchesDoc = mustParse("savedSearches", `
query savedSearches($filter: SavedSearchFilter!, $opts: Opts) {
  savedSearches(filter: $filter, opts: $opts) {
    id
    label
    shortcode
    args
  }
}`)

	sessionTemplatesDoc = mustParse("sessionTemplates", `
query sessionTemplates($filter: SessionTemplateFilter, $opts: Opts) {
  sessionTemplates(filter: $filter, opts: $opts) {
    id
    label
    body
    isHsm
    numberParameters
  }
}`)

	interactiveTemplatesDoc = mustParse("interactiveTemplates", `
query interactiveTemplates($filter: InteractiveTemplateFilter, $opts: Opts) {
  interactiveTemplates(filter: $filter, opts: $opts) {
    id
    label
    type
    interactiveContent
  }
}`)
)

// Search runs the conversation search. vars must carry filter, messageOpts
// and contactOpts.
func (c *Client) Search(ctx context.Context, vars map[string]any) ([]Conversation, error) {
	var data struct {
		Search []Conversation `json:"search"`
	}
	if err := c.do(ctx, searchDoc, vars, &data); err != nil {
		return nil, err
	}
	return data.Search, nil
}

// ConversationMessages loads the most recent messages of one conversation,
// oldest first as the API returns them.
func (c *Client) ConversationMessages(ctx context.Context, conversationType, id string, limit int) ([]Message, error) {
	filter := map[string]any{"id": id}
	if conversationType != ConversationContact {
		filter["searchGroup"] = true
	}
	convs, err := c.Search(ctx, map[string]any{
		"filter":      filter,
		"messageOpts": map[string]any{"limit": limit},
		"contactOpts": map[string]any{"limit": 1},
	})
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return nil, nil
	}
	return convs[0].Messages, nil
}

// Notifications lists notifications, most recently updated first.
func (c *Client) Notifications(ctx context.Context, limit int) ([]Notification, error) {
	var data struct {
		Notifications []Notification `json:"notifications"`
	}
	vars := map[string]any{
		"filter": map[string]any{},
		"opts":   map[string]any{"limit": limit, "order": "DESC"},
	}
	if err := c.do(ctx, notificationsDoc, vars, &data); err != nil {
		return nil, err
	}
	return data.Notifications, nil
}

// CountUnreadNotifications returns the badge count for unread notifications.
func (c *Client) CountUnreadNotifications(ctx context.Context) (int, error) {
	var data struct {
		CountNotifications int `json:"countNotifications"`
	}
	vars := map[string]any{"filter": map[string]any{"is_read": false}}
	if err := c.do(ctx, countNotificationsDoc, vars, &data); err != nil {
		return 0, err
	}
	return data.CountNotifications, nil
}

// Flows lists the active flows that can be started from a conversation.
func (c *Client) Flows(ctx context.Context) ([]Flow, error) {
	var data struct {
		Flows []Flow `json:"flows"`
	}
	vars := map[string]any{
		"filter": map[string]any{"isActive": true},
		"opts":   map[string]any{"order": "ASC"},
	}
	if err := c.do(ctx, flowsDoc, vars, &data); err != nil {
		return nil, err
	}
	return data.Flows, nil
}

// SavedSearches lists the organization's reusable search filters.
func (c *Client) SavedSearches(ctx context.Context) ([]SavedSearch, error) {
	var data struct {
		SavedSearches []SavedSearch `json:"savedSearches"`
	}
	vars := map[string]any{
		"filter": map[string]any{"isReserved": false},
		"opts":   map[string]any{"order": "ASC"},
	}
	if err := c.do(ctx, savedSearchesDoc, vars, &data); err != nil {
		return nil, err
	}
	return data.SavedSearches, nil
}

// Templates lists speed sends (hsm false) or approved HSM templates (hsm true).
func (c *Client) Templates(ctx context.Context, hsm bool) ([]Template, error) {
	var data struct {
		SessionTemplates []Template `json:"sessionTemplates"`
	}
	filter := map[string]any{"isHsm": hsm}
	if hsm {
		filter["status"] = "APPROVED"
	}
	vars := map[string]any{
		"filter": filter,
		"opts":   map[string]any{"order": "ASC"},
	}
	if err := c.do(ctx, sessionTemplatesDoc, vars, &data); err != nil {
		return nil, err
	}
	return data.SessionTemplates, nil
}

// InteractiveTemplates lists quick-reply and list message templates.
func (c *Client) InteractiveTemplates(ctx context.Context) ([]InteractiveTemplate, error) {
	var data struct {
		InteractiveTemplates []InteractiveTemplate `json:"interactiveTemplates"`
	}
	vars := map[string]any{
		"filter": map[string]any{},
		"opts":   map[string]any{"order": "ASC"},
	}
	if err := c.do(ctx, interactiveTemplatesDoc, vars, &data); err != nil {
		return nil, err
	}
	return data.InteractiveTemplates, nil
}
