package remote

import (
	"encoding/json"
	"time"
)

// Conversation types the API distinguishes.
const (
	ConversationContact    = "contact"
	ConversationCollection = "collection"
)

// Message kinds as tagged by the API.
const (
	KindText       = "TEXT"
	KindImage      = "IMAGE"
	KindVideo      = "VIDEO"
	KindAudio      = "AUDIO"
	KindSticker    = "STICKER"
	KindDocument   = "DOCUMENT"
	KindLocation   = "LOCATION"
	KindQuickReply = "QUICK_REPLY"
)

// Message directions.
const (
	FlowInbound  = "INBOUND"
	FlowOutbound = "OUTBOUND"
)

// Contact is the subset of contact fields the client reads.
type Contact struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	MaskedPhone   string     `json:"maskedPhone"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
	IsOrgRead     bool       `json:"isOrgRead"`
	Status        string     `json:"status"`
}

// Group is a collection of contacts messages can be broadcast to.
type Group struct {
	ID            string     `json:"id"`
	Label         string     `json:"label"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
}

// Media is the attachment of a media message.
type Media struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// Location is the payload of a location message.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Message is a single chat message.
type Message struct {
	ID                 string          `json:"id"`
	Body               string          `json:"body"`
	Type               string          `json:"type"`
	Flow               string          `json:"flow"`
	InsertedAt         time.Time       `json:"insertedAt"`
	Media              *Media          `json:"media"`
	Location           *Location       `json:"location"`
	InteractiveContent json.RawMessage `json:"interactiveContent"`
}

// Conversation is one search result row: a contact or a group with its
// most recent messages.
type Conversation struct {
	Contact  *Contact  `json:"contact"`
	Group    *Group    `json:"group"`
	Messages []Message `json:"messages"`
}

// MessageInput is the outbound message payload.
type MessageInput struct {
	Body       string   `json:"body"`
	Flow       string   `json:"flow"`
	Type       string   `json:"type"`
	ReceiverID string   `json:"receiverId,omitempty"`
	IsHSM      *bool    `json:"isHsm,omitempty"` // set whenever a template is attached
	TemplateID string   `json:"templateId,omitempty"`
	Params     []string `json:"params,omitempty"`
}

// Notification is a raw notification row. Entity is a JSON document
// describing the contact the notification is about.
type Notification struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Entity    string    `json:"entity"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	UpdatedAt time.Time `json:"updatedAt"`
	IsRead    bool      `json:"isRead"`
}

// Flow is an automated conversation that can be started from the chat menu.
type Flow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

// SavedSearch is a named, server-stored search filter.
type SavedSearch struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Shortcode string `json:"shortcode"`
	Args      string `json:"args"`
}

// Filter decodes the saved filter from Args. A blank or malformed document
// yields an empty filter.
func (s SavedSearch) Filter() map[string]any {
	var args struct {
		Filter map[string]any `json:"filter"`
	}
	if err := json.Unmarshal([]byte(s.Args), &args); err != nil || args.Filter == nil {
		return map[string]any{}
	}
	return args.Filter
}

// Template is a speed send (IsHSM false) or an approved HSM template.
type Template struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	Body             string `json:"body"`
	IsHSM            bool   `json:"isHsm"`
	NumberParameters int    `json:"numberParameters"`
}

// InteractiveTemplate is a quick-reply or list message template.
type InteractiveTemplate struct {
	ID                 string          `json:"id"`
	Label              string          `json:"label"`
	Type               string          `json:"type"`
	InteractiveContent json.RawMessage `json:"interactiveContent"`
}

// Session holds the tokens returned by a successful sign-in.
type Session struct {
	AccessToken     string `json:"access_token"`
	RenewalToken    string `json:"renewal_token"`
	TokenExpiryTime string `json:"token_expiry_time"`
}

// OrganizationInfo is returned by the public organization name endpoint.
type OrganizationInfo struct {
	Name      string `json:"name"`
	Shortcode string `json:"shortcode"`
}
