package feed

import (
	"time"

	"github.com/matheus3301/tides/internal/remote"
)

// ContactEntry is one row of the feed. Entries are values; the feed replaces
// or appends to its list and never edits a row in place.
type ContactEntry struct {
	ID               string
	ConversationType string
	DisplayName      string
	LastMessageAt    time.Time
	LastMessageBody  string
	IsRead           bool
}

// entryFromConversation maps a search row. Rows with neither a contact nor a
// group cannot be opened and are reported as !ok.
func entryFromConversation(c remote.Conversation) (ContactEntry, bool) {
	var e ContactEntry
	switch {
	case c.Contact != nil:
		e = ContactEntry{
			ID:               c.Contact.ID,
			ConversationType: remote.ConversationContact,
			DisplayName:      c.Contact.Name,
			IsRead:           c.Contact.IsOrgRead,
		}
		if e.DisplayName == "" {
			e.DisplayName = c.Contact.MaskedPhone
		}
		if c.Contact.LastMessageAt != nil {
			e.LastMessageAt = *c.Contact.LastMessageAt
		}
	case c.Group != nil:
		e = ContactEntry{
			ID:               c.Group.ID,
			ConversationType: remote.ConversationCollection,
			DisplayName:      c.Group.Label,
			IsRead:           true,
		}
		if c.Group.LastMessageAt != nil {
			e.LastMessageAt = *c.Group.LastMessageAt
		}
	default:
		return ContactEntry{}, false
	}
	if n := len(c.Messages); n > 0 {
		e.LastMessageBody = c.Messages[n-1].Body
	}
	return e, true
}
