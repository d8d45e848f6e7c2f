package bus

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds published by the client controllers.
const (
	KindStatusChanged      = "session.status_changed"
	KindFeedUpdated        = "feed.updated"
	KindComposerChanged    = "composer.changed"
	KindComposerError      = "composer.error"
	KindComposerErrCleared = "composer.error_cleared"
	KindMenuChanged        = "menu.changed"
	KindMenuFired          = "menu.fired"
	KindNotifyUpdated      = "notify.updated"
	KindOrgSelected        = "org.selected"
)

// Event represents a domain event published on the bus.
type Event struct {
	ID        string
	Kind      string
	Timestamp time.Time
	Payload   any
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(kind string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
