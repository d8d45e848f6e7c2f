package menu

import (
	"context"
	"slices"
	"time"

	"github.com/matheus3301/tides/internal/remote"
	"github.com/patrickmn/go-cache"
)

// FlowTTL is how long a loaded flow list is reused.
const FlowTTL = 10 * time.Minute

// FlowLister loads the flows that can be started.
type FlowLister interface {
	Flows(ctx context.Context) ([]remote.Flow, error)
}

// FlowCache keeps flow lists per conversation type. It is shared by every
// conversation screen of a session.
type FlowCache struct {
	items *cache.Cache
}

// NewFlowCache creates a cache whose entries expire after ttl.
func NewFlowCache(ttl time.Duration) *FlowCache {
	return &FlowCache{items: cache.New(ttl, 2*ttl)}
}

// Get returns the flows for conversationType, loading them through l on a miss.
func (c *FlowCache) Get(ctx context.Context, conversationType string, l FlowLister) ([]remote.Flow, error) {
	if v, ok := c.items.Get(conversationType); ok {
		return slices.Clone(v.([]remote.Flow)), nil
	}
	flows, err := l.Flows(ctx)
	if err != nil {
		return nil, err
	}
	c.items.SetDefault(conversationType, slices.Clone(flows))
	return flows, nil
}

// Invalidate drops every cached list. It is a no-op on a nil cache.
func (c *FlowCache) Invalidate() {
	if c == nil {
		return
	}
	c.items.Flush()
}
