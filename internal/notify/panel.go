package notify

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matheus3301/tides/internal/bus"
	"github.com/matheus3301/tides/internal/logging"
	"github.com/matheus3301/tides/internal/remote"
	"go.uber.org/zap"
)

// DefaultLimit is how many notifications a load fetches.
const DefaultLimit = 50

// TabAll shows every notification; the other tabs filter by severity.
const TabAll = "All"

// Tabs is the order of the severity tabs.
var Tabs = []string{TabAll, "Critical", "Warning", "Info"}

// Source queries notifications.
type Source interface {
	Notifications(ctx context.Context, limit int) ([]remote.Notification, error)
	CountUnreadNotifications(ctx context.Context) (int, error)
}

// Panel owns the notification list of one screen.
type Panel struct {
	src    Source
	bus    *bus.Bus
	logger *zap.Logger
	now    func() time.Time
	limit  int

	mu     sync.Mutex
	all    []Notification
	tab    string
	search string
	unread int
}

// New creates a panel. A non-positive limit uses DefaultLimit.
func New(src Source, limit int, b *bus.Bus, logger *zap.Logger) *Panel {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Panel{
		src:    src,
		bus:    b,
		logger: logging.OrNop(logger).Named("notify"),
		now:    time.Now,
		limit:  limit,
		tab:    TabAll,
	}
}

// Load fetches and formats the notifications. On failure the previous list
// stays.
func (p *Panel) Load(ctx context.Context) error {
	rows, err := p.src.Notifications(ctx, p.limit)
	if err != nil {
		p.logger.Warn("load notifications failed", zap.Error(err))
		return fmt.Errorf("load notifications: %w", err)
	}
	list, err := Format(rows, p.now())
	if err != nil {
		p.logger.Warn("malformed notification entity", zap.Error(err))
	}
	p.mu.Lock()
	p.all = list
	p.mu.Unlock()
	p.bus.Emit(bus.KindNotifyUpdated, nil)
	return nil
}

// RefreshUnread updates the unread badge count.
func (p *Panel) RefreshUnread(ctx context.Context) (int, error) {
	n, err := p.src.CountUnreadNotifications(ctx)
	if err != nil {
		p.logger.Warn("count notifications failed", zap.Error(err))
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	p.mu.Lock()
	p.unread = n
	p.mu.Unlock()
	p.bus.Emit(bus.KindNotifyUpdated, nil)
	return n, nil
}

// Unread returns the last fetched unread count.
func (p *Panel) Unread() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unread
}

// SelectTab switches the severity filter.
func (p *Panel) SelectTab(label string) error {
	if !slices.Contains(Tabs, label) {
		return fmt.Errorf("unknown tab %q", label)
	}
	p.mu.Lock()
	p.tab = label
	p.mu.Unlock()
	p.bus.Emit(bus.KindNotifyUpdated, nil)
	return nil
}

// Tab returns the selected tab.
func (p *Panel) Tab() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tab
}

// SetSearch narrows the list to rows whose header or message contains term.
func (p *Panel) SetSearch(term string) {
	p.mu.Lock()
	p.search = strings.ToLower(strings.TrimSpace(term))
	p.mu.Unlock()
	p.bus.Emit(bus.KindNotifyUpdated, nil)
}

// Visible returns the rows of the selected tab.
func (p *Panel) Visible() []Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Notification
	for _, n := range p.all {
		if p.tab != TabAll && n.Severity != p.tab {
			continue
		}
		if p.search != "" &&
			!strings.Contains(strings.ToLower(n.Header), p.search) &&
			!strings.Contains(strings.ToLower(n.Message), p.search) {
			continue
		}
		out = append(out, n)
	}
	return out
}
