// Package notify holds the notifications screen: formatting of raw rows, the
// severity tabs and the unread badge.
package notify

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matheus3301/tides/internal/remote"
)

// Notification is a row as the screen shows it.
type Notification struct {
	ID        int
	Header    string
	Message   string
	Time      string
	UpdatedAt time.Time
	Severity  string
}

type entity struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Format numbers rows 1..n in arrival order, then orders them newest first.
// The header is the contact name from the entity document, or its phone when
// the name is blank. A row whose entity does not decode keeps a blank header
// and its decode error is returned alongside the list.
func Format(rows []remote.Notification, now time.Time) ([]Notification, error) {
	out := make([]Notification, len(rows))
	var errs []error
	for i, r := range rows {
		var e entity
		if r.Entity != "" {
			if err := json.Unmarshal([]byte(r.Entity), &e); err != nil {
				errs = append(errs, fmt.Errorf("notification %d entity: %w", i+1, err))
			}
		}
		header := e.Name
		if header == "" {
			header = e.Phone
		}
		out[i] = Notification{
			ID:        i + 1,
			Header:    header,
			Message:   r.Message,
			Time:      Since(r.UpdatedAt, now),
			UpdatedAt: r.UpdatedAt,
			Severity:  strings.ReplaceAll(r.Severity, `"`, ""),
		}
	}
	slices.SortStableFunc(out, func(a, b Notification) int {
		return cmp.Compare(b.UpdatedAt.UnixNano(), a.UpdatedAt.UnixNano())
	})
	return out, errors.Join(errs...)
}

// Since renders the age of t relative to now.
func Since(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hr") + " ago"
	default:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
