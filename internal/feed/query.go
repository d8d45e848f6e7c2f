package feed

import "maps"

// DefaultPageSize is the number of conversations fetched per page.
const DefaultPageSize = 10

// Options limits how many rows of one kind a search returns.
type Options struct {
	Limit  int
	Offset int
}

// SearchVariables is the filter and pagination window of a feed search.
type SearchVariables struct {
	Filter         map[string]any
	MessageOptions Options
	ContactOptions Options
}

// DefaultVariables returns an unfiltered first page that carries only the
// latest message of each conversation.
func DefaultVariables(pageSize int) SearchVariables {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return SearchVariables{
		Filter:         map[string]any{},
		MessageOptions: Options{Limit: 1},
		ContactOptions: Options{Limit: pageSize},
	}
}

// TermVariables returns the first page of a free-text search.
func TermVariables(term string, pageSize int) SearchVariables {
	v := DefaultVariables(pageSize)
	if term != "" {
		v.Filter["term"] = term
	}
	return v
}

// WithFilter returns a copy using filter and rewound to offset 0.
func (v SearchVariables) WithFilter(filter map[string]any) SearchVariables {
	out := v.clone()
	out.Filter = maps.Clone(filter)
	if out.Filter == nil {
		out.Filter = map[string]any{}
	}
	out.ContactOptions.Offset = 0
	return out
}

// Term returns the free-text search term, or "" when there is none.
func (v SearchVariables) Term() string {
	t, _ := v.Filter["term"].(string)
	return t
}

// ForPage returns a copy whose contact window starts at page * limit.
func (v SearchVariables) ForPage(page int) SearchVariables {
	out := v.clone()
	out.ContactOptions.Offset = page * out.ContactOptions.Limit
	return out
}

// GraphQL renders the variables the search query expects.
func (v SearchVariables) GraphQL() map[string]any {
	filter := maps.Clone(v.Filter)
	if filter == nil {
		filter = map[string]any{}
	}
	return map[string]any{
		"filter":      filter,
		"messageOpts": map[string]any{"limit": v.MessageOptions.Limit},
		"contactOpts": map[string]any{
			"limit":  v.ContactOptions.Limit,
			"offset": v.ContactOptions.Offset,
		},
	}
}

func (v SearchVariables) clone() SearchVariables {
	out := v
	out.Filter = maps.Clone(v.Filter)
	return out
}
