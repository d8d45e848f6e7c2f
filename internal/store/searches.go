package store

import (
	"fmt"
	"strings"
	"time"
)

// RecordSearch remembers a search term, moving it to the front if seen before.
// Blank terms are ignored.
func (db *DB) RecordSearch(term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	_, err := db.Exec(`
		INSERT INTO recent_searches (term, used_at) VALUES (?, ?)
		ON CONFLICT(term) DO UPDATE SET used_at = excluded.used_at`,
		term, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

// RecentSearches returns up to limit terms, most recent first.
func (db *DB) RecentSearches(limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(`SELECT term FROM recent_searches ORDER BY used_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}
