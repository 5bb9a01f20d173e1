// Package timeline sorts timeline entries and renders them into a container.
package timeline

import (
	"slices"
	"strings"
	"time"

	"github.com/narvanalabs/timeline/internal/models"
)

// dateLayouts are tried in order when reading an entry's date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
	"2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2006",
	"Jan 2006",
}

// ParseDate reads a date in any of the supported layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortByDate returns a copy of entries ordered most recent first. Entries
// whose date is missing or unparseable come last, in input order.
func SortByDate(entries []models.Entry) []models.Entry {
	type keyed struct {
		entry models.Entry
		at    time.Time
		valid bool
	}

	keys := make([]keyed, len(entries))
	for i, e := range entries {
		at, ok := ParseDate(e.Date)
		keys[i] = keyed{entry: e, at: at, valid: ok}
	}

	slices.SortStableFunc(keys, func(a, b keyed) int {
		switch {
		case a.valid && b.valid:
			return b.at.Compare(a.at)
		case a.valid:
			return -1
		case b.valid:
			return 1
		default:
			return 0
		}
	})

	sorted := make([]models.Entry, len(keys))
	for i, k := range keys {
		sorted[i] = k.entry
	}
	return sorted
}
