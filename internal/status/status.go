// Package status maps free-text release statuses to timeline iconography.
package status

import "strings"

// Status is the production or release state of a timeline entry.
type Status string

const (
	Unknown            Status = "unknown"
	Released           Status = "released"
	Unreleased         Status = "unreleased"
	PartiallyCompleted Status = "partially-completed"
	Cancelled          Status = "cancelled"
	Uncertain          Status = "uncertain"
	InProduction       Status = "in-production"
	InDevelopment      Status = "in-development"
	UpcomingRelease    Status = "upcoming-release"
)

// Glyph is a Font Awesome icon class.
type Glyph string

const (
	GlyphCheck       Glyph = "fa-circle-check"
	GlyphCircle      Glyph = "fa-circle"
	GlyphExclamation Glyph = "fa-circle-exclamation"
	GlyphCross       Glyph = "fa-circle-xmark"
	GlyphQuestion    Glyph = "fa-circle-question"
	GlyphFilm        Glyph = "fa-film"
	GlyphHammer      Glyph = "fa-hammer"
	GlyphStar        Glyph = "fa-star"
)

// Icon is the glyph and CSS class pair rendered for a status.
type Icon struct {
	Glyph Glyph
	Class string
}

// aliases holds every accepted spelling, lowercased.
var aliases = map[string]Status{
	"released":                      Released,
	"occurred":                      Released,
	"unreleased":                    Unreleased,
	"partially completed":           PartiallyCompleted,
	"cancelled":                     Cancelled,
	"canceled":                      Cancelled,
	"allegedly cancelled by disney": Cancelled,
	"allegedly canceled by disney":  Cancelled,
	"cancelled after season 1":      Cancelled,
	"uncertain":                     Uncertain,
	"in production":                 InProduction,
	"in development":                InDevelopment,
	"upcoming release":              UpcomingRelease,
}

var icons = map[Status]Icon{
	Released:           {Glyph: GlyphCheck, Class: "status-released"},
	Unreleased:         {Glyph: GlyphCircle, Class: "status-unreleased"},
	PartiallyCompleted: {Glyph: GlyphExclamation, Class: "status-partially-completed"},
	Cancelled:          {Glyph: GlyphCross, Class: "status-cancelled"},
	Uncertain:          {Glyph: GlyphQuestion, Class: "status-uncertain"},
	InProduction:       {Glyph: GlyphFilm, Class: "status-in-production"},
	InDevelopment:      {Glyph: GlyphHammer, Class: "status-in-development"},
	UpcomingRelease:    {Glyph: GlyphStar, Class: "status-upcoming-release"},
	Unknown:            {Glyph: GlyphQuestion, Class: "status-unknown"},
}

// cancelKeywords trigger the "cancelled" visual modifier on an entry.
var cancelKeywords = []string{"cancelled", "canceled", "halted", "terminated"}

// Parse matches text against the status table, ignoring case and surrounding
// whitespace. Anything unmatched, including empty text, is Unknown.
func Parse(text string) Status {
	if s, ok := aliases[strings.ToLower(strings.TrimSpace(text))]; ok {
		return s
	}
	return Unknown
}

// Icon returns the icon row for s. Values outside the enumeration get the
// Unknown row.
func (s Status) Icon() Icon {
	if icon, ok := icons[s]; ok {
		return icon
	}
	return icons[Unknown]
}

// Lookup is Parse followed by Icon.
func Lookup(text string) Icon {
	return Parse(text).Icon()
}

// Statuses returns every variant, Unknown last.
func Statuses() []Status {
	return []Status{
		Released,
		Unreleased,
		PartiallyCompleted,
		Cancelled,
		Uncertain,
		InProduction,
		InDevelopment,
		UpcomingRelease,
		Unknown,
	}
}

// IsCancelled reports whether the status text contains any cancellation
// keyword. It is a substring check, so "Halted indefinitely" counts even
// though it maps to the Unknown icon.
func IsCancelled(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range cancelKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
