package status

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestLookupTable(t *testing.T) {
	tests := []struct {
		text  string
		glyph Glyph
		class string
	}{
		{"Released", GlyphCheck, "status-released"},
		{"occurred", GlyphCheck, "status-released"},
		{"UNRELEASED", GlyphCircle, "status-unreleased"},
		{"Partially Completed", GlyphExclamation, "status-partially-completed"},
		{"Cancelled", GlyphCross, "status-cancelled"},
		{"canceled", GlyphCross, "status-cancelled"},
		{"Allegedly Cancelled by Disney", GlyphCross, "status-cancelled"},
		{"allegedly canceled by disney", GlyphCross, "status-cancelled"},
		{"Cancelled after Season 1", GlyphCross, "status-cancelled"},
		{"Uncertain", GlyphQuestion, "status-uncertain"},
		{"In Production", GlyphFilm, "status-in-production"},
		{"in development", GlyphHammer, "status-in-development"},
		{"Upcoming Release", GlyphStar, "status-upcoming-release"},
		{"  released  ", GlyphCheck, "status-released"},
		{"", GlyphQuestion, "status-unknown"},
		{"Cancelled after season 2", GlyphQuestion, "status-unknown"},
		{"Halted", GlyphQuestion, "status-unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			icon := Lookup(tt.text)
			if icon.Glyph != tt.glyph || icon.Class != tt.class {
				t.Errorf("Lookup(%q) = %+v, want {%s %s}", tt.text, icon, tt.glyph, tt.class)
			}
		})
	}
}

func TestEveryStatusHasIcon(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range Statuses() {
		icon, ok := icons[s]
		if !ok {
			t.Errorf("status %q has no icon row", s)
			continue
		}
		if seen[icon.Class] {
			t.Errorf("class %q used by more than one status", icon.Class)
		}
		seen[icon.Class] = true
	}
	for alias, s := range aliases {
		if _, ok := icons[s]; !ok {
			t.Errorf("alias %q maps to %q which has no icon row", alias, s)
		}
	}
	if got := Status("bogus").Icon(); got != icons[Unknown] {
		t.Errorf("out-of-range status icon = %+v, want unknown row", got)
	}
}

func TestIsCancelled(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Allegedly Cancelled by Disney", true},
		{"CANCELED", true},
		{"Production halted", true},
		{"Terminated", true},
		{"Released", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsCancelled(tt.text); got != tt.want {
			t.Errorf("IsCancelled(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

// **Feature: timeline, Property: Status lookup is total**
// *For any* status text, the mapper SHALL return exactly one row of the table
// and unmatched text SHALL yield the status-unknown row.
func TestLookupIsTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	rows := make(map[Icon]bool)
	for _, s := range Statuses() {
		rows[s.Icon()] = true
	}

	properties.Property("Lookup returns a table row for any text", prop.ForAll(
		func(text string) bool {
			icon := Lookup(text)
			if !rows[icon] {
				return false
			}
			if _, known := aliases[strings.ToLower(strings.TrimSpace(text))]; !known {
				return icon.Class == "status-unknown"
			}
			return true
		},
		gen.AnyString(),
	))

	properties.Property("Lookup ignores case", prop.ForAll(
		func(i int) bool {
			var alias string
			n := 0
			for a := range aliases {
				if n == i%len(aliases) {
					alias = a
					break
				}
				n++
			}
			return Lookup(strings.ToUpper(alias)) == Lookup(alias) && Lookup(alias).Class != "status-unknown"
		},
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
