package timeline

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/narvanalabs/timeline/internal/dom"
	"github.com/narvanalabs/timeline/internal/models"
	"golang.org/x/net/html"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2023-01-01", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2023-01-01T10:30:00Z", time.Date(2023, 1, 1, 10, 30, 0, 0, time.UTC), true},
		{"2023-05", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{"2021", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"March 3, 2020", time.Date(2020, 3, 3, 0, 0, 0, 0, time.UTC), true},
		{" 2020-03-03 ", time.Date(2020, 3, 3, 0, 0, 0, 0, time.UTC), true},
		{"TBA", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSortByDateInvalidLast(t *testing.T) {
	entries := []models.Entry{
		{Title: "bad-1", Date: "soon"},
		{Title: "2020", Date: "2020-01-01"},
		{Title: "missing"},
		{Title: "2024", Date: "2024"},
		{Title: "bad-2", Date: "??"},
	}

	sorted := SortByDate(entries)

	want := []string{"2024", "2020", "bad-1", "missing", "bad-2"}
	for i, title := range want {
		if sorted[i].Title != title {
			t.Fatalf("sorted[%d] = %q, want %q (full: %+v)", i, sorted[i].Title, title, sorted)
		}
	}
	if entries[0].Title != "bad-1" {
		t.Error("SortByDate must not reorder its input")
	}
}

func genEntries() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, 20000)).Map(func(days []int) []models.Entry {
		base := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
		entries := make([]models.Entry, len(days))
		for i, d := range days {
			entries[i] = models.Entry{
				Title: strconv.Itoa(i),
				Date:  base.AddDate(0, 0, d).Format("2006-01-02"),
			}
		}
		return entries
	})
}

// **Feature: timeline, Property: Date ordering and alternating placement**
// *For any* entries with valid dates, rendered order SHALL be non-increasing
// by date and placement SHALL alternate left, right, ... starting with left.
func TestRenderOrderingProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	renderer := newTestRenderer(nil, Options{})

	properties.Property("items are date-descending and alternate sides", prop.ForAll(
		func(entries []models.Entry) bool {
			byTitle := make(map[string]time.Time, len(entries))
			for _, e := range entries {
				at, _ := ParseDate(e.Date)
				byTitle[e.Title] = at
			}

			c := dom.NewContainer("timeline")
			renderer.Render(context.Background(), c, entries)

			ok := true
			c.View(func(root *html.Node) {
				list := dom.Children(root)
				if len(list) != len(entries) {
					ok = false
					return
				}
				var prev time.Time
				for i, item := range list {
					if !dom.HasClass(item, string(SideAt(i))) {
						ok = false
						return
					}
					if i%2 == 0 && !dom.HasClass(item, "left") {
						ok = false
						return
					}
					at := byTitle[dom.TextContent(dom.FindAll(item, dom.ByTag("h2"))[0])]
					if i > 0 && at.After(prev) {
						ok = false
						return
					}
					prev = at
				}
			})
			return ok
		},
		genEntries(),
	))

	properties.TestingRun(t)
}
