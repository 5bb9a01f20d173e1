// Package validation lints timeline data. Rendering tolerates every issue
// reported here; the checks exist so authors can see what was defaulted or
// dropped.
package validation

import (
	"fmt"
	"strings"

	"github.com/narvanalabs/timeline/internal/models"
	"github.com/narvanalabs/timeline/internal/scores"
	"github.com/narvanalabs/timeline/internal/status"
	"github.com/narvanalabs/timeline/internal/timeline"
)

// Severity ranks an issue.
type Severity string

const (
	// SeverityWarning marks data that renders with a default.
	SeverityWarning Severity = "warning"
	// SeverityError marks data that is dropped or refused when rendering.
	SeverityError Severity = "error"
)

// Issue is a field-level problem with one entry.
type Issue struct {
	Index    int      `json:"index"`
	Title    string   `json:"title,omitempty"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	name := i.Title
	if name == "" {
		name = fmt.Sprintf("entry %d", i.Index)
	}
	return fmt.Sprintf("%s: %s: %s", name, i.Field, i.Message)
}

// Issues is the result of checking a data file.
type Issues []Issue

// Add appends an issue for entry index.
func (v *Issues) Add(index int, entry models.Entry, field string, sev Severity, format string, args ...any) {
	*v = append(*v, Issue{
		Index:    index,
		Title:    entry.Title,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
	})
}

// HasErrors reports whether any issue has error severity.
func (v Issues) HasErrors() bool {
	for _, issue := range v {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Options mirrors the rendering options that change what is dropped.
type Options struct {
	ShowOtherScores bool
}

// Check lints entries. Issue indices are positions in entries.
func Check(entries []models.Entry, opts Options) Issues {
	var issues Issues
	for i, entry := range entries {
		checkEntry(&issues, i, entry, opts)
	}
	return issues
}

func checkEntry(issues *Issues, i int, entry models.Entry, opts Options) {
	if strings.TrimSpace(entry.Title) == "" {
		issues.Add(i, entry, "title", SeverityWarning, "title is empty")
	}

	switch {
	case strings.TrimSpace(entry.Date) == "":
		issues.Add(i, entry, "date", SeverityWarning, "date is missing; entry sorts last")
	default:
		if _, ok := timeline.ParseDate(entry.Date); !ok {
			issues.Add(i, entry, "date", SeverityWarning, "date %q is not recognised; entry sorts last", entry.Date)
		}
	}

	if strings.TrimSpace(entry.Status) != "" && status.Parse(entry.Status) == status.Unknown &&
		!status.IsCancelled(entry.Status) {
		issues.Add(i, entry, "status", SeverityWarning, "status %q has no icon; the unknown icon is used", entry.Status)
	}

	if entry.Image != "" {
		if _, ok := timeline.SafeURL(entry.Image); !ok {
			issues.Add(i, entry, "image", SeverityError, "image URL %q is not http(s) or relative and is not rendered", entry.Image)
		}
	}

	for j, s := range entry.Scores {
		field := fmt.Sprintf("scores[%d]", j)

		if scores.Classify(s.Type) == scores.BucketOther && !opts.ShowOtherScores {
			issues.Add(i, entry, field+".type", SeverityError, "score type %q is neither critic nor user; the score is dropped", s.Type)
		}
		if _, ok := scores.Rate(s.Value); !ok {
			issues.Add(i, entry, field+".score", SeverityWarning, "score %q has no number; no colour is applied", s.Value)
		}
		if strings.TrimSpace(s.Site) == "" {
			issues.Add(i, entry, field+".site", SeverityWarning, "site is empty; no icon is shown")
		}
		if s.HasLink() {
			if _, ok := timeline.SafeURL(s.Source); !ok {
				issues.Add(i, entry, field+".source", SeverityError, "source URL %q is not http(s) or relative and is not linked", s.Source)
			}
		}
	}
}
