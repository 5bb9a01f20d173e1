package models

import "strings"

// Entry is one item on the timeline: a show or film with its metadata and scores.
type Entry struct {
	Title       string  `yaml:"title" json:"title,omitempty"`
	Date        string  `yaml:"date" json:"date,omitempty"`
	DisplayDate string  `yaml:"display_date" json:"display_date,omitempty"`
	MediaType   string  `yaml:"media_type" json:"media_type,omitempty"`
	Status      string  `yaml:"status" json:"status,omitempty"`
	Description string  `yaml:"description" json:"description,omitempty"`
	Image       string  `yaml:"image" json:"image,omitempty"`
	Scores      []Score `yaml:"scores" json:"scores,omitempty"`
}

// Score is one rating value from one review source.
type Score struct {
	Type   string `yaml:"type" json:"type"`
	Site   string `yaml:"site" json:"site"`
	Value  string `yaml:"score" json:"score"`
	Source string `yaml:"source" json:"source,omitempty"`
}

// DateLabel returns the text shown for the entry's date: the display date,
// then the raw date, then "Date Unknown".
func (e Entry) DateLabel() string {
	if s := strings.TrimSpace(e.DisplayDate); s != "" {
		return s
	}
	if s := strings.TrimSpace(e.Date); s != "" {
		return s
	}
	return "Date Unknown"
}

// HasLink reports whether the score declares an outbound link. Whether the
// link is rendered also depends on its scheme.
func (s Score) HasLink() bool {
	return strings.TrimSpace(s.Source) != ""
}
