// Package scores classifies review scores into display buckets and derives
// the fill color of each score box.
package scores

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/narvanalabs/timeline/internal/models"
)

// Bucket is a named grouping of scores.
type Bucket string

const (
	BucketCritic Bucket = "critic"
	BucketUser   Bucket = "user"
	BucketOther  Bucket = "other"
)

// Label returns the heading rendered above the bucket's scores.
func (b Bucket) Label() string {
	switch b {
	case BucketCritic:
		return "Critic Scores"
	case BucketUser:
		return "User Scores"
	default:
		return "Other Scores"
	}
}

// Hue range of the red to green scale.
const (
	HueMin = 0.0
	HueMax = 85.0
)

var (
	numberPattern      = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)
	denominatorPattern = regexp.MustCompile(`/\s*(\d+(?:\.\d+)?)`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	iconNameStrip      = regexp.MustCompile(`[^a-z0-9_-]`)
	classNameStrip     = regexp.MustCompile(`[^a-z0-9-]`)
)

// Classify returns the bucket for a score type label. Critic keywords are
// checked first, so "Critic vs User" lands in the critic bucket.
func Classify(scoreType string) Bucket {
	lower := strings.ToLower(scoreType)
	switch {
	case strings.Contains(lower, "critic"), strings.Contains(lower, "metascore"):
		return BucketCritic
	case strings.Contains(lower, "user"), strings.Contains(lower, "audience"):
		return BucketUser
	default:
		return BucketOther
	}
}

// Group is one rendered bucket of scores in input order.
type Group struct {
	Bucket Bucket
	Scores []models.Score
}

// Label returns the bucket heading.
func (g Group) Label() string {
	return g.Bucket.Label()
}

// Partition splits scores into the critic and user groups, skipping empty
// ones. Unclassified scores are dropped unless includeOther is set, in which
// case they form a trailing "Other Scores" group. The second return value is
// the number of scores that were dropped.
func Partition(list []models.Score, includeOther bool) ([]Group, int) {
	byBucket := make(map[Bucket][]models.Score, 3)
	for _, s := range list {
		b := Classify(s.Type)
		byBucket[b] = append(byBucket[b], s)
	}

	order := []Bucket{BucketCritic, BucketUser}
	if includeOther {
		order = append(order, BucketOther)
	}

	groups := make([]Group, 0, len(order))
	for _, b := range order {
		if len(byBucket[b]) == 0 {
			continue
		}
		groups = append(groups, Group{Bucket: b, Scores: byBucket[b]})
	}

	dropped := 0
	if !includeOther {
		dropped = len(byBucket[BucketOther])
	}
	return groups, dropped
}

// ParseValue extracts the numeric value of a score string and infers the
// scale it is out of. ok is false when the string holds no number.
//
//	"85%"    -> 85, 100
//	"7.5/10" -> 7.5, 10
//	"4/5"    -> 4, 5
//	"42"     -> 42, 100
//	"8"      -> 8, 10
//	"3/4"    -> 3, 10
//
// Only /10 and /5 are recognised denominators; any other falls back to the
// bare-number rule.
func ParseValue(raw string) (value, max float64, ok bool) {
	match := numberPattern.FindString(raw)
	if match == "" {
		return 0, 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, 0, false
	}
	return value, inferMax(raw, value), true
}

func inferMax(raw string, value float64) float64 {
	if strings.Contains(raw, "%") {
		return 100
	}
	if m := denominatorPattern.FindStringSubmatch(raw); m != nil {
		switch d, _ := strconv.ParseFloat(m[1], 64); d {
		case 10:
			return 10
		case 5:
			return 5
		}
	}
	if value > 10 {
		return 100
	}
	return 10
}

// Normalize returns value/max clamped to [0, 1].
func Normalize(value, max float64) float64 {
	if max <= 0 || math.IsNaN(value) {
		return 0
	}
	return clamp(value / max)
}

// Hue maps a normalized score onto the red (0) to green (85) hue range.
func Hue(normalized float64) float64 {
	return HueMin + clamp(normalized)*(HueMax-HueMin)
}

// Color returns the CSS fill for a normalized score.
func Color(normalized float64) string {
	h := math.Round(Hue(normalized)*100) / 100
	return "hsl(" + strconv.FormatFloat(h, 'f', -1, 64) + ", 70%, 50%)"
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Rating is the derived numeric view of a score.
type Rating struct {
	Value      float64 `json:"value"`
	Max        float64 `json:"max"`
	Normalized float64 `json:"normalized"`
	Hue        float64 `json:"hue"`
	Color      string  `json:"color"`
}

// Rate derives the rating of a score string. ok is false when the string
// holds no number, in which case the score box gets no fill.
func Rate(raw string) (Rating, bool) {
	value, max, ok := ParseValue(raw)
	if !ok {
		return Rating{}, false
	}
	n := Normalize(value, max)
	return Rating{
		Value:      value,
		Max:        max,
		Normalized: n,
		Hue:        Hue(n),
		Color:      Color(n),
	}, true
}

// IconName derives the icon file name (without extension) for a review site:
// lowercased, whitespace runs replaced by underscores, everything else that
// is not alphanumeric, '_' or '-' removed.
func IconName(site string) string {
	name := strings.ToLower(strings.TrimSpace(site))
	name = whitespacePattern.ReplaceAllString(name, "_")
	return iconNameStrip.ReplaceAllString(name, "")
}

// IconPath joins the icons prefix and the icon name of a site. It returns ""
// when the site yields no usable name.
func IconPath(prefix, site string) string {
	name := IconName(site)
	if name == "" {
		return ""
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return name + ".png"
	}
	return prefix + "/" + name + ".png"
}

// TypeClass derives a CSS class from a score type, e.g. "Critic Score" ->
// "critic-score".
func TypeClass(scoreType string) string {
	class := strings.ToLower(strings.TrimSpace(scoreType))
	class = whitespacePattern.ReplaceAllString(class, "-")
	return classNameStrip.ReplaceAllString(class, "")
}
