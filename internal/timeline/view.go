package timeline

import (
	"github.com/narvanalabs/timeline/internal/models"
	"github.com/narvanalabs/timeline/internal/scores"
	"github.com/narvanalabs/timeline/internal/status"
)

// EntryView is the JSON form of a rendered entry with its derived data.
type EntryView struct {
	models.Entry
	Side        Side        `json:"side"`
	Cancelled   bool        `json:"cancelled"`
	StatusClass string      `json:"status_class"`
	StatusIcon  string      `json:"status_icon"`
	Groups      []GroupView `json:"groups"`
}

// GroupView is one score bucket.
type GroupView struct {
	Bucket scores.Bucket `json:"bucket"`
	Label  string        `json:"label"`
	Scores []ScoreView   `json:"scores"`
}

// ScoreView is a score with its derived rating.
type ScoreView struct {
	models.Score
	Rating *scores.Rating `json:"rating,omitempty"`
	Icon   string         `json:"icon,omitempty"`
}

// Views derives the view of already-sorted entries, using the same
// placement and bucketing as Render.
func Views(sorted []models.Entry, opts Options) []EntryView {
	if opts.IconsURL == "" {
		opts.IconsURL = "icons"
	}

	views := make([]EntryView, 0, len(sorted))
	for i, e := range sorted {
		icon := status.Lookup(e.Status)
		v := EntryView{
			Entry:       e,
			Side:        SideAt(i),
			Cancelled:   status.IsCancelled(e.Status),
			StatusClass: icon.Class,
			StatusIcon:  string(icon.Glyph),
			Groups:      []GroupView{},
		}

		groups, _ := scores.Partition(e.Scores, opts.ShowOtherScores)
		for _, g := range groups {
			gv := GroupView{Bucket: g.Bucket, Label: g.Label()}
			for _, s := range g.Scores {
				sv := ScoreView{Score: s, Icon: scores.IconPath(opts.IconsURL, s.Site)}
				if rating, ok := scores.Rate(s.Value); ok {
					sv.Rating = &rating
				}
				gv.Scores = append(gv.Scores, sv)
			}
			v.Groups = append(v.Groups, gv)
		}
		views = append(views, v)
	}
	return views
}
