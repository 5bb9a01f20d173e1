package timeline

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/narvanalabs/timeline/internal/dom"
	"github.com/narvanalabs/timeline/internal/models"
	"github.com/narvanalabs/timeline/internal/scores"
	"github.com/narvanalabs/timeline/internal/status"
	"github.com/narvanalabs/timeline/pkg/logger"
	"golang.org/x/net/html"
)

// Side is the placement of an item on the timeline.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// SideAt returns the placement of the i-th rendered item.
func SideAt(i int) Side {
	if i%2 == 0 {
		return SideLeft
	}
	return SideRight
}

// Options controls rendering.
type Options struct {
	// IconsURL is the prefix of score icon URLs, e.g. "icons" or "/icons".
	IconsURL string
	// ShowOtherScores renders unclassified scores in an "Other Scores" group.
	ShowOtherScores bool
	// ProbeTimeout bounds each icon probe.
	ProbeTimeout time.Duration
	// ItemClass holds extra Tailwind utility classes for every item.
	ItemClass string
}

// Renderer builds timeline items into a container.
type Renderer struct {
	prober IconProber
	opts   Options
	logger *logger.Logger
}

// NewRenderer creates a renderer. A nil prober disables icon overlays.
func NewRenderer(prober IconProber, opts Options, log *logger.Logger) *Renderer {
	if log == nil {
		log = logger.Default()
	}
	if opts.IconsURL == "" {
		opts.IconsURL = "icons"
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 2 * time.Second
	}
	return &Renderer{
		prober: prober,
		opts:   opts,
		logger: log.WithComponent("renderer"),
	}
}

// Options returns the effective rendering options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render is the handle of one render pass.
type Render struct {
	Epoch         uint64
	Items         int
	DroppedScores int

	probes sync.WaitGroup
}

// Wait blocks until every icon probe of this render has finished or ctx is done.
func (r *Render) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.probes.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// iconProbe is a pending icon overlay for one score box.
type iconProbe struct {
	box  *html.Node
	name string
	url  string
}

// Render replaces the container's content with one item per entry, most
// recent first. Icon probes run in the background and only touch the
// container while this render is still the current one.
func (r *Renderer) Render(ctx context.Context, c *dom.Container, entries []models.Entry) *Render {
	log := r.logger.WithContext(ctx)
	sorted := SortByDate(entries)

	epoch := c.Reset()
	handle := &Render{Epoch: epoch}

	if renderID := logger.RenderIDFromContext(ctx); renderID != "" {
		c.Update(epoch, func(root *html.Node) {
			dom.SetAttr(root, "data-render-id", renderID)
		})
	}

	for i, entry := range sorted {
		item, probes, dropped := r.buildItem(entry, SideAt(i))
		if !c.Append(epoch, item) {
			log.Debug("render superseded, stopping", "epoch", epoch)
			break
		}
		handle.Items++
		handle.DroppedScores += dropped
		if dropped > 0 {
			log.Debug("unclassified scores not rendered", "title", entry.Title, "dropped", dropped)
		}

		for _, p := range probes {
			handle.probes.Add(1)
			go r.overlayIcon(ctx, c, epoch, p, &handle.probes)
		}
	}

	log.Debug("timeline rendered", "items", handle.Items, "epoch", epoch)
	return handle
}

// overlayIcon probes for a score icon and blends it over the score fill.
func (r *Renderer) overlayIcon(ctx context.Context, c *dom.Container, epoch uint64, p iconProbe, wg *sync.WaitGroup) {
	defer wg.Done()

	probeCtx, cancel := context.WithTimeout(ctx, r.opts.ProbeTimeout)
	defer cancel()

	if !r.prober.Probe(probeCtx, p.name) {
		return
	}

	applied := c.Update(epoch, func(*html.Node) {
		dom.SetStyle(p.box, "background-image", dom.CSSURL(p.url))
		dom.SetStyle(p.box, "background-blend-mode", "multiply")
	})
	if !applied {
		r.logger.Debug("discarding icon for superseded render", "icon", p.name, "epoch", epoch)
	}
}

func (r *Renderer) buildItem(entry models.Entry, side Side) (*html.Node, []iconProbe, int) {
	item := dom.Element("div", "class", dom.Classes("timeline-item", string(side)))
	if status.IsCancelled(entry.Status) {
		dom.AddClass(item, "cancelled")
	}
	dom.AddUtilities(item, r.opts.ItemClass)

	content := dom.Element("div", "class", "timeline-content")
	if img, ok := SafeURL(entry.Image); ok {
		dom.SetStyle(content, "background-image", dom.CSSURL(img))
		alt := strings.TrimSpace(entry.Title)
		if alt == "" {
			alt = "Image"
		}
		dom.SetAttr(content, "aria-label", alt)
	} else {
		dom.SetStyle(content, "background-image", "none")
	}

	if title := strings.TrimSpace(entry.Title); title != "" {
		dom.Append(content, dom.ElementWithText("h2", title, "class", "timeline-title"))
	}
	if mediaType := strings.TrimSpace(entry.MediaType); mediaType != "" {
		dom.Append(content, dom.ElementWithText("p", entry.DateLabel()+" | "+mediaType, "class", "timeline-date"))
	}
	if s := strings.TrimSpace(entry.Status); s != "" {
		dom.Append(content, dom.ElementWithText("p", "Status: "+s, "class", "timeline-status"))
	}
	if desc := strings.TrimSpace(entry.Description); desc != "" {
		dom.Append(content, dom.ElementWithText("p", desc, "class", "timeline-description"))
	}

	scoresNode, probes, dropped := r.buildScores(entry.Scores)
	dom.Append(content, scoresNode)

	dom.Append(item, content, statusIcon(entry.Status))
	return item, probes, dropped
}

// buildScores returns nil when no group has scores.
func (r *Renderer) buildScores(list []models.Score) (*html.Node, []iconProbe, int) {
	groups, dropped := scores.Partition(list, r.opts.ShowOtherScores)
	if len(groups) == 0 {
		return nil, nil, dropped
	}

	container := dom.Element("div", "class", "scores-container")
	var probes []iconProbe

	for _, g := range groups {
		group := dom.Element("div", "class", dom.Classes("score-group", string(g.Bucket)+"-scores"))
		dom.Append(group, dom.ElementWithText("h3", g.Label(), "class", "score-group-title"))

		boxes := dom.Element("div", "class", "score-list")
		for _, s := range g.Scores {
			box := scoreBox(s)
			dom.Append(boxes, box)

			if r.prober == nil {
				continue
			}
			if path := scores.IconPath(r.opts.IconsURL, s.Site); path != "" {
				probes = append(probes, iconProbe{box: box, name: scores.IconName(s.Site), url: path})
			}
		}

		dom.Append(group, boxes)
		dom.Append(container, group)
	}

	return container, probes, dropped
}

func scoreBox(s models.Score) *html.Node {
	box := dom.Element("div")
	if s.HasLink() {
		if href, ok := SafeURL(s.Source); ok {
			box = dom.Element("a", "href", href, "target", "_blank", "rel", "noopener noreferrer")
		}
	}
	dom.AddClass(box, "score-box", scores.TypeClass(s.Type))

	if site := strings.TrimSpace(s.Site); site != "" {
		dom.SetAttr(box, "title", site)
	}
	if rating, ok := scores.Rate(s.Value); ok {
		dom.SetStyle(box, "background-color", rating.Color)
		dom.SetAttr(box, "data-hue", strconv.FormatFloat(math.Round(rating.Hue*100)/100, 'f', -1, 64))
	}

	dom.Append(box, dom.ElementWithText("span", s.Value, "class", "score-value"))
	return box
}

func statusIcon(text string) *html.Node {
	icon := status.Lookup(text)

	label := strings.TrimSpace(text)
	if label == "" {
		label = "Unknown status"
	}

	wrap := dom.Element("div",
		"class", dom.Classes("status-icon", icon.Class),
		"title", label,
		"aria-label", label,
	)
	dom.Append(wrap, dom.Element("i", "class", "fa-solid "+string(icon.Glyph), "aria-hidden", "true"))
	return wrap
}

// SafeURL accepts http(s) and relative URLs and rejects script schemes.
func SafeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return raw, true
	default:
		return "", false
	}
}
