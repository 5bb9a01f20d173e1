// Package app assembles the timeline pipeline from configuration.
package app

import (
	"os"

	"github.com/narvanalabs/timeline/internal/loader"
	"github.com/narvanalabs/timeline/internal/parser"
	"github.com/narvanalabs/timeline/internal/timeline"
	"github.com/narvanalabs/timeline/pkg/config"
	"github.com/narvanalabs/timeline/pkg/logger"
)

// Pipeline is the fetch, parse and render chain shared by the server and
// the static renderer.
type Pipeline struct {
	Fetcher loader.Fetcher
	Prober  timeline.IconProber
	Loader  *timeline.Loader
}

// New builds the pipeline described by cfg.
func New(cfg *config.Config, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Default()
	}

	fetcher := loader.Cached(loader.New(cfg.DataSource, cfg.FetchTimeout), cfg.DataCacheTTL)
	prober := NewProber(cfg)

	renderer := timeline.NewRenderer(prober, timeline.Options{
		IconsURL:        cfg.IconsURL,
		ShowOtherScores: cfg.ShowOtherScores,
		ProbeTimeout:    cfg.IconProbeTimeout,
		ItemClass:       cfg.ItemClass,
	}, log)

	return &Pipeline{
		Fetcher: fetcher,
		Prober:  prober,
		Loader: &timeline.Loader{
			Fetch:    fetcher.Fetch,
			Parse:    parser.Parse,
			Renderer: renderer,
			Logger:   log,
		},
	}
}

// NewProber picks how icon existence is checked: a HEAD request when icons
// live at an absolute URL, a stat of the icons directory otherwise. It
// returns nil, disabling overlays, when neither is available.
func NewProber(cfg *config.Config) timeline.IconProber {
	if loader.IsRemote(cfg.IconsURL) {
		return timeline.NewHTTPProber(cfg.IconsURL, cfg.IconProbeTimeout)
	}
	if cfg.IconsDir == "" {
		return nil
	}
	if info, err := os.Stat(cfg.IconsDir); err != nil || !info.IsDir() {
		return nil
	}
	return timeline.NewFSProber(os.DirFS(cfg.IconsDir))
}

// Invalidate drops cached data so the next load fetches again.
func (p *Pipeline) Invalidate() {
	if inv, ok := p.Fetcher.(loader.Invalidator); ok {
		inv.Invalidate()
	}
}

// LocalDataFile returns the data file path when the source is local.
func (p *Pipeline) LocalDataFile() (string, bool) {
	src := p.Fetcher.Source()
	if loader.IsRemote(src) {
		return "", false
	}
	return src, true
}
