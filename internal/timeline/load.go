package timeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/narvanalabs/timeline/internal/dom"
	"github.com/narvanalabs/timeline/internal/models"
	"github.com/narvanalabs/timeline/internal/parser"
	"github.com/narvanalabs/timeline/pkg/logger"
)

// FetchFunc retrieves the raw data file.
type FetchFunc func(ctx context.Context) ([]byte, error)

// ParseFunc decodes the raw data file.
type ParseFunc func(data []byte) ([]models.Entry, error)

// Loader wires fetching, parsing and rendering of one timeline load.
type Loader struct {
	Fetch    FetchFunc
	Parse    ParseFunc
	Renderer *Renderer
	Logger   *logger.Logger
}

// Report describes the outcome of a load.
type Report struct {
	RenderID string
	// Entries are the parsed entries in rendered order.
	Entries []models.Entry
	// Render is nil when nothing was rendered.
	Render *Render
	// Err is the fetch failure that aborted the load, if any. Parse
	// failures are not reported here: they render an empty timeline.
	Err error
}

// Entries fetches, parses and sorts the timeline data. Parse failures are
// logged and yield no entries; fetch failures are returned.
func (l *Loader) Entries(ctx context.Context) ([]models.Entry, error) {
	log := l.log().WithContext(ctx)

	data, err := l.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	parse := parser.Func(parser.Parse)
	if l.Parse != nil {
		parse = parser.Func(l.Parse)
	}
	return SortByDate(parse.OrEmpty(data, log)), nil
}

// Load fetches the data, renders it into c and reports what happened. It
// never panics: on a fetch failure the error is logged, the container is
// left as it was and the report carries the error.
func (l *Loader) Load(ctx context.Context, c *dom.Container) (report *Report) {
	renderID := uuid.NewString()
	ctx = logger.ContextWithRenderID(ctx, renderID)
	log := l.log().WithContext(ctx)

	report = &Report{RenderID: renderID}

	defer func() {
		if rec := recover(); rec != nil {
			report.Err = fmt.Errorf("timeline load panicked: %v", rec)
			log.Error("error loading the timeline", "error", report.Err)
		}
	}()

	if l.Fetch == nil || l.Renderer == nil {
		report.Err = fmt.Errorf("timeline loader is not configured")
		log.Error("error loading the timeline", "error", report.Err)
		return report
	}

	entries, err := l.Entries(ctx)
	if err != nil {
		report.Err = err
		log.Error("error loading the timeline", "error", err)
		return report
	}

	report.Entries = entries
	report.Render = l.Renderer.Render(ctx, c, entries)
	log.Info("timeline loaded", "entries", len(entries), "items", report.Render.Items)
	return report
}

func (l *Loader) log() *logger.Logger {
	if l.Logger == nil {
		return logger.Default()
	}
	return l.Logger
}
