// Package server provides the HTTP server that renders the timeline.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/narvanalabs/timeline/internal/dom"
	apierrors "github.com/narvanalabs/timeline/internal/server/errors"
	"github.com/narvanalabs/timeline/internal/server/middleware"
	"github.com/narvanalabs/timeline/internal/timeline"
	"github.com/narvanalabs/timeline/internal/validation"
	"github.com/narvanalabs/timeline/pkg/config"
	"github.com/narvanalabs/timeline/pkg/logger"
	"github.com/narvanalabs/timeline/ui"
	"github.com/narvanalabs/timeline/web/health"
	"github.com/narvanalabs/timeline/web/layouts"
	"github.com/narvanalabs/timeline/web/live"
)

// ContainerID is the id of the element the timeline renders into.
const ContainerID = "timeline"

// ReloadPath is the websocket endpoint for live reload.
const ReloadPath = "/ws/reload"

// Server serves the rendered timeline.
type Server struct {
	router     chi.Router
	mu         sync.Mutex
	httpServer *http.Server
	config     *config.Config
	loader     *timeline.Loader
	hub        *live.Hub
	health     *health.Checker
	logger     *logger.Logger
}

// New creates a server. hub may be nil, which disables live reload.
func New(cfg *config.Config, loader *timeline.Loader, hub *live.Hub, checker *health.Checker, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	s := &Server{
		config: cfg,
		loader: loader,
		hub:    hub,
		health: checker,
		logger: log.WithComponent("server"),
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.Recovery(s.logger))

	// Websockets outlive any request timeout.
	if s.hub != nil {
		r.Get(ReloadPath, s.hub.ServeWS)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))

		r.Get("/", s.handlePage)
		r.Get("/timeline", s.handleFragment)
		r.Get("/api/timeline", s.handleAPI)

		if s.health != nil {
			r.Get("/health", s.health.Handler())
		}

		if s.config.IconsDir != "" {
			icons := http.FileServer(http.Dir(s.config.IconsDir))
			r.Handle("/icons/*", http.StripPrefix("/icons/", icons))
		}
		r.Handle("/assets/*", http.StripPrefix("/assets/", ui.Handler(s.config.AssetsDir)))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		err := apierrors.NewNotFoundError("no such page: " + r.URL.Path)
		apierrors.WriteError(w, err.WithRequestID(chimiddleware.GetReqID(r.Context())))
	})

	s.router = r
}

// render loads the timeline into a fresh container and gives icon probes
// up to the probe timeout to land before the page is written.
func (s *Server) render(ctx context.Context) (*dom.Container, *timeline.Report) {
	c := dom.NewContainer(ContainerID)
	report := s.loader.Load(ctx, c)

	if report.Render != nil {
		waitCtx, cancel := context.WithTimeout(ctx, s.config.IconProbeTimeout)
		defer cancel()
		if err := report.Render.Wait(waitCtx); err != nil {
			s.logger.WithContext(ctx).Debug("serving before all icon probes finished",
				"render_id", report.RenderID,
				"error", err,
			)
		}
	}
	return c, report
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	c, _ := s.render(r.Context())

	page := layouts.Page(layouts.PageData{
		Title:      s.config.PageTitle,
		Stylesheet: "/assets/" + ui.StylesheetName,
		LiveReload: s.hub != nil,
		ReloadPath: ReloadPath,
	}, layouts.Timeline(c))

	templ.Handler(page).ServeHTTP(w, r)
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	c, _ := s.render(r.Context())
	templ.Handler(layouts.Timeline(c)).ServeHTTP(w, r)
}

// timelineResponse is the body of GET /api/timeline.
type timelineResponse struct {
	Source  string               `json:"source"`
	Count   int                  `json:"count"`
	Entries []timeline.EntryView `json:"entries"`
	Issues  validation.Issues    `json:"issues"`
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := s.loader.Entries(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Error("error loading timeline", "error", err)
		apiErr := apierrors.FromError(err).WithRequestID(chimiddleware.GetReqID(ctx))
		apierrors.WriteError(w, apiErr)
		return
	}

	var opts timeline.Options
	if s.loader.Renderer != nil {
		opts = s.loader.Renderer.Options()
	}
	views := timeline.Views(entries, opts)
	issues := validation.Check(entries, validation.Options{ShowOtherScores: opts.ShowOtherScores})
	if issues == nil {
		issues = validation.Issues{}
	}

	apierrors.WriteJSON(w, http.StatusOK, timelineResponse{
		Source:  s.config.DataSource,
		Count:   len(views),
		Entries: views,
		Issues:  issues,
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.Addr()
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if s.hub != nil {
		httpServer.RegisterOnShutdown(s.hub.Close)
	}
	s.mu.Lock()
	s.httpServer = httpServer
	s.mu.Unlock()

	s.logger.Info("starting timeline server", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()
	if httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down timeline server")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}
