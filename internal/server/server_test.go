package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/narvanalabs/timeline/internal/loader"
	"github.com/narvanalabs/timeline/internal/timeline"
	"github.com/narvanalabs/timeline/pkg/config"
	"github.com/narvanalabs/timeline/pkg/logger"
	"github.com/narvanalabs/timeline/web/health"
)

const testData = `
- title: Old Show
  date: 2022-05-01
  status: Released
  scores:
    - type: Critic Score
      site: Rotten Tomatoes
      score: 85%
- title: New Show
  date: 2023-01-01
  status: Cancelled
  scores:
    - type: User Score
      site: IMDb
      score: 7.5/10
`

func testConfig() *config.Config {
	return &config.Config{
		DataSource:       "data.yaml",
		IconsURL:         "/icons",
		PageTitle:        "My Timeline",
		WebHost:          "127.0.0.1",
		WebPort:          3000,
		FetchTimeout:     time.Second,
		IconProbeTimeout: time.Second,
		ShutdownTimeout:  time.Second,
		Log:              config.LogConfig{Level: "info", Format: "json"},
	}
}

func newTestServer(t *testing.T, fetch timeline.FetchFunc) *Server {
	t.Helper()
	cfg := testConfig()
	icons := fstest.MapFS{"imdb.png": &fstest.MapFile{Data: []byte("png")}}
	renderer := timeline.NewRenderer(timeline.NewFSProber(icons), timeline.Options{
		IconsURL:     cfg.IconsURL,
		ProbeTimeout: cfg.IconProbeTimeout,
	}, logger.Discard())

	l := &timeline.Loader{Fetch: fetch, Renderer: renderer, Logger: logger.Discard()}
	checker := health.NewChecker(func(ctx context.Context) error {
		_, err := fetch(ctx)
		return err
	}, nil, "test")

	return New(cfg, l, nil, checker, logger.Discard())
}

func staticFetch(data string) timeline.FetchFunc {
	return func(context.Context) ([]byte, error) { return []byte(data), nil }
}

func failingFetch(status int) timeline.FetchFunc {
	return func(context.Context) ([]byte, error) {
		return nil, &loader.FetchError{Source: "data.yaml", StatusCode: status}
	}
}

func get(t *testing.T, h http.Handler, path string) (*http.Response, string) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	resp := rr.Result()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestPageRendersTimeline(t *testing.T) {
	s := newTestServer(t, staticFetch(testData))

	resp, body := get(t, s.Handler(), "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}

	for _, want := range []string{
		"<title>My Timeline</title>",
		`<div id="timeline">`,
		`href="/assets/styles.css"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	newer := strings.Index(body, "New Show")
	older := strings.Index(body, "Old Show")
	if newer < 0 || older < 0 || newer > older {
		t.Errorf("entries out of order: new=%d old=%d", newer, older)
	}
	if !strings.Contains(body, "/icons/imdb.png") {
		t.Error("icon overlay was not applied before the page was written")
	}
	if strings.Contains(body, "WebSocket") {
		t.Error("live reload script present without a hub")
	}
}

func TestFragmentOnlyContainsContainer(t *testing.T) {
	s := newTestServer(t, staticFetch(testData))

	resp, body := get(t, s.Handler(), "/timeline")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.HasPrefix(body, `<div id="timeline">`) {
		t.Errorf("fragment = %.80q", body)
	}
	if strings.Contains(body, "<html") {
		t.Error("fragment should not contain the page shell")
	}
}

func TestPageWithFetchFailureIsEmpty(t *testing.T) {
	s := newTestServer(t, failingFetch(http.StatusNotFound))

	resp, body := get(t, s.Handler(), "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `<div id="timeline"></div>`) {
		t.Error("container should be empty when the data cannot be fetched")
	}
}

func TestAPITimeline(t *testing.T) {
	s := newTestServer(t, staticFetch(testData))

	resp, body := get(t, s.Handler(), "/api/timeline")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}

	var got struct {
		Issues  []map[string]any `json:"issues"`
		Count   int              `json:"count"`
		Entries []struct {
			Title     string `json:"title"`
			Side      string `json:"side"`
			Cancelled bool   `json:"cancelled"`
			Groups    []struct {
				Bucket string `json:"bucket"`
			} `json:"groups"`
		} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Count != 2 || len(got.Entries) != 2 {
		t.Fatalf("count = %d, entries = %d", got.Count, len(got.Entries))
	}
	first := got.Entries[0]
	if first.Title != "New Show" || first.Side != "left" || !first.Cancelled {
		t.Errorf("first entry = %+v", first)
	}
	if got.Entries[1].Side != "right" {
		t.Errorf("second side = %s", got.Entries[1].Side)
	}
	if len(first.Groups) != 1 || first.Groups[0].Bucket != "user" {
		t.Errorf("groups = %+v", first.Groups)
	}
	if got.Issues == nil || len(got.Issues) != 0 {
		t.Errorf("issues = %v, want empty list", got.Issues)
	}
}

func TestAPITimelineFetchFailure(t *testing.T) {
	s := newTestServer(t, failingFetch(http.StatusInternalServerError))

	resp, body := get(t, s.Handler(), "/api/timeline")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `"FETCH_FAILED"`) {
		t.Errorf("body = %s", body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, staticFetch(testData))
	if resp, _ := get(t, s.Handler(), "/health"); resp.StatusCode != http.StatusOK {
		t.Errorf("healthy status = %d", resp.StatusCode)
	}

	s = newTestServer(t, failingFetch(http.StatusNotFound))
	if resp, _ := get(t, s.Handler(), "/health"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", resp.StatusCode)
	}
}

func TestAssetsAndNotFound(t *testing.T) {
	s := newTestServer(t, staticFetch(testData))

	if resp, body := get(t, s.Handler(), "/assets/styles.css"); resp.StatusCode != http.StatusOK || !strings.Contains(body, ".timeline-item") {
		t.Errorf("stylesheet status = %d", resp.StatusCode)
	}

	resp, body := get(t, s.Handler(), "/nope")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, "NOT_FOUND") {
		t.Errorf("not found = %d %s", resp.StatusCode, body)
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	s := newTestServer(t, staticFetch(testData))
	s.config.WebPort = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
