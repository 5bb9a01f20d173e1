package timeline

import (
	"context"
	"io/fs"
	"net/http"
	"strings"
	"time"
)

// IconProber reports whether an icon asset named name (without extension)
// exists. A false result is never an error: the score keeps its plain fill.
type IconProber interface {
	Probe(ctx context.Context, name string) bool
}

// ProberFunc adapts a function to IconProber.
type ProberFunc func(ctx context.Context, name string) bool

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, name string) bool {
	return f(ctx, name)
}

// FSProber looks for <name>.png in a file system.
type FSProber struct {
	fsys fs.FS
}

// NewFSProber creates a prober over fsys, typically os.DirFS(iconsDir).
func NewFSProber(fsys fs.FS) *FSProber {
	return &FSProber{fsys: fsys}
}

// Probe stats the icon file.
func (p *FSProber) Probe(ctx context.Context, name string) bool {
	if ctx.Err() != nil || name == "" {
		return false
	}
	info, err := fs.Stat(p.fsys, name+".png")
	return err == nil && !info.IsDir()
}

// HTTPProber issues a HEAD request for <baseURL>/<name>.png.
type HTTPProber struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPProber creates a prober for icons served under baseURL.
func NewHTTPProber(baseURL string, timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPProber{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Probe reports whether the icon URL answers with a 2xx status.
func (p *HTTPProber) Probe(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.baseURL+"/"+name+".png", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
