// Package loader retrieves the raw timeline data file.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Fetcher retrieves the raw bytes of the data resource.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
	Source() string
}

// FetchError reports that the data resource could not be retrieved.
type FetchError struct {
	Source     string
	StatusCode int // zero when no HTTP response was received
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// New returns an HTTP fetcher for http(s) URLs and a file fetcher otherwise.
func New(source string, timeout time.Duration) Fetcher {
	if IsRemote(source) {
		return NewHTTPFetcher(source, timeout)
	}
	return NewFileFetcher(source)
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// MaxDataSize bounds how much of the data resource is read.
const MaxDataSize = 8 << 20

// ErrTooLarge is wrapped by a FetchError when the data exceeds MaxDataSize.
var ErrTooLarge = errors.New("data too large")

// readLimited reads r whole, failing rather than truncating past MaxDataSize.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDataSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > MaxDataSize {
		return nil, fmt.Errorf("%w: data exceeds %d bytes", ErrTooLarge, MaxDataSize)
	}
	return data, nil
}

// HTTPFetcher fetches the data file over HTTP.
type HTTPFetcher struct {
	url        string
	httpClient *http.Client
}

// NewHTTPFetcher creates a fetcher for url.
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Source returns the URL being fetched.
func (f *HTTPFetcher) Source() string {
	return f.url
}

// Fetch performs a GET and returns the body. Non-2xx responses are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &FetchError{Source: f.url, Err: err}
	}
	req.Header.Set("Accept", "application/yaml, text/yaml, text/plain, */*")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Source: f.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{
			Source:     f.url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", resp.Status),
		}
	}

	body, err := readLimited(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: f.url, Err: err}
	}
	return body, nil
}

// FileFetcher reads the data file from disk.
type FileFetcher struct {
	path string
}

// NewFileFetcher creates a fetcher for a local path.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

// Source returns the file path.
func (f *FileFetcher) Source() string {
	return f.path
}

// Fetch reads the whole file.
func (f *FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: f.path, Err: err}
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, &FetchError{Source: f.path, Err: err}
	}
	defer file.Close()

	data, err := readLimited(file)
	if err != nil {
		return nil, &FetchError{Source: f.path, Err: err}
	}
	return data, nil
}
