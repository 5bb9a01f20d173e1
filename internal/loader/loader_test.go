package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPFetcherSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data.yaml" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("- title: Show A\n"))
	}))
	defer server.Close()

	f := New(server.URL+"/data.yaml", time.Second)
	if _, ok := f.(*HTTPFetcher); !ok {
		t.Fatalf("New(url) returned %T, want *HTTPFetcher", f)
	}

	data, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "- title: Show A\n" {
		t.Errorf("Fetch() = %q", data)
	}
}

func TestHTTPFetcherBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher(server.URL, time.Second).Fetch(context.Background())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", fetchErr.StatusCode)
	}
}

func TestHTTPFetcherUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewHTTPFetcher(url, time.Second).Fetch(context.Background())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fetchErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", fetchErr.StatusCode)
	}
}

func TestHTTPFetcherRejectsOversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := []byte("- title: Show\n")
		for written := 0; written <= MaxDataSize; written += len(entry) {
			w.Write(entry)
		}
	}))
	defer server.Close()

	data, err := NewHTTPFetcher(server.URL, 5*time.Second).Fetch(context.Background())
	if data != nil {
		t.Errorf("Fetch() returned %d bytes, want none", len(data))
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("error = %v, want ErrTooLarge", err)
	}
}

func TestHTTPFetcherAcceptsBodyAtLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, MaxDataSize))
	}))
	defer server.Close()

	data, err := NewHTTPFetcher(server.URL, 5*time.Second).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(data) != MaxDataSize {
		t.Errorf("len = %d, want %d", len(data), MaxDataSize)
	}
}

func TestFileFetcherRejectsOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(path, make([]byte, MaxDataSize+1), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileFetcher(path).Fetch(context.Background())
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("error = %v, want ErrTooLarge", err)
	}
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.yaml")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := New(path, time.Second)
	data, err := f.Fetch(context.Background())
	if err != nil || string(data) != "[]" {
		t.Fatalf("Fetch() = %q, %v", data, err)
	}

	_, err = New(filepath.Join(dir, "missing.yaml"), time.Second).Fetch(context.Background())
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}

type countingFetcher struct {
	calls atomic.Int32
	err   error
}

func (f *countingFetcher) Source() string { return "counting" }

func (f *countingFetcher) Fetch(ctx context.Context) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("data"), nil
}

func TestCachedFetcher(t *testing.T) {
	next := &countingFetcher{}
	f := Cached(next, time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if next.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", next.calls.Load())
	}

	f.(Invalidator).Invalidate()
	f.Fetch(context.Background())
	if next.calls.Load() != 2 {
		t.Errorf("calls after invalidate = %d, want 2", next.calls.Load())
	}
}

func TestCachedFetcherDoesNotServeStaleOnError(t *testing.T) {
	next := &countingFetcher{}
	f := &CachedFetcher{next: next, ttl: time.Hour}

	if _, err := f.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	f.Invalidate()
	next.err = &FetchError{Source: "counting", StatusCode: 500}

	if data, err := f.Fetch(context.Background()); err == nil {
		t.Errorf("expected error, got data %q", data)
	}
}

func TestCachedDisabled(t *testing.T) {
	next := &countingFetcher{}
	if f := Cached(next, 0); f != Fetcher(next) {
		t.Errorf("Cached with zero ttl should return the fetcher unchanged")
	}
}
