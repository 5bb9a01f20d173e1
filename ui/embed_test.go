package ui

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	body, _ := io.ReadAll(rr.Body)
	return rr.Code, string(body)
}

func TestEmbeddedStylesheet(t *testing.T) {
	if !strings.Contains(string(Stylesheet()), ".timeline-item") {
		t.Error("embedded stylesheet lacks timeline rules")
	}

	code, body := get(t, Handler(""), "/"+StylesheetName)
	if code != http.StatusOK || !strings.Contains(body, ".score-box") {
		t.Errorf("GET styles.css = %d", code)
	}
}

func TestHandlerPrefersDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, StylesheetName), []byte("/* local */"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "logo.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := Handler(dir)

	if _, body := get(t, h, "/"+StylesheetName); body != "/* local */" {
		t.Errorf("local stylesheet not served: %q", body)
	}
	if code, _ := get(t, h, "/logo.svg"); code != http.StatusOK {
		t.Errorf("logo.svg = %d", code)
	}
	if code, _ := get(t, h, "/missing.png"); code != http.StatusNotFound {
		t.Errorf("missing asset = %d, want 404", code)
	}
}

func TestHandlerMissingDirectoryFallsBack(t *testing.T) {
	h := Handler(filepath.Join(t.TempDir(), "nope"))
	if code, _ := get(t, h, "/"+StylesheetName); code != http.StatusOK {
		t.Errorf("fallback stylesheet = %d", code)
	}
}
