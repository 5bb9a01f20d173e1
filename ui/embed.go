// Package ui provides the default timeline stylesheet, embedded so the
// server and the static renderer work without an assets directory.
package ui

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
)

// StylesheetName is the file name of the timeline stylesheet.
const StylesheetName = "styles.css"

//go:embed static/*
var static embed.FS

// FS returns the embedded assets rooted at the static directory.
func FS() fs.FS {
	fsys, err := fs.Sub(static, "static")
	if err != nil {
		panic("failed to get static subdirectory: " + err.Error())
	}
	return fsys
}

// Stylesheet returns the embedded stylesheet.
func Stylesheet() []byte {
	data, err := fs.ReadFile(FS(), StylesheetName)
	if err != nil {
		panic("embedded stylesheet missing: " + err.Error())
	}
	return data
}

// Handler serves assets from dir when it exists, falling back to the
// embedded files for anything dir does not provide.
func Handler(dir string) http.Handler {
	embedded := http.FileServer(http.FS(FS()))
	if dir == "" {
		return embedded
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return embedded
	}

	local := os.DirFS(dir)
	onDisk := http.FileServer(http.FS(local))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		if len(name) > 0 && name[0] == '/' {
			name = name[1:]
		}
		if name != "" && fs.ValidPath(name) {
			if info, err := fs.Stat(local, name); err == nil && !info.IsDir() {
				onDisk.ServeHTTP(w, r)
				return
			}
		}
		embedded.ServeHTTP(w, r)
	})
}
