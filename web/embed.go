package web

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// Dist embeds the built admin SPA.
//
//go:embed all:dist
var Dist embed.FS

// Handler serves the SPA. Unknown paths fall back to index.html so
// client-side routes survive a hard refresh.
func Handler() http.Handler {
	dist, err := fs.Sub(Dist, "dist")
	if err != nil {
		panic(err)
	}
	fileServer := http.FileServer(http.FS(dist))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}
		if _, err := fs.Stat(dist, name); err != nil {
			r.URL.Path = "/"
		}
		fileServer.ServeHTTP(w, r)
	})
}
