package httpx

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// spaHandler serves the built frontend from dir. Paths that do not
// resolve to a file fall back to index.html so client-side routing
// keeps working after a full page load.
func spaHandler(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := filepath.Clean(strings.TrimPrefix(r.URL.Path, "/"))
		if clean == "." || clean == ".." || strings.HasPrefix(clean, "..") {
			http.ServeFile(w, r, index)
			return
		}

		info, err := os.Stat(filepath.Join(dir, clean))
		if err != nil || info.IsDir() {
			http.ServeFile(w, r, index)
			return
		}

		fileServer.ServeHTTP(w, r)
	})
}
