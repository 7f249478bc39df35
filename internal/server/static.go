package server

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// indexDocument is the front-end entry point served for client-side routes.
const indexDocument = "index.html"

// staticHandler serves files from fsys and falls back to index.html for any
// path that is not a file, so the front end can own its own routes.
type staticHandler struct {
	fsys fs.FS
}

func newStaticHandler(fsys fs.FS) http.Handler {
	return &staticHandler{fsys: fsys}
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.fsys == nil {
		http.NotFound(w, r)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" && h.isFile(name) {
		http.ServeFileFS(w, r, h.fsys, name)
		return
	}
	http.ServeFileFS(w, r, h.fsys, indexDocument)
}

func (h *staticHandler) isFile(name string) bool {
	f, err := h.fsys.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	st, err := f.Stat()
	return err == nil && !st.IsDir()
}
