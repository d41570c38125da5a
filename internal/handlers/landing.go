package handlers

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
)

//go:embed static
var staticFiles embed.FS

const landingPage = "index.html"

// LandingHandler serves the static landing page.
type LandingHandler struct {
	files fs.FS
}

// NewLandingHandler serves index.html from dir, or the embedded page when dir is empty.
func NewLandingHandler(dir string) *LandingHandler {
	if dir != "" {
		return &LandingHandler{files: os.DirFS(dir)}
	}

	files, _ := fs.Sub(staticFiles, "static") // the embedded directory always exists

	return &LandingHandler{files: files}
}

func (h *LandingHandler) ServeLanding(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, h.files, landingPage)
}
