package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	appI18n "github.com/pavelanni/classroom/internal/i18n"
)

const tutorPage = "/tutor.html"

func (h *Handler) handleTutorCodeURL(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, urlResponse{URL: h.config.TutorCodeURL})
}

// handleFetchTutor proxies a remote text document so the browser avoids cross-origin fetches.
func (h *Handler) handleFetchTutor(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		respondFailure(w, http.StatusBadRequest, appI18n.T(r.Context(), "MissingURL"))
		return
	}

	text, err := h.fetcher.Text(r.Context(), raw)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func (h *Handler) handleTutorPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.config.PublicDir, filepath.FromSlash(tutorPage)))
}

// handleStatic serves files from the public directory and falls back to index.html
// for anything that is not a file there.
func (h *Handler) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		respondFailure(w, http.StatusNotFound, appI18n.T(r.Context(), "NotFound"))
		return
	}

	name := path.Clean("/" + r.URL.Path)
	if name != tutorPage {
		full := filepath.Join(h.config.PublicDir, filepath.FromSlash(name))
		if fi, err := os.Stat(full); err == nil && !fi.IsDir() {
			http.ServeFile(w, r, full)
			return
		}
	}
	http.ServeFile(w, r, filepath.Join(h.config.PublicDir, "index.html"))
}
