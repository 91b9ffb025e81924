package handler

import (
	"log/slog"
	"net/http"

	appI18n "github.com/pavelanni/classroom/internal/i18n"
)

func (h *Handler) handleCurrentQuestion(w http.ResponseWriter, r *http.Request) {
	st, err := h.state.Read()
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, questionResponse{Question: st.CurrentQuestion})
}

func (h *Handler) handleProgressQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.state.AdvanceQuestion()
	if err != nil {
		respondError(w, r, err)
		return
	}
	slog.Info("advanced question", "question", q)
	respondJSON(w, http.StatusOK, progressResponse{OK: true, Question: q})
}

func (h *Handler) handleCurrentFile(w http.ResponseWriter, r *http.Request) {
	snap, err := h.refs.Load()
	if err != nil {
		respondError(w, r, err)
		return
	}
	st, err := h.state.Read()
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, urlResponse{URL: snap.At(st.FileIndex())})
}

func (h *Handler) handleNextFile(w http.ResponseWriter, r *http.Request) {
	// Length and URL come from the same snapshot so a concurrent edit of the
	// list cannot pair an index with the wrong entry.
	snap, err := h.refs.Load()
	if err != nil {
		respondError(w, r, err)
		return
	}
	if len(snap.URLs) == 0 {
		respondFailure(w, http.StatusBadRequest, appI18n.T(r.Context(), "NoReferenceFiles"))
		return
	}

	idx, err := h.state.AdvanceFileIndex(len(snap.URLs))
	if err != nil {
		respondError(w, r, err)
		return
	}
	url := snap.At(idx)
	slog.Info("advanced reference file", "index", idx, "url", url, "list_version", snap.Version)
	respondJSON(w, http.StatusOK, nextFileResponse{OK: true, Index: idx, URL: url})
}
