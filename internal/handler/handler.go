package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/classroom/internal/fetch"
	appI18n "github.com/pavelanni/classroom/internal/i18n"
	"github.com/pavelanni/classroom/internal/model"
	"github.com/pavelanni/classroom/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	state   *store.StateStore
	subs    *store.SubmissionLog
	refs    *store.RefList
	fetcher *fetch.Client
	gate    *TutorGate
	config  model.ServerConfig
}

// New creates a new Handler.
func New(st *store.StateStore, subs *store.SubmissionLog, refs *store.RefList, f *fetch.Client, cfg model.ServerConfig) (*Handler, error) {
	gate, err := NewTutorGate(cfg.TutorPassword, cfg.TutorHash)
	if err != nil {
		return nil, err
	}
	return &Handler{
		state:   st,
		subs:    subs,
		refs:    refs,
		fetcher: f,
		gate:    gate,
		config:  cfg,
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/current-question", h.handleCurrentQuestion)
		api.Get("/current-file", h.handleCurrentFile)
		api.Post("/submit", h.handleSubmit)
		api.Get("/tutor-code-url", h.handleTutorCodeURL)
		api.Get("/fetch-tutor", h.handleFetchTutor)

		api.Group(func(tutor chi.Router) {
			tutor.Use(h.gate.Middleware)
			tutor.Post("/progress-question", h.handleProgressQuestion)
			tutor.Post("/next-file", h.handleNextFile)
			tutor.Get("/submissions", h.handleListSubmissions)
			tutor.Get("/submissions/{id}", h.handleGetSubmission)
		})
	})

	r.With(h.gate.Middleware).Get("/tutor.html", h.handleTutorPage)
	r.NotFound(h.handleStatic)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondFailure(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, failureResponse{OK: false, Error: msg})
}

// respondError maps an error to its status code and writes the failure body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status, msg := http.StatusInternalServerError, err.Error()
	switch {
	case errors.Is(err, model.ErrNotFound):
		status, msg = http.StatusNotFound, appI18n.T(ctx, "NotFound")
	case errors.Is(err, model.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", tutorChallenge)
		status, msg = http.StatusUnauthorized, appI18n.T(ctx, "AccessDenied")
	case errors.Is(err, model.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrUpstreamFailure):
		msg = appI18n.Td(ctx, "FetchFailed", map[string]any{"Err": err.Error()})
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		slog.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	respondFailure(w, status, msg)
}
