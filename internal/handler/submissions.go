package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/pavelanni/classroom/internal/i18n"
	"github.com/pavelanni/classroom/internal/model"
)

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in model.SubmissionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondFailure(w, http.StatusRequestEntityTooLarge, appI18n.T(r.Context(), "BodyTooLarge"))
			return
		}
		respondFailure(w, http.StatusBadRequest, appI18n.Td(r.Context(), "InvalidBody", map[string]any{"Err": err.Error()}))
		return
	}

	// The question is read at submit time and stored as a snapshot.
	st, err := h.state.Read()
	if err != nil {
		respondError(w, r, err)
		return
	}

	sub := model.Submission{
		StudentName: model.DefaultStudentName,
		Question:    st.CurrentQuestion,
		Metadata:    in.Metadata,
	}
	if in.StudentName != nil {
		sub.StudentName = *in.StudentName
	}
	if in.Code != nil {
		sub.Code = *in.Code
	}

	stored, err := h.subs.Append(sub)
	if err != nil {
		respondError(w, r, err)
		return
	}
	slog.Info("stored submission", "id", stored.ID, "student", stored.StudentName, "question", stored.Question, "code_bytes", len(stored.Code))
	respondJSON(w, http.StatusOK, submissionResponse{OK: true, Submission: stored})
}

func (h *Handler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subs.List()
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, submissionsResponse{OK: true, Submissions: subs})
}

func (h *Handler) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subs.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, submissionResponse{OK: true, Submission: sub})
}
