package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/classroom/internal/model"
)

// Export builds an export-ready snapshot of the submission log and the current question.
func Export(st *StateStore, log *SubmissionLog, now time.Time) (model.SubmissionExport, error) {
	state, err := st.Read()
	if err != nil {
		return model.SubmissionExport{}, fmt.Errorf("read state: %w", err)
	}
	subs, err := log.List()
	if err != nil {
		return model.SubmissionExport{}, fmt.Errorf("list submissions: %w", err)
	}
	return model.SubmissionExport{
		ExportedAt:      now.UTC().Truncate(time.Second),
		CurrentQuestion: state.CurrentQuestion,
		Count:           len(subs),
		Submissions:     subs,
	}, nil
}
