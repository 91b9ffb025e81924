package model

import "time"

// SubmissionExport is the top-level JSON structure written by the export command.
type SubmissionExport struct {
	ExportedAt      time.Time    `json:"exported_at"`
	CurrentQuestion int          `json:"current_question"`
	Count           int          `json:"count"`
	Submissions     []Submission `json:"submissions"`
}
