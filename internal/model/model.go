package model

import "time"

// DefaultStudentName is stored when a submission arrives without a name.
const DefaultStudentName = "anonymous"

// ProgressionState tracks which question and which reference file are current.
type ProgressionState struct {
	CurrentQuestion int `json:"currentQuestion"`
	// CurrentFileIndex stays nil until the tutor advances the file pointer for the first time.
	CurrentFileIndex *int `json:"currentFileIndex,omitempty"`
}

// FileIndex returns the current file index, or -1 when none has been selected yet.
func (s ProgressionState) FileIndex() int {
	if s.CurrentFileIndex == nil {
		return -1
	}
	return *s.CurrentFileIndex
}

// Submission is one student code entry, tied to the question active when it was sent.
type Submission struct {
	ID          string         `json:"id"`
	StudentName string         `json:"studentName"`
	Code        string         `json:"code"`
	Question    int            `json:"question"`
	Metadata    map[string]any `json:"metadata"`
	Timestamp   time.Time      `json:"timestamp"`
}

// SubmissionInput is the student-supplied part of a submission.
// Nil fields fall back to their defaults.
type SubmissionInput struct {
	StudentName *string        `json:"studentName"`
	Code        *string        `json:"code"`
	Metadata    map[string]any `json:"metadata"`
}

// RefSnapshot is one read of the external reference-file list.
type RefSnapshot struct {
	URLs []string
	// Version is the hex sha256 of the raw list file.
	Version string
}

// At returns the URL at index i, or "" when i is out of range.
func (r RefSnapshot) At(i int) string {
	if i < 0 || i >= len(r.URLs) {
		return ""
	}
	return r.URLs[i]
}

// ServerConfig holds runtime parameters set via CLI flags, env or config file.
type ServerConfig struct {
	PublicDir     string
	TutorCodeURL  string
	MaxBodyBytes  int64
	TutorPassword string // plaintext shared secret
	TutorHash     string // bcrypt hash of the shared secret; takes precedence when set
}
