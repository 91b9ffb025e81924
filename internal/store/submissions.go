package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/pavelanni/classroom/internal/model"
)

// SubmissionLog keeps submissions newest-first in a single JSON array file.
type SubmissionLog struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewSubmissionLog opens the log at path, creating an empty one if absent.
func NewSubmissionLog(path string) (*SubmissionLog, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	l := &SubmissionLog{path: path, now: time.Now}

	var existing []model.Submission
	found, err := readJSON(path, &existing)
	if err != nil {
		return nil, err
	}
	if !found {
		if err := writeJSON(path, []model.Submission{}); err != nil {
			return nil, err
		}
		slog.Info("initialized submission log", "path", path)
	}
	return l, nil
}

// Path returns the backing file path.
func (l *SubmissionLog) Path() string {
	return l.path
}

// Append stores sub at the front of the log and returns the stored record.
// ID and Timestamp are assigned when unset.
func (l *SubmissionLog) Append(sub model.Submission) (model.Submission, error) {
	meta, err := normalizeMetadata(sub.Metadata)
	if err != nil {
		return model.Submission{}, err
	}
	sub.Metadata = meta

	l.mu.Lock()
	defer l.mu.Unlock()

	subs, err := l.load()
	if err != nil {
		return model.Submission{}, err
	}

	now := l.now()
	if sub.ID == "" {
		sub.ID = nextID(now, subs)
	} else {
		for _, s := range subs {
			if s.ID == sub.ID {
				return model.Submission{}, fmt.Errorf("%w: duplicate submission id %q", model.ErrInvalidArgument, sub.ID)
			}
		}
	}
	if sub.Timestamp.IsZero() {
		sub.Timestamp = now
	}
	sub.Timestamp = sub.Timestamp.UTC().Truncate(time.Millisecond)

	updated := make([]model.Submission, 0, len(subs)+1)
	updated = append(updated, sub)
	updated = append(updated, subs...)
	if err := writeJSON(l.path, updated); err != nil {
		return model.Submission{}, err
	}
	return sub, nil
}

// List returns every submission, newest first.
func (l *SubmissionLog) List() ([]model.Submission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// GetByID returns the submission with the given id.
func (l *SubmissionLog) GetByID(id string) (model.Submission, error) {
	subs, err := l.List()
	if err != nil {
		return model.Submission{}, err
	}
	for _, s := range subs {
		if s.ID == id {
			return s, nil
		}
	}
	return model.Submission{}, fmt.Errorf("%w: submission %q", model.ErrNotFound, id)
}

// load reads the whole log; callers hold mu. A missing file reads as empty.
func (l *SubmissionLog) load() ([]model.Submission, error) {
	var subs []model.Submission
	if _, err := readJSON(l.path, &subs); err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	return subs, nil
}

// nextID derives an id from the clock in milliseconds, bumped past the newest
// stored id so that ids stay unique and increasing even if the clock stalls.
func nextID(now time.Time, subs []model.Submission) string {
	id := now.UnixMilli()
	if len(subs) > 0 {
		if newest, err := strconv.ParseInt(subs[0].ID, 10, 64); err == nil && newest >= id {
			id = newest + 1
		}
	}
	return strconv.FormatInt(id, 10)
}

// normalizeMetadata returns metadata in the shape it has after a trip through the file,
// so the record returned by Append equals the one read back later.
func normalizeMetadata(meta map[string]any) (map[string]any, error) {
	if len(meta) == 0 {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", model.ErrInvalidArgument, err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", model.ErrInvalidArgument, err)
	}
	return out, nil
}
