package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pavelanni/classroom/internal/model"
)

// StateStore persists the progression state in a single JSON file.
// Every read goes to the file; mu serializes read-modify-write cycles within the process.
type StateStore struct {
	path string
	mu   sync.Mutex
}

// NewStateStore opens the state file at path, creating it with the default state if absent.
func NewStateStore(path string) (*StateStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	s := &StateStore{path: path}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *StateStore) Path() string {
	return s.path
}

// Read returns the persisted progression state.
func (s *StateStore) Read() (model.ProgressionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Write replaces the persisted progression state.
func (s *StateStore) Write(st model.ProgressionState) error {
	if err := validate(st); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidArgument, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.path, st)
}

// AdvanceQuestion moves to the next question and returns its index.
func (s *StateStore) AdvanceQuestion() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return 0, err
	}
	st.CurrentQuestion++
	if err := writeJSON(s.path, st); err != nil {
		return 0, err
	}
	return st.CurrentQuestion, nil
}

// AdvanceFileIndex moves the file pointer forward, wrapping at listLength.
// An unset pointer advances to 0.
func (s *StateStore) AdvanceFileIndex(listLength int) (int, error) {
	if listLength <= 0 {
		return 0, fmt.Errorf("%w: reference file list is empty", model.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return 0, err
	}
	next := (st.FileIndex() + 1) % listLength
	st.CurrentFileIndex = &next
	if err := writeJSON(s.path, st); err != nil {
		return 0, err
	}
	return next, nil
}

// load reads the state file; callers hold mu.
func (s *StateStore) load() (model.ProgressionState, error) {
	var st model.ProgressionState
	found, err := readJSON(s.path, &st)
	if err != nil {
		return model.ProgressionState{}, err
	}
	if !found {
		st = model.ProgressionState{}
		if err := writeJSON(s.path, st); err != nil {
			return model.ProgressionState{}, err
		}
		slog.Info("initialized progression state", "path", s.path)
		return st, nil
	}
	if err := validate(st); err != nil {
		return model.ProgressionState{}, fmt.Errorf("%w: %s: %v", model.ErrStorageCorrupt, s.path, err)
	}
	return st, nil
}

func validate(st model.ProgressionState) error {
	if st.CurrentQuestion < 0 {
		return fmt.Errorf("negative currentQuestion %d", st.CurrentQuestion)
	}
	if st.CurrentFileIndex != nil && *st.CurrentFileIndex < 0 {
		return fmt.Errorf("negative currentFileIndex %d", *st.CurrentFileIndex)
	}
	return nil
}
