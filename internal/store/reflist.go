package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pavelanni/classroom/internal/model"
)

// RefList reads the externally maintained JSON array of reference-file URLs.
// The file is never written here and is re-read on every Load.
type RefList struct {
	path string
}

// NewRefList returns a loader for the list at path.
func NewRefList(path string) *RefList {
	return &RefList{path: path}
}

// Path returns the list file path.
func (r *RefList) Path() string {
	return r.path
}

// Load returns a snapshot of the list. A missing file yields an empty snapshot.
func (r *RefList) Load() (model.RefSnapshot, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("reference file list not found", "path", r.path)
		return model.RefSnapshot{URLs: []string{}}, nil
	}
	if err != nil {
		return model.RefSnapshot{}, fmt.Errorf("%w: read %s: %v", model.ErrStorageCorrupt, r.path, err)
	}

	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return model.RefSnapshot{}, fmt.Errorf("%w: parse %s: %v", model.ErrStorageCorrupt, r.path, err)
	}
	if urls == nil {
		urls = []string{}
	}
	return model.RefSnapshot{URLs: urls, Version: sha256sum(data)}, nil
}
