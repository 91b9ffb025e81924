package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/pavelanni/classroom/internal/model"
)

const filePerm = 0o644

// ensureDir creates the parent directory of a backing file.
func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: create directory for %s: %v", model.ErrStorageUnavailable, path, err)
	}
	return nil
}

// readJSON decodes the file at path into v.
// It reports false with a nil error when the file does not exist.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %v", model.ErrStorageCorrupt, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("%w: parse %s: %v", model.ErrStorageCorrupt, path, err)
	}
	return true, nil
}

// writeJSON replaces the file at path with the indented encoding of v.
// The replacement is a rename, so on failure the previous content is left as it was.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", model.ErrStorageUnavailable, path, err)
	}
	if err := renameio.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("%w: write %s: %v", model.ErrStorageUnavailable, path, err)
	}
	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
