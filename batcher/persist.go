package batcher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zkbatch/zkbatch/types"
)

// FileError reports a file read or write failure together with the
// offending path.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("batcher: %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// SaveResponse persists one aligned verification data record under dir,
// named by the first 8 hex characters of its batch root and its batch
// index. Records for distinct submissions target distinct files, so
// concurrent saves are safe. Returns the written path.
func SaveResponse(dir string, aligned *types.AlignedVerificationData) (string, error) {
	data, err := json.MarshalIndent(aligned, "", "  ")
	if err != nil {
		return "", fmt.Errorf("batcher: encoding aligned verification data: %w", err)
	}

	path := filepath.Join(dir, aligned.FileName())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &FileError{Path: path, Err: err}
	}
	return path, nil
}

// LoadAlignedVerificationData reads back a record persisted by
// SaveResponse for the on-chain verification path.
func LoadAlignedVerificationData(path string) (*types.AlignedVerificationData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	var aligned types.AlignedVerificationData
	if err := json.Unmarshal(data, &aligned); err != nil {
		return nil, fmt.Errorf("batcher: decoding %s: %w", path, err)
	}
	return &aligned, nil
}
