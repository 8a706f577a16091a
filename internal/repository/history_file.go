package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileHistoryRepository stores the history as a JSON string array in
// <dir>/<namespace>.json.
type FileHistoryRepository struct {
	path      string
	namespace string
}

// NewFileHistoryRepository creates a FileHistoryRepository. The directory is
// created on first save.
func NewFileHistoryRepository(dir, namespace string) *FileHistoryRepository {
	return &FileHistoryRepository{
		path:      filepath.Join(dir, namespace+".json"),
		namespace: namespace,
	}
}

// Path returns the file backing this repository.
func (r *FileHistoryRepository) Path() string {
	return r.path
}

// LoadTerms reads the stored history.
func (r *FileHistoryRepository) LoadTerms(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(r.namespace)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return decodeTerms(data)
}

// SaveTerms replaces the stored history. The file is written to a temp file
// and renamed so readers never see a partial write.
func (r *FileHistoryRepository) SaveTerms(ctx context.Context, terms []string) error {
	data, err := encodeTerms(terms)
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, r.namespace+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// decodeTerms parses a stored JSON string array. Every backend stores the
// same encoding.
func decodeTerms(data []byte) ([]string, error) {
	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, fmt.Errorf("stored history is not a string array: %w", err)
	}
	if terms == nil {
		terms = []string{}
	}
	return terms, nil
}

func encodeTerms(terms []string) ([]byte, error) {
	if terms == nil {
		terms = []string{}
	}
	data, err := json.Marshal(terms)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return data, nil
}
