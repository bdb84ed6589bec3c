package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hyperjump/textintel/pkg/utils"
)

// JSONStore keeps the documents as a JSON array of strings in a single file.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store for the file at path. Nothing is created until the first Save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load decodes the array at the store path.
func (s *JSONStore) Load(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read documents: %w", err)
	}
	var docs []string
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode documents %s: %w", s.path, err)
	}
	if docs == nil {
		docs = []string{}
	}
	return docs, nil
}

// Save writes docs to a temp file and renames it over the store path.
func (s *JSONStore) Save(ctx context.Context, docs []string) error {
	if docs == nil {
		docs = []string{}
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	if err := utils.WriteFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}
	return nil
}

// Path returns the JSON file path.
func (s *JSONStore) Path() string { return s.path }

// Close is a no-op.
func (s *JSONStore) Close() error { return nil }
