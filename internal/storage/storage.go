// Package storage persists the document log artifact.
package storage

import (
	"context"
	"fmt"
)

// Backend names accepted by NewDocumentStore.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// DocumentStore loads and saves the ordered document texts as one artifact.
// Save replaces the stored sequence wholesale.
type DocumentStore interface {
	// Load returns the stored texts in position order. A missing artifact yields an empty slice.
	Load(ctx context.Context) ([]string, error)
	// Save replaces the stored texts with docs.
	Save(ctx context.Context, docs []string) error
	// Path returns the artifact location.
	Path() string
	Close() error
}

// NewDocumentStore opens the document artifact at path using the named backend.
// An empty backend selects JSON.
func NewDocumentStore(backend, path string) (DocumentStore, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONStore(path), nil
	case BackendSQLite:
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown documents backend: %s (supported: json, sqlite)", backend)
	}
}
