// Package models defines request and response types shared by the engine, the HTTP API and the CLI.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput marks request validation failures.
var ErrInvalidInput = errors.New("invalid input")

// TextRequest carries a single text payload (/analyze, /summarize, /add-document).
type TextRequest struct {
	Text string `json:"text"`
}

// Validate rejects blank text.
func (r *TextRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: text cannot be empty", ErrInvalidInput)
	}
	return nil
}

// Match is one semantic search hit. Score is cosine similarity.
type Match struct {
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Position int     `json:"position"`
}

// Stats describes the persisted store.
type Stats struct {
	Documents  int    `json:"documents"`
	Vectors    int    `json:"vectors"`
	Metric     string `json:"metric"`
	Dimensions int    `json:"dimensions"`
	IndexType  string `json:"index_type"`
}

// InSync reports whether every vector has a document and vice versa.
func (s Stats) InSync() bool {
	return s.Documents == s.Vectors
}
