package models

import (
	"fmt"
	"strings"
)

const (
	// DefaultRequestTopK applies when a search request omits top_k.
	DefaultRequestTopK = 3
	// MaxRequestTopK caps top_k on search requests.
	MaxRequestTopK = 100
)

// SemanticSearchRequest is the body of POST /semantic-search.
// MinScore is optional; nil means the engine default.
type SemanticSearchRequest struct {
	Query    string   `json:"query"`
	TopK     *int     `json:"top_k,omitempty"`
	MinScore *float64 `json:"min_score,omitempty"`
}

// Validate checks the request and fills in the default top_k.
func (q *SemanticSearchRequest) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("%w: query cannot be empty", ErrInvalidInput)
	}
	if q.TopK == nil {
		k := DefaultRequestTopK
		q.TopK = &k
	}
	if *q.TopK < 1 || *q.TopK > MaxRequestTopK {
		return fmt.Errorf("%w: top_k must be between 1 and %d", ErrInvalidInput, MaxRequestTopK)
	}
	if q.MinScore != nil && (*q.MinScore < -1 || *q.MinScore > 1) {
		return fmt.Errorf("%w: min_score must be between -1 and 1", ErrInvalidInput)
	}
	return nil
}
