package models

import (
	"errors"
	"testing"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestSemanticSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		req      *SemanticSearchRequest
		wantErr  bool
		wantTopK int
	}{
		{"empty query", &SemanticSearchRequest{Query: ""}, true, 0},
		{"blank query", &SemanticSearchRequest{Query: "  \n"}, true, 0},
		{"default top_k", &SemanticSearchRequest{Query: "hello"}, false, DefaultRequestTopK},
		{"explicit top_k", &SemanticSearchRequest{Query: "x", TopK: intPtr(7)}, false, 7},
		{"zero top_k", &SemanticSearchRequest{Query: "x", TopK: intPtr(0)}, true, 0},
		{"top_k too large", &SemanticSearchRequest{Query: "x", TopK: intPtr(101)}, true, 0},
		{"min_score in range", &SemanticSearchRequest{Query: "x", MinScore: floatPtr(0.5)}, false, DefaultRequestTopK},
		{"min_score too large", &SemanticSearchRequest{Query: "x", MinScore: floatPtr(1.5)}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("error should wrap ErrInvalidInput: %v", err)
				}
				return
			}
			if *tt.req.TopK != tt.wantTopK {
				t.Errorf("TopK = %d, want %d", *tt.req.TopK, tt.wantTopK)
			}
		})
	}
}

func TestTextRequest_Validate(t *testing.T) {
	if err := (&TextRequest{Text: " "}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank text: got %v", err)
	}
	if err := (&TextRequest{Text: "ok"}).Validate(); err != nil {
		t.Errorf("valid text: %v", err)
	}
}

func TestStats_InSync(t *testing.T) {
	if !(Stats{Documents: 2, Vectors: 2}).InSync() {
		t.Error("equal counts should be in sync")
	}
	if (Stats{Documents: 2, Vectors: 3}).InSync() {
		t.Error("unequal counts should not be in sync")
	}
}
