package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/textintel/internal/llm"
)

func TestNewEmbedder_Mock(t *testing.T) {
	for _, p := range []string{"", ProviderMock} {
		e, err := NewEmbedder(Config{Provider: p, Dimensions: 16})
		if err != nil {
			t.Fatalf("NewEmbedder(%q): %v", p, err)
		}
		if _, ok := e.(*MockEmbedder); !ok {
			t.Errorf("provider %q: got %T, want *MockEmbedder", p, e)
		}
	}
}

func TestNewEmbedder_Cached(t *testing.T) {
	e, err := NewEmbedder(Config{Provider: ProviderMock, Dimensions: 16, CacheSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*CachedEmbedder); !ok {
		t.Errorf("got %T, want *CachedEmbedder", e)
	}
	if e.Dimensions() != 16 {
		t.Errorf("Dimensions=%d", e.Dimensions())
	}
}

func TestNewEmbedder_Errors(t *testing.T) {
	if _, err := NewEmbedder(Config{Provider: "word2vec", Dimensions: 4}); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := NewEmbedder(Config{Provider: ProviderOpenAI, Dimensions: 4}); err == nil {
		t.Error("expected error for openai without client")
	}
	if _, err := NewEmbedder(Config{Provider: ProviderONNX, Dimensions: 4, MaxTokens: 8}); err == nil {
		t.Error("expected error for onnx without model path")
	}
}

func TestOpenAIEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input      []string `json:"input"`
			Dimensions int      `json:"dimensions"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Dimensions != 3 {
			t.Errorf("dimensions=%d, want 3", req.Dimensions)
		}
		for _, in := range req.Input {
			if in == "line one\nline two" {
				t.Error("newlines should be flattened")
			}
		}
		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		resp := struct {
			Object string `json:"object"`
			Data   []item `json:"data"`
		}{Object: "list"}
		for i := range req.Input {
			resp.Data = append(resp.Data, item{Object: "embedding", Index: i, Embedding: []float32{float32(i), 1, 0}})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client, err := llm.NewClient(llm.Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEmbedder(Config{Provider: ProviderOpenAI, Dimensions: 3, Client: client})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	v, err := e.Embed(ctx, "line one\nline two")
	if err != nil {
		t.Fatal(err)
	}
	if len(v) != 3 || v[1] != 1 {
		t.Errorf("Embed = %v", v)
	}

	vecs, err := e.EmbedBatch(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 2 || vecs[1][0] != 1 {
		t.Errorf("EmbedBatch = %v", vecs)
	}
}

func TestNewONNXEmbedder_MissingModel(t *testing.T) {
	_, err := NewONNXEmbedder("", 4, 8)
	if err == nil {
		t.Fatal("expected error")
	}
}
