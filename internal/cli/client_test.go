package cli

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/textintel/internal/analysis"
	"github.com/hyperjump/textintel/internal/config"
	"github.com/hyperjump/textintel/internal/embedding"
	"github.com/hyperjump/textintel/internal/models"
	"github.com/hyperjump/textintel/internal/search"
	"github.com/hyperjump/textintel/internal/server"
	"github.com/hyperjump/textintel/internal/storage"
	"github.com/hyperjump/textintel/internal/vector"
)

type cannedModel struct{}

func (cannedModel) Complete(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error) {
	return "negative", nil
}

func newTestAPI(t *testing.T) *Client {
	t.Helper()
	dir := t.TempDir()
	engine, err := search.NewEngine(
		embedding.NewMockEmbedder(16),
		storage.NewJSONStore(filepath.Join(dir, "documents.json")),
		search.Config{
			IndexPath:  filepath.Join(dir, "vectors.index"),
			Metric:     vector.MetricInnerProduct,
			Dimensions: 16,
		})
	if err != nil {
		t.Fatal(err)
	}
	srv := server.NewServer(engine, analysis.NewAnalyzer(cannedModel{}),
		&config.ServerConfig{RequestTimeout: 5 * time.Second}, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/", nil)
}

func TestClient_RoundTrip(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()

	for _, text := range []string{"red apples", "blue oceans"} {
		if err := c.AddDocument(ctx, text); err != nil {
			t.Fatalf("AddDocument: %v", err)
		}
	}
	k := 1
	matches, err := c.Search(ctx, models.SemanticSearchRequest{Query: "blue oceans", TopK: &k})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 || matches[0].Text != "blue oceans" {
		t.Errorf("matches = %+v", matches)
	}

	n, err := c.Rebuild(ctx)
	if err != nil || n != 2 {
		t.Errorf("Rebuild = %d, %v", n, err)
	}
	st, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Documents != 2 || st.Vectors != 2 || !st.InSync {
		t.Errorf("status = %+v", st)
	}

	a, err := c.Analyze(ctx, "the service was slow and broken")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Sentiment != "negative" {
		t.Errorf("sentiment = %q", a.Sentiment)
	}
	summary, err := c.Summarize(ctx, "anything")
	if err != nil || summary != "negative" {
		t.Errorf("Summarize = %q, %v", summary, err)
	}
}

func TestClient_APIError(t *testing.T) {
	c := newTestAPI(t)
	err := c.AddDocument(context.Background(), "   ")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message == "" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestClient_NonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, nil).Status(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "gateway exploded" {
		t.Errorf("err = %v", err)
	}
}

func TestClient_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()
	if _, err := NewClient(url, nil).Status(context.Background()); err == nil {
		t.Error("expected error for closed server")
	}
}
