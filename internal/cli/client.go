package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/textintel/internal/models"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to a running textintel server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL. A nil httpClient uses a 2 minute timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// AddDocument posts text to /add-document.
func (c *Client) AddDocument(ctx context.Context, text string) error {
	return c.do(ctx, http.MethodPost, "/add-document", models.TextRequest{Text: text}, nil)
}

// Search posts req to /semantic-search.
func (c *Client) Search(ctx context.Context, req models.SemanticSearchRequest) ([]models.Match, error) {
	var resp models.SemanticSearchResponse
	if err := c.do(ctx, http.MethodPost, "/semantic-search", req, &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// Rebuild posts to /rebuild-index and returns the number of documents indexed.
func (c *Client) Rebuild(ctx context.Context) (int, error) {
	var resp models.RebuildResponse
	if err := c.do(ctx, http.MethodPost, "/rebuild-index", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Documents, nil
}

// Status fetches /status.
func (c *Client) Status(ctx context.Context) (*models.StoreStatus, error) {
	var resp models.StoreStatus
	if err := c.do(ctx, http.MethodGet, "/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Analyze posts text to /analyze.
func (c *Client) Analyze(ctx context.Context, text string) (*models.AnalyzeResponse, error) {
	var resp models.AnalyzeResponse
	if err := c.do(ctx, http.MethodPost, "/analyze", models.TextRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Summarize posts text to /summarize.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	var resp models.SummarizeResponse
	if err := c.do(ctx, http.MethodPost, "/summarize", models.TextRequest{Text: text}, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(b))
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
