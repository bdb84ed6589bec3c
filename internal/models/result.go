package models

// AnalyzeResponse is returned by POST /analyze.
type AnalyzeResponse struct {
	Sentiment string   `json:"sentiment"`
	Keywords  []string `json:"keywords"`
}

// SummarizeResponse is returned by POST /summarize.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// StatusMessage is a plain acknowledgement.
type StatusMessage struct {
	Status string `json:"status"`
}

// SemanticSearchResponse is returned by POST /semantic-search.
type SemanticSearchResponse struct {
	Matches []Match `json:"matches"`
}

// RebuildResponse is returned by POST /rebuild-index.
type RebuildResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

// StoreStatus is returned by GET /status.
type StoreStatus struct {
	Stats
	InSync         bool   `json:"in_sync"`
	DiskUsageBytes int64  `json:"disk_usage_bytes"`
	Embedding      string `json:"embedding_provider"`
}
