// Package cli provides output formatting and a remote API client for the textintel CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/textintel/internal/models"
	"github.com/hyperjump/textintel/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text", "json" or "" (text).
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: text, json)", s)
	}
}

const previewRunes = 200

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteMatches writes semantic search matches to w in the given format.
func WriteMatches(w io.Writer, query string, matches []models.Match, format OutputFormat) error {
	if format == OutputJSON {
		if matches == nil {
			matches = []models.Match{}
		}
		return WriteJSON(w, models.SemanticSearchResponse{Matches: matches})
	}
	if len(matches) == 0 {
		fmt.Fprintf(w, "No matches for %q\n", query)
		return nil
	}
	fmt.Fprintf(w, "%d match(es) for %q\n\n", len(matches), query)
	for i, m := range matches {
		fmt.Fprintf(w, "%d. [%.4f] #%d\n", i+1, m.Score, m.Position)
		fmt.Fprintf(w, "   %s\n", utils.Truncate(singleLine(m.Text), previewRunes))
	}
	return nil
}

// WriteStatus writes store status to w.
func WriteStatus(w io.Writer, st *models.StoreStatus, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, st)
	}
	fmt.Fprintf(w, "Documents:  %d\n", st.Documents)
	fmt.Fprintf(w, "Vectors:    %d\n", st.Vectors)
	if !st.InSync {
		fmt.Fprintln(w, "            (out of sync; run 'textintel rebuild')")
	}
	fmt.Fprintf(w, "Metric:     %s\n", st.Metric)
	fmt.Fprintf(w, "Dimensions: %d\n", st.Dimensions)
	fmt.Fprintf(w, "Index type: %s\n", st.IndexType)
	if st.Embedding != "" {
		fmt.Fprintf(w, "Embedding:  %s\n", st.Embedding)
	}
	fmt.Fprintf(w, "Disk usage: %s\n", FormatBytes(st.DiskUsageBytes))
	return nil
}

// WriteAnalysis writes sentiment and keywords to w.
func WriteAnalysis(w io.Writer, a *models.AnalyzeResponse, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, a)
	}
	fmt.Fprintf(w, "Sentiment: %s\n", a.Sentiment)
	fmt.Fprintf(w, "Keywords:  %s\n", strings.Join(a.Keywords, ", "))
	return nil
}

// WriteSummary writes a summary to w.
func WriteSummary(w io.Writer, summary string, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, models.SummarizeResponse{Summary: summary})
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}

// FormatBytes renders n using binary units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
