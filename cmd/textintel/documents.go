package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperjump/textintel/internal/cli"
	"github.com/hyperjump/textintel/internal/extract"
	"github.com/hyperjump/textintel/internal/indexer"
	"github.com/hyperjump/textintel/internal/models"
)

func newAddCmd(opts *options) *cobra.Command {
	var file string
	var split bool
	var chunkSize, chunkOverlap int
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a document to the store",
		Long: `Add a document from an argument, a file or stdin.

Files are converted to text by extension: .pdf, .docx, .xlsx and plain text.
With --split each blank-line separated paragraph becomes its own document, and
--chunk-size cuts long text into overlapping word windows.

Examples:
  textintel add "The cat sat on the mat"
  textintel add --file notes.pdf --split
  cat notes.txt | textintel add`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" && len(args) > 0 {
				return fmt.Errorf("pass either text or --file, not both")
			}
			if chunkSize > 0 && chunkOverlap >= chunkSize {
				return fmt.Errorf("--chunk-overlap must be smaller than --chunk-size")
			}
			var text string
			if file == "" {
				t, err := readInput(cmd.InOrStdin(), args, "")
				if err != nil {
					return err
				}
				text = t
			}
			format, err := opts.format()
			if err != nil {
				return err
			}

			b, err := opts.openBackend()
			if err != nil {
				return err
			}
			defer b.Close()

			idx := indexer.NewIndexer(b, nil, indexer.Config{
				ChunkSize:       chunkSize,
				ChunkOverlap:    chunkOverlap,
				SplitParagraphs: split,
			})
			var n int
			switch {
			case file != "":
				n, err = idx.IndexFile(cmd.Context(), file)
			case split || chunkSize > 0:
				n, err = idx.IndexText(cmd.Context(), text)
			default:
				// Stored verbatim.
				if err = b.AddDocument(cmd.Context(), text); err == nil {
					n = 1
				}
			}
			if err != nil {
				if n > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "Added %d document(s) before the failure\n", n)
				}
				return err
			}
			if format == cli.OutputJSON {
				return cli.WriteJSON(cmd.OutOrStdout(), map[string]int{"added": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d document(s)\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the document from a file")
	cmd.Flags().BoolVar(&split, "split", false, "add each paragraph as a separate document")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "maximum words per document (0 = no limit)")
	cmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", 0, "words shared by consecutive chunks")
	return cmd
}

func newSearchCmd(opts *options) *cobra.Command {
	var topK int
	var minScore float64
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find stored documents similar to a query",
		Long: `Find stored documents similar to a query.

The query is all arguments joined by spaces. Scores are cosine similarity; matches
below --min-score are dropped (default: search.default_min_score).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := buildSearchQuery(args)
			req := models.SemanticSearchRequest{Query: query, TopK: &topK}
			if cmd.Flags().Changed("min-score") {
				req.MinScore = &minScore
			}
			if err := req.Validate(); err != nil {
				return err
			}
			format, err := opts.format()
			if err != nil {
				return err
			}

			b, err := opts.openBackend()
			if err != nil {
				return err
			}
			defer b.Close()

			matches, err := b.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			return cli.WriteMatches(cmd.OutOrStdout(), query, matches, format)
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", models.DefaultRequestTopK, "maximum number of matches")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "minimum cosine similarity in [-1, 1]")
	return cmd
}

func newRebuildCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the vector index from the stored documents",
		Long: `Re-embed every stored document into a fresh index of the configured metric
and dimensions. Use after changing vector.metric, embedding.dimensions or the
embedding provider, or when status reports the store out of sync.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.openBackend()
			if err != nil {
				return err
			}
			defer b.Close()

			n, err := b.Rebuild(cmd.Context())
			if err != nil {
				return err
			}
			format, err := opts.format()
			if err != nil {
				return err
			}
			if format == cli.OutputJSON {
				return cli.WriteJSON(cmd.OutOrStdout(), models.RebuildResponse{Status: "index rebuilt", Documents: n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt index from %d document(s)\n", n)
			return nil
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show document and vector counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			b, err := opts.openBackend()
			if err != nil {
				return err
			}
			defer b.Close()

			st, err := b.Status(cmd.Context())
			if err != nil {
				return err
			}
			return cli.WriteStatus(cmd.OutOrStdout(), st, format)
		},
	}
}

// buildSearchQuery joins args into a single query string.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// readInput returns text from the file, the first argument or stdin, in that order.
func readInput(stdin io.Reader, args []string, file string) (string, error) {
	var text string
	switch {
	case file != "":
		if len(args) > 0 {
			return "", fmt.Errorf("pass either text or --file, not both")
		}
		t, err := extract.NewExtractor().Extract(file)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", file, err)
		}
		text = t
	case len(args) > 0:
		text = args[0]
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text provided")
	}
	return text, nil
}
