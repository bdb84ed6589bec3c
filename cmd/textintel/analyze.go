package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperjump/textintel/internal/cli"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Classify sentiment and extract keywords",
		Long: `Classify sentiment (positive, negative or neutral) and extract keywords.
Sentiment needs a chat model: set OPENAI_API_KEY or openai.api_key.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args, file)
			if err != nil {
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

			resp, err := b.Analyze(cmd.Context(), text)
			if err != nil {
				return err
			}
			return cli.WriteAnalysis(cmd.OutOrStdout(), resp, format)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file")
	return cmd
}

func newSummarizeCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "summarize [text]",
		Short: "Summarize text with the chat model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args, file)
			if err != nil {
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

			summary, err := b.Summarize(cmd.Context(), text)
			if err != nil {
				return err
			}
			return cli.WriteSummary(cmd.OutOrStdout(), summary, format)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file")
	return cmd
}
