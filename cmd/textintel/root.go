package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/textintel/internal/cli"
	"github.com/hyperjump/textintel/internal/config"
	"github.com/hyperjump/textintel/pkg/utils"
)

const defaultConfigPath = "config.yaml"

// options holds the global flags shared by all commands.
type options struct {
	configPath string
	debug      bool
	serverURL  string
	output     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "textintel",
		Short: "Semantic document store with text analysis",
		Long: `textintel stores short texts, indexes their embeddings on disk and answers
semantic similarity queries. It also classifies sentiment, extracts keywords and
summarizes text through a chat model.

Commands run against the local store by default; pass --server to talk to a
running "textintel serve" instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", envOr("TEXTINTEL_CONFIG", defaultConfigPath), "config file path")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.StringVar(&opts.serverURL, "server", os.Getenv("TEXTINTEL_SERVER"), "server URL (empty = use the local store)")
	pf.StringVarP(&opts.output, "output", "o", "text", "output format: text or json")

	cmd.AddCommand(
		newServeCmd(opts),
		newAddCmd(opts),
		newSearchCmd(opts),
		newRebuildCmd(opts),
		newStatusCmd(opts),
		newAnalyzeCmd(opts),
		newSummarizeCmd(opts),
		newWatchCmd(opts),
		newInitCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (o *options) format() (cli.OutputFormat, error) {
	return cli.ParseOutputFormat(o.output)
}

// loadConfig loads and validates the config. A missing file means defaults.
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// commandLogger is silent for one-shot commands unless debugging.
func commandLogger(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	return utils.NewLogger(true)
}
