package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/textintel/internal/config"
	"github.com/hyperjump/textintel/internal/indexer"
	"github.com/hyperjump/textintel/internal/watcher"
	"github.com/hyperjump/textintel/pkg/utils"
)

// startWatching feeds files that appear under dirs to store through an indexer.
func startWatching(ctx context.Context, wc config.WatchConfig, dirs []string, store indexer.DocumentAdder, logger *zap.Logger, syncExisting bool) (*watcher.Watcher, error) {
	idx := indexer.NewIndexer(store, nil, indexer.Config{
		ChunkSize:       wc.ChunkSize,
		ChunkOverlap:    wc.ChunkOverlap,
		SplitParagraphs: wc.SplitParagraphs,
	}, indexer.WithLogger(logger))

	w := watcher.New(watcher.Config{
		Roots:      dirs,
		Extensions: wc.Extensions,
		Recursive:  wc.RecursiveOrDefault(),
		Debounce:   wc.Debounce,
	}, func(path string) {
		if _, err := idx.IndexFile(ctx, path); err != nil {
			logger.Warn("watch: index file failed", zap.String("path", path), zap.Error(err))
		}
	}, watcher.WithLogger(logger))

	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	if syncExisting {
		go w.SyncExisting()
	}
	return w, nil
}

func newWatchCmd(opts *options) *cobra.Command {
	var syncExisting bool
	cmd := &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Add files that appear in directories to the store",
		Long: `Watch directories and add every created or modified file to the store.

Directories come from the arguments, or watch.directories in the config. The store
is append-only: a modified file is added again, while a file whose text did not
change since it was added in this session is skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(opts.configPath)
			if err != nil {
				return err
			}
			if opts.debug {
				cfg.Debug = true
			}
			dirs := args
			if len(dirs) == 0 {
				dirs = cfg.Watch.Directories
			}
			if len(dirs) == 0 {
				return fmt.Errorf("no directories to watch (pass them as arguments or set watch.directories)")
			}

			logger, err := utils.NewLogger(cfg.Debug)
			if err != nil {
				return err
			}
			defer logger.Sync()

			b, err := opts.openBackend()
			if err != nil {
				return err
			}
			defer b.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := startWatching(ctx, cfg.Watch, dirs, b, logger, syncExisting)
			if err != nil {
				return err
			}
			defer w.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %d director(ies); press Ctrl+C to stop\n", len(dirs))
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().BoolVar(&syncExisting, "sync-existing", false, "also add the files already in the directories")
	return cmd
}
