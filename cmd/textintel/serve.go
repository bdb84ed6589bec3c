package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/textintel/internal/server"
	"github.com/hyperjump/textintel/pkg/utils"
)

func newServeCmd(opts *options) *cobra.Command {
	var host string
	var port int
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			logger, err := utils.NewLogger(cfg.Debug)
			if err != nil {
				return err
			}
			defer logger.Sync()

			logger.Info("config loaded",
				zap.String("config_path", opts.configPath),
				zap.Bool("debug", cfg.Debug),
				zap.String("index_path", cfg.Storage.IndexPath),
				zap.String("documents_path", cfg.Storage.DocumentsPath))

			components, err := initializeComponents(cfg, logger)
			if err != nil {
				return err
			}
			defer components.Close()

			if watch && len(cfg.Watch.Directories) > 0 {
				watchCtx, cancelWatch := context.WithCancel(context.Background())
				defer cancelWatch()
				w, err := startWatching(watchCtx, cfg.Watch, cfg.Watch.Directories, components.Engine, logger, false)
				if err != nil {
					return fmt.Errorf("start watcher: %w", err)
				}
				defer w.Stop()
			} else if watch {
				logger.Warn("--watch given but watch.directories is empty")
			}

			srv := server.NewServer(components.Engine, components.Analyzer, &cfg.Server, logger,
				server.WithEmbeddingProvider(components.Provider))

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-sigChan:
			}

			logger.Info("Shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(ctx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	cmd.Flags().BoolVar(&watch, "watch", false, "add files that appear in watch.directories")
	return cmd
}
