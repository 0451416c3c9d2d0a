package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"informer/internal/config"
	"informer/internal/handler"
	"informer/internal/informer"
	"informer/internal/mine"
	"informer/internal/watcher"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			m, release, err := a.openMine()
			if err != nil {
				return err
			}
			defer release()

			// A snapshot file is reloaded when it changes on disk
			if fm, ok := m.(*mine.Memory); ok && a.cfg.Mine.Backend == config.BackendFile {
				a.watchSnapshot(cmd.Context(), fm)
			}

			mux := http.NewServeMux()
			handler.NewAPIHandler(informer.New(m, a.logger), a.logger).Register(mux)

			server := &http.Server{
				Addr: addr,
				Handler: handler.Chain(mux,
					handler.Recover(a.logger),
					handler.Logger(a.logger),
				),
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("server listening", zap.String("addr", addr), zap.String("mine", a.cfg.Mine.Backend))
				if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			a.logger.Info("shutting down server")

			// Graceful shutdown with timeout
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				return err
			}
			a.logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config)")
	return cmd
}

func (a *app) watchSnapshot(ctx context.Context, m *mine.Memory) {
	path := a.cfg.Mine.File
	w := watcher.New(path, func() {
		if err := m.Reload(path); err != nil {
			a.logger.Warn("failed to reload mine snapshot", zap.String("path", path), zap.Error(err))
			return
		}
		a.logger.Info("reloaded mine snapshot", zap.String("path", path), zap.Int("minions", len(m.Minions())))
	}, a.logger)

	go func() {
		if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("mine snapshot watcher stopped", zap.Error(err))
		}
	}()
}
