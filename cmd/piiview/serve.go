package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gonkalabs/piiview/internal/api"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser UI and JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			sig, err := a.signer()
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			api.New(a.controller(), sig).Register(mux)

			srv := &http.Server{
				Addr:         addr,
				Handler:      mux,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: a.cfg.Timeout + 30*time.Second,
				IdleTimeout:  120 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Graceful shutdown
			go func() {
				<-ctx.Done()
				slog.Info("shutting down")
				shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutCtx); err != nil {
					slog.Error("shutdown error", "err", err)
				}
			}()

			slog.Info("starting piiview server",
				"addr", addr,
				"detectors", a.cfg.DetectorURLs,
				"threshold", a.cfg.Threshold,
				"signedExports", sig != nil,
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from PORT)")
	return cmd
}
