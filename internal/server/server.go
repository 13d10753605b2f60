// Package server runs gin engines with graceful shutdown and provides the
// middleware shared by both binaries.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"smart-tasks/internal/config"
)

// Run serves handler until ctx is cancelled, then shuts the server down
// within cfg.ShutdownTimeout.
func Run(ctx context.Context, logger zerolog.Logger, cfg config.HTTPConfig, handler http.Handler) error {
	srv := &http.Server{
		Addr:    net.JoinHostPort(cfg.Host, cfg.Port),
		Handler: handler,
	}

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Error().
			Err(err).
			Str("addr", srv.Addr).
			Msg("failed to listen")
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", listener.Addr().String()).
			Msg("setting up http server")
		serveErr <- srv.Serve(listener)
	}()

	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error().
			Err(err).
			Msg("failed to serve http")
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		return err
	}
	logger.Info().Msg("shut down http server")
	return nil
}
