package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-authgate/tokengate/internal/config"
	"github.com/go-authgate/tokengate/internal/logging"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the token server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	tg, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           tg.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		_ = tg.store.Close()
		return fmt.Errorf("failed to listen on %s: %w", cfg.ServerAddr, err)
	}

	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()

	m := graceful.NewManager(
		graceful.WithContext(ctx),
		graceful.WithShutdownTimeout(shutdownTimeout),
		graceful.WithLogger(graceful.NewSlogLogger(graceful.WithSlog(logger))),
	)

	logger.Info("server listening",
		"addr", ln.Addr().String(),
		"providers", tg.exchangers.Names(),
		"auth_modes", cfg.AuthModes,
	)
	m.AddRunningJob(serveJob(srv, ln, stop, logger))

	m.AddShutdownJob(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down server")
		return srv.Shutdown(ctx)
	})

	m.AddShutdownJob(func() error {
		return tg.store.Close()
	})

	<-m.Done()
	return errors.Join(m.Errors()...)
}

// serveJob serves srv on ln until shutdown. If serving fails, stop is called
// so the manager shuts down and the error is reported on exit.
func serveJob(
	srv *http.Server,
	ln net.Listener,
	stop context.CancelFunc,
	logger *slog.Logger,
) graceful.RunningJob {
	return func(context.Context) error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}
