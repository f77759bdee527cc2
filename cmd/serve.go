package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"videoapi/internal/server"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func init() {
	serveCmd.Flags().StringVarP(&flagListen, "listen", "l", "", "Listen address (default :3000)")
}

func serveRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The browser must be ready before the first request is accepted.
	c, err := openCache()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, c)
	if err != nil {
		return err
	}
	defer a.Close()
	logger.Info("browser ready", zap.String("site", a.site.BaseURL()))

	// A nil *cache.Cache must not become a non-nil interface.
	var sc server.Cache
	if a.cache != nil {
		sc = a.cache
	}
	srv := server.New(a.resolver, sc, server.Options{
		Listen:       cfg.Server.Listen,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		SiteURL:      a.site.BaseURL(),
		ProxyHosts:   cfg.Server.ProxyHosts,
	}, logger.Named("server"))

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-errc
}
