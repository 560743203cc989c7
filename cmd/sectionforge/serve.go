package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/entrhq/sectionforge/pkg/config"
	"github.com/entrhq/sectionforge/pkg/server"
	"github.com/gin-gonic/gin"
)

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var (
		shared configFlags
		host   string
		port   int
		secret string
	)
	shared.register(fs)
	fs.StringVar(&host, "host", "", "listen host")
	fs.IntVar(&port, "port", 0, "listen port (or set PORT)")
	fs.StringVar(&secret, "secret", "", "shared API secret (or set API_SECRET)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := shared.load(config.Overrides{Host: host, Port: port, Secret: secret})
	if err != nil {
		return err
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := newApp(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Providers.Default.APIKey == "" {
		a.logger.Warnf("GEMINI_API_KEY not set: default provider returns placeholder components")
	}

	srv := server.New(cfg.Server, a.scraper, a.generator,
		server.WithLogger(a.logger.Named("server")),
		server.WithMetrics(server.NewMetrics()),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Infof("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
