package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/homeguess/internal/api"
	"github.com/mcoot/homeguess/internal/catalog"
	"github.com/mcoot/homeguess/internal/config"
	"github.com/mcoot/homeguess/internal/factory"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// --- Catalog ---
	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	logger.Info("loaded catalog",
		slog.String("path", cfg.CatalogPath),
		slog.Int("records", cat.Len()),
		slog.Int("zips", len(cat.Zips())),
	)

	// --- Application ---
	appCfg := factory.Config{
		Catalog:        cat,
		Logger:         logger,
		StorageType:    cfg.StorageType,
		Fanout:         cfg.Fanout,
		SessionConfig:  cfg.Session(),
		RealtimeConfig: cfg.Realtime(),
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := cfg.Redis()
		appCfg.RedisConfig = &redisCfg
	}
	if cfg.Fanout == factory.FanoutNATS {
		natsCfg := cfg.NATS()
		appCfg.NATSConfig = &natsCfg
	}

	app, err := factory.New(appCfg)
	if err != nil {
		return fmt.Errorf("creating application: %w", err)
	}
	defer app.Close()
	logger.Info("application ready",
		slog.String("storage", cfg.StorageType),
		slog.String("fanout", cfg.Fanout),
	)

	// --- HTTP Server ---
	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.HTTPAddr
	server := api.NewServer(app.Router(cfg.CORSOrigins), serverConfig, logger)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start()
	})

	g.Go(func() error {
		return app.Broadcaster.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
