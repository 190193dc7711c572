package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/stockroom-backend/api/routes"
	"github.com/angelmondragon/stockroom-backend/internal/bulk"
	"github.com/angelmondragon/stockroom-backend/internal/transfers"
	"github.com/angelmondragon/stockroom-backend/pkg/config"
	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
	"github.com/angelmondragon/stockroom-backend/pkg/migrate"
	"github.com/angelmondragon/stockroom-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	importMetrics := metrics.NewImportMetrics(registry)

	transfersRepo := transfers.NewRepository(dbClient.DB())
	transfersSvc, err := transfers.NewService(transfersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create transfers service", err)
		os.Exit(1)
	}

	importer, err := bulk.NewImporter(transfersRepo, dbClient, logg, importMetrics, cfg.Import.MaxRows)
	if err != nil {
		logg.Error(context.Background(), "failed to create importer", err)
		os.Exit(1)
	}
	exporter, err := bulk.NewExporter(transfersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create exporter", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DBPinger:    dbClient,
			RedisPinger: redisClient,
			Idempotency: redisClient,
			Transfers:   transfersSvc,
			Importer:    importer,
			Exporter:    exporter,
			Registry:    registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
