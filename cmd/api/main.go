package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avaloza-dev/marketstall-backend/api/routes"
	"github.com/avaloza-dev/marketstall-backend/internal/events"
	"github.com/avaloza-dev/marketstall-backend/internal/inventory"
	"github.com/avaloza-dev/marketstall-backend/internal/stores"
	"github.com/avaloza-dev/marketstall-backend/internal/trading"
	"github.com/avaloza-dev/marketstall-backend/pkg/config"
	"github.com/avaloza-dev/marketstall-backend/pkg/db"
	"github.com/avaloza-dev/marketstall-backend/pkg/escrow"
	"github.com/avaloza-dev/marketstall-backend/pkg/logger"
	"github.com/avaloza-dev/marketstall-backend/pkg/metrics"
	"github.com/avaloza-dev/marketstall-backend/pkg/migrate"
	"github.com/avaloza-dev/marketstall-backend/pkg/outbox"
	"github.com/avaloza-dev/marketstall-backend/pkg/redis"
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
	registry.MustRegister(collectors.NewGoCollector())
	meters := metrics.NewLedgerMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	eventsService, err := events.NewService(events.NewRepository(dbClient.DB()), outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create events service", err)
		os.Exit(1)
	}

	storesService, err := stores.NewService(stores.NewRepository(dbClient.DB()), dbClient, eventsService, cfg.Capability)
	if err != nil {
		logg.Error(context.Background(), "failed to create stores service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.NewRepository(dbClient.DB()), dbClient, eventsService, storesService)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	tradingService, err := trading.NewService(
		trading.NewRepository(dbClient.DB()),
		dbClient,
		storesService,
		inventoryService,
		eventsService,
		outboxService,
		escrow.UnboundedMinter{},
		meters,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create trading service", err)
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
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			IdempotencyStore: redisClient,
			MetricsHandler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			Stores:           storesService,
			Inventory:        inventoryService,
			Trading:          tradingService,
			Events:           eventsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
