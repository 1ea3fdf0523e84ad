package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jaldistore/cart-engine/api/controllers"
	"github.com/jaldistore/cart-engine/api/routes"
	"github.com/jaldistore/cart-engine/internal/cart"
	"github.com/jaldistore/cart-engine/internal/catalog"
	"github.com/jaldistore/cart-engine/internal/gateway"
	"github.com/jaldistore/cart-engine/internal/snapshot"
	"github.com/jaldistore/cart-engine/pkg/config"
	"github.com/jaldistore/cart-engine/pkg/db"
	"github.com/jaldistore/cart-engine/pkg/logger"
	"github.com/jaldistore/cart-engine/pkg/metrics"
	"github.com/jaldistore/cart-engine/pkg/migrate"
	"github.com/jaldistore/cart-engine/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cart-engine"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cart-engine",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()
	pingers := map[string]controllers.Pinger{}

	var dbClient *db.Client
	var redisClient *redis.Client
	if cfg.Snapshot.UseRedis() {
		redisClient, err = redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
		pingers["redis"] = redisClient
	} else {
		dbClient, err = db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(ctx, "error closing database", err)
			}
		}()
		pingers["database"] = dbClient

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}
	}

	snapshots, err := snapshot.New(cfg.Snapshot, dbClient, redisClient)
	if err != nil {
		logg.Error(ctx, "failed to select snapshot backend", err)
		os.Exit(1)
	}

	gatewayClient, err := gateway.NewClient(cfg.Gateway)
	if err != nil {
		logg.Error(ctx, "failed to build cart gateway client", err)
		os.Exit(1)
	}
	catalogClient, err := catalog.NewClient(cfg.Catalog)
	if err != nil {
		logg.Error(ctx, "failed to build catalog client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(registry)

	cartService, err := cart.NewService(cart.ServiceOptions{
		Logger:    logg,
		Gateway:   gatewayClient,
		Offers:    catalogClient,
		Limits:    catalogClient,
		Snapshots: snapshots,
		Metrics:   cartMetrics,
		Sync:      cfg.Sync,
	})
	if err != nil {
		logg.Error(ctx, "failed to build cart service", err)
		os.Exit(1)
	}
	defer cartService.Close()

	// Paint from the snapshot first; the authoritative refresh happens once a
	// credentialed request arrives.
	if err := cartService.LoadFromStorage(ctx); err != nil {
		logg.Warn(ctx, "could not load cart snapshot: "+err.Error())
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":              cfg.App.Env,
		"addr":             addr,
		"snapshot_backend": cfg.Snapshot.Backend,
	})
	logg.Info(ctx, "starting cart engine")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, pingers, cartService, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "cart engine stopped unexpectedly", err)
		os.Exit(1)
	}
}
