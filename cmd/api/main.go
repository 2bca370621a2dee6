package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/bidboard/bidboard-backend/api/controllers"
	"github.com/bidboard/bidboard-backend/api/routes"
	"github.com/bidboard/bidboard-backend/internal/bids"
	"github.com/bidboard/bidboard-backend/internal/costing"
	"github.com/bidboard/bidboard-backend/pkg/config"
	"github.com/bidboard/bidboard-backend/pkg/db"
	"github.com/bidboard/bidboard-backend/pkg/logger"
	"github.com/bidboard/bidboard-backend/pkg/migrate"
	"github.com/bidboard/bidboard-backend/pkg/redis"
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

	rates, err := costing.RatesFromConfig(cfg.Costing)
	if err != nil {
		logg.Error(context.Background(), "failed to parse costing rates", err)
		os.Exit(1)
	}

	bidService, err := bids.NewService(bids.ServiceParams{
		Repo:   bids.NewRepository(dbClient.DB()),
		Tx:     dbClient,
		Rates:  rates,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bid service", err)
		os.Exit(1)
	}

	healthDeps := map[string]controllers.Pinger{
		"db":    dbClient,
		"redis": redisClient,
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, healthDeps, redisClient, bidService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
