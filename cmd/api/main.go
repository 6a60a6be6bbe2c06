package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/lojasocial-app/lojasocial-backend/api/routes"
	apoiadosvc "github.com/lojasocial-app/lojasocial-backend/internal/apoiados"
	basketsvc "github.com/lojasocial-app/lojasocial-backend/internal/baskets"
	productsvc "github.com/lojasocial-app/lojasocial-backend/internal/products"
	"github.com/lojasocial-app/lojasocial-backend/pkg/config"
	"github.com/lojasocial-app/lojasocial-backend/pkg/db"
	"github.com/lojasocial-app/lojasocial-backend/pkg/logger"
	"github.com/lojasocial-app/lojasocial-backend/pkg/migrate"
	"github.com/lojasocial-app/lojasocial-backend/pkg/outbox"
	"github.com/lojasocial-app/lojasocial-backend/pkg/redis"
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

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	apoiadoRepo := apoiadosvc.NewRepository(dbClient.DB())
	apoiadoService, err := apoiadosvc.NewService(apoiadoRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create apoiado service", err)
		os.Exit(1)
	}

	productService, err := productsvc.NewService(productsvc.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	basketService, err := basketsvc.NewService(
		basketsvc.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		basketsvc.NewInventoryLedger(),
		apoiadoRepo,
		cfg.Baskets.MaxScheduleHorizon,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create basket service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, apoiadoService, productService, basketService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
