package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/minhtrandev/shopora-backend/api/routes"
	"github.com/minhtrandev/shopora-backend/internal/address"
	"github.com/minhtrandev/shopora-backend/internal/analytics"
	"github.com/minhtrandev/shopora-backend/internal/cart"
	"github.com/minhtrandev/shopora-backend/internal/catalog"
	"github.com/minhtrandev/shopora-backend/internal/inventory"
	"github.com/minhtrandev/shopora-backend/internal/orders"
	"github.com/minhtrandev/shopora-backend/internal/vouchers"
	"github.com/minhtrandev/shopora-backend/pkg/config"
	"github.com/minhtrandev/shopora-backend/pkg/db"
	"github.com/minhtrandev/shopora-backend/pkg/instance"
	"github.com/minhtrandev/shopora-backend/pkg/logger"
	"github.com/minhtrandev/shopora-backend/pkg/migrate"
	"github.com/minhtrandev/shopora-backend/pkg/outbox"
	"github.com/minhtrandev/shopora-backend/pkg/redis"
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

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	recorder := analytics.NewRecorder(dbClient, outboxSvc, logg)

	cartRepo := cart.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	addressSvc := address.NewService(dbClient.DB())

	cartSvc, err := cart.NewService(dbClient, cartRepo, catalogRepo, recorder, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	orderSvc, err := orders.NewService(
		dbClient,
		orders.NewRepository(dbClient.DB()),
		cartRepo,
		catalogRepo,
		inventory.NewStore(dbClient.DB()),
		vouchers.NewRepository(dbClient.DB()),
		addressSvc,
		outboxSvc,
		recorder,
		logg,
		cfg.Orders,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Cart:     cartSvc,
			Checkout: orderSvc,
			Orders:   orderSvc,
			Admin:    orderSvc,
			Address:  addressSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
