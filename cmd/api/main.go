package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/uteshop/uteshop-backend/api/controllers"
	"github.com/uteshop/uteshop-backend/api/routes"
	"github.com/uteshop/uteshop-backend/internal/auth"
	"github.com/uteshop/uteshop-backend/internal/cancellations"
	"github.com/uteshop/uteshop-backend/internal/coupons"
	"github.com/uteshop/uteshop-backend/internal/orders"
	"github.com/uteshop/uteshop-backend/internal/payments"
	"github.com/uteshop/uteshop-backend/internal/products"
	"github.com/uteshop/uteshop-backend/pkg/config"
	"github.com/uteshop/uteshop-backend/pkg/db"
	"github.com/uteshop/uteshop-backend/pkg/logger"
	"github.com/uteshop/uteshop-backend/pkg/migrate"
	"github.com/uteshop/uteshop-backend/pkg/redis"
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

	authSvc, err := auth.NewService(auth.NewRepository(dbClient.DB()), cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	productsSvc, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}
	couponsSvc, err := coupons.NewService(coupons.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create coupons service", err)
		os.Exit(1)
	}
	paymentsSvc, err := payments.NewService(payments.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}
	ordersSvc, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, couponsSvc, paymentsSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	cancellationsSvc, err := cancellations.NewService(cancellations.NewRepository(dbClient.DB()), dbClient, ordersSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create cancellations service", err)
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
		Handler: routes.NewRouter(cfg, logg, controllers.HealthDeps(dbClient, redisClient), routes.Services{
			Auth:          authSvc,
			Products:      productsSvc,
			Orders:        ordersSvc,
			Coupons:       couponsSvc,
			Payments:      paymentsSvc,
			Cancellations: cancellationsSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
