package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orderhub/orderhub-backend/api/controllers"
	"github.com/orderhub/orderhub-backend/api/routes"
	"github.com/orderhub/orderhub-backend/internal/cart"
	"github.com/orderhub/orderhub-backend/internal/checkout"
	"github.com/orderhub/orderhub-backend/internal/feasibility"
	"github.com/orderhub/orderhub-backend/internal/schedule"
	"github.com/orderhub/orderhub-backend/internal/suppliers"
	"github.com/orderhub/orderhub-backend/internal/templating"
	"github.com/orderhub/orderhub-backend/pkg/config"
	"github.com/orderhub/orderhub-backend/pkg/db"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/orderhub/orderhub-backend/pkg/metrics"
	"github.com/orderhub/orderhub-backend/pkg/migrate"
	"github.com/orderhub/orderhub-backend/pkg/outbox"
	"github.com/orderhub/orderhub-backend/pkg/redis"
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

	cartService, err := cart.NewService(cart.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	supplierService, err := suppliers.NewService(suppliers.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier service", err)
		os.Exit(1)
	}

	renderer, err := templating.NewRenderer(cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create renderer", err)
		os.Exit(1)
	}

	composer, err := checkout.NewComposer(renderer, cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create composer", err)
		os.Exit(1)
	}

	engine, err := feasibility.NewEngine(schedule.NewResolver(cfg.Checkout))
	if err != nil {
		logg.Error(context.Background(), "failed to create feasibility engine", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Cart:      cartService,
		Suppliers: supplierService,
		Engine:    engine,
		States:    checkout.NewStateRepository(dbClient.DB()),
		Composer:  composer,
		Router:    checkout.NewRouter(),
		Outbox:    outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Tx:        dbClient,
		Metrics:   metrics.NewDispatchMetrics(prometheus.DefaultRegisterer),
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
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
		Handler: routes.New(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			Cart:        cartService,
			Checkout:    checkoutService,
			Idempotency: redisClient,
			Readiness: controllers.ReadinessDeps{
				DB:    dbClient,
				Redis: redisClient,
			},
			Metrics: promhttp.Handler(),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
