package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/propdesk/fundedpay/api"
	"github.com/propdesk/fundedpay/api/routes"
	"github.com/propdesk/fundedpay/internal/gateway"
	"github.com/propdesk/fundedpay/internal/orders"
	"github.com/propdesk/fundedpay/internal/payments"
	gatewaywebhook "github.com/propdesk/fundedpay/internal/webhooks/gateway"
	"github.com/propdesk/fundedpay/pkg/config"
	"github.com/propdesk/fundedpay/pkg/db"
	"github.com/propdesk/fundedpay/pkg/instance"
	"github.com/propdesk/fundedpay/pkg/logger"
	"github.com/propdesk/fundedpay/pkg/metrics"
	"github.com/propdesk/fundedpay/pkg/migrate"
	"github.com/propdesk/fundedpay/pkg/pubsub"
	"github.com/propdesk/fundedpay/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)

	gatewayClient, err := gateway.NewHTTPClient(cfg.Gateway, nil, paymentMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(ordersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	loader, err := payments.NewLoader(ordersRepo, gatewayClient, cfg.Session.Window)
	if err != nil {
		logg.Error(context.Background(), "failed to create session loader", err)
		os.Exit(1)
	}
	registry, err := payments.NewRegistry(payments.RegistryParams{
		Loader:  loader,
		Gateway: gatewayClient,
		Session: cfg.Session,
		Logger:  logg,
		Metrics: paymentMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session registry", err)
		os.Exit(1)
	}

	var publisher gatewaywebhook.EventPublisher
	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(context.Background(), cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := psClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		jsonPublisher, err := pubsub.NewJSONPublisher(psClient, cfg.PubSub.PaymentsTopic)
		if err != nil {
			logg.Error(context.Background(), "failed to create payments publisher", err)
			os.Exit(1)
		}
		defer jsonPublisher.Stop()
		publisher = jsonPublisher
	}

	webhookService, err := gatewaywebhook.NewService(gatewaywebhook.ServiceParams{
		Orders:    ordersService,
		Publisher: publisher,
		Logger:    logg,
		Metrics:   paymentMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway webhook service", err)
		os.Exit(1)
	}
	webhookGuard, err := gatewaywebhook.NewIdempotencyGuard(redisClient, cfg.Gateway.WebhookTTL, gatewaywebhook.Scope)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	go func() {
		if err := registry.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "session sweeper stopped unexpectedly", err)
		}
	}()

	server := api.NewServer(addr, routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		registry,
		webhookService,
		webhookGuard,
		promhttp.Handler(),
	))

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "api server shutdown failed", err)
	}
	if err := registry.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "payment sessions did not stop cleanly", err)
	}
	logg.Info(shutdownCtx, "api server stopped")

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
