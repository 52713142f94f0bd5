package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gigboard/gigboard-backend/api/controllers"
	"github.com/gigboard/gigboard-backend/api/routes"
	"github.com/gigboard/gigboard-backend/internal/bankpayments"
	"github.com/gigboard/gigboard-backend/internal/gigs"
	"github.com/gigboard/gigboard-backend/internal/notifications"
	"github.com/gigboard/gigboard-backend/internal/orders"
	"github.com/gigboard/gigboard-backend/internal/paymentmethods"
	"github.com/gigboard/gigboard-backend/internal/payments"
	"github.com/gigboard/gigboard-backend/internal/stripecustomers"
	"github.com/gigboard/gigboard-backend/internal/users"
	"github.com/gigboard/gigboard-backend/pkg/config"
	"github.com/gigboard/gigboard-backend/pkg/db"
	"github.com/gigboard/gigboard-backend/pkg/logger"
	"github.com/gigboard/gigboard-backend/pkg/metrics"
	"github.com/gigboard/gigboard-backend/pkg/migrate"
	"github.com/gigboard/gigboard-backend/pkg/pubsub"
	"github.com/gigboard/gigboard-backend/pkg/redis"
	"github.com/gigboard/gigboard-backend/pkg/stripe"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownGrace = 15 * time.Second

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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	var emitter notifications.Emitter = notifications.NoopEmitter{}
	if strings.TrimSpace(cfg.GCP.ProjectID) != "" {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		emitter = notifications.NewPubSubEmitter(pubsubClient.NotificationPublisher(), logg)
		readiness["pubsub"] = pubsubClient
	} else {
		logg.Warn(context.Background(), "pubsub not configured, order events will be discarded")
	}

	usersRepo := users.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	customers, err := stripecustomers.NewService(usersRepo, stripeClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe customer service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, gigs.NewRepository(dbClient.DB()), dbClient, emitter)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	methodsService, err := paymentmethods.NewService(paymentmethods.ServiceParams{
		Repo:      paymentmethods.NewRepository(dbClient.DB()),
		Customers: customers,
		Gateway:   stripeClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment methods service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo:      payments.NewRepository(dbClient.DB()),
		Customers: customers,
		Gateway:   stripeClient,
		Tx:        dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	bankService, err := bankpayments.NewService(bankpayments.ServiceParams{
		Repo:    bankpayments.NewRepository(dbClient.DB()),
		Orders:  bankpayments.NewOrderStore(ordersRepo),
		Emitter: emitter,
		Tx:      dbClient,
		Policy:  cfg.BankTransfer,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bank payments service", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg)

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
		Handler: routes.NewRouter(routes.RouterParams{
			Config:       cfg,
			Logger:       logg,
			Metrics:      httpMetrics,
			MetricsReg:   reg,
			Redis:        redisClient,
			Readiness:    readiness,
			Orders:       ordersService,
			Methods:      methodsService,
			Payments:     paymentsService,
			BankPayments: bankService,
		}),
	}

	stop, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop.Done():
		logg.Info(ctx, "shutdown signal received, draining connections")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}
