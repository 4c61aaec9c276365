package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/outbox"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/shipping"
	"github.com/Skotchmaster/storefront/pkg/authclient"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/kafka"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg, "shop")
	shopMetrics := metrics.NewShop(reg)

	Repo := repo.New(gdb)

	gateway := payment.NewStripeGateway(payment.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		Timeout:       cfg.PaymentTimeout,
		MaxRetries:    2,
	})
	quoter := shipping.NewClient(cfg.MelhorEnvioURL, cfg.MelhorEnvioToken, cfg.ShippingTimeout)

	deps := &httpserver.Deps{
		CatalogHandler:  &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: Repo}},
		CategoryHandler: &httpserver.CategoryHTTP{Svc: &service.CategoryService{Repo: Repo}},
		CartHandler:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: Repo}},
		CouponHandler:   &httpserver.CouponHTTP{Svc: &service.CouponService{Repo: Repo}},
		OrderHandler: &httpserver.OrderHTTP{
			Svc:      &service.OrderService{Repo: Repo},
			Checkout: &service.CheckoutService{Repo: Repo, Metrics: shopMetrics},
		},
		PaymentHandler: &httpserver.PaymentHTTP{Svc: &service.PaymentService{
			Repo:      Repo,
			Gateway:   gateway,
			ClientURL: cfg.ClientURL,
			Currency:  cfg.Currency,
			Timeout:   cfg.PaymentTimeout,
			Metrics:   shopMetrics,
		}},
		ShippingHandler: &httpserver.ShippingHTTP{Svc: &service.ShippingService{Repo: Repo, Quoter: quoter, OriginCEP: cfg.OriginCEP}},
		ReviewHandler:   &httpserver.ReviewHTTP{Svc: &service.ReviewService{Repo: Repo}},
		JWTSecret:       cfg.JWTSecret,
		AuthClient:      authclient.NewClient(cfg.AuthURL),
		Ready:           Repo.Ping,
		Metrics:         metrics.Handler(reg),
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.Secure())
	e.Use(serverMetrics.Middleware())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowCredentials: true,
	}))
	e.Use(csrf.Middleware(csrf.Config{
		Secure:    strings.HasPrefix(cfg.ClientURL, "https://"),
		SkipPaths: []string{"/api/v1/payments/webhook"},
	}))

	httpserver.Register(e, deps)

	runCtx, stopRelay := context.WithCancel(context.Background())
	producer := kafka.NewProducer(cfg.KafkaBrokers, service.TopicOrderEvents)
	relayDone := make(chan struct{})
	if producer.Enabled() {
		relay := &outbox.Relay{
			Store:     Repo,
			Publisher: producer,
			Topic:     service.TopicOrderEvents,
			Batch:     cfg.OutboxBatch,
			Interval:  cfg.OutboxInterval,
			Metrics:   shopMetrics,
			Log:       logger,
		}
		go func() {
			defer close(relayDone)
			relay.Run(runCtx)
		}()
	} else {
		logger.Warn("outbox_relay_disabled", "reason", "KAFKA_BROKERS empty")
		close(relayDone)
	}

	go func() {
		logger.Info("server_starting", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("server_shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo_shutdown_error", "error", err)
	}

	stopRelay()
	<-relayDone
	if err := producer.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("server_stopped")
}
