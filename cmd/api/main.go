package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/partsdepot/backoffice/internal/config"
	"github.com/partsdepot/backoffice/internal/database"
	"github.com/partsdepot/backoffice/internal/kafka"
	"github.com/partsdepot/backoffice/internal/notify"
	"github.com/partsdepot/backoffice/internal/orders/adapters"
	httpadapter "github.com/partsdepot/backoffice/internal/orders/adapters/http"
	orderspostgres "github.com/partsdepot/backoffice/internal/orders/adapters/postgres"
	ordersapp "github.com/partsdepot/backoffice/internal/orders/app"
	ordersmetrics "github.com/partsdepot/backoffice/internal/orders/metrics"
	"github.com/partsdepot/backoffice/internal/orders/ports"
	"github.com/partsdepot/backoffice/internal/payments"
	"github.com/partsdepot/backoffice/internal/payments/mercadopago"
	stockpostgres "github.com/partsdepot/backoffice/internal/stock/postgres"
	"github.com/partsdepot/backoffice/internal/telemetry"
	"github.com/partsdepot/backoffice/internal/webhooks"
	webhookspostgres "github.com/partsdepot/backoffice/internal/webhooks/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(parseLogLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := initTelemetry(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations completed successfully")
	}

	meter := otel.Meter(cfg.Service.Name)

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create database metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create order metrics", "error", err)
		os.Exit(1)
	}
	kafkaMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create kafka metrics", "error", err)
		os.Exit(1)
	}
	webhookMetrics, err := webhooks.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create webhook metrics", "error", err)
		os.Exit(1)
	}

	repo := adapters.NewObservableRepository(orderspostgres.NewRepository(pool), dbMetrics)
	coupons := orderspostgres.NewCouponRepository(pool)
	stock := stockpostgres.NewLedger(pool)

	var gateway ports.PaymentGateway
	if cfg.Gateway.AccessToken != "" {
		gateway = mercadopago.NewClient(mercadopago.Config{
			BaseURL:         cfg.Gateway.BaseURL,
			AccessToken:     cfg.Gateway.AccessToken,
			BackURL:         cfg.Gateway.BackURL,
			NotificationURL: cfg.Gateway.NotificationURL,
			Timeout:         cfg.Gateway.Timeout,
		})
	} else {
		logger.Warn("no gateway access token configured, using noop gateway")
		gateway = payments.NewNoopGateway()
	}

	var notifier ports.Notifier
	if cfg.SMTP.Host != "" {
		notifier = notify.NewSMTPNotifier(notify.Config{
			Addr:     cfg.SMTP.Host + ":" + cfg.SMTP.Port,
			Host:     cfg.SMTP.Host,
			From:     cfg.SMTP.From,
			Password: cfg.SMTP.Password,
		})
	} else {
		notifier = notify.NewNoopNotifier()
	}

	var events ports.EventBus
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("failed to close kafka publisher", "error", err)
			}
		}()
		events = adapters.NewObservableEventBus(publisher, kafkaMetrics)
	} else {
		events = kafka.NewNoopEventBus()
	}

	service := ordersapp.NewService(repo, coupons, stock, gateway, notifier, events, logger, orderMetrics)

	deliveryLog := webhookspostgres.NewDeliveryLog(pool)
	processor := webhooks.NewProcessor(gateway, service, deliveryLog, logger)
	retry := webhooks.NewRetryService(deliveryLog, processor, logger, webhookMetrics,
		webhooks.WithInterval(cfg.Retry.Interval),
		webhooks.WithBatchSize(cfg.Retry.BatchSize),
		webhooks.WithMaxAttempts(cfg.Retry.MaxAttempts),
	)
	if cfg.Retry.AutoStart {
		retry.Start()
	}

	ordersHandler := httpadapter.NewHandler(service)
	webhookHandler := httpadapter.NewWebhookHandler(processor, retry)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.CheckHealth(r.Context(), pool); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.HandleFunc(cfg.HTTP.MetricsPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("# metrics are exported over OTLP\n"))
	})

	ordersHandler.Register(mux)
	webhookHandler.Register(mux)

	handler := httpadapter.WithMetrics(withRecovery(withLogging(mux)), httpMetrics)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	retry.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
}

// initTelemetry wires OTLP exporters when an endpoint is configured and
// falls back to noop exporters otherwise, so instrumented code paths
// behave the same in local development.
func initTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Telemetry, error) {
	telCfg := telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	}

	if cfg.Telemetry.OTelEndpoint == "" {
		return telemetry.Initialize(ctx, telCfg,
			telemetry.WithTraceExporter(telemetry.NewNoopTraceExporter()),
			telemetry.WithMetricExporter(telemetry.NewNoopMetricExporter()),
		)
	}

	return telemetry.Initialize(ctx, telCfg)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.InfoContext(r.Context(), "http request", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "error", rec)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
