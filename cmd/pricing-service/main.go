// cmd/pricing-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"custom-pricing-service/internal/cart"
	"custom-pricing-service/internal/common/aws"
	"custom-pricing-service/internal/common/config"
	"custom-pricing-service/internal/common/database"
	"custom-pricing-service/internal/common/logger"
	"custom-pricing-service/internal/common/observability"
	"custom-pricing-service/internal/eventlog"
	"custom-pricing-service/internal/httpapi"
	"custom-pricing-service/internal/pricing"
	"custom-pricing-service/internal/provision"
	"custom-pricing-service/internal/shopify"
	"custom-pricing-service/internal/sweep"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting pricing service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("pricing-service")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis with retry (degrades to unguarded provisioning) ---
	var redis *database.RedisClient
	if cfg.Redis.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, provisioning runs without reservation lock", zap.Error(err))
			redis = nil
		} else {
			defer redis.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Event Log Sinks ---
	sinks := []eventlog.Sink{eventlog.NewZapSink(log)}

	if cfg.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Warn("elasticsearch unavailable, event retention disabled", zap.Error(err))
		} else {
			sinks = append(sinks, eventlog.NewElasticsearchSink(esClient, cfg.Elasticsearch.Index, log))
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	events := eventlog.New(cfg.EventLog, sinks...)

	if cfg.AWS.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.AWS.Region, cfg.AWS.SNS.AlarmTopicARN)
		if err != nil {
			zapLog.Warn("sns unavailable, alarm notifications disabled", zap.Error(err))
		} else {
			events.SetNotifier(snsClient)
			zapLog.Info("SNS alarm notifier initialized")
		}
	}

	// --- External Service Clients ---
	adminClient := shopify.NewClient(cfg.Shopify)
	cartClient := cart.NewClient(cfg.Cart)

	// --- Domain Services ---
	calculator := pricing.NewCalculator(pricing.FromConfig(cfg.Pricing))
	provisioner := provision.NewService(provision.NewConfig(cfg.Lifecycle), adminClient, redis, events, log)
	sweeper := sweep.NewService(sweep.NewConfig(cfg.Lifecycle), adminClient, events, log)

	app := httpapi.NewApp(*cfg, provisioner, sweeper, cartClient, calculator, events, log)
	app.Obs = obs

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.NewRouter(app),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadHeaderTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.HTTP.IdleTimeout) * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Pricing service stopped gracefully")
}
