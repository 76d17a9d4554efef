package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"storefront/infra/postgres"
	"storefront/infra/rabbitmq"
	"storefront/internal/consumers"
	"storefront/pkg/config"
	"storefront/pkg/slug"
)

func main() {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, _ := zapConfig.Build()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	zap.L().Info("Storefront Import Worker starting...")

	// Load application config
	appConfig := config.Read()
	zap.L().Info("Worker config loaded",
		zap.String("serviceName", appConfig.ServiceName),
		zap.String("rabbitMQURL", appConfig.RabbitMQURL),
	)

	// Validate RabbitMQ URL
	if appConfig.RabbitMQURL == "" {
		zap.L().Fatal("RABBITMQ_URL is required for worker service")
	}

	pgRepository := postgres.NewPgRepository(
		appConfig.PostgresHost,
		appConfig.PostgresDatabase,
		appConfig.PostgresUsername,
		appConfig.PostgresPassword,
		appConfig.PostgresPort,
		appConfig.PostgresSSLMode,
	)

	slugResolver := slug.NewResolver(pgRepository)

	importHandler := consumers.NewImportEventHandler(
		pgRepository,
		slugResolver,
		zap.L(),
	)

	// Configure import consumer
	// This consumes product feed events published to the import exchange
	importConsumerConfig := rabbitmq.ConsumerConfig{
		Exchange:       "storefront.import",             // Exchange where feeds are published
		QueueName:      "storefront.import.all.v1",      // Queue name: {service}.{domain}.{events}.{version}
		RoutingKeys:    []string{"catalog.import.*.v1"}, // Consume all import events
		ServiceName:    appConfig.ServiceName,           // "storefront"
		PrefetchCount:  10,                              // Prefetch 10 messages from queue
		WorkerPoolSize: 20,                              // Process up to 20 messages concurrently
	}

	importConsumer, err := rabbitmq.NewConsumer(appConfig.RabbitMQURL, importConsumerConfig)
	if err != nil {
		zap.L().Fatal("Failed to create import consumer", zap.Error(err))
	}
	defer importConsumer.Close()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start import consumer in goroutine
	go func() {
		zap.L().Info("Starting import event consumer...")
		if err := importConsumer.Consume(ctx, importHandler.HandleEvent); err != nil {
			if err != context.Canceled {
				zap.L().Error("Import consumer error", zap.Error(err))
			}
		}
	}()

	// Start connection pool monitoring
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := pgRepository.GetPoolStats()
				zap.L().Info("Connection pool stats",
					zap.Int("max_open", stats["max_open_connections"].(int)),
					zap.Int("open", stats["open_connections"].(int)),
					zap.Int("in_use", stats["in_use"].(int)),
					zap.Int("idle", stats["idle"].(int)),
					zap.Int64("wait_count", stats["wait_count"].(int64)),
					zap.Int64("wait_duration_ms", stats["wait_duration_ms"].(int64)),
				)
			}
		}
	}()

	zap.L().Info("Worker service started successfully. Waiting for events...")
	zap.L().Info("Consuming from exchanges",
		zap.String("importExchange", "storefront.import"),
	)
	zap.L().Info("Press Ctrl+C to stop...")

	// Wait for shutdown signal
	<-sigChan
	zap.L().Info("Shutdown signal received, stopping worker service...")
	cancel()

	zap.L().Info("Worker service stopped gracefully")
}
