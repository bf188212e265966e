package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"roomtime/internal/audit/consumer"
	"roomtime/internal/audit/repository"
	"roomtime/internal/reservations/audit"
	"roomtime/pkg/config"
	"roomtime/pkg/kafka"
	kafka_config "roomtime/pkg/kafka/config"
	kafka_middleware "roomtime/pkg/kafka/middleware"
)

const (
	ServiceName   = "auditor"
	consumerGroup = "auditor"
)

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting Auditor service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	if err := repository.EnsureIndexes(ctx, cfg); err != nil {
		cancel()
		cfg.Log.Fatal("Failed to create audit indexes", "error", err)
	}
	cancel()

	kafkaCfg := kafka_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	auditRepo := repository.NewMongoAuditRepository(cfg)
	auditHandler := consumer.NewHandler(auditRepo, cfg.Log)

	auditConsumer, err := kafka.NewConsumer(
		kafkaCfg,
		audit.Topic,
		consumerGroup,
		audit.Topic+"-dlq",
		auditHandler.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create audit consumer", "error", err)
	}
	auditConsumer.Use(kafka_middleware.LoggingConsumerMiddleware())
	auditConsumer.Use(kafka_middleware.MetricsConsumerMiddleware())

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Consuming audit events", "topic", audit.Topic, "group", consumerGroup)
	if err := auditConsumer.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Audit consumer stopped", "error", err)
	}

	if err := auditConsumer.Close(); err != nil {
		cfg.Log.Error("Failed to close audit consumer", "error", err)
	}
	cfg.Log.Info("Auditor stopped gracefully")
}
