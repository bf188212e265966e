package main

import (
	"context"

	"roomtime/internal/reservations/audit"
	"roomtime/internal/reservations/handler"
	"roomtime/internal/reservations/repository"
	"roomtime/internal/reservations/service"
	"roomtime/internal/reservations/validator"
	"roomtime/pkg/app"
	"roomtime/pkg/cache"
	"roomtime/pkg/client"
	"roomtime/pkg/config"
	"roomtime/pkg/kafka"
	kafka_config "roomtime/pkg/kafka/config"
	kafka_middleware "roomtime/pkg/kafka/middleware"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting Reservations service")
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	ensureIndexes(cfg)

	reservationService, reclaimer := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReservationHandler(reservationService, cfg.Log))
	serverApp.RegisterWorker(reclaimer)

	reclaimer.Start(context.Background())
	serverApp.Run()
}

func ensureIndexes(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	if err := repository.EnsureIndexes(ctx, cfg); err != nil {
		cfg.Log.Fatal("Failed to create reservation indexes", "error", err)
	}
	if err := repository.EnsureLockIndexes(ctx, cfg); err != nil {
		cfg.Log.Fatal("Failed to create lock indexes", "error", err)
	}
}

func initServices(cfg *config.Config) (service.ReservationService, *service.Reclaimer) {
	reservationValidator := validator.NewReservationValidator(cfg.Log)
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	lockRepo := repository.NewResourceLockRepository(cfg)
	resourceDirectory := client.NewResourceClient(cfg.ResourceDirectoryURL)
	invalidator := cache.NewRedisInvalidator(cfg.Client.Redis, cfg.Log)
	auditSink := initAuditSink(cfg)

	reservationService := service.NewReservationService(
		reservationRepo,
		lockRepo,
		reservationValidator,
		resourceDirectory,
		auditSink,
		invalidator,
		cfg,
	)

	reclaimer := service.NewReclaimer(reservationRepo, auditSink, invalidator, cfg)

	cfg.Log.Info("Reservation service initialized",
		"database", cfg.MongoDatabaseName,
		"admission_policy", cfg.AdmissionPolicy,
	)
	return reservationService, reclaimer
}

func initAuditSink(cfg *config.Config) audit.Sink {
	kafkaCfg := kafka_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Warn("Audit publishing disabled, invalid Kafka configuration", "error", err)
		return audit.NopSink{}
	}

	producer, err := kafka.NewProducer(kafkaCfg, audit.Topic, audit.Topic+"-dlq")
	if err != nil {
		cfg.Log.Warn("Audit publishing disabled, producer setup failed", "error", err)
		return audit.NopSink{}
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware())
	producer.Use(kafka_middleware.MetricsProducerMiddleware())

	return audit.NewKafkaSink(producer, ServiceName, cfg.Log)
}
