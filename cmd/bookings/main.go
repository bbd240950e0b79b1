package main

import (
	"context"
	"os"
	"time"

	"kaycrm/internal/automation/core"
	"kaycrm/internal/automation/flows"
	automationhandler "kaycrm/internal/automation/handler"
	"kaycrm/internal/bookings/audit"
	"kaycrm/internal/bookings/availability"
	"kaycrm/internal/bookings/events"
	"kaycrm/internal/bookings/handler"
	"kaycrm/internal/bookings/repository"
	"kaycrm/internal/bookings/service"
	"kaycrm/internal/bookings/validator"
	"kaycrm/internal/directory"
	"kaycrm/pkg/app"
	"kaycrm/pkg/config"
	"kaycrm/pkg/kafka"
	kafka_config "kaycrm/pkg/kafka/config"
	kafka_middleware "kaycrm/pkg/kafka/middleware"
)

const (
	ServiceName = "bookings"

	warmupTimeout = 2 * time.Minute
	auditTimeout  = time.Minute
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Bookings service")

	serverApp := app.NewApplication()

	repo, dir := initStorage(cfg)
	serverApp.OnShutdown("storage", func(context.Context) { cfg.GracefulShutdown() })
	index := availability.NewIndex()
	bookingService := service.NewBookingService(
		repo,
		dir,
		index,
		validator.NewBookingValidator(cfg.Log),
		cfg.Log,
		service.WithEventPublisher(initEvents(cfg, serverApp)),
	)

	// The index is the only conflict check; serving before it is warm
	// would accept double bookings.
	ctx, cancel := context.WithTimeout(context.Background(), warmupTimeout)
	if err := bookingService.WarmIndex(ctx); err != nil {
		cancel()
		cfg.Log.Fatal("Failed to warm availability index", "error", err)
	}
	cancel()

	initAudit(cfg, serverApp, audit.NewAuditor(repo, index, cfg.Log))

	engine := core.NewEngine(flows.All(flows.Deps{Bookings: bookingService, Customers: dir})...)

	serverApp.SetApp(cfg,
		handler.NewBookingHandler(bookingService, cfg.Log),
		automationhandler.NewWebhookHandler(engine, cfg.Log),
	)
	serverApp.Run()
}

func initStorage(cfg *config.Config) (repository.BookingRepository, directory.Directory) {
	if cfg.UsesMongo() {
		cfg.SetMongo()
		cfg.Log.Info("Using Mongo storage", "database", cfg.MongoDatabaseName)
		return repository.NewMongoBookingRepository(cfg), directory.NewMongoDirectory(cfg)
	}

	cfg.Log.Warn("Using in-memory storage, bookings are lost on restart")
	dir := directory.NewMemoryDirectory()
	if cfg.DirectorySeedFile != "" {
		f, err := os.Open(cfg.DirectorySeedFile)
		if err != nil {
			cfg.Log.Fatal("Failed to open directory seed", "file", cfg.DirectorySeedFile, "error", err)
		}
		defer f.Close()

		seed, err := dir.LoadSeed(f)
		if err != nil {
			cfg.Log.Fatal("Failed to load directory seed", "file", cfg.DirectorySeedFile, "error", err)
		}
		cfg.Log.Info("Directory seeded", "customers", len(seed.Customers), "vehicles", len(seed.Vehicles))
	}
	return repository.NewMemoryBookingRepository(), dir
}

func initEvents(cfg *config.Config, serverApp *app.Application) service.EventPublisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return service.NopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.EventsTopic, cfg.EventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	serverApp.OnShutdown("kafka producer", func(context.Context) {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Booking events enabled", "topic", producer.Topic(), "dlq_topic", cfg.EventsDLQTopic)
	return events.NewKafkaPublisher(producer, kafkaCfg.PublishTimeout, cfg.Log)
}

func initAudit(cfg *config.Config, serverApp *app.Application, auditor *audit.Auditor) {
	if cfg.IndexAuditSchedule == "" {
		cfg.Log.Info("Availability index audit disabled")
		return
	}

	scheduler, err := audit.NewScheduler(auditor, cfg.IndexAuditSchedule, auditTimeout, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to schedule availability index audit", "error", err)
	}
	scheduler.Start()
	serverApp.OnShutdown("index audit", scheduler.Stop)
}
