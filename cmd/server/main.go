package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"

	adminhandler "roadbook/internal/admin/handler"
	adminservice "roadbook/internal/admin/service"
	authhandler "roadbook/internal/auth/handler"
	authrepo "roadbook/internal/auth/repository"
	authservice "roadbook/internal/auth/service"
	availabilityhandler "roadbook/internal/availability/handler"
	availabilityservice "roadbook/internal/availability/service"
	bookingshandler "roadbook/internal/bookings/handler"
	bookingsrepo "roadbook/internal/bookings/repository"
	bookingsservice "roadbook/internal/bookings/service"
	bookingsvalidator "roadbook/internal/bookings/validator"
	healthhandler "roadbook/internal/health/handler"
	roadshandler "roadbook/internal/roads/handler"
	roadsrepo "roadbook/internal/roads/repository"
	roadsservice "roadbook/internal/roads/service"
	slotshandler "roadbook/internal/slots/handler"
	slotsrepo "roadbook/internal/slots/repository"
	slotsservice "roadbook/internal/slots/service"
	"roadbook/pkg/app"
	"roadbook/pkg/config"
	"roadbook/pkg/events"
	"roadbook/pkg/middleware"
)

const ServiceName = "roadbook"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting roadbook service")

	userRepo := authrepo.NewMongoUserRepository(cfg)
	sessionStore := authrepo.NewRedisSessionStore(cfg)
	roadRepo := roadsrepo.NewMongoRoadRepository(cfg)
	slotRepo := slotsrepo.NewMongoSlotRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)

	ensureIndexes(cfg, userRepo, slotRepo, bookingRepo)

	publisher := newPublisher(cfg)

	authn := middleware.Authenticate(cfg.JWTSecret, sessionStore, cfg.Log)
	requireAdmin := middleware.RequireAdmin(cfg.Log)
	protect := func(h httprouter.Handle) httprouter.Handle {
		return middleware.WrapHandle(h, authn)
	}
	protectAdmin := func(h httprouter.Handle) httprouter.Handle {
		return middleware.WrapHandle(h, authn, requireAdmin)
	}

	authService := authservice.NewAuthService(userRepo, sessionStore, cfg)
	roadService := roadsservice.NewRoadService(roadRepo, cfg)
	slotService := slotsservice.NewSlotService(slotRepo, cfg)
	bookingValidator := bookingsvalidator.NewBookingValidator(cfg.Log)
	bookingService := bookingsservice.NewBookingService(bookingRepo, slotRepo, roadRepo, bookingValidator, publisher, cfg)
	availabilityService := availabilityservice.NewAvailabilityService(slotRepo, roadRepo, cfg)
	statsService := adminservice.NewStatsService(roadRepo, slotRepo, bookingRepo, userRepo, cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, publisher,
		healthhandler.NewHealthHandler(cfg.Client.Mongo, cfg.Client.Redis, cfg.Log),
		authhandler.NewAuthHandler(authService, cfg.Log, protect),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log, protect),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log, protect),
		roadshandler.NewRoadHandler(roadService, cfg.Log, protectAdmin),
		slotshandler.NewSlotHandler(slotService, cfg.Log, protectAdmin),
		adminhandler.NewAdminHandler(statsService, bookingService, cfg.Log, protectAdmin),
	)
	serverApp.Run()
}

type indexEnsurer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(cfg *config.Config, ensurers ...indexEnsurer) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	for _, e := range ensurers {
		if err := e.EnsureIndexes(ctx); err != nil {
			cfg.Log.Fatal("Failed to ensure indexes", "error", err)
		}
	}
	cfg.Log.Info("Database indexes ensured")
}

func newPublisher(cfg *config.Config) events.Publisher {
	producer, err := events.NewProducer(events.ProducerConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic,
		Source:      ServiceName,
		MaxAttempts: cfg.KafkaMaxAttempts,
		BatchWait:   cfg.KafkaBatchWait,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event producer", "error", err)
	}
	return producer
}
