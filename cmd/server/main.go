package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wanderlust-service/internal/domain/entity"
	"wanderlust-service/internal/domain/repository"
	"wanderlust-service/internal/infrastructure/cache"
	"wanderlust-service/internal/infrastructure/config"
	"wanderlust-service/internal/infrastructure/persistence"
	"wanderlust-service/internal/infrastructure/queue"
	"wanderlust-service/internal/infrastructure/router"
	"wanderlust-service/internal/interface/api"
	"wanderlust-service/internal/interface/geo"
	gormRepo "wanderlust-service/internal/interface/repository"
	"wanderlust-service/internal/usecase"
	"wanderlust-service/pkg/logger"
	"wanderlust-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Wanderlust Service", "version", cfg.AppVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL holds locations, schedules, users and trips
	db, err := persistence.NewPostgres(cfg.PostgresURI, cfg.LogLevel == "debug")
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	if cfg.AutoMigrate {
		if err := persistence.Migrate(db); err != nil {
			log.Fatal("Failed to migrate schema", "error", err)
		}
	}
	uow := gormRepo.NewGormUnitOfWork(db)

	// MongoDB is optional and only keeps the provider fetch log
	var mongoClient *mongo.Client
	var fetchLog repository.FetchLogRepository
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		client, mdb, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		mongoClient = client
		fetchLog = gormRepo.NewMongoFetchLogRepository(mdb, log)
	}

	rdb := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb == nil {
		log.Warn("Redis unavailable, rate limiting and geocode cache disabled", "addr", cfg.RedisAddr)
	}

	var events repository.EventPublisher = queue.NopPublisher{}
	var rabbit *queue.RabbitPublisher
	if cfg.RabbitMQURL != "" {
		rabbit = queue.NewRabbitPublisher(cfg.RabbitMQURL, cfg.IngestedQueue, log)
		events = rabbit
	}

	m := metrics.NewMetrics("wanderlust", prometheus.DefaultRegisterer)

	built, err := router.BuildProviders(ctx, cfg, m, log)
	if err != nil {
		log.Fatal("Failed to set up providers", "error", err)
	}

	geocoder := geo.NewCachedGeocoder(geo.NewIPIntelligence(cfg.IPIntelURL, cfg.IPIntelKey, cfg.ProviderTimeout, log), rdb, cfg.GeocodeTTL, log)
	publicIP := geo.NewPublicIPResolver(cfg.PublicIPURL, cfg.ProviderTimeout, log)

	server := api.NewServer(log)
	server.Flights = usecase.NewFlightResolver(uow, built.Router, fetchLog, events, m, log, usecase.ResolverConfig{
		MaxPages:      cfg.MaxPages,
		WindowMinutes: cfg.ScheduleWindowMins,
	})
	server.Airports = usecase.NewGeolocationResolver(uow.Locations(), built.Router, geocoder, publicIP, cfg.NearbyRadiusKm, m, log)
	server.Info = usecase.NewFlightInfoService(built.Router, log)
	server.Users = usecase.NewUserService(uow, cfg.NearbyRadiusKm, log)
	server.Trips = usecase.NewTripService(uow, log)
	server.DefaultLocation = entity.Coordinates{Latitude: cfg.DefaultLatitude, Longitude: cfg.DefaultLongitude}
	server.RateLimit = cfg.RateLimit
	server.Redis = rdb
	server.Metrics = promhttp.Handler()
	server.FetchLog = fetchLog

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Echo(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	if rabbit != nil {
		if err := rabbit.Close(); err != nil {
			log.Error("RabbitMQ close error", "error", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("Redis close error", "error", err)
		}
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("Wanderlust Service stopped")
}
