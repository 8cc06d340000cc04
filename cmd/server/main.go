package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"rideflux/internal/app"
	"rideflux/internal/config"
	"rideflux/internal/handler"
	internalRedis "rideflux/internal/redis"
	"rideflux/internal/repository/postgres"
	"rideflux/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, matchingService := wireServer(db, redisClient, nrApp, cfg)

	// Offer expiry is driven by a background poller so a dispatch stuck
	// on an unresponsive driver gets requeued even with no traffic.
	loopCtx, loopCancel := context.WithCancel(context.Background())
	defer loopCancel()
	go matchingService.RunExpiryLoop(loopCtx)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	loopCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server along with
// the matching service, whose expiry loop the caller owns.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.MatchingService) {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	surgeStore := internalRedis.NewSurgeStore(redisClient)
	expiryQueue := internalRedis.NewExpiryQueue(redisClient)
	rideCache := internalRedis.NewRideCache(redisClient)
	idempStore := internalRedis.NewIdempotencyStore(redisClient)
	events := internalRedis.NewEventPublisher(redisClient)
	rateLimiter := internalRedis.NewRateLimiter(redisClient, cfg.RateLimit.Window, int64(cfg.RateLimit.MaxRequests))

	// Initialize repositories.
	driverRepo := postgres.NewDriverRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	offerRepo := postgres.NewOfferRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	idempRepo := postgres.NewIdempotencyRepository(db)

	// Initialize services.
	surgeService := service.NewSurgeService(surgeStore, locationStore, cfg.Surge)
	matchingService := service.NewMatchingService(db, cfg.Matching, locationStore, expiryQueue, events, rideRepo, offerRepo, driverRepo)
	rideService := service.NewRideService(db, rideRepo, offerRepo, rideCache, events, surgeService, matchingService)
	driverService := service.NewDriverService(driverRepo, locationStore, events)
	tripService := service.NewTripService(db, tripRepo, rideRepo, rideCache, events)
	paymentService := service.NewPaymentService(db, paymentRepo, tripRepo, idempRepo, idempStore, events)

	// Initialize handlers.
	rideHandler := handler.NewRideHandler(rideService)
	driverHandler := handler.NewDriverHandler(driverService, rideService)
	tripHandler := handler.NewTripHandler(tripService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		RideHandler:    rideHandler,
		DriverHandler:  driverHandler,
		TripHandler:    tripHandler,
		PaymentHandler: paymentHandler,
		HealthHandler:  healthHandler,
		RateLimiter:    rateLimiter,
		IdempStore:     idempStore,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, matchingService
}
