package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"rideflux/internal/handler"
	"rideflux/internal/middleware"
	"rideflux/internal/redis"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler    *handler.RideHandler
	DriverHandler  *handler.DriverHandler
	TripHandler    *handler.TripHandler
	PaymentHandler *handler.PaymentHandler
	HealthHandler  *handler.HealthHandler
	RateLimiter    *redis.RateLimiter
	IdempStore     redis.IdempotencyStoreInterface
	AllowedOrigins []string
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(deps.AllowedOrigins))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.RateLimit(deps.RateLimiter))
	router.Use(middleware.Idempotency(deps.IdempStore))

	// Health check.
	router.GET("/health", deps.HealthHandler.Health)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("", deps.RideHandler.ListRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.ListDrivers)
			drivers.GET("/:id", deps.DriverHandler.GetDriver)
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.POST("/:id/accept", deps.DriverHandler.AcceptOffer)
			drivers.POST("/:id/status", deps.DriverHandler.SetStatus)
		}

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("/:id/start", deps.TripHandler.StartTrip)
			trips.POST("/:id/end", deps.TripHandler.EndTrip)
			trips.GET("/:id", deps.TripHandler.GetTrip)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("", deps.PaymentHandler.CreatePayment)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
		}
	}

	return router
}
