// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"courtly/internal/bookings"
	"courtly/internal/cancellation"
	"courtly/internal/memberships"
	"courtly/internal/notifications"
	"courtly/internal/pricing"
	"courtly/internal/resources"
	"courtly/internal/shared/config"
	"courtly/internal/shared/database"
	"courtly/pkg/cache"
	"courtly/pkg/lock"
	"courtly/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config      *config.Config
	db          *database.DB
	coordinator *lock.Coordinator
	producer    notifications.EventProducer
	log         *logger.Logger

	// Shared services, wired once and injected across feature routers.
	cacheService    cache.Service
	resourceService resources.Service
	pricingService  pricing.Service
	bookingService  bookings.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, coordinator *lock.Coordinator, producer notifications.EventProducer, log *logger.Logger) *Router {
	return &Router{
		config:      cfg,
		db:          db,
		coordinator: coordinator,
		producer:    producer,
		log:         log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	if r.db.Redis != nil {
		r.cacheService = cache.NewService(r.db.Redis)
	}

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Order matters: resources and pricing feed the booking engine.
		r.setupResourceRoutes(api)
		r.setupPricingRoutes(api)
		r.setupBookingRoutes(api)
		r.setupCancellationRoutes(api)
	}
}

// BookingService exposes the wired booking service for background jobs.
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "courtly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "courtly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// setupResourceRoutes configures court and maintenance routes
func (r *Router) setupResourceRoutes(rg *gin.RouterGroup) {
	repo := resources.NewRepository(r.db.GetPostgreSQL())
	r.resourceService = resources.NewService(repo, r.cacheService, r.config.Redis.CourtCacheTTL, r.config.Booking.DefaultMaxAdvanceDays)
	controller := resources.NewController(r.resourceService)

	resources.SetupResourceRoutes(rg, controller)
}

// setupPricingRoutes configures quote and rule administration routes
func (r *Router) setupPricingRoutes(rg *gin.RouterGroup) {
	repo := pricing.NewRepository(r.db.GetPostgreSQL())
	membershipRepo := memberships.NewRepository(r.db.GetPostgreSQL())
	r.pricingService = pricing.NewService(repo, r.resourceService, membershipRepo, r.cacheService, r.config.Redis.RuleCacheTTL)
	controller := pricing.NewController(r.pricingService)

	pricing.SetupPricingRoutes(rg, controller)
}

// setupBookingRoutes configures the booking engine routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	repo := bookings.NewRepository(r.db.GetPostgreSQL(), r.config.Booking.TransactionTimeout, r.config.Booking.UseAdvisoryLocks)
	r.bookingService = bookings.NewService(repo, r.resourceService, r.pricingService, r.coordinator, r.producer, r.config.Booking, r.log)
	controller := bookings.NewController(r.bookingService)

	bookings.SetupBookingRoutes(rg, controller)
}

// setupCancellationRoutes configures the cancellation workflow routes
func (r *Router) setupCancellationRoutes(rg *gin.RouterGroup) {
	repo := cancellation.NewRepository(r.db.GetPostgreSQL())
	service := cancellation.NewService(repo, r.bookingService)
	controller := cancellation.NewController(service)

	cancellation.SetupCancellationRoutes(rg, controller)
}
