package cancellation

import (
	"courtly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCancellationRoutes configures cancellation routes
func SetupCancellationRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth())
	{
		bookings.POST("/:id/cancel", controller.CancelBooking)
		bookings.GET("/:id/cancellation", controller.GetCancellation)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.PUT("/cancellation-policies", controller.SetPolicy)
	}
}
