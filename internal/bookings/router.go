package bookings

import (
	"courtly/internal/shared/middleware"
	"courtly/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures booking and availability routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Availability probe is public; the authoritative check runs inside
	// the create transaction anyway.
	rg.GET("/courts/:id/availability", controller.CheckAvailability)

	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth())
	{
		bookings.POST("", controller.CreateBooking)
		bookings.GET("", controller.GetMyBookings)
		bookings.GET("/:id", controller.GetBooking)
		bookings.GET("/:id/occurrences", controller.ListOccurrences)
		bookings.POST("/:id/pay", controller.MarkPaid)
	}

	staff := rg.Group("/bookings")
	staff.Use(middleware.JWTAuth(), middleware.RequireRoles(string(users.RoleOperator), string(users.RoleAdmin)))
	{
		staff.POST("/:id/check-in", controller.CheckIn)
		staff.POST("/:id/check-out", controller.CheckOut)
		staff.POST("/:id/no-show", controller.MarkNoShow)
	}
}
