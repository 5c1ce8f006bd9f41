package resources

import (
	"courtly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupResourceRoutes configures all court and maintenance routes
func SetupResourceRoutes(rg *gin.RouterGroup, controller *Controller) {
	courts := rg.Group("/courts")
	{
		courts.GET("", controller.ListCourts)
		courts.GET("/:id", controller.GetCourt)
		courts.GET("/:id/maintenance", controller.ListMaintenance)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("/courts", controller.CreateCourt)
		admin.POST("/maintenance", controller.ScheduleMaintenance)
	}
}
