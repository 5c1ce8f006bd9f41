package pricing

import (
	"courtly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPricingRoutes configures quote and rule administration routes
func SetupPricingRoutes(rg *gin.RouterGroup, controller *Controller) {
	pricing := rg.Group("/pricing")
	pricing.Use(middleware.OptionalJWTAuth())
	{
		pricing.POST("/quote", controller.Quote)
	}

	admin := rg.Group("/admin/pricing")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("/rules", controller.ListRules)
		admin.POST("/rules", controller.CreateRule)
		admin.PUT("/rules/:id", controller.UpdateRule)
		admin.DELETE("/rules/:id", controller.DeactivateRule)
	}
}
