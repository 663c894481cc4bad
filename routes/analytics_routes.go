package routes

import (
	"github.com/aquasentra/api-go/controllers"
	"github.com/aquasentra/api-go/middleware"
	"github.com/aquasentra/api-go/models"
	"github.com/gin-gonic/gin"
)

func SetupAnalyticsRoutes(protected *gin.RouterGroup, analyticsController *controllers.AnalyticsController) {
	analytics := protected.Group("/analytics")
	analytics.Use(middleware.RequireRoles(models.RoleVerifier, models.RoleAnalyst, models.RoleAdmin))
	{
		analytics.GET("/dashboard", analyticsController.Dashboard)
		analytics.GET("/reports/trends", analyticsController.Trends)
		analytics.GET("/verification/performance", analyticsController.VerificationPerformance)
		analytics.GET("/exports/csv", analyticsController.ExportCSV)
	}
}
