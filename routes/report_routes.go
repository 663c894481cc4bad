package routes

import (
	"github.com/aquasentra/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupReportRoutes(protected *gin.RouterGroup, reportController *controllers.ReportController) {
	reports := protected.Group("/reports")
	{
		reports.POST("", reportController.Create)
		reports.GET("", reportController.List)
		reports.GET("/:id", reportController.Get)
		reports.PUT("/:id", reportController.Update)
		reports.DELETE("/:id", reportController.Delete)

		// Lifecycle transitions
		reports.POST("/:id/verify", reportController.Verify)
		reports.POST("/:id/reject", reportController.Reject)
		reports.POST("/:id/resolve", reportController.Resolve)
		reports.POST("/:id/under-review", reportController.MarkUnderReview)
	}
}
