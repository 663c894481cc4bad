package routes

import (
	"github.com/aquasentra/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupMapRoutes(protected *gin.RouterGroup, mapController *controllers.MapController) {
	maps := protected.Group("/map")
	{
		maps.GET("/reports", mapController.Reports)
		maps.GET("/nearby", mapController.Radius)
		maps.GET("/clusters", mapController.Clusters)
		maps.GET("/heatmap", mapController.Heatmap)
		maps.GET("/statistics", mapController.Statistics)
	}
}
