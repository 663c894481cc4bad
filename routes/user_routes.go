package routes

import (
	"github.com/aquasentra/api-go/controllers"
	"github.com/aquasentra/api-go/middleware"
	"github.com/aquasentra/api-go/models"
	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(protected *gin.RouterGroup, userController *controllers.UserController) {
	users := protected.Group("/users")
	users.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleAnalyst))
	{
		users.GET("", userController.List)
		users.GET("/:id", userController.Get)
	}

	admin := protected.Group("/users")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.PUT("/:id/role", userController.UpdateRole)
		admin.PUT("/:id/status", userController.UpdateStatus)
		admin.DELETE("/:id", userController.Delete)
	}
}
