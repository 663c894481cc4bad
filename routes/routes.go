package routes

import (
	"github.com/aquasentra/api-go/config"
	"github.com/aquasentra/api-go/controllers"
	"github.com/aquasentra/api-go/middleware"
	"github.com/aquasentra/api-go/services"
	"github.com/aquasentra/api-go/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Log      *zap.Logger
	Cache    *services.Cache
	Storage  storage.Storage
	Notifier *services.Notifier
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	// Initialize controllers
	authController := controllers.NewAuthController(deps.DB, deps.Config.JWT, deps.Notifier, deps.Log)
	reportController := controllers.NewReportController(deps.DB, deps.Storage, deps.Config.Upload, deps.Notifier, deps.Log)
	mapController := controllers.NewMapController(deps.DB, deps.Cache, deps.Log)
	userController := controllers.NewUserController(deps.DB, deps.Log)
	analyticsController := controllers.NewAnalyticsController(deps.DB, deps.Cache, deps.Log)
	healthController := controllers.NewHealthController(deps.DB, deps.Cache)

	r.GET("/metrics", middleware.MetricsHandler())

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/auth/register", authController.Register)
		public.POST("/auth/login", authController.Login)
		public.GET("/health", healthController.Health)
		public.GET("/reports/public/:publicId", reportController.GetByPublicCode)
		public.GET("/reports/media/:filename", reportController.ServeMedia)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(deps.Config.JWT.Secret))
	{
		protected.GET("/auth/me", authController.Me)
		protected.POST("/auth/refresh", authController.RefreshToken)
		protected.POST("/auth/logout", authController.Logout)

		SetupReportRoutes(protected, reportController)
		SetupMapRoutes(protected, mapController)
		SetupUserRoutes(protected, userController)
		SetupAnalyticsRoutes(protected, analyticsController)
	}
}
