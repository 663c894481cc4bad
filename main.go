package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/aquasentra/api-go/config"
	"github.com/aquasentra/api-go/middleware"
	"github.com/aquasentra/api-go/routes"
	"github.com/aquasentra/api-go/services"
	"github.com/aquasentra/api-go/storage"
)

func main() {
	// .env is optional; production injects real environment variables.
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db, err := config.ConnectDatabase(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to access database pool", zap.Error(err))
	}
	defer sqlDB.Close()

	cache := services.NewCache(cfg.Redis)
	defer cache.Close()

	var store storage.Storage
	if cfg.Upload.Backend == "s3" {
		store = storage.NewS3Storage(cfg.S3)
	} else {
		local, err := storage.NewLocalStorage(cfg.Upload.Dir, "/api/reports/media")
		if err != nil {
			log.Fatal("failed to prepare upload directory", zap.Error(err))
		}
		store = local
	}

	var provider services.EmailProvider
	if cfg.SMTP.Host != "" {
		provider = services.NewSMTPProvider(cfg.SMTP)
	}
	notifier := services.NewNotifier(provider, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(middleware.Metrics())
	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()
	r.Use(limiter.Middleware())

	routes.SetupRoutes(r, routes.Deps{
		DB:       db,
		Config:   cfg,
		Log:      log,
		Cache:    cache,
		Storage:  store,
		Notifier: notifier,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Daily cleanup of resolved reports past their retention window.
	lifecycle := services.NewLifecycleService(db)
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purged, err := lifecycle.PurgeExpired(ctx)
				if err != nil {
					log.Warn("expired report purge failed", zap.Error(err))
					continue
				}
				if purged > 0 {
					log.Info("purged expired reports", zap.Int64("count", purged))
				}
			}
		}
	}()

	go func() {
		log.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
