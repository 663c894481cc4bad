package controllers

import (
	"net/http"

	"github.com/aquasentra/api-go/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Cache *services.Cache
}

func NewHealthController(db *gorm.DB, cache *services.Cache) *HealthController {
	return &HealthController{DB: db, Cache: cache}
}

func (hc *HealthController) Health(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "ok"

	sqlDB, err := hc.DB.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}

	cacheStatus := "ok"
	if err := hc.Cache.Ping(c.Request.Context()); err != nil {
		cacheStatus = "unavailable"
	}

	c.JSON(status, StandardResponse{
		Success: status == http.StatusOK,
		Data: gin.H{
			"database": dbStatus,
			"cache":    cacheStatus,
		},
	})
}
