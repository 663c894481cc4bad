package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aquasentra/api-go/models"
	"github.com/aquasentra/api-go/services"
	"github.com/aquasentra/api-go/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const mapCacheTTL = 30 * time.Second

type MapController struct {
	Query *services.QueryService
	Cache *services.Cache
	Log   *zap.Logger
}

func NewMapController(db *gorm.DB, cache *services.Cache, log *zap.Logger) *MapController {
	return &MapController{Query: services.NewQueryService(db), Cache: cache, Log: log}
}

type mapViewportQuery struct {
	services.BoundingBox
	Zoom int `form:"zoom,default=10"`
}

// cacheScope is the actor segment of a map cache key. Citizens see their own
// private reports mixed into the results, so each citizen gets their own
// entry; elevated roles all see the full set and share one.
func cacheScope(user *utils.UserClaims) string {
	if user.Role == models.RoleCitizen {
		return fmt.Sprintf("%s:%d", user.Role, user.UserID)
	}
	return user.Role
}

// Reports returns the raw pins for a map viewport.
func (mc *MapController) Reports(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	var box services.BoundingBox
	if err := c.ShouldBindQuery(&box); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	reports, err := mc.Query.WithinBounds(c.Request.Context(), actorFrom(user), &box)
	if err != nil {
		respondError(c, mc.Log, err)
		return
	}
	respondData(c, http.StatusOK, reports)
}

// Radius returns reports within a great-circle distance of a point.
func (mc *MapController) Radius(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	var query services.RadiusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	reports, err := mc.Query.WithinRadius(c.Request.Context(), actorFrom(user), &query)
	if err != nil {
		respondError(c, mc.Log, err)
		return
	}
	respondData(c, http.StatusOK, reports)
}

// Clusters groups viewport pins by zoom-derived precision. Cached briefly:
// every map drag refires this query.
func (mc *MapController) Clusters(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	var query mapViewportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	cacheKey := fmt.Sprintf("map:clusters:%s:%.4f:%.4f:%.4f:%.4f:%d",
		cacheScope(user), query.South, query.West, query.North, query.East, query.Zoom)
	var clusters []services.Cluster
	if mc.Cache.Get(c.Request.Context(), cacheKey, &clusters) {
		respondData(c, http.StatusOK, clusters)
		return
	}

	clusters, err := mc.Query.Clusters(c.Request.Context(), actorFrom(user), &query.BoundingBox, query.Zoom)
	if err != nil {
		respondError(c, mc.Log, err)
		return
	}

	mc.Cache.Set(c.Request.Context(), cacheKey, clusters, mapCacheTTL)
	respondData(c, http.StatusOK, clusters)
}

// Heatmap returns severity-weighted points over a trailing window.
func (mc *MapController) Heatmap(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > 365 {
		respondBadRequest(c, "days must be between 1 and 365")
		return
	}

	filters := &services.HeatmapFilters{
		From:       time.Now().AddDate(0, 0, -days),
		To:         time.Now(),
		HazardType: c.Query("hazard_type"),
		Severity:   c.Query("severity"),
	}

	cacheKey := fmt.Sprintf("map:heatmap:%s:%d:%s:%s", cacheScope(user), days, filters.HazardType, filters.Severity)
	var points []services.HeatPoint
	if mc.Cache.Get(c.Request.Context(), cacheKey, &points) {
		respondData(c, http.StatusOK, points)
		return
	}

	points, err = mc.Query.Heatmap(c.Request.Context(), actorFrom(user), filters)
	if err != nil {
		respondError(c, mc.Log, err)
		return
	}

	mc.Cache.Set(c.Request.Context(), cacheKey, points, mapCacheTTL)
	respondData(c, http.StatusOK, points)
}

// Statistics summarises the map data over a trailing window.
func (mc *MapController) Statistics(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > 365 {
		respondBadRequest(c, "days must be between 1 and 365")
		return
	}

	cacheKey := fmt.Sprintf("map:stats:%d", days)
	var dash services.Dashboard
	if mc.Cache.Get(c.Request.Context(), cacheKey, &dash) {
		respondData(c, http.StatusOK, dash)
		return
	}

	stats, err := mc.Query.DashboardStats(c.Request.Context(), time.Now().AddDate(0, 0, -days), time.Now())
	if err != nil {
		respondError(c, mc.Log, err)
		return
	}

	mc.Cache.Set(c.Request.Context(), cacheKey, stats, mapCacheTTL)
	respondData(c, http.StatusOK, stats)
}
