package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aquasentra/api-go/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dashboardCacheTTL = time.Minute

type AnalyticsController struct {
	Query *services.QueryService
	Cache *services.Cache
	Log   *zap.Logger
}

func NewAnalyticsController(db *gorm.DB, cache *services.Cache, log *zap.Logger) *AnalyticsController {
	return &AnalyticsController{Query: services.NewQueryService(db), Cache: cache, Log: log}
}

func dateRange(c *gin.Context) (time.Time, time.Time, error) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > 365 {
		return time.Time{}, time.Time{}, fmt.Errorf("days must be between 1 and 365")
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("from must be YYYY-MM-DD")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("to must be YYYY-MM-DD")
		}
		to = parsed.Add(24*time.Hour - time.Second)
	}
	return from, to, nil
}

func (ac *AnalyticsController) Dashboard(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	cacheKey := fmt.Sprintf("analytics:dashboard:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	var cached services.Dashboard
	if ac.Cache.Get(c.Request.Context(), cacheKey, &cached) {
		respondData(c, http.StatusOK, cached)
		return
	}

	dash, err := ac.Query.DashboardStats(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, ac.Log, err)
		return
	}

	ac.Cache.Set(c.Request.Context(), cacheKey, dash, dashboardCacheTTL)
	respondData(c, http.StatusOK, dash)
}

func (ac *AnalyticsController) Trends(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	rows, err := ac.Query.Trends(c.Request.Context(), from, to, c.Query("hazard_type"))
	if err != nil {
		respondError(c, ac.Log, err)
		return
	}
	respondData(c, http.StatusOK, rows)
}

func (ac *AnalyticsController) VerificationPerformance(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	rows, err := ac.Query.VerificationPerformance(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, ac.Log, err)
		return
	}
	respondData(c, http.StatusOK, rows)
}

// ExportCSV streams the reports in the date range as a CSV download.
func (ac *AnalyticsController) ExportCSV(c *gin.Context) {
	if t := c.DefaultQuery("type", "reports"); t != "reports" {
		respondBadRequest(c, "Unsupported export type")
		return
	}

	from, to, err := dateRange(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	reports, err := ac.Query.ForExport(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, ac.Log, err)
		return
	}

	filename := fmt.Sprintf("hazard-reports-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)

	if err := services.WriteReportsCSV(c.Writer, reports); err != nil {
		ac.Log.Error("csv export failed", zap.Error(err))
	}
}
