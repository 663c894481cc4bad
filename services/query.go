package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/aquasentra/api-go/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const bboxResultCap = 500

// QueryService builds filtered, paginated and spatial views over hazard
// reports. It never mutates anything.
type QueryService struct {
	DB *gorm.DB
}

func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{DB: db}
}

var sortColumns = map[string]string{
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"severity":    "severity",
	"status":      "status",
	"hazard_type": "hazard_type",
	"verified_at": "verified_at",
}

type ListFilters struct {
	Status     string `form:"status"`
	HazardType string `form:"hazard_type"`
	Severity   string `form:"severity"`
	Search     string `form:"search"`
	SortBy     string `form:"sort_by"`
	SortDir    string `form:"sort_dir"`
	Page       int    `form:"page,default=1"`
	PageSize   int    `form:"page_size,default=20"`
}

type ReportPage struct {
	Reports    []models.HazardReport `json:"reports"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// scopeForActor restricts what a citizen may see: their own reports plus
// public ones. Elevated roles see everything.
func scopeForActor(db *gorm.DB, actor Actor) *gorm.DB {
	if actor.Role == models.RoleCitizen {
		return db.Where("user_id = ? OR visibility = ?", actor.UserID, models.VisibilityPublic)
	}
	return db
}

func (q *QueryService) validateListFilters(f *ListFilters) *ValidationError {
	verr := NewValidationError()
	if f.Status != "" && !models.ValidStatus(f.Status) {
		verr.Add("status", "unknown status")
	}
	if f.HazardType != "" && !models.ValidHazardType(f.HazardType) {
		verr.Add("hazard_type", "unknown hazard type")
	}
	if f.Severity != "" && !models.ValidSeverity(f.Severity) {
		verr.Add("severity", "unknown severity")
	}
	if f.SortBy != "" {
		if _, ok := sortColumns[f.SortBy]; !ok {
			verr.Add("sort_by", "unsupported sort key")
		}
	}
	if f.SortDir != "" && f.SortDir != "asc" && f.SortDir != "desc" {
		verr.Add("sort_dir", "must be asc or desc")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// List returns a filtered page of reports with totals.
func (q *QueryService) List(ctx context.Context, actor Actor, f *ListFilters) (*ReportPage, error) {
	if verr := q.validateListFilters(f); verr != nil {
		return nil, verr
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}

	db := scopeForActor(q.DB.WithContext(ctx).Model(&models.HazardReport{}), actor)

	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.HazardType != "" {
		db = db.Where("hazard_type = ?", f.HazardType)
	}
	if f.Severity != "" {
		db = db.Where("severity = ?", f.Severity)
	}
	if f.Search != "" {
		needle := "%" + strings.TrimSpace(f.Search) + "%"
		db = db.Where("description ILIKE ? OR address ILIKE ? OR public_code ILIKE ?", needle, needle, needle)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}

	column := "created_at"
	if f.SortBy != "" {
		column = sortColumns[f.SortBy]
	}
	dir := "DESC"
	if f.SortDir == "asc" {
		dir = "ASC"
	}

	var reports []models.HazardReport
	err := db.Preload("Media").
		Order(column + " " + dir).
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	return &ReportPage{
		Reports:    reports,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(f.PageSize))),
	}, nil
}

// GetByID fetches a single report with media. Access is the caller's problem.
func (q *QueryService) GetByID(ctx context.Context, id uint) (*models.HazardReport, error) {
	var report models.HazardReport
	err := q.DB.WithContext(ctx).Preload("Media").First(&report, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// GetByPublicCode serves the unauthenticated share link. Only public reports
// are reachable this way; everything else reads as not found.
func (q *QueryService) GetByPublicCode(ctx context.Context, code string) (*models.HazardReport, error) {
	var report models.HazardReport
	err := q.DB.WithContext(ctx).
		Preload("Media").
		Where("public_code = ? AND visibility = ?", code, models.VisibilityPublic).
		First(&report).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

type RadiusQuery struct {
	Latitude  float64 `form:"latitude"`
	Longitude float64 `form:"longitude"`
	RadiusKm  float64 `form:"radius"`
}

// WithinRadius returns reports within the great-circle distance, boundary
// inclusive, ordered nearest first. A coarse bounding box narrows the SQL
// scan; the exact haversine check happens here.
func (q *QueryService) WithinRadius(ctx context.Context, actor Actor, query *RadiusQuery) ([]models.HazardReport, error) {
	verr := NewValidationError()
	if query.Latitude < -90 || query.Latitude > 90 {
		verr.Add("latitude", "must be between -90 and 90")
	}
	if query.Longitude < -180 || query.Longitude > 180 {
		verr.Add("longitude", "must be between -180 and 180")
	}
	if query.RadiusKm <= 0 {
		verr.Add("radius", "must be greater than zero")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	minLat, maxLat, minLng, maxLng := radiusBoundingBox(query.Latitude, query.Longitude, query.RadiusKm)

	// The prefilter is capped, so candidates must come back nearest first:
	// otherwise a dense viewport could crowd out reports actually in radius.
	var candidates []models.HazardReport
	db := scopeForActor(q.DB.WithContext(ctx).Model(&models.HazardReport{}), actor)
	err := db.
		Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLng, maxLng).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "POWER(latitude - ?, 2) + POWER((longitude - ?) * COS(RADIANS(?)), 2)",
			Vars: []interface{}{query.Latitude, query.Longitude, query.Latitude},
		}}).
		Limit(bboxResultCap * 2).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	reports := candidates[:0]
	for i := range candidates {
		d := Haversine(query.Latitude, query.Longitude, candidates[i].Latitude, candidates[i].Longitude)
		if d <= query.RadiusKm {
			candidates[i].Distance = d
			reports = append(reports, candidates[i])
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Distance < reports[j].Distance })
	if len(reports) > bboxResultCap {
		reports = reports[:bboxResultCap]
	}
	return reports, nil
}

type BoundingBox struct {
	South float64 `form:"south"`
	West  float64 `form:"west"`
	North float64 `form:"north"`
	East  float64 `form:"east"`
}

func (b *BoundingBox) validate() *ValidationError {
	verr := NewValidationError()
	if b.South < -90 || b.South > 90 || b.North < -90 || b.North > 90 {
		verr.Add("latitude", "must be between -90 and 90")
	}
	if b.West < -180 || b.West > 180 || b.East < -180 || b.East > 180 {
		verr.Add("longitude", "must be between -180 and 180")
	}
	if b.South > b.North {
		verr.Add("bounds", "south must not exceed north")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// WithinBounds loads reports for a map viewport, capped to keep responses
// bounded.
func (q *QueryService) WithinBounds(ctx context.Context, actor Actor, box *BoundingBox) ([]models.HazardReport, error) {
	if verr := box.validate(); verr != nil {
		return nil, verr
	}

	var reports []models.HazardReport
	db := scopeForActor(q.DB.WithContext(ctx).Model(&models.HazardReport{}), actor)
	err := db.
		Where("latitude BETWEEN ? AND ?", box.South, box.North).
		Where("longitude BETWEEN ? AND ?", box.West, box.East).
		Order("created_at DESC").
		Limit(bboxResultCap).
		Find(&reports).Error
	return reports, err
}

// Clusters groups the viewport's reports by rounded coordinates.
func (q *QueryService) Clusters(ctx context.Context, actor Actor, box *BoundingBox, zoom int) ([]Cluster, error) {
	if zoom < 1 || zoom > 20 {
		verr := NewValidationError()
		verr.Add("zoom", "must be between 1 and 20")
		return nil, verr
	}
	reports, err := q.WithinBounds(ctx, actor, box)
	if err != nil {
		return nil, err
	}
	return ClusterReports(reports, zoom), nil
}

type HeatPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Weight    int     `json:"weight"`
}

type HeatmapFilters struct {
	From       time.Time
	To         time.Time
	HazardType string
	Severity   string
}

// Heatmap returns weighted points for a time window.
func (q *QueryService) Heatmap(ctx context.Context, actor Actor, f *HeatmapFilters) ([]HeatPoint, error) {
	verr := NewValidationError()
	if f.HazardType != "" && !models.ValidHazardType(f.HazardType) {
		verr.Add("hazard_type", "unknown hazard type")
	}
	if f.Severity != "" && !models.ValidSeverity(f.Severity) {
		verr.Add("severity", "unknown severity")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	db := scopeForActor(q.DB.WithContext(ctx).Model(&models.HazardReport{}), actor)
	if !f.From.IsZero() {
		db = db.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		db = db.Where("created_at <= ?", f.To)
	}
	if f.HazardType != "" {
		db = db.Where("hazard_type = ?", f.HazardType)
	}
	if f.Severity != "" {
		db = db.Where("severity = ?", f.Severity)
	}

	var rows []models.HazardReport
	if err := db.Select("latitude, longitude, severity").Find(&rows).Error; err != nil {
		return nil, err
	}

	points := make([]HeatPoint, 0, len(rows))
	for i := range rows {
		points = append(points, HeatPoint{
			Latitude:  rows[i].Latitude,
			Longitude: rows[i].Longitude,
			Weight:    HeatWeight(rows[i].Severity),
		})
	}
	return points, nil
}

type CountRow struct {
	Key   string `json:"key" gorm:"column:key"`
	Count int64  `json:"count" gorm:"column:count"`
}

type DayCount struct {
	Day   time.Time `json:"day" gorm:"column:day"`
	Count int64     `json:"count" gorm:"column:count"`
}

type Dashboard struct {
	TotalReports     int64      `json:"total_reports"`
	PendingReports   int64      `json:"pending_reports"`
	VerifiedReports  int64      `json:"verified_reports"`
	EmergencyReports int64      `json:"emergency_reports"`
	ByStatus         []CountRow `json:"by_status"`
	BySeverity       []CountRow `json:"by_severity"`
	ByHazardType     []CountRow `json:"by_hazard_type"`
	ByDay            []DayCount `json:"by_day"`
}

// DashboardStats aggregates the analytics dashboard over a trailing window.
func (q *QueryService) DashboardStats(ctx context.Context, from, to time.Time) (*Dashboard, error) {
	base := func() *gorm.DB {
		return q.DB.WithContext(ctx).Model(&models.HazardReport{}).
			Where("created_at BETWEEN ? AND ?", from, to)
	}

	dash := &Dashboard{}
	if err := base().Count(&dash.TotalReports).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", models.StatusPending).Count(&dash.PendingReports).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", models.StatusVerified).Count(&dash.VerifiedReports).Error; err != nil {
		return nil, err
	}
	if err := base().Where("is_emergency = true").Count(&dash.EmergencyReports).Error; err != nil {
		return nil, err
	}

	if err := base().Select("status AS key, COUNT(*) AS count").Group("status").Scan(&dash.ByStatus).Error; err != nil {
		return nil, err
	}
	if err := base().Select("severity AS key, COUNT(*) AS count").Group("severity").Scan(&dash.BySeverity).Error; err != nil {
		return nil, err
	}
	if err := base().Select("hazard_type AS key, COUNT(*) AS count").Group("hazard_type").Scan(&dash.ByHazardType).Error; err != nil {
		return nil, err
	}
	err := base().
		Select("DATE_TRUNC('day', created_at) AS day, COUNT(*) AS count").
		Group("day").
		Order("day").
		Scan(&dash.ByDay).Error
	if err != nil {
		return nil, err
	}
	return dash, nil
}

// Trends returns per-day report counts for a date range, optionally split
// by hazard type.
func (q *QueryService) Trends(ctx context.Context, from, to time.Time, hazardType string) ([]DayCount, error) {
	if hazardType != "" && !models.ValidHazardType(hazardType) {
		verr := NewValidationError()
		verr.Add("hazard_type", "unknown hazard type")
		return nil, verr
	}

	db := q.DB.WithContext(ctx).Model(&models.HazardReport{}).
		Where("created_at BETWEEN ? AND ?", from, to)
	if hazardType != "" {
		db = db.Where("hazard_type = ?", hazardType)
	}

	var rows []DayCount
	err := db.
		Select("DATE_TRUNC('day', created_at) AS day, COUNT(*) AS count").
		Group("day").
		Order("day").
		Scan(&rows).Error
	return rows, err
}

type VerifierPerformance struct {
	VerifierID    uint    `json:"verifier_id" gorm:"column:verifier_id"`
	VerifierName  string  `json:"verifier_name" gorm:"column:verifier_name"`
	VerifiedCount int64   `json:"verified_count" gorm:"column:verified_count"`
	AvgHours      float64 `json:"avg_hours" gorm:"column:avg_hours"`
}

// VerificationPerformance computes mean hours from creation to verification
// per verifier.
func (q *QueryService) VerificationPerformance(ctx context.Context, from, to time.Time) ([]VerifierPerformance, error) {
	var rows []VerifierPerformance
	err := q.DB.WithContext(ctx).
		Table("hazard_reports").
		Select(`hazard_reports.verified_by_id AS verifier_id,
			users.name AS verifier_name,
			COUNT(hazard_reports.id) AS verified_count,
			AVG(EXTRACT(EPOCH FROM (hazard_reports.verified_at - hazard_reports.created_at)) / 3600.0) AS avg_hours`).
		Joins("JOIN users ON users.id = hazard_reports.verified_by_id").
		Where("hazard_reports.verified_at IS NOT NULL").
		Where("hazard_reports.verified_at BETWEEN ? AND ?", from, to).
		Where("hazard_reports.deleted_at IS NULL").
		Group("hazard_reports.verified_by_id, users.name").
		Order("verified_count DESC").
		Scan(&rows).Error
	return rows, err
}

// ForExport loads all reports in a date range, oldest first, for CSV output.
func (q *QueryService) ForExport(ctx context.Context, from, to time.Time) ([]models.HazardReport, error) {
	var reports []models.HazardReport
	err := q.DB.WithContext(ctx).
		Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at ASC").
		Find(&reports).Error
	return reports, err
}
