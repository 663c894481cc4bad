package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aquasentra/api-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Filter validation runs before any SQL, so these tests need no database.

func TestListRejectsUnknownFilters(t *testing.T) {
	q := NewQueryService(nil)
	actor := Actor{UserID: 1, Role: "citizen"}

	cases := []ListFilters{
		{Status: "bogus"},
		{HazardType: "earthquake"},
		{Severity: "catastrophic"},
		{SortBy: "password"},
		{SortDir: "sideways"},
	}

	for _, f := range cases {
		filters := f
		_, err := q.List(context.Background(), actor, &filters)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "filters %+v must be rejected", f)
	}
}

func TestWithinRadiusRejectsBadInput(t *testing.T) {
	q := NewQueryService(nil)
	actor := Actor{UserID: 1, Role: "citizen"}

	cases := []RadiusQuery{
		{Latitude: 91, Longitude: 0, RadiusKm: 5},
		{Latitude: 0, Longitude: 181, RadiusKm: 5},
		{Latitude: 0, Longitude: 0, RadiusKm: 0},
		{Latitude: 0, Longitude: 0, RadiusKm: -2},
	}

	for _, query := range cases {
		rq := query
		_, err := q.WithinRadius(context.Background(), actor, &rq)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "query %+v must be rejected", query)
	}
}

func TestBoundingBoxValidation(t *testing.T) {
	valid := BoundingBox{South: 33, West: -119, North: 35, East: -117}
	assert.Nil(t, valid.validate())

	inverted := BoundingBox{South: 35, West: -119, North: 33, East: -117}
	require.NotNil(t, inverted.validate())

	outOfRange := BoundingBox{South: -95, West: -119, North: 35, East: -117}
	require.NotNil(t, outOfRange.validate())
}

func TestListScopesCitizenToOwnOrPublic(t *testing.T) {
	db, mock := newMockDB(t)
	q := NewQueryService(db)
	citizen := Actor{UserID: 7, Role: models.RoleCitizen}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "hazard_reports" WHERE \(user_id = \$1 OR visibility = \$2\) AND "hazard_reports"\."deleted_at" IS NULL`).
		WithArgs(int64(7), models.VisibilityPublic).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT \* FROM "hazard_reports" WHERE \(user_id = \$1 OR visibility = \$2\) AND "hazard_reports"\."deleted_at" IS NULL`).
		WillReturnRows(reportRows(3, models.StatusPending, 7))
	mock.ExpectQuery(`SELECT \* FROM "report_media"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "report_id"}))

	page, err := q.List(context.Background(), citizen, &ListFilters{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Reports, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListElevatedRoleUnscoped(t *testing.T) {
	db, mock := newMockDB(t)
	q := NewQueryService(db)
	verifier := Actor{UserID: 9, Role: models.RoleVerifier}

	// No ownership clause for elevated roles, only the soft-delete filter.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "hazard_reports" WHERE "hazard_reports"\."deleted_at" IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "hazard_reports" WHERE "hazard_reports"\."deleted_at" IS NULL`).
		WillReturnRows(reportRows(3, models.StatusPending, 7))
	mock.ExpectQuery(`SELECT \* FROM "report_media"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "report_id"}))

	page, err := q.List(context.Background(), verifier, &ListFilters{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinRadiusPrefiltersNearestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	q := NewQueryService(db)
	verifier := Actor{UserID: 9, Role: models.RoleVerifier}

	// The capped prefilter must order by proximity in SQL; the exact
	// haversine cut happens afterwards.
	mock.ExpectQuery(`ORDER BY POWER\(latitude - \$\d+, 2\) \+ POWER\(\(longitude - \$\d+\) \* COS\(RADIANS\(\$\d+\)\), 2\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "latitude", "longitude"}).
			AddRow(1, 34.02, -118.49).
			AddRow(2, 34.05, -118.49).
			AddRow(3, 34.50, -118.49))

	reports, err := q.WithinRadius(context.Background(), verifier, &RadiusQuery{
		Latitude:  34.02,
		Longitude: -118.49,
		RadiusKm:  10,
	})
	require.NoError(t, err)
	require.Len(t, reports, 2, "the far candidate fails the exact distance check")
	assert.Equal(t, uint(1), reports[0].ID)
	assert.Equal(t, uint(2), reports[1].ID)
	assert.LessOrEqual(t, reports[0].Distance, reports[1].Distance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardStatsCounts(t *testing.T) {
	db, mock := newMockDB(t)
	q := NewQueryService(db)
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 30)

	countQ := `SELECT count\(\*\) FROM "hazard_reports" WHERE \(created_at BETWEEN \$1 AND \$2\)`
	mock.ExpectQuery(countQ).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(countQ + ` AND status = \$3`).
		WithArgs(from, to, models.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(countQ + ` AND status = \$3`).
		WithArgs(from, to, models.StatusVerified).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(countQ + ` AND is_emergency = true`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT status AS key, COUNT\(\*\) AS count FROM "hazard_reports"`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).
			AddRow(models.StatusPending, 2).
			AddRow(models.StatusVerified, 1))
	mock.ExpectQuery(`SELECT severity AS key, COUNT\(\*\) AS count FROM "hazard_reports"`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow(models.SeverityCritical, 1))
	mock.ExpectQuery(`SELECT hazard_type AS key, COUNT\(\*\) AS count FROM "hazard_reports"`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow("rip_current", 3))
	mock.ExpectQuery(`SELECT DATE_TRUNC\('day', created_at\) AS day, COUNT\(\*\) AS count FROM "hazard_reports"`).
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).AddRow(from, 3))

	dash, err := q.DashboardStats(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(5), dash.TotalReports)
	assert.Equal(t, int64(2), dash.PendingReports)
	assert.Equal(t, int64(1), dash.VerifiedReports, "verified count filters on verified status")
	assert.Equal(t, int64(1), dash.EmergencyReports)
	assert.Len(t, dash.ByStatus, 2)
	assert.Len(t, dash.ByDay, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClustersRejectsBadZoom(t *testing.T) {
	q := NewQueryService(nil)
	actor := Actor{UserID: 1, Role: "citizen"}
	box := &BoundingBox{South: 33, West: -119, North: 35, East: -117}

	for _, zoom := range []int{0, -1, 21} {
		_, err := q.Clusters(context.Background(), actor, box, zoom)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "zoom %d must be rejected", zoom)
	}
}
