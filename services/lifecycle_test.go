package services

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aquasentra/api-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gdb, mock
}

func reportRows(id uint, status string, ownerID uint) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "status", "user_id", "severity", "urgency", "visibility", "public_code"}).
		AddRow(id, status, ownerID, models.SeverityHigh, models.UrgencyRoutine, models.VisibilityPublic, "HZ-TEST-0001")
}

func TestGeneratePublicCode(t *testing.T) {
	a := GeneratePublicCode()
	b := GeneratePublicCode()

	assert.True(t, strings.HasPrefix(a, "HZ-"))
	assert.NotEqual(t, a, b, "codes must differ between calls")
	assert.GreaterOrEqual(t, len(a), 10)
}

func TestCreateValidation(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewLifecycleService(db)

	_, err := svc.Create(context.Background(), 1, &CreateReportInput{
		HazardType:  "volcano",
		Severity:    "apocalyptic",
		Description: "too short",
		Latitude:    120,
		Longitude:   -200,
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "hazard_type")
	assert.Contains(t, verr.Fields, "severity")
	assert.Contains(t, verr.Fields, "description")
	assert.Contains(t, verr.Fields, "latitude")
	assert.Contains(t, verr.Fields, "longitude")
	assert.NoError(t, mock.ExpectationsWereMet(), "no write may happen on invalid input")
}

func TestCreatePendingDefaults(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewLifecycleService(db)

	mock.ExpectQuery(`INSERT INTO "hazard_reports"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	report, err := svc.Create(context.Background(), 42, &CreateReportInput{
		HazardType:  "rip_current",
		Severity:    models.SeverityCritical,
		Description: "Strong rip current pulling swimmers out past the pier",
		Latitude:    34.0194,
		Longitude:   -118.4912,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, report.Status)
	assert.Nil(t, report.VerifiedByID)
	assert.Nil(t, report.VerifiedAt)
	assert.NotEmpty(t, report.PublicCode)
	assert.True(t, report.IsEmergency, "critical severity implies emergency")
	assert.Equal(t, models.UrgencyRoutine, report.Urgency)
	assert.Equal(t, models.VisibilityPublic, report.Visibility)
	assert.Equal(t, uint(42), report.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyHappyPath(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewLifecycleService(db)
	verifier := Actor{UserID: 9, Role: models.RoleVerifier}

	mock.ExpectQuery(`SELECT \* FROM "hazard_reports"`).
		WillReturnRows(reportRows(5, models.StatusPending, 1))
	mock.ExpectExec(`UPDATE "hazard_reports" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "hazard_reports"`).
		WillReturnRows(reportRows(5, models.StatusVerified, 1))

	report, err := svc.Verify(context.Background(), verifier, 5)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, report.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyByCitizenForbidden(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewLifecycleService(db)
	citizen := Actor{UserID: 1, Role: models.RoleCitizen}

	mock.ExpectQuery(`SELECT \* FROM "hazard_reports"`).
		WillReturnRows(reportRows(5, models.StatusPending, 1))

	_, err := svc.Verify(context.Background(), citizen, 5)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet(), "no update may run for a forbidden actor")
}

func TestVerifyAlreadyVerifiedConflict(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewLifecycleService(db)
	verifier := Actor{UserID: 9, Role: models.RoleAnalyst}

	mock.ExpectQuery(`SELECT \* FROM "hazard_reports"`).
		WillReturnRows(reportRows(5, models.StatusVerified, 1))

	_, err := svc.Verify(context.Background(), verifier, 5)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyLosesRaceConflict(t *testing.T) {
	// The report reads as pending but another verifier commits first: the
	// conditional update touches zero rows and the caller gets a conflict.
	db, mock := newMockDB(t)
	svc := NewLifecycleService(db)
	verifier := Actor{UserID: 9, Role: models.RoleVerifier}

	mock.ExpectQuery(`SELECT \* FROM "hazard_reports"`).
		WillReturnRows(reportRows(5, models.StatusPending, 1))
	mock.ExpectExec(`UPDATE "hazard_reports" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Verify(context.Background(), verifier, 5)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectRequiresReason(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewLifecycleService(db)
	verifier := Actor{UserID: 9, Role: models.RoleVerifier}

	for _, reason := range []string{"", "too short", strings.Repeat("x", 1001)} {
		_, err := svc.Reject(context.Background(), verifier, 5, reason)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "reason %q must fail validation", reason)
		assert.Contains(t, verr.Fields, "rejection_reason")
	}
	assert.NoError(t, mock.ExpectationsWereMet(), "invalid reasons must not reach the database")
}

func TestRejectHappyPath(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewLifecycleService(db)
	verifier := Actor{UserID: 9, Role: models.RoleVerifier}

	mock.ExpectQuery(`SELECT \* FROM "hazard_reports"`).
		WillReturnRows(reportRows(5, models.StatusPending, 1))
	mock.ExpectExec(`UPDATE "hazard_reports" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "hazard_reports"`).
		WillReturnRows(reportRows(5, models.StatusRejected, 1))

	report, err := svc.Reject(context.Background(), verifier, 5, "Duplicate of an existing verified report")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, report.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveRequiresVerifiedState(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewLifecycleService(db)
	owner := Actor{UserID: 1, Role: models.RoleCitizen}

	mock.ExpectQuery(`SELECT \* FROM "hazard_reports"`).
		WillReturnRows(reportRows(5, models.StatusPending, 1))
	mock.ExpectExec(`UPDATE "hazard_reports" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Resolve(context.Background(), owner, 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}
