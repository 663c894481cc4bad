package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/aquasentra/api-go/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const resolvedRetention = 90 * 24 * time.Hour

// LifecycleService owns every status transition of a hazard report. All
// transitions execute as conditional updates on the current status, so two
// verifiers racing on the same pending report cannot both win.
type LifecycleService struct {
	DB *gorm.DB
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{DB: db}
}

type CreateReportInput struct {
	HazardType  string   `json:"hazard_type"`
	Severity    string   `json:"severity"`
	Urgency     string   `json:"urgency"`
	Description string   `json:"description"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Address     string   `json:"address"`
	Visibility  string   `json:"visibility"`
	Tags        []string `json:"tags"`
}

type UpdateReportInput struct {
	HazardType  *string  `json:"hazard_type"`
	Severity    *string  `json:"severity"`
	Urgency     *string  `json:"urgency"`
	Description *string  `json:"description"`
	Address     *string  `json:"address"`
	Visibility  *string  `json:"visibility"`
	Tags        []string `json:"tags"`
}

// GeneratePublicCode builds the shareable short code: a timestamp-derived
// prefix plus a random suffix. Uniqueness by construction, not checked.
func GeneratePublicCode() string {
	prefix := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return "HZ-" + prefix + "-" + suffix
}

func validateCreate(input *CreateReportInput) *ValidationError {
	verr := NewValidationError()

	if !models.ValidHazardType(input.HazardType) {
		verr.Add("hazard_type", "must be one of: "+strings.Join(models.HazardTypes, ", "))
	}
	if !models.ValidSeverity(input.Severity) {
		verr.Add("severity", "must be one of: low, medium, high, critical")
	}
	if input.Urgency != "" && !models.ValidUrgency(input.Urgency) {
		verr.Add("urgency", "must be one of: routine, urgent, immediate, emergency")
	}
	desc := strings.TrimSpace(input.Description)
	if len(desc) < 10 || len(desc) > 2000 {
		verr.Add("description", "must be between 10 and 2000 characters")
	}
	if input.Latitude < -90 || input.Latitude > 90 {
		verr.Add("latitude", "must be between -90 and 90")
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		verr.Add("longitude", "must be between -180 and 180")
	}
	if input.Visibility != "" && !models.ValidVisibility(input.Visibility) {
		verr.Add("visibility", "must be one of: public, restricted, private")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// Create validates the input and persists a new report in pending state.
func (s *LifecycleService) Create(ctx context.Context, ownerID uint, input *CreateReportInput) (*models.HazardReport, error) {
	if verr := validateCreate(input); verr != nil {
		return nil, verr
	}

	urgency := input.Urgency
	if urgency == "" {
		urgency = models.UrgencyRoutine
	}
	visibility := input.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	report := &models.HazardReport{
		PublicCode:  GeneratePublicCode(),
		HazardType:  input.HazardType,
		Severity:    input.Severity,
		Urgency:     urgency,
		Description: strings.TrimSpace(input.Description),
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Address:     input.Address,
		Status:      models.StatusPending,
		Visibility:  visibility,
		UserID:      ownerID,
		Tags:        pq.StringArray(input.Tags),
	}
	report.ComputeEmergency()

	if err := s.DB.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}

	reportsCreated.WithLabelValues(report.HazardType, report.Severity).Inc()
	return report, nil
}

func (s *LifecycleService) get(ctx context.Context, id uint) (*models.HazardReport, error) {
	var report models.HazardReport
	if err := s.DB.WithContext(ctx).First(&report, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// transition performs the guarded status change. The WHERE clause on the
// current status is the compare-and-swap; zero rows affected means another
// request moved the report first.
func (s *LifecycleService) transition(ctx context.Context, id uint, from, to string, updates map[string]interface{}) error {
	updates["status"] = to
	res := s.DB.WithContext(ctx).
		Model(&models.HazardReport{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if from == models.StatusPending {
			return ErrNotPending
		}
		return ErrInvalidTransition
	}
	statusChanged.WithLabelValues(from, to).Inc()
	return nil
}

// MarkUnderReview moves a pending report to under_review. Owner only.
func (s *LifecycleService) MarkUnderReview(ctx context.Context, actor Actor, id uint) (*models.HazardReport, error) {
	report, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanPerform(actor, report, ActionMarkUnderReview) {
		return nil, ErrForbidden
	}
	if err := s.transition(ctx, id, models.StatusPending, models.StatusUnderReview, map[string]interface{}{}); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// Verify moves a pending report to verified and records the verifier.
func (s *LifecycleService) Verify(ctx context.Context, actor Actor, id uint) (*models.HazardReport, error) {
	report, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.hasVerifierRights() {
		return nil, ErrForbidden
	}
	if !CanPerform(actor, report, ActionVerify) {
		return nil, ErrNotPending
	}
	now := time.Now()
	err = s.transition(ctx, id, models.StatusPending, models.StatusVerified, map[string]interface{}{
		"verified_by_id": actor.UserID,
		"verified_at":    now,
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// Reject moves a pending report to rejected. The reason is mandatory.
func (s *LifecycleService) Reject(ctx context.Context, actor Actor, id uint, reason string) (*models.HazardReport, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < 10 || len(reason) > 1000 {
		verr := NewValidationError()
		verr.Add("rejection_reason", "must be between 10 and 1000 characters")
		return nil, verr
	}

	report, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.hasVerifierRights() {
		return nil, ErrForbidden
	}
	if !CanPerform(actor, report, ActionReject) {
		return nil, ErrNotPending
	}
	now := time.Now()
	err = s.transition(ctx, id, models.StatusPending, models.StatusRejected, map[string]interface{}{
		"verified_by_id":   actor.UserID,
		"verified_at":      now,
		"rejection_reason": reason,
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// Resolve closes a verified report and schedules it for expiry.
func (s *LifecycleService) Resolve(ctx context.Context, actor Actor, id uint) (*models.HazardReport, error) {
	report, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanPerform(actor, report, ActionResolve) {
		return nil, ErrForbidden
	}
	expires := time.Now().Add(resolvedRetention)
	err = s.transition(ctx, id, models.StatusVerified, models.StatusResolved, map[string]interface{}{
		"expires_at": expires,
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// Update changes non-status fields. The emergency flag is recomputed when
// severity or urgency move.
func (s *LifecycleService) Update(ctx context.Context, actor Actor, id uint, input *UpdateReportInput) (*models.HazardReport, error) {
	report, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanPerform(actor, report, ActionEdit) {
		return nil, ErrForbidden
	}

	verr := NewValidationError()
	updates := map[string]interface{}{}

	if input.HazardType != nil {
		if !models.ValidHazardType(*input.HazardType) {
			verr.Add("hazard_type", "unknown hazard type")
		} else {
			updates["hazard_type"] = *input.HazardType
		}
	}
	severity := report.Severity
	if input.Severity != nil {
		if !models.ValidSeverity(*input.Severity) {
			verr.Add("severity", "unknown severity")
		} else {
			severity = *input.Severity
			updates["severity"] = severity
		}
	}
	urgency := report.Urgency
	if input.Urgency != nil {
		if !models.ValidUrgency(*input.Urgency) {
			verr.Add("urgency", "unknown urgency")
		} else {
			urgency = *input.Urgency
			updates["urgency"] = urgency
		}
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		if len(desc) < 10 || len(desc) > 2000 {
			verr.Add("description", "must be between 10 and 2000 characters")
		} else {
			updates["description"] = desc
		}
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Visibility != nil {
		if !models.ValidVisibility(*input.Visibility) {
			verr.Add("visibility", "unknown visibility")
		} else {
			updates["visibility"] = *input.Visibility
		}
	}
	if input.Tags != nil {
		updates["tags"] = pq.StringArray(input.Tags)
	}

	if verr.HasErrors() {
		return nil, verr
	}
	if len(updates) == 0 {
		return report, nil
	}

	updates["is_emergency"] = severity == models.SeverityCritical || urgency == models.UrgencyEmergency

	if err := s.DB.WithContext(ctx).Model(report).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// SoftDelete hides the report from the API for good. The row survives as
// status=deleted behind the gorm soft-delete marker.
func (s *LifecycleService) SoftDelete(ctx context.Context, actor Actor, id uint) error {
	report, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !CanPerform(actor, report, ActionDelete) {
		return ErrForbidden
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		from := report.Status
		if err := tx.Model(report).Updates(map[string]interface{}{
			"status":     models.StatusDeleted,
			"visibility": models.VisibilityPrivate,
		}).Error; err != nil {
			return err
		}
		if err := tx.Delete(report).Error; err != nil {
			return err
		}
		statusChanged.WithLabelValues(from, models.StatusDeleted).Inc()
		return nil
	})
}

// PurgeExpired hard-deletes resolved reports whose retention window passed.
// Returns the number of rows removed.
func (s *LifecycleService) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Unscoped().
		Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).
		Delete(&models.HazardReport{})
	return res.RowsAffected, res.Error
}
