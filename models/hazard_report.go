package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	StatusPending     = "pending"
	StatusUnderReview = "under_review"
	StatusVerified    = "verified"
	StatusRejected    = "rejected"
	StatusResolved    = "resolved"
	StatusDeleted     = "deleted"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

const (
	UrgencyRoutine   = "routine"
	UrgencyUrgent    = "urgent"
	UrgencyImmediate = "immediate"
	UrgencyEmergency = "emergency"
)

const (
	VisibilityPublic     = "public"
	VisibilityRestricted = "restricted"
	VisibilityPrivate    = "private"
)

// HazardTypes is the closed set of reportable hazard categories.
var HazardTypes = []string{
	"tsunami",
	"storm_surge",
	"high_waves",
	"rip_current",
	"coastal_flooding",
	"oil_spill",
	"debris",
	"erosion",
	"pollution",
	"other",
}

type HazardReport struct {
	ID                uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	PublicCode        string         `gorm:"uniqueIndex;not null" json:"public_code"` // immutable after create
	HazardType        string         `gorm:"not null;index" json:"hazard_type"`
	Severity          string         `gorm:"not null;index" json:"severity"`
	Urgency           string         `gorm:"not null;default:'routine'" json:"urgency"`
	Description       string         `gorm:"type:text;not null" json:"description"`
	Latitude          float64        `gorm:"not null;type:decimal(10,8)" json:"latitude"`
	Longitude         float64        `gorm:"not null;type:decimal(11,8)" json:"longitude"`
	Address           string         `json:"address"`
	Media             []ReportMedia  `json:"media" gorm:"foreignKey:ReportID"`
	Status            string         `gorm:"not null;default:'pending';index" json:"status"`
	VerificationLevel int            `gorm:"default:0" json:"verification_level"`
	Visibility        string         `gorm:"not null;default:'public'" json:"visibility"`
	UserID            uint           `gorm:"not null;index" json:"user_id"`
	User              User           `json:"-" gorm:"foreignKey:UserID"`
	VerifiedByID      *uint          `json:"verified_by_id"`
	VerifiedBy        *User          `json:"-" gorm:"foreignKey:VerifiedByID"`
	VerifiedAt        *time.Time     `json:"verified_at"`
	RejectionReason   *string        `json:"rejection_reason,omitempty"`
	IsEmergency       bool           `gorm:"default:false;index" json:"is_emergency"`
	Tags              pq.StringArray `json:"tags" gorm:"type:text[]"`
	ExpiresAt         *time.Time     `json:"expires_at,omitempty"`
	Distance          float64        `json:"distance,omitempty" gorm:"-"`
}

// ComputeEmergency derives the emergency flag from severity and urgency.
// Must be re-applied whenever either field changes.
func (r *HazardReport) ComputeEmergency() {
	r.IsEmergency = r.Severity == SeverityCritical || r.Urgency == UrgencyEmergency
}

func ValidHazardType(t string) bool {
	for _, h := range HazardTypes {
		if h == t {
			return true
		}
	}
	return false
}

func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

func ValidUrgency(u string) bool {
	switch u {
	case UrgencyRoutine, UrgencyUrgent, UrgencyImmediate, UrgencyEmergency:
		return true
	}
	return false
}

func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityRestricted, VisibilityPrivate:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusVerified, StatusRejected, StatusResolved, StatusDeleted:
		return true
	}
	return false
}
