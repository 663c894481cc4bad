package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles, ordered by privilege. Role is a plain column rather than a join
// table; every authorization decision keys off it.
const (
	RoleCitizen  = "citizen"
	RoleVerifier = "verifier"
	RoleAnalyst  = "analyst"
	RoleAdmin    = "admin"
)

const (
	AccountActive    = "active"
	AccountInactive  = "inactive"
	AccountSuspended = "suspended"
	AccountPending   = "pending"
)

type User struct {
	ID                uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	Name              string         `gorm:"not null" json:"name"`
	Email             string         `gorm:"unique;not null" json:"email"` // stored lowercase
	Password          string         `gorm:"not null" json:"-"`
	Role              string         `gorm:"not null;default:'citizen'" json:"role"`
	AccountStatus     string         `gorm:"not null;default:'active'" json:"account_status"`
	VerificationLevel int            `gorm:"default:0" json:"verification_level"`
	LastActiveAt      *time.Time     `json:"last_active_at"`
	Reports           []HazardReport `json:"-" gorm:"foreignKey:UserID"`
	RefreshTokens     []RefreshToken `json:"-" gorm:"foreignKey:UserID"`
}

// HasVerifierRights reports whether the user's role allows verifying or
// rejecting hazard reports.
func (u *User) HasVerifierRights() bool {
	return u.Role == RoleVerifier || u.Role == RoleAnalyst || u.Role == RoleAdmin
}

func ValidRole(role string) bool {
	switch role {
	case RoleCitizen, RoleVerifier, RoleAnalyst, RoleAdmin:
		return true
	}
	return false
}

func ValidAccountStatus(status string) bool {
	switch status {
	case AccountActive, AccountInactive, AccountSuspended, AccountPending:
		return true
	}
	return false
}
