package models

import (
	"time"

	"gorm.io/gorm"
)

// ReportMedia is a file attached to a hazard report. FileName is the storage
// object key; URL is where clients fetch it from.
type ReportMedia struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	ReportID     uint           `gorm:"not null;index" json:"report_id"`
	FileName     string         `gorm:"not null" json:"file_name"`
	OriginalName string         `json:"original_name"`
	MimeType     string         `gorm:"size:100" json:"mime_type"`
	SizeBytes    int64          `json:"size_bytes"`
	URL          string         `gorm:"not null" json:"url"`
	ThumbnailURL string         `json:"thumbnail_url,omitempty"`
	Width        int            `json:"width,omitempty"`
	Height       int            `json:"height,omitempty"`
}
