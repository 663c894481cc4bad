package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage persists report media. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Save writes the object and returns the public URL clients fetch it from.
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// GenerateKey builds a collision-free object key for an uploaded file,
// partitioned by report.
func GenerateKey(reportID uint, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("reports/%d/%d-%s%s", reportID, time.Now().Unix(), uuid.NewString()[:8], ext)
}
