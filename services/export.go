package services

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aquasentra/api-go/models"
)

var exportHeader = []string{
	"public_code", "hazard_type", "severity", "urgency", "status",
	"description", "latitude", "longitude", "address", "is_emergency",
	"tags", "created_at", "verified_at",
}

// WriteReportsCSV streams reports as CSV: one header line plus one line per
// report.
func WriteReportsCSV(w io.Writer, reports []models.HazardReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for i := range reports {
		r := &reports[i]
		verifiedAt := ""
		if r.VerifiedAt != nil {
			verifiedAt = r.VerifiedAt.Format(time.RFC3339)
		}
		row := []string{
			r.PublicCode,
			r.HazardType,
			r.Severity,
			r.Urgency,
			r.Status,
			r.Description,
			strconv.FormatFloat(r.Latitude, 'f', 6, 64),
			strconv.FormatFloat(r.Longitude, 'f', 6, 64),
			r.Address,
			strconv.FormatBool(r.IsEmergency),
			strings.Join(r.Tags, "|"),
			r.CreatedAt.Format(time.RFC3339),
			verifiedAt,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
