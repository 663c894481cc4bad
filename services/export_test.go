package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/aquasentra/api-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReportsCSVLineCount(t *testing.T) {
	now := time.Now()
	reports := make([]models.HazardReport, 3)
	for i := range reports {
		reports[i] = models.HazardReport{
			PublicCode:  "HZ-TEST-000" + string(rune('1'+i)),
			HazardType:  "debris",
			Severity:    models.SeverityMedium,
			Urgency:     models.UrgencyRoutine,
			Status:      models.StatusPending,
			Description: "Floating debris field, northbound current",
			Latitude:    34.0,
			Longitude:   -118.0,
			CreatedAt:   now,
		}
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReportsCSV(&buf, reports))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, len(reports)+1, "header plus one line per report")
}

func TestWriteReportsCSVRoundTrips(t *testing.T) {
	verifiedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reports := []models.HazardReport{{
		PublicCode:  "HZ-ABC-1234",
		HazardType:  "oil_spill",
		Severity:    models.SeverityCritical,
		Urgency:     models.UrgencyEmergency,
		Status:      models.StatusVerified,
		Description: `Slick spreading, "rainbow" sheen near the marina`,
		Latitude:    33.75,
		Longitude:   -118.25,
		Address:     "Marina del Rey, CA",
		IsEmergency: true,
		Tags:        []string{"spill", "marina"},
		CreatedAt:   verifiedAt.Add(-2 * time.Hour),
		VerifiedAt:  &verifiedAt,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteReportsCSV(&buf, reports))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header, row := records[0], records[1]
	assert.Equal(t, len(header), len(row))
	assert.Equal(t, "HZ-ABC-1234", row[0])
	assert.Equal(t, "oil_spill", row[1])
	assert.Equal(t, "true", row[9])
	assert.Equal(t, "spill|marina", row[10])
	assert.Contains(t, row[5], `"rainbow"`, "quoting must survive the round trip")
}

func TestWriteReportsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReportsCSV(&buf, nil))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 1, "header only")
}
