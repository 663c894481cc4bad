package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeEmergencyTruthTable(t *testing.T) {
	severities := []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	urgencies := []string{UrgencyRoutine, UrgencyUrgent, UrgencyImmediate, UrgencyEmergency}

	for _, severity := range severities {
		for _, urgency := range urgencies {
			r := HazardReport{Severity: severity, Urgency: urgency}
			r.ComputeEmergency()

			want := severity == SeverityCritical || urgency == UrgencyEmergency
			assert.Equal(t, want, r.IsEmergency, "severity=%s urgency=%s", severity, urgency)
		}
	}
}

func TestComputeEmergencyRecompute(t *testing.T) {
	r := HazardReport{Severity: SeverityCritical, Urgency: UrgencyRoutine}
	r.ComputeEmergency()
	assert.True(t, r.IsEmergency)

	r.Severity = SeverityLow
	r.ComputeEmergency()
	assert.False(t, r.IsEmergency, "flag must clear when severity drops")
}

func TestValidHazardType(t *testing.T) {
	for _, h := range HazardTypes {
		assert.True(t, ValidHazardType(h), h)
	}
	assert.False(t, ValidHazardType("earthquake"))
	assert.False(t, ValidHazardType(""))
}
