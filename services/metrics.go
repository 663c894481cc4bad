package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hazard_reports_created_total",
			Help: "Total number of hazard reports created",
		},
		[]string{"hazard_type", "severity"},
	)

	statusChanged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hazard_reports_status_changed_total",
			Help: "Total number of report status transitions",
		},
		[]string{"from_status", "to_status"},
	)
)
