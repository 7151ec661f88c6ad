package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	BookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of bookings created by initial status",
		},
		[]string{"status"},
	)
	BookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_conflicts_total",
			Help: "Total number of booking writes rejected for overlapping an active booking",
		},
	)
	BookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Total number of booking status changes",
		},
		[]string{"from", "to"},
	)
	SlotGenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "slot_generation_duration_seconds",
			Help:    "Duration of available slot computation in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
)

func InitMetrics() {
	for _, c := range []prometheus.Collector{
		BookingsCreated,
		BookingConflicts,
		BookingTransitions,
		SlotGenerationDuration,
	} {
		if err := prometheus.Register(c); err != nil {
			log.Error().Err(err).Msg("Failed to register metric")
		}
	}
}
