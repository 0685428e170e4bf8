package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "scoring_service",
		Subsystem: "persistence",
		Name:      "last_workout_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout persisted to Postgres.",
	})
	workoutsScoredCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scoring_service",
		Subsystem: "engine",
		Name:      "workouts_scored_total",
		Help:      "Workouts run through the scoring pipeline, by classified type.",
	}, []string{"workout_type"})
	domainUpdatesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scoring_service",
		Subsystem: "engine",
		Name:      "domain_updates_total",
		Help:      "Domain score updates produced by scored workouts.",
	}, []string{"domain"})
)

func init() {
	prometheus.MustRegister(workoutPersistGauge, workoutsScoredCounter, domainUpdatesCounter)
}

// RecordWorkoutPersisted updates the persistence watermark gauge.
func RecordWorkoutPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	workoutPersistGauge.Set(float64(ts.Unix()))
}

// RecordWorkoutScored counts a workout through the pipeline.
func RecordWorkoutScored(workoutType string) {
	workoutsScoredCounter.WithLabelValues(workoutType).Inc()
}

// RecordDomainUpdate counts one domain score overwrite.
func RecordDomainUpdate(domain string) {
	domainUpdatesCounter.WithLabelValues(domain).Inc()
}
