// Package events defines the payloads exchanged over Kafka between the
// scoring service and its peers.
package events

import "time"

// MovementPayload mirrors one prescribed movement inside a logged workout.
// OrderIndex is a pointer so an omitted index can be told apart from an
// explicit zero; omitted indexes default to the movement's position.
type MovementPayload struct {
	MovementType string   `json:"movement_type"`
	Reps         int      `json:"reps"`
	LoadLb       *float64 `json:"load_lb,omitempty"`
	Calories     *int     `json:"calories,omitempty"`
	OrderIndex   *int     `json:"order_index,omitempty"`
}

// SplitPayload mirrors one recorded bout time.
type SplitPayload struct {
	RoundNumber int     `json:"round_number"`
	TimeSeconds float64 `json:"time_seconds"`
}

// WorkoutLogged is consumed from upstream trackers; each event is scored
// through the same pipeline as an API-submitted workout.
type WorkoutLogged struct {
	UserID           string            `json:"user_id"`
	Name             string            `json:"name,omitempty"`
	TemplateType     string            `json:"template_type"`
	TotalTimeSeconds int               `json:"total_time_seconds"`
	RoundCount       int               `json:"round_count"`
	Notes            string            `json:"notes,omitempty"`
	PerformedAt      time.Time         `json:"performed_at"`
	Movements        []MovementPayload `json:"movements"`
	Splits           []SplitPayload    `json:"splits,omitempty"`
	IdempotencyKey   string            `json:"idempotency_key,omitempty"`
}

// WorkoutScored is published after a workout has been persisted with its
// computed metrics.
type WorkoutScored struct {
	WorkoutID        string    `json:"workout_id"`
	UserID           string    `json:"user_id"`
	WorkoutType      string    `json:"workout_type"`
	TotalEWU         float64   `json:"total_ewu"`
	DensityPowerMin  float64   `json:"density_power_min"`
	TypeConfidence   float64   `json:"type_confidence"`
	PerformedAt      time.Time `json:"performed_at"`
	ScoredAt         time.Time `json:"scored_at"`
	QualifiedDomains []string  `json:"qualified_domains"`
}

// DomainScorePayload is one domain's score snapshot.
type DomainScorePayload struct {
	Domain      string   `json:"domain"`
	RawValue    float64  `json:"raw_value"`
	Score       *float64 `json:"normalized_score,omitempty"`
	SampleCount int      `json:"sample_count"`
	Confidence  string   `json:"confidence"`
}

// CompletenessUpdated is published when a workout moved one or more of the
// user's domain scores.
type CompletenessUpdated struct {
	UserID    string               `json:"user_id"`
	WorkoutID string               `json:"workout_id"`
	Domains   []DomainScorePayload `json:"domains"`
	UpdatedAt time.Time            `json:"updated_at"`
}
