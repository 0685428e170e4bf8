package domain

import (
	"context"
	"time"

	"example.com/scoring/internal/engine"
)

// Movement is one prescribed movement within a workout's round template.
// LoadLb is set for barbell work, Calories for machine work.
type Movement struct {
	Kind       engine.MovementKind
	Modality   engine.Modality
	Reps       int
	LoadLb     *float64
	Calories   *int
	OrderIndex int
}

// Split is one recorded bout time.
type Split struct {
	RoundNumber int
	TimeSeconds float64
}

// WorkoutMetrics is the persisted metric row for a workout, flattened from
// the engine's computed bundle.
type WorkoutMetrics struct {
	TotalEWU        float64
	DensityPowerMin float64
	DensityPowerSec float64

	ActivePower              *float64
	PerRoundPower            []float64
	RepeatabilityDrift       *float64
	RepeatabilitySpread      *float64
	RepeatabilityConsistency *float64

	LiftEWU         float64
	MachineEWU      float64
	GymnasticsEWU   float64
	LiftShare       float64
	MachineShare    float64
	GymnasticsShare float64

	TotalActiveSeconds *float64
	RestSeconds        *float64
	ComputedAt         time.Time
}

// Workout is the aggregate stored in Postgres. Movements describe one round;
// the round is repeated RoundCount times.
type Workout struct {
	ID               string
	UserID           string
	Name             string
	WorkoutType      engine.WorkoutType
	TypeConfidence   float64
	TypeReasoning    string
	TemplateType     engine.TemplateType
	TotalTimeSeconds int
	RoundCount       int
	Notes            string
	PerformedAt      time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Movements []Movement
	Splits    []Split
	Metrics   *WorkoutMetrics
}

// Cursor models the list pagination token.
type Cursor struct {
	PerformedAt time.Time
	ID          string
}

// ListFilter narrows workout listings.
type ListFilter struct {
	WorkoutType string
	Start       *time.Time
	End         *time.Time
}

// WorkoutRepository captures persistence operations. Create must persist the
// aggregate, its children, and the outbox events for the supplied domain
// scores in a single transaction.
type WorkoutRepository interface {
	FindByIdempotency(ctx context.Context, userID, idempotencyKey string) (*Workout, error)
	Create(ctx context.Context, workout Workout, idempotencyKey string, updatedScores []*engine.DomainScore) error
	Get(ctx context.Context, userID, workoutID string) (*Workout, error)
	ListByUser(ctx context.Context, userID string, filter ListFilter, cursor *Cursor, limit int) ([]Workout, *Cursor, error)
	ListSince(ctx context.Context, userID string, since time.Time) ([]Workout, error)
	ListForExport(ctx context.Context, userID string, start, end *time.Time) ([]Workout, error)
	Delete(ctx context.Context, userID, workoutID string) (bool, error)
}
