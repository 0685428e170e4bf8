// Package domain holds the workout scoring workflows: logging a workout runs
// the full compute pipeline and folds the result into the user's
// completeness scores.
package domain

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"example.com/scoring/internal/engine"
)

var (
	// ErrWorkoutNotFound is returned when a workout cannot be located.
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrInvalidDomain is returned for a domain tag outside the fixed set.
	ErrInvalidDomain = errors.New("invalid domain")
	// ErrInvalidPeriod is returned for an unsupported trend period.
	ErrInvalidPeriod = errors.New("invalid trend period")
)

// Service orchestrates workout scoring workflows.
type Service struct {
	repo          WorkoutRepository
	converter     engine.Converter
	scorer        *engine.Scorer
	distributions engine.DistributionStore
}

// NewService constructs a Service.
func NewService(repo WorkoutRepository, converter engine.Converter, scorer *engine.Scorer, distributions engine.DistributionStore) *Service {
	return &Service{
		repo:          repo,
		converter:     converter,
		scorer:        scorer,
		distributions: distributions,
	}
}

// MovementInput is one movement in a log request.
type MovementInput struct {
	Kind       engine.MovementKind
	Reps       int
	LoadLb     *float64
	Calories   *int
	OrderIndex int
}

// SplitInput is one recorded bout time in a log request.
type SplitInput struct {
	RoundNumber int
	TimeSeconds float64
}

// LogWorkoutInput captures a workout submission from the API or consumer.
type LogWorkoutInput struct {
	UserID           string
	Name             string
	TemplateType     engine.TemplateType
	TotalTimeSeconds int
	RoundCount       int
	Notes            string
	PerformedAt      time.Time
	Movements        []MovementInput
	Splits           []SplitInput
	IdempotencyKey   string
}

// LogWorkoutResult bundles everything produced by scoring one workout.
type LogWorkoutResult struct {
	Workout        *Workout
	Classification engine.Classification
	Metrics        engine.ComputedMetrics
	UpdatedScores  []*engine.DomainScore
	Replay         bool
}

// LogWorkout runs the scoring pipeline and persists the workout, its metric
// row, and the outbox events in one transaction. Replays of the same
// idempotency key return the stored workout without recomputing.
func (s *Service) LogWorkout(ctx context.Context, input LogWorkoutInput) (*LogWorkoutResult, error) {
	if input.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotency(ctx, input.UserID, input.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &LogWorkoutResult{Workout: existing, Replay: true}, nil
		}
	}

	entries := make([]engine.MovementEntry, 0, len(input.Movements))
	for _, m := range input.Movements {
		entry := engine.MovementEntry{
			Kind:       m.Kind,
			Reps:       m.Reps,
			OrderIndex: m.OrderIndex,
		}
		if m.LoadLb != nil {
			entry.LoadLb = *m.LoadLb
		}
		if m.Calories != nil {
			entry.Calories = *m.Calories
		}
		entries = append(entries, entry)
	}

	splits := make([]engine.SplitEntry, 0, len(input.Splits))
	for _, sp := range input.Splits {
		splits = append(splits, engine.SplitEntry{RoundNumber: sp.RoundNumber, Seconds: sp.TimeSeconds})
	}

	units := s.converter.ConvertWorkout(entries, input.RoundCount)
	metrics := engine.ComputeAll(units, input.TotalTimeSeconds, splits)
	classification := engine.Classify(entries, units, input.TotalTimeSeconds, input.RoundCount, len(splits) > 0, input.TemplateType)

	now := time.Now().UTC()
	workout := Workout{
		ID:               uuid.NewString(),
		UserID:           input.UserID,
		Name:             input.Name,
		WorkoutType:      classification.Type,
		TypeConfidence:   classification.Confidence,
		TypeReasoning:    classification.Reasoning,
		TemplateType:     input.TemplateType,
		TotalTimeSeconds: input.TotalTimeSeconds,
		RoundCount:       input.RoundCount,
		Notes:            input.Notes,
		PerformedAt:      input.PerformedAt.UTC(),
		CreatedAt:        now,
		UpdatedAt:        now,
		Movements:        buildMovements(input.Movements),
		Splits:           buildSplits(input.Splits),
		Metrics:          flattenMetrics(metrics, now),
	}

	// Domain scores update before the workout commit so the completeness
	// event rides in the same transaction as the workout row.
	updated, err := s.scorer.UpdateFromWorkout(ctx, engine.ScoringInput{
		UserID:      input.UserID,
		WorkoutID:   workout.ID,
		WorkoutType: classification.Type,
		PerformedAt: workout.PerformedAt,
		Metrics:     metrics,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, workout, input.IdempotencyKey, updated); err != nil {
		return nil, err
	}

	return &LogWorkoutResult{
		Workout:        &workout,
		Classification: classification,
		Metrics:        metrics,
		UpdatedScores:  updated,
	}, nil
}

func buildMovements(inputs []MovementInput) []Movement {
	out := make([]Movement, 0, len(inputs))
	for _, m := range inputs {
		out = append(out, Movement{
			Kind:       m.Kind,
			Modality:   engine.ModalityOf(m.Kind),
			Reps:       m.Reps,
			LoadLb:     m.LoadLb,
			Calories:   m.Calories,
			OrderIndex: m.OrderIndex,
		})
	}
	return out
}

func buildSplits(inputs []SplitInput) []Split {
	out := make([]Split, 0, len(inputs))
	for _, sp := range inputs {
		out = append(out, Split{RoundNumber: sp.RoundNumber, TimeSeconds: sp.TimeSeconds})
	}
	return out
}

func flattenMetrics(metrics engine.ComputedMetrics, computedAt time.Time) *WorkoutMetrics {
	row := &WorkoutMetrics{
		TotalEWU:           metrics.TotalEWU,
		DensityPowerMin:    metrics.DensityPowerPerMin,
		DensityPowerSec:    metrics.DensityPowerPerSec,
		LiftEWU:            metrics.LiftEWU,
		MachineEWU:         metrics.MachineEWU,
		GymnasticsEWU:      metrics.GymnasticsEWU,
		LiftShare:          metrics.LiftShare,
		MachineShare:       metrics.MachineShare,
		GymnasticsShare:    metrics.GymnasticsShare,
		TotalActiveSeconds: metrics.TotalActiveSeconds,
		RestSeconds:        metrics.RestSeconds,
		ComputedAt:         computedAt,
	}
	if metrics.ActivePower != nil {
		avg := metrics.ActivePower.Average
		row.ActivePower = &avg
		row.PerRoundPower = metrics.ActivePower.PerRound
	}
	if metrics.Repeatability != nil {
		row.RepeatabilityDrift = metrics.Repeatability.Drift
		row.RepeatabilitySpread = metrics.Repeatability.Spread
		row.RepeatabilityConsistency = metrics.Repeatability.Consistency
	}
	return row
}

// GetWorkout fetches one workout owned by the user.
func (s *Service) GetWorkout(ctx context.Context, userID, workoutID string) (*Workout, error) {
	workout, err := s.repo.Get(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout == nil {
		return nil, ErrWorkoutNotFound
	}
	return workout, nil
}

// ListWorkouts fetches workouts with cursor pagination.
func (s *Service) ListWorkouts(ctx context.Context, userID string, filter ListFilter, cursor *Cursor, limit int) ([]Workout, *Cursor, error) {
	return s.repo.ListByUser(ctx, userID, filter, cursor, limit)
}

// DeleteWorkout removes a workout. Distributions and domain scores keep the
// workout's contribution; scores reflect history, not current rows.
func (s *Service) DeleteWorkout(ctx context.Context, userID, workoutID string) error {
	deleted, err := s.repo.Delete(ctx, userID, workoutID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrWorkoutNotFound
	}
	return nil
}

// Completeness returns the user's score for every domain, no_data
// placeholders included.
func (s *Service) Completeness(ctx context.Context, userID string) ([]*engine.DomainScore, error) {
	return s.scorer.Completeness(ctx, userID)
}

// ContributingWorkout is one workout backing a domain score.
type ContributingWorkout struct {
	WorkoutID   string
	PerformedAt time.Time
	MetricValue float64
}

// DomainDetail is the drill-down view for one domain.
type DomainDetail struct {
	Score        *engine.DomainScore
	Contributing []ContributingWorkout
}

const maxContributingWorkouts = 20

// GetDomainDetail returns the domain's current score with the workouts whose
// values sit in its distribution window.
func (s *Service) GetDomainDetail(ctx context.Context, userID string, domain engine.DomainTag) (*DomainDetail, error) {
	if !validDomain(domain) {
		return nil, ErrInvalidDomain
	}

	scores, err := s.scorer.Completeness(ctx, userID)
	if err != nil {
		return nil, err
	}

	var score *engine.DomainScore
	for _, candidate := range scores {
		if candidate.Domain == domain {
			score = candidate
			break
		}
	}

	dists, err := s.distributions.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	metricName := engine.DomainMetricName(domain)
	var contributing []ContributingWorkout
	for _, dist := range dists {
		if dist.MetricName != metricName {
			continue
		}
		for _, v := range dist.Values {
			contributing = append(contributing, ContributingWorkout{
				WorkoutID:   v.WorkoutID,
				PerformedAt: v.PerformedAt,
				MetricValue: v.Value,
			})
		}
	}
	sort.Slice(contributing, func(i, j int) bool {
		return contributing[i].PerformedAt.After(contributing[j].PerformedAt)
	})
	if len(contributing) > maxContributingWorkouts {
		contributing = contributing[:maxContributingWorkouts]
	}

	return &DomainDetail{Score: score, Contributing: contributing}, nil
}

func validDomain(domain engine.DomainTag) bool {
	for _, d := range engine.AllDomains {
		if d == domain {
			return true
		}
	}
	return false
}

// TrendPoint is one dated observation in a trend series.
type TrendPoint struct {
	Date  time.Time
	Value float64
}

// TrendMetric is the series plus its summary statistic.
type TrendMetric struct {
	Data    []TrendPoint
	Average *float64
	Sum     *float64
}

// Trends groups dashboard series for one period.
type Trends struct {
	Period        string
	DensityPower  *TrendMetric
	Repeatability *TrendMetric
	TotalEWU      *TrendMetric
}

var trendPeriods = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
}

// GetTrends builds the density, repeatability, and volume series over the
// requested period (7d, 30d, or 90d).
func (s *Service) GetTrends(ctx context.Context, userID, period string) (*Trends, error) {
	days, ok := trendPeriods[period]
	if !ok {
		return nil, ErrInvalidPeriod
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	workouts, err := s.repo.ListSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	var density, repeatability, ewu []TrendPoint
	for _, w := range workouts {
		if w.Metrics == nil {
			continue
		}
		density = append(density, TrendPoint{Date: w.PerformedAt, Value: w.Metrics.DensityPowerMin})
		ewu = append(ewu, TrendPoint{Date: w.PerformedAt, Value: w.Metrics.TotalEWU})
		if w.Metrics.RepeatabilityConsistency != nil {
			repeatability = append(repeatability, TrendPoint{Date: w.PerformedAt, Value: *w.Metrics.RepeatabilityConsistency})
		}
	}

	return &Trends{
		Period:        period,
		DensityPower:  trendMetric(density, false),
		Repeatability: trendMetric(repeatability, false),
		TotalEWU:      trendMetric(ewu, true),
	}, nil
}

func trendMetric(points []TrendPoint, withSum bool) *TrendMetric {
	if len(points) == 0 {
		return nil
	}
	var sum float64
	for _, p := range points {
		sum += p.Value
	}
	avg := sum / float64(len(points))
	metric := &TrendMetric{Data: points, Average: &avg}
	if withSum {
		metric.Sum = &sum
	}
	return metric
}
