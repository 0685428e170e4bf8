package engine

import (
	"context"
	"fmt"
	"time"
)

// DomainTag identifies one of the fixed athlete-completeness domains.
type DomainTag string

const (
	DomainStrengthOutput       DomainTag = "strength_output"
	DomainMonostructuralOutput DomainTag = "monostructural_output"
	DomainMixedModalCapacity   DomainTag = "mixed_modal_capacity"
	DomainSprintPowerCapacity  DomainTag = "sprint_power_capacity"
	DomainRepeatability        DomainTag = "repeatability"
)

// AllDomains lists every completeness domain in display order.
var AllDomains = []DomainTag{
	DomainStrengthOutput,
	DomainMonostructuralOutput,
	DomainMixedModalCapacity,
	DomainSprintPowerCapacity,
	DomainRepeatability,
}

var domainLabels = map[DomainTag]string{
	DomainStrengthOutput:       "Strength Output",
	DomainMonostructuralOutput: "Monostructural Output",
	DomainMixedModalCapacity:   "Mixed-Modal Capacity",
	DomainSprintPowerCapacity:  "Sprint Power Capacity",
	DomainRepeatability:        "Repeatability",
}

// DomainLabel returns the human-readable label for a domain.
func DomainLabel(domain DomainTag) string {
	if label, ok := domainLabels[domain]; ok {
		return label
	}
	return string(domain)
}

// Metric names recorded in distributions, one per domain.
const (
	MetricLiftEWU                  = "lift_ewu"
	MetricMachineEWU               = "machine_ewu"
	MetricDensityPowerMin          = "density_power_min"
	MetricSprintDensityPower       = "sprint_density_power"
	MetricRepeatabilityConsistency = "repeatability_consistency"
)

// strengthMinLiftShareForDomain is the lift-share floor below which a workout
// says nothing about strength output.
const strengthMinLiftShareForDomain = 0.3

// DomainScore is the current percentile-based score for one domain of one
// user. Score and Percentile are nil until the domain has data.
type DomainScore struct {
	Domain          DomainTag
	UserID          string
	RawValue        float64
	Score           *float64
	Percentile      *float64
	SampleCount     int
	Confidence      Confidence
	Provisional     bool
	SourceWorkoutID string
	UpdatedAt       time.Time
}

// DomainContribution names the metric a workout contributes to a domain and
// its raw value.
type DomainContribution struct {
	Domain     DomainTag
	MetricName string
	Value      float64
}

var domainMetricNames = map[DomainTag]string{
	DomainStrengthOutput:       MetricLiftEWU,
	DomainMonostructuralOutput: MetricMachineEWU,
	DomainMixedModalCapacity:   MetricDensityPowerMin,
	DomainSprintPowerCapacity:  MetricSprintDensityPower,
	DomainRepeatability:        MetricRepeatabilityConsistency,
}

// DomainMetricName returns the distribution metric a domain is scored on.
func DomainMetricName(domain DomainTag) string {
	return domainMetricNames[domain]
}

// PrimaryMetric extracts the raw value a workout contributes to a domain.
// Returns nil when the workout carries no usable evidence for it.
func PrimaryMetric(domain DomainTag, metrics ComputedMetrics) *float64 {
	var value float64
	switch domain {
	case DomainStrengthOutput:
		value = metrics.LiftEWU
	case DomainMonostructuralOutput:
		value = metrics.MachineEWU
	case DomainMixedModalCapacity, DomainSprintPowerCapacity:
		value = metrics.DensityPowerPerMin
	case DomainRepeatability:
		if metrics.Repeatability == nil || metrics.Repeatability.Consistency == nil {
			return nil
		}
		// Consistency clamps at zero for very uneven pacing. That is still
		// a recorded observation, unlike a zero EWU or density.
		return ptr(*metrics.Repeatability.Consistency)
	}
	if value <= 0 {
		return nil
	}
	return ptr(value)
}

// qualifies reports whether the workout carries evidence for the domain,
// independent of the primary metric's value.
func qualifies(domain DomainTag, workoutType WorkoutType, metrics ComputedMetrics) bool {
	switch domain {
	case DomainStrengthOutput:
		return metrics.LiftEWU > 0 && metrics.LiftShare >= strengthMinLiftShareForDomain
	case DomainMonostructuralOutput:
		return workoutType == WorkoutMonostructural
	case DomainMixedModalCapacity:
		return metrics.LiftShare > 0 && metrics.MachineShare > 0
	case DomainSprintPowerCapacity:
		return workoutType == WorkoutSprint
	case DomainRepeatability:
		return metrics.Repeatability != nil && metrics.Repeatability.Consistency != nil
	}
	return false
}

// QualifyingDomains determines which domains a workout contributes to, with
// the raw metric value for each. A workout only updates a domain when it
// genuinely measures it; every other domain is left untouched.
func QualifyingDomains(workoutType WorkoutType, metrics ComputedMetrics) []DomainContribution {
	var out []DomainContribution
	for _, domain := range AllDomains {
		if !qualifies(domain, workoutType, metrics) {
			continue
		}
		value := PrimaryMetric(domain, metrics)
		if value == nil {
			continue
		}
		out = append(out, DomainContribution{
			Domain:     domain,
			MetricName: DomainMetricName(domain),
			Value:      *value,
		})
	}
	return out
}

// ScoringInput carries everything the scorer needs from a computed workout.
type ScoringInput struct {
	UserID      string
	WorkoutID   string
	WorkoutType WorkoutType
	PerformedAt time.Time
	Metrics     ComputedMetrics
}

// Scorer maintains per-user metric distributions and domain scores.
type Scorer struct {
	distributions DistributionStore
	scores        DomainScoreStore
	windowDays    int
}

// NewScorer builds a Scorer over the given stores. windowDays <= 0 falls back
// to the default rolling window.
func NewScorer(distributions DistributionStore, scores DomainScoreStore, windowDays int) *Scorer {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Scorer{distributions: distributions, scores: scores, windowDays: windowDays}
}

// UpdateFromWorkout folds a computed workout into every domain it qualifies
// for: the raw value joins the rolling distribution and the domain score is
// re-derived from the updated percentile. Returns the scores that changed.
func (s *Scorer) UpdateFromWorkout(ctx context.Context, input ScoringInput) ([]*DomainScore, error) {
	contributions := QualifyingDomains(input.WorkoutType, input.Metrics)
	updated := make([]*DomainScore, 0, len(contributions))

	for _, contribution := range contributions {
		dist, err := s.distributions.GetOrCreate(ctx, input.UserID, string(input.WorkoutType), contribution.MetricName)
		if err != nil {
			return nil, fmt.Errorf("load distribution %s/%s: %w", input.WorkoutType, contribution.MetricName, err)
		}

		dist.WindowDays = s.windowDays
		dist.Add(contribution.Value, input.WorkoutID, input.PerformedAt)
		if err := s.distributions.Save(ctx, dist); err != nil {
			return nil, fmt.Errorf("save distribution %s/%s: %w", input.WorkoutType, contribution.MetricName, err)
		}

		normalized := Normalize(contribution.Value, dist, true)

		score := &DomainScore{
			Domain:          contribution.Domain,
			UserID:          input.UserID,
			RawValue:        contribution.Value,
			Score:           normalized.Score,
			Percentile:      normalized.Percentile,
			SampleCount:     normalized.SampleCount,
			Confidence:      normalized.Confidence,
			Provisional:     normalized.Provisional,
			SourceWorkoutID: input.WorkoutID,
			UpdatedAt:       time.Now().UTC(),
		}
		if err := s.scores.Save(ctx, score); err != nil {
			return nil, fmt.Errorf("save domain score %s: %w", contribution.Domain, err)
		}
		updated = append(updated, score)
	}

	return updated, nil
}

// Completeness returns one entry per domain for the user, in display order.
// Domains with no recorded data come back as no_data placeholders rather
// than being omitted or given a fabricated score.
func (s *Scorer) Completeness(ctx context.Context, userID string) ([]*DomainScore, error) {
	existing, err := s.scores.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list domain scores: %w", err)
	}

	byDomain := make(map[DomainTag]*DomainScore, len(existing))
	for _, score := range existing {
		byDomain[score.Domain] = score
	}

	out := make([]*DomainScore, 0, len(AllDomains))
	for _, domain := range AllDomains {
		if score, ok := byDomain[domain]; ok {
			out = append(out, score)
			continue
		}
		out = append(out, &DomainScore{
			Domain:      domain,
			UserID:      userID,
			Confidence:  ConfidenceNoData,
			Provisional: true,
		})
	}
	return out, nil
}
