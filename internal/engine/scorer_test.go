package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func intervalMetrics(t *testing.T) ComputedMetrics {
	t.Helper()
	converter := NewConverter(FormulaV1())
	entries := []MovementEntry{
		{Kind: MovementEchoBike, Calories: 10},
		{Kind: MovementPowerSnatch, Reps: 8, LoadLb: 95},
		{Kind: MovementEchoBike, Calories: 10},
	}
	units := converter.ConvertWorkout(entries, 6)
	splits := []SplitEntry{
		{RoundNumber: 1, Seconds: 90},
		{RoundNumber: 2, Seconds: 88},
		{RoundNumber: 3, Seconds: 89},
		{RoundNumber: 4, Seconds: 89},
		{RoundNumber: 5, Seconds: 96},
		{RoundNumber: 6, Seconds: 94},
	}
	return ComputeAll(units, 1094, splits)
}

func TestQualifyingDomainsInterval(t *testing.T) {
	metrics := intervalMetrics(t)

	contributions := QualifyingDomains(WorkoutInterval, metrics)

	byDomain := make(map[DomainTag]DomainContribution)
	for _, c := range contributions {
		byDomain[c.Domain] = c
	}

	// Lift share 43% with machine work: strength, mixed-modal, and
	// repeatability qualify; monostructural and sprint do not.
	require.Contains(t, byDomain, DomainStrengthOutput)
	require.Contains(t, byDomain, DomainMixedModalCapacity)
	require.Contains(t, byDomain, DomainRepeatability)
	require.NotContains(t, byDomain, DomainMonostructuralOutput)
	require.NotContains(t, byDomain, DomainSprintPowerCapacity)

	require.Equal(t, 91.2, byDomain[DomainStrengthOutput].Value)
	require.Equal(t, MetricLiftEWU, byDomain[DomainStrengthOutput].MetricName)
	require.Equal(t, metrics.DensityPowerPerMin, byDomain[DomainMixedModalCapacity].Value)
}

func TestQualifyingDomainsMonostructural(t *testing.T) {
	converter := NewConverter(FormulaV1())
	units := converter.ConvertWorkout([]MovementEntry{{Kind: MovementRower, Calories: 100}}, 1)
	metrics := ComputeAll(units, 1200, nil)

	contributions := QualifyingDomains(WorkoutMonostructural, metrics)

	require.Len(t, contributions, 1)
	require.Equal(t, DomainMonostructuralOutput, contributions[0].Domain)
	require.Equal(t, 100.0, contributions[0].Value)
}

func TestQualifyingDomainsSprint(t *testing.T) {
	converter := NewConverter(FormulaV1())
	units := converter.ConvertWorkout([]MovementEntry{{Kind: MovementBurpee, Reps: 50}}, 1)
	metrics := ComputeAll(units, 240, nil)

	contributions := QualifyingDomains(WorkoutSprint, metrics)

	require.Len(t, contributions, 1)
	require.Equal(t, DomainSprintPowerCapacity, contributions[0].Domain)
	require.Equal(t, MetricSprintDensityPower, contributions[0].MetricName)
}

func TestQualifyingDomainsStrengthShareFloor(t *testing.T) {
	converter := NewConverter(FormulaV1())
	// Lift work present but well under 30% of total.
	units := converter.ConvertWorkout([]MovementEntry{
		{Kind: MovementPowerClean, Reps: 3, LoadLb: 135},
		{Kind: MovementRower, Calories: 60},
	}, 1)
	metrics := ComputeAll(units, 900, nil)
	require.Less(t, metrics.LiftShare, 0.3)

	contributions := QualifyingDomains(WorkoutThreshold, metrics)

	for _, c := range contributions {
		require.NotEqual(t, DomainStrengthOutput, c.Domain)
	}
}

func TestZeroConsistencyStillScoresRepeatability(t *testing.T) {
	ctx := context.Background()
	scoreStore := NewInMemoryDomainScoreStore()
	scorer := NewScorer(NewInMemoryDistributionStore(), scoreStore, 0)

	converter := NewConverter(FormulaV1())
	units := converter.ConvertWorkout([]MovementEntry{
		{Kind: MovementEchoBike, Calories: 10},
		{Kind: MovementPowerSnatch, Reps: 8, LoadLb: 95},
	}, 3)
	// Wildly uneven bouts: cv >= 1, so consistency clamps to 0. A zero
	// consistency is still an observation and must reach the domain.
	splits := []SplitEntry{
		{RoundNumber: 1, Seconds: 10},
		{RoundNumber: 2, Seconds: 300},
		{RoundNumber: 3, Seconds: 10},
	}
	metrics := ComputeAll(units, 360, splits)
	require.NotNil(t, metrics.Repeatability)
	require.NotNil(t, metrics.Repeatability.Consistency)
	require.Equal(t, 0.0, *metrics.Repeatability.Consistency)

	contributions := QualifyingDomains(WorkoutInterval, metrics)
	byDomain := make(map[DomainTag]DomainContribution)
	for _, c := range contributions {
		byDomain[c.Domain] = c
	}
	require.Contains(t, byDomain, DomainRepeatability)
	require.Equal(t, 0.0, byDomain[DomainRepeatability].Value)

	_, err := scorer.UpdateFromWorkout(ctx, ScoringInput{
		UserID:      "user-1",
		WorkoutID:   "w-1",
		WorkoutType: WorkoutInterval,
		PerformedAt: time.Now().UTC(),
		Metrics:     metrics,
	})
	require.NoError(t, err)

	score, err := scoreStore.Get(ctx, "user-1", DomainRepeatability)
	require.NoError(t, err)
	require.NotNil(t, score)
	require.Equal(t, 0.0, score.RawValue)
	require.Equal(t, 1, score.SampleCount)
}

func TestPrimaryMetricAbsent(t *testing.T) {
	var metrics ComputedMetrics

	require.Nil(t, PrimaryMetric(DomainStrengthOutput, metrics))
	require.Nil(t, PrimaryMetric(DomainRepeatability, metrics))
}

func TestUpdateFromWorkout(t *testing.T) {
	ctx := context.Background()
	scorer := NewScorer(NewInMemoryDistributionStore(), NewInMemoryDomainScoreStore(), 0)
	metrics := intervalMetrics(t)

	updated, err := scorer.UpdateFromWorkout(ctx, ScoringInput{
		UserID:      "user-1",
		WorkoutID:   "w-1",
		WorkoutType: WorkoutInterval,
		PerformedAt: time.Now().UTC(),
		Metrics:     metrics,
	})
	require.NoError(t, err)
	require.Len(t, updated, 3)

	for _, score := range updated {
		require.Equal(t, "user-1", score.UserID)
		require.Equal(t, "w-1", score.SourceWorkoutID)
		require.Equal(t, 1, score.SampleCount)
		require.Equal(t, ConfidenceLow, score.Confidence)
		require.True(t, score.Provisional)
		require.NotNil(t, score.Score)
		// A lone sample ranks at its own median.
		require.Equal(t, 50.0, *score.Score)
	}
}

func TestUpdateFromWorkoutGrowsSampleCount(t *testing.T) {
	ctx := context.Background()
	scorer := NewScorer(NewInMemoryDistributionStore(), NewInMemoryDomainScoreStore(), 0)

	for i := 0; i < 5; i++ {
		_, err := scorer.UpdateFromWorkout(ctx, ScoringInput{
			UserID:      "user-1",
			WorkoutID:   "w",
			WorkoutType: WorkoutInterval,
			PerformedAt: time.Now().UTC(),
			Metrics:     intervalMetrics(t),
		})
		require.NoError(t, err)
	}

	scores, err := scorer.Completeness(ctx, "user-1")
	require.NoError(t, err)
	for _, score := range scores {
		if score.Domain == DomainStrengthOutput {
			require.Equal(t, 5, score.SampleCount)
			require.Equal(t, ConfidenceMedium, score.Confidence)
			require.False(t, score.Provisional)
		}
	}
}

func TestWorkoutWithoutSplitsLeavesRepeatabilityUntouched(t *testing.T) {
	ctx := context.Background()
	scoreStore := NewInMemoryDomainScoreStore()
	scorer := NewScorer(NewInMemoryDistributionStore(), scoreStore, 0)

	// Seed repeatability from a workout with splits.
	_, err := scorer.UpdateFromWorkout(ctx, ScoringInput{
		UserID:      "user-1",
		WorkoutID:   "w-1",
		WorkoutType: WorkoutInterval,
		PerformedAt: time.Now().UTC(),
		Metrics:     intervalMetrics(t),
	})
	require.NoError(t, err)

	before, err := scoreStore.Get(ctx, "user-1", DomainRepeatability)
	require.NoError(t, err)
	require.NotNil(t, before)

	// A later workout without splits must not reset the domain.
	converter := NewConverter(FormulaV1())
	units := converter.ConvertWorkout([]MovementEntry{{Kind: MovementRower, Calories: 100}}, 1)
	_, err = scorer.UpdateFromWorkout(ctx, ScoringInput{
		UserID:      "user-1",
		WorkoutID:   "w-2",
		WorkoutType: WorkoutMonostructural,
		PerformedAt: time.Now().UTC(),
		Metrics:     ComputeAll(units, 1200, nil),
	})
	require.NoError(t, err)

	after, err := scoreStore.Get(ctx, "user-1", DomainRepeatability)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestCompletenessFillsMissingDomains(t *testing.T) {
	ctx := context.Background()
	scorer := NewScorer(NewInMemoryDistributionStore(), NewInMemoryDomainScoreStore(), 0)

	scores, err := scorer.Completeness(ctx, "user-new")
	require.NoError(t, err)
	require.Len(t, scores, len(AllDomains))

	for i, score := range scores {
		require.Equal(t, AllDomains[i], score.Domain)
		require.Equal(t, ConfidenceNoData, score.Confidence)
		require.True(t, score.Provisional)
		require.Nil(t, score.Score)
	}
}

func TestDomainLabels(t *testing.T) {
	require.Equal(t, "Strength Output", DomainLabel(DomainStrengthOutput))
	require.Equal(t, "Repeatability", DomainLabel(DomainRepeatability))
	require.Equal(t, "custom_tag", DomainLabel(DomainTag("custom_tag")))
}
