package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertWorkoutIntervalReplication(t *testing.T) {
	converter := NewConverter(FormulaV1())

	entries := []MovementEntry{
		{Kind: MovementEchoBike, Calories: 10, OrderIndex: 0},
		{Kind: MovementPowerSnatch, Reps: 8, LoadLb: 95, OrderIndex: 1},
		{Kind: MovementEchoBike, Calories: 10, OrderIndex: 2},
	}

	units := converter.ConvertWorkout(entries, 6)

	require.Len(t, units.Rounds, 6)
	require.Equal(t, 35.2, units.Rounds[0].TotalEWU)
	require.Equal(t, 211.2, units.TotalEWU)
	require.Equal(t, 91.2, units.LiftEWU)
	require.Equal(t, 120.0, units.MachineEWU)
	require.Equal(t, 0.0, units.GymnasticsEWU)

	// Every round carries the template round's values.
	for _, round := range units.Rounds {
		require.Equal(t, 35.2, round.TotalEWU)
		require.Equal(t, 15.2, round.LiftEWU)
		require.Equal(t, 20.0, round.MachineEWU)
	}

	require.InDelta(t, 0.4318, units.LiftShare, 1e-4)
	require.InDelta(t, 0.5682, units.MachineShare, 1e-4)
	require.InDelta(t, 1.0, units.LiftShare+units.MachineShare+units.GymnasticsShare, 1e-6)
}

func TestConvertWorkoutZeroTotalShares(t *testing.T) {
	converter := NewConverter(FormulaV1())

	entries := []MovementEntry{
		{Kind: MovementDeadlift, Reps: 0, LoadLb: 225},
		{Kind: MovementEchoBike, Calories: 0},
	}

	units := converter.ConvertWorkout(entries, 3)

	require.Equal(t, 0.0, units.TotalEWU)
	require.Equal(t, 0.0, units.LiftShare)
	require.Equal(t, 0.0, units.MachineShare)
	require.Equal(t, 0.0, units.GymnasticsShare)
}

func TestConvertRunUsesDistance(t *testing.T) {
	converter := NewConverter(FormulaV1())

	// Runs carry meters in the reps field, not calories.
	mwu := converter.Convert(MovementEntry{Kind: MovementRun, Reps: 400})

	require.Equal(t, ModalityMachine, mwu.Modality)
	require.Equal(t, 4.0, mwu.EWU)
}

func TestConvertLiftScalesWithLoad(t *testing.T) {
	converter := NewConverter(FormulaV1())

	mwu := converter.Convert(MovementEntry{Kind: MovementThruster, Reps: 21, LoadLb: 95})

	require.Equal(t, ModalityLift, mwu.Modality)
	require.Equal(t, 39.9, mwu.EWU)
}

func TestConvertUnknownKindFallsBackToGymnastics(t *testing.T) {
	converter := NewConverter(FormulaV1())

	mwu := converter.Convert(MovementEntry{Kind: MovementKind("pistol_squat"), Reps: 10})

	require.Equal(t, ModalityGymnastics, mwu.Modality)
	require.Equal(t, 3.0, mwu.EWU)
}

func TestConvertGymnasticsFactors(t *testing.T) {
	converter := NewConverter(FormulaV1())

	cases := []struct {
		kind MovementKind
		reps int
		want float64
	}{
		{MovementPullUp, 10, 5.0},
		{MovementMuscleUp, 4, 6.0},
		{MovementDoubleUnder, 100, 5.0},
		{MovementBurpee, 15, 7.5},
	}
	for _, tc := range cases {
		mwu := converter.Convert(MovementEntry{Kind: tc.kind, Reps: tc.reps})
		require.Equal(t, tc.want, mwu.EWU, "kind %s", tc.kind)
	}
}

func TestConvertWorkoutIdempotent(t *testing.T) {
	converter := NewConverter(FormulaV1())

	entries := []MovementEntry{
		{Kind: MovementRower, Calories: 15},
		{Kind: MovementWallBall, Reps: 20},
		{Kind: MovementPowerClean, Reps: 5, LoadLb: 135},
	}

	first := converter.ConvertWorkout(entries, 4)
	second := converter.ConvertWorkout(entries, 4)

	require.Equal(t, first, second)
}

func TestSharesSumToOneWhenPositive(t *testing.T) {
	converter := NewConverter(FormulaV1())

	entries := []MovementEntry{
		{Kind: MovementSkiErg, Calories: 12},
		{Kind: MovementToesToBar, Reps: 10},
		{Kind: MovementFrontSquat, Reps: 9, LoadLb: 155},
	}

	units := converter.ConvertWorkout(entries, 5)

	require.Greater(t, units.TotalEWU, 0.0)
	// Shares are stored rounded to 4 decimals, so the sum can be off by a
	// rounding step per share.
	sum := units.LiftShare + units.MachineShare + units.GymnasticsShare
	require.InDelta(t, 1.0, sum, 3e-4)
	require.False(t, math.IsNaN(sum))
}
