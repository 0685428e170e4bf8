package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDensityPower(t *testing.T) {
	perMin, perSec := DensityPower(211.2, 1094)

	require.InDelta(t, 11.58, perMin, 0.005)
	require.InDelta(t, 0.193053, perSec, 1e-6)
}

func TestDensityPowerZeroDuration(t *testing.T) {
	perMin, perSec := DensityPower(100, 0)

	require.Equal(t, 0.0, perMin)
	require.Equal(t, 0.0, perSec)
}

func TestRepeatability(t *testing.T) {
	splits := []SplitEntry{
		{RoundNumber: 1, Seconds: 90},
		{RoundNumber: 2, Seconds: 88},
		{RoundNumber: 3, Seconds: 89},
		{RoundNumber: 4, Seconds: 89},
		{RoundNumber: 5, Seconds: 96},
		{RoundNumber: 6, Seconds: 94},
	}

	metrics := Repeatability(splits)
	require.NotNil(t, metrics)
	require.NotNil(t, metrics.Drift)
	require.NotNil(t, metrics.Spread)
	require.NotNil(t, metrics.Consistency)

	// First half [90,88,89] averages 89, second half [89,96,94] averages 93.
	require.Equal(t, 89.0, *metrics.FirstHalfAvg)
	require.Equal(t, 93.0, *metrics.SecondHalfAvg)
	require.Positive(t, *metrics.Drift)
	require.InDelta(t, 0.0449, *metrics.Drift, 1e-4)
	require.InDelta(t, 0.0879, *metrics.Spread, 1e-4)
	require.InDelta(t, 0.9646, *metrics.Consistency, 1e-4)
	require.Equal(t, 88.0, metrics.BestBoutTime)
	require.Equal(t, 96.0, metrics.WorstBoutTime)
}

func TestRepeatabilityOrdersByRound(t *testing.T) {
	shuffled := []SplitEntry{
		{RoundNumber: 5, Seconds: 96},
		{RoundNumber: 1, Seconds: 90},
		{RoundNumber: 6, Seconds: 94},
		{RoundNumber: 3, Seconds: 89},
		{RoundNumber: 2, Seconds: 88},
		{RoundNumber: 4, Seconds: 89},
	}

	metrics := Repeatability(shuffled)
	require.NotNil(t, metrics)
	require.Equal(t, 89.0, *metrics.FirstHalfAvg)
	require.Equal(t, 93.0, *metrics.SecondHalfAvg)
}

func TestRepeatabilityOddSplitCount(t *testing.T) {
	splits := []SplitEntry{
		{RoundNumber: 1, Seconds: 60},
		{RoundNumber: 2, Seconds: 62},
		{RoundNumber: 3, Seconds: 64},
	}

	metrics := Repeatability(splits)
	require.NotNil(t, metrics)
	// The middle bout falls into the second half.
	require.Equal(t, 60.0, *metrics.FirstHalfAvg)
	require.Equal(t, 63.0, *metrics.SecondHalfAvg)
}

func TestRepeatabilityNeedsTwoSplits(t *testing.T) {
	require.Nil(t, Repeatability(nil))
	require.Nil(t, Repeatability([]SplitEntry{{RoundNumber: 1, Seconds: 120}}))
}

func TestActivePower(t *testing.T) {
	splits := []SplitEntry{
		{RoundNumber: 1, Seconds: 60},
		{RoundNumber: 2, Seconds: 90},
	}

	power := ActivePower(30, splits)
	require.NotNil(t, power)
	require.Equal(t, []float64{30.0, 20.0}, power.PerRound)
	require.Equal(t, 30.0, power.Peak)
	require.Equal(t, 20.0, power.Lowest)
	require.Equal(t, 25.0, power.Average)
}

func TestActivePowerZeroDurationBout(t *testing.T) {
	splits := []SplitEntry{
		{RoundNumber: 1, Seconds: 0},
		{RoundNumber: 2, Seconds: 60},
	}

	power := ActivePower(30, splits)
	require.NotNil(t, power)
	require.Equal(t, 0.0, power.PerRound[0])
	require.Equal(t, 30.0, power.PerRound[1])
}

func TestActivePowerNoSplits(t *testing.T) {
	require.Nil(t, ActivePower(30, nil))
}

func TestComputeAll(t *testing.T) {
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

	metrics := ComputeAll(units, 1094, splits)

	require.Equal(t, 211.2, metrics.TotalEWU)
	require.InDelta(t, 11.58, metrics.DensityPowerPerMin, 0.005)
	require.NotNil(t, metrics.ActivePower)
	require.NotNil(t, metrics.Repeatability)
	require.NotNil(t, metrics.TotalActiveSeconds)
	require.Equal(t, 546.0, *metrics.TotalActiveSeconds)
	require.NotNil(t, metrics.RestSeconds)
	require.Equal(t, 548.0, *metrics.RestSeconds)
	require.Equal(t, 1094, metrics.TotalTimeSeconds)
}

func TestComputeAllNoSplits(t *testing.T) {
	converter := NewConverter(FormulaV1())
	units := converter.ConvertWorkout([]MovementEntry{{Kind: MovementRower, Calories: 50}}, 1)

	metrics := ComputeAll(units, 600, nil)

	require.Nil(t, metrics.ActivePower)
	require.Nil(t, metrics.Repeatability)
	require.Nil(t, metrics.TotalActiveSeconds)
	require.Nil(t, metrics.RestSeconds)
	require.Greater(t, metrics.DensityPowerPerMin, 0.0)
}

func TestComputeAllIdempotent(t *testing.T) {
	converter := NewConverter(FormulaV1())
	entries := []MovementEntry{
		{Kind: MovementRun, Reps: 400},
		{Kind: MovementBurpee, Reps: 15},
	}
	units := converter.ConvertWorkout(entries, 3)
	splits := []SplitEntry{
		{RoundNumber: 1, Seconds: 180},
		{RoundNumber: 2, Seconds: 185},
		{RoundNumber: 3, Seconds: 190},
	}

	first := ComputeAll(units, 700, splits)
	second := ComputeAll(units, 700, splits)

	require.Equal(t, first.TotalEWU, second.TotalEWU)
	require.Equal(t, first.DensityPowerPerMin, second.DensityPowerPerMin)
	require.Equal(t, *first.Repeatability, *second.Repeatability)
	require.Equal(t, *first.ActivePower, *second.ActivePower)
}
