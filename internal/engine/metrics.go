package engine

import (
	"math"
	"sort"
)

// SplitEntry is the recorded duration of a single bout.
type SplitEntry struct {
	RoundNumber int
	Seconds     float64
}

// RepeatabilityMetrics describes pacing consistency across bouts. Each
// component is independently optional; any subset may be present.
type RepeatabilityMetrics struct {
	Drift         *float64
	Spread        *float64
	Consistency   *float64
	FirstHalfAvg  *float64
	SecondHalfAvg *float64
	BestBoutTime  float64
	WorstBoutTime float64
}

// ActivePowerMetrics describes work rate during active bout time only.
type ActivePowerMetrics struct {
	Average  float64
	PerRound []float64
	Peak     float64
	Lowest   float64
}

// ComputedMetrics is the full derived-metric bundle for a workout. It is
// created once per computation and replaced wholesale on edit.
type ComputedMetrics struct {
	TotalEWU           float64
	DensityPowerPerMin float64
	DensityPowerPerSec float64

	ActivePower   *ActivePowerMetrics
	Repeatability *RepeatabilityMetrics

	LiftEWU         float64
	MachineEWU      float64
	GymnasticsEWU   float64
	LiftShare       float64
	MachineShare    float64
	GymnasticsShare float64

	TotalTimeSeconds   int
	TotalActiveSeconds *float64
	RestSeconds        *float64
}

// DensityPower returns work rate over total session time as (EWU/min,
// EWU/sec). Total time is validated upstream; a non-positive value yields
// (0, 0) instead of a division fault.
func DensityPower(totalEWU float64, totalSeconds int) (perMin, perSec float64) {
	if totalSeconds <= 0 {
		return 0, 0
	}
	minutes := float64(totalSeconds) / 60.0
	return round4(totalEWU / minutes), round6(totalEWU / float64(totalSeconds))
}

// ActivePower computes per-bout work rate from the template round's EWU and
// the recorded splits. Returns nil when no splits are available. A
// zero-duration bout contributes power 0 rather than faulting.
func ActivePower(roundEWU float64, splits []SplitEntry) *ActivePowerMetrics {
	if len(splits) == 0 {
		return nil
	}

	perRound := make([]float64, 0, len(splits))
	for _, split := range splits {
		if split.Seconds > 0 {
			perRound = append(perRound, round4(roundEWU/(split.Seconds/60.0)))
		} else {
			perRound = append(perRound, 0)
		}
	}

	peak, lowest := perRound[0], perRound[0]
	var sum float64
	for _, p := range perRound {
		sum += p
		if p > peak {
			peak = p
		}
		if p < lowest {
			lowest = p
		}
	}

	return &ActivePowerMetrics{
		Average:  round4(sum / float64(len(perRound))),
		PerRound: perRound,
		Peak:     peak,
		Lowest:   lowest,
	}
}

// Repeatability derives drift, spread, and consistency from bout times.
// Requires at least two splits; returns nil otherwise. Splits are ordered by
// round number before the halves are compared, with the extra bout of an odd
// count falling into the second half.
func Repeatability(splits []SplitEntry) *RepeatabilityMetrics {
	if len(splits) < 2 {
		return nil
	}

	ordered := make([]SplitEntry, len(splits))
	copy(ordered, splits)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].RoundNumber < ordered[j].RoundNumber
	})

	times := make([]float64, len(ordered))
	for i, s := range ordered {
		times[i] = s.Seconds
	}

	mid := len(times) / 2
	firstHalfAvg := mean(times[:mid])
	secondHalfAvg := mean(times[mid:])

	metrics := &RepeatabilityMetrics{
		BestBoutTime:  minFloat(times),
		WorstBoutTime: maxFloat(times),
	}

	if firstHalfAvg > 0 {
		metrics.Drift = ptr(round4((secondHalfAvg - firstHalfAvg) / firstHalfAvg))
	}

	avg := mean(times)
	if avg > 0 {
		metrics.Spread = ptr(round4((maxFloat(times) - minFloat(times)) / avg))
		cv := stdev(times) / avg
		metrics.Consistency = ptr(round4(math.Max(0, 1-cv)))
	}

	if firstHalfAvg > 0 {
		metrics.FirstHalfAvg = ptr(round2(firstHalfAvg))
	}
	if secondHalfAvg > 0 {
		metrics.SecondHalfAvg = ptr(round2(secondHalfAvg))
	}

	return metrics
}

// ComputeAll assembles the full metric bundle from the work-unit breakdown,
// total session time, and optional splits. Active and rest time are absent
// when no splits are supplied.
func ComputeAll(units WorkoutWorkUnits, totalSeconds int, splits []SplitEntry) ComputedMetrics {
	perMin, perSec := DensityPower(units.TotalEWU, totalSeconds)

	var activePower *ActivePowerMetrics
	if len(splits) > 0 && len(units.Rounds) > 0 {
		activePower = ActivePower(units.Rounds[0].TotalEWU, splits)
	}

	var repeatability *RepeatabilityMetrics
	if len(splits) > 0 {
		repeatability = Repeatability(splits)
	}

	var totalActive, rest *float64
	if len(splits) > 0 {
		var sum float64
		for _, s := range splits {
			sum += s.Seconds
		}
		totalActive = ptr(round2(sum))
		rest = ptr(round2(float64(totalSeconds) - sum))
	}

	return ComputedMetrics{
		TotalEWU:           units.TotalEWU,
		DensityPowerPerMin: perMin,
		DensityPowerPerSec: perSec,
		ActivePower:        activePower,
		Repeatability:      repeatability,
		LiftEWU:            units.LiftEWU,
		MachineEWU:         units.MachineEWU,
		GymnasticsEWU:      units.GymnasticsEWU,
		LiftShare:          units.LiftShare,
		MachineShare:       units.MachineShare,
		GymnasticsShare:    units.GymnasticsShare,
		TotalTimeSeconds:   totalSeconds,
		TotalActiveSeconds: totalActive,
		RestSeconds:        rest,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdev is the sample standard deviation (n-1 denominator).
func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		sq += (v - m) * (v - m)
	}
	return math.Sqrt(sq / float64(len(values)-1))
}

func minFloat(values []float64) float64 {
	out := values[0]
	for _, v := range values[1:] {
		if v < out {
			out = v
		}
	}
	return out
}

func maxFloat(values []float64) float64 {
	out := values[0]
	for _, v := range values[1:] {
		if v > out {
			out = v
		}
	}
	return out
}

func ptr(v float64) *float64 { return &v }
