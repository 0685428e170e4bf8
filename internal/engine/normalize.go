package engine

import (
	"sort"
	"time"
)

// Confidence labels how trustworthy a normalized score is, derived from
// sample count.
type Confidence string

const (
	ConfidenceNoData Confidence = "no_data"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Sample-count thresholds for confidence tiers.
const (
	lowSampleThreshold    = 5
	mediumSampleThreshold = 15
)

// DefaultWindowDays is the rolling retention window for distribution values.
const DefaultWindowDays = 180

// ConfidenceFor maps a sample count to its confidence tier.
func ConfidenceFor(sampleCount int) Confidence {
	switch {
	case sampleCount == 0:
		return ConfidenceNoData
	case sampleCount < lowSampleThreshold:
		return ConfidenceLow
	case sampleCount < mediumSampleThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// DistributionValue is one observation in a metric distribution.
type DistributionValue struct {
	Value       float64   `json:"value"`
	WorkoutID   string    `json:"workout_id"`
	PerformedAt time.Time `json:"performed_at"`
}

// Distribution is the rolling history of raw values for one
// (user, workout type, metric) key. It is append-only apart from window
// pruning.
type Distribution struct {
	UserID      string
	WorkoutType string
	MetricName  string
	Values      []DistributionValue
	WindowDays  int
	UpdatedAt   time.Time
}

// NewDistribution creates an empty distribution with the default window.
func NewDistribution(userID, workoutType, metricName string) *Distribution {
	return &Distribution{
		UserID:      userID,
		WorkoutType: workoutType,
		MetricName:  metricName,
		WindowDays:  DefaultWindowDays,
		UpdatedAt:   time.Now().UTC(),
	}
}

// Prune drops values older than the cutoff. A zero cutoff means
// now minus the distribution's window.
func (d *Distribution) Prune(cutoff time.Time) {
	if cutoff.IsZero() {
		window := d.WindowDays
		if window <= 0 {
			window = DefaultWindowDays
		}
		cutoff = time.Now().UTC().AddDate(0, 0, -window)
	}

	kept := d.Values[:0]
	for _, v := range d.Values {
		if !v.PerformedAt.Before(cutoff) {
			kept = append(kept, v)
		}
	}
	d.Values = kept
	d.UpdatedAt = time.Now().UTC()
}

// Add prunes stale values and appends the new observation.
func (d *Distribution) Add(value float64, workoutID string, performedAt time.Time) {
	d.Prune(time.Time{})
	d.Values = append(d.Values, DistributionValue{
		Value:       value,
		WorkoutID:   workoutID,
		PerformedAt: performedAt,
	})
	d.UpdatedAt = time.Now().UTC()
}

// SortedValues returns the observation values in ascending order.
func (d *Distribution) SortedValues() []float64 {
	out := make([]float64, len(d.Values))
	for i, v := range d.Values {
		out[i] = v.Value
	}
	sort.Float64s(out)
	return out
}

// NormalizedScore is the percentile-based 0-100 score for a raw value.
// Score and Percentile are nil when the distribution holds no data.
type NormalizedScore struct {
	RawValue    float64
	Score       *float64
	Percentile  *float64
	SampleCount int
	Confidence  Confidence
	Provisional bool
}

// PercentileRank places a value within a sorted distribution, returning a
// rank in [0, 1]. An empty distribution ranks at the median so new users are
// not biased either way; a single-value distribution ranks slightly below,
// at, or slightly above it. Larger distributions use the mid-rank formula,
// which splits ties symmetrically.
func PercentileRank(value float64, sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0.5
	}
	if n == 1 {
		switch {
		case value < sorted[0]:
			return 0.25
		case value > sorted[0]:
			return 0.75
		default:
			return 0.5
		}
	}

	var less, equal int
	for _, v := range sorted {
		if v < value {
			less++
		} else if v == value {
			equal++
		}
	}
	return (float64(less) + 0.5*float64(equal)) / float64(n)
}

// Normalize scores a raw value against a distribution that already contains
// it (callers Add first, then Normalize, so the rank includes the value
// being scored). Lower-is-better metrics are inverted onto the same
// increasing-is-good 0-100 scale.
func Normalize(value float64, d *Distribution, higherIsBetter bool) NormalizedScore {
	sampleCount := len(d.Values)
	if sampleCount == 0 {
		return NormalizedScore{
			RawValue:    value,
			SampleCount: 0,
			Confidence:  ConfidenceNoData,
			Provisional: true,
		}
	}

	percentile := PercentileRank(value, d.SortedValues())

	score := percentile * 100
	if !higherIsBetter {
		score = (1 - percentile) * 100
	}

	confidence := ConfidenceFor(sampleCount)
	return NormalizedScore{
		RawValue:    value,
		Score:       ptr(round2(score)),
		Percentile:  ptr(round4(percentile)),
		SampleCount: sampleCount,
		Confidence:  confidence,
		Provisional: confidence == ConfidenceNoData || confidence == ConfidenceLow,
	}
}
