package domain

import (
	"context"
	"encoding/csv"
	"strconv"
	"strings"
	"time"
)

var csvHeader = []string{
	"workout_id",
	"name",
	"workout_type",
	"template_type",
	"performed_at",
	"total_time_seconds",
	"round_count",
	"total_ewu",
	"density_power_min",
	"density_power_sec",
	"active_power",
	"repeatability_drift",
	"repeatability_spread",
	"repeatability_consistency",
	"lift_ewu",
	"machine_ewu",
	"gymnastics_ewu",
	"lift_share",
	"machine_share",
	"gymnastics_share",
	"notes",
}

// ExportCSV renders the user's workouts as CSV, newest first. Workouts
// without a metric row get empty metric columns.
func (s *Service) ExportCSV(ctx context.Context, userID string, start, end *time.Time) (string, error) {
	workouts, err := s.repo.ListForExport(ctx, userID, start, end)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return "", err
	}

	for _, w := range workouts {
		record := []string{
			w.ID,
			w.Name,
			string(w.WorkoutType),
			string(w.TemplateType),
			w.PerformedAt.Format(time.RFC3339),
			strconv.Itoa(w.TotalTimeSeconds),
			strconv.Itoa(w.RoundCount),
		}
		if m := w.Metrics; m != nil {
			record = append(record,
				formatFloat(m.TotalEWU),
				formatFloat(m.DensityPowerMin),
				formatFloat(m.DensityPowerSec),
				formatOptional(m.ActivePower),
				formatOptional(m.RepeatabilityDrift),
				formatOptional(m.RepeatabilitySpread),
				formatOptional(m.RepeatabilityConsistency),
				formatFloat(m.LiftEWU),
				formatFloat(m.MachineEWU),
				formatFloat(m.GymnasticsEWU),
				formatFloat(m.LiftShare),
				formatFloat(m.MachineShare),
				formatFloat(m.GymnasticsShare),
			)
		} else {
			record = append(record, "", "", "", "", "", "", "", "", "", "", "", "", "")
		}
		record = append(record, w.Notes)

		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// ExportMovement mirrors a stored movement in the JSON export.
type ExportMovement struct {
	MovementType string   `json:"movement_type"`
	Modality     string   `json:"modality"`
	Reps         int      `json:"reps"`
	LoadLb       *float64 `json:"load_lb"`
	Calories     *int     `json:"calories"`
	OrderIndex   int      `json:"order_index"`
}

// ExportSplit mirrors a stored split in the JSON export.
type ExportSplit struct {
	RoundNumber int     `json:"round_number"`
	TimeSeconds float64 `json:"time_seconds"`
}

// ExportMetrics mirrors a workout's metric row in the JSON export.
type ExportMetrics struct {
	TotalEWU                 float64   `json:"total_ewu"`
	DensityPowerMin          float64   `json:"density_power_min"`
	DensityPowerSec          float64   `json:"density_power_sec"`
	ActivePower              *float64  `json:"active_power"`
	RepeatabilityDrift       *float64  `json:"repeatability_drift"`
	RepeatabilitySpread      *float64  `json:"repeatability_spread"`
	RepeatabilityConsistency *float64  `json:"repeatability_consistency"`
	LiftEWU                  float64   `json:"lift_ewu"`
	MachineEWU               float64   `json:"machine_ewu"`
	GymnasticsEWU            float64   `json:"gymnastics_ewu"`
	LiftShare                float64   `json:"lift_share"`
	MachineShare             float64   `json:"machine_share"`
	GymnasticsShare          float64   `json:"gymnastics_share"`
	PerRoundPower            []float64 `json:"per_round_power"`
	TotalActiveSeconds       *float64  `json:"total_active_seconds"`
	RestSeconds              *float64  `json:"rest_seconds"`
	ComputedAt               time.Time `json:"computed_at"`
}

// ExportWorkout is one workout in the JSON export.
type ExportWorkout struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	WorkoutType      string           `json:"workout_type"`
	TemplateType     string           `json:"template_type"`
	PerformedAt      time.Time        `json:"performed_at"`
	TotalTimeSeconds int              `json:"total_time_seconds"`
	RoundCount       int              `json:"round_count"`
	Notes            string           `json:"notes"`
	Movements        []ExportMovement `json:"movements"`
	Splits           []ExportSplit    `json:"splits"`
	Metrics          *ExportMetrics   `json:"metrics"`
}

// ExportDomainScore is one domain score in the JSON export.
type ExportDomainScore struct {
	Domain          string   `json:"domain"`
	RawValue        *float64 `json:"raw_value"`
	NormalizedScore *float64 `json:"normalized_score"`
	SampleCount     int      `json:"sample_count"`
	Confidence      string   `json:"confidence"`
}

// ExportDateRange echoes the requested filter.
type ExportDateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// ExportBundle is the complete JSON export payload.
type ExportBundle struct {
	ExportDate   time.Time           `json:"export_date"`
	WorkoutCount int                 `json:"workout_count"`
	DateRange    ExportDateRange     `json:"date_range"`
	Workouts     []ExportWorkout     `json:"workouts"`
	DomainScores []ExportDomainScore `json:"domain_scores"`
}

// ExportJSON assembles the full data export: workouts with their children
// and the current domain scores.
func (s *Service) ExportJSON(ctx context.Context, userID string, start, end *time.Time) (*ExportBundle, error) {
	workouts, err := s.repo.ListForExport(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	scores, err := s.scorer.Completeness(ctx, userID)
	if err != nil {
		return nil, err
	}

	bundle := &ExportBundle{
		ExportDate:   time.Now().UTC(),
		WorkoutCount: len(workouts),
		DateRange:    ExportDateRange{Start: start, End: end},
		Workouts:     make([]ExportWorkout, 0, len(workouts)),
		DomainScores: make([]ExportDomainScore, 0, len(scores)),
	}

	for _, w := range workouts {
		bundle.Workouts = append(bundle.Workouts, toExportWorkout(w))
	}
	for _, score := range scores {
		entry := ExportDomainScore{
			Domain:          string(score.Domain),
			NormalizedScore: score.Score,
			SampleCount:     score.SampleCount,
			Confidence:      string(score.Confidence),
		}
		if score.SampleCount > 0 {
			raw := score.RawValue
			entry.RawValue = &raw
		}
		bundle.DomainScores = append(bundle.DomainScores, entry)
	}
	return bundle, nil
}

func toExportWorkout(w Workout) ExportWorkout {
	out := ExportWorkout{
		ID:               w.ID,
		Name:             w.Name,
		WorkoutType:      string(w.WorkoutType),
		TemplateType:     string(w.TemplateType),
		PerformedAt:      w.PerformedAt,
		TotalTimeSeconds: w.TotalTimeSeconds,
		RoundCount:       w.RoundCount,
		Notes:            w.Notes,
		Movements:        make([]ExportMovement, 0, len(w.Movements)),
		Splits:           make([]ExportSplit, 0, len(w.Splits)),
	}

	for _, m := range w.Movements {
		out.Movements = append(out.Movements, ExportMovement{
			MovementType: string(m.Kind),
			Modality:     string(m.Modality),
			Reps:         m.Reps,
			LoadLb:       m.LoadLb,
			Calories:     m.Calories,
			OrderIndex:   m.OrderIndex,
		})
	}
	for _, sp := range w.Splits {
		out.Splits = append(out.Splits, ExportSplit{RoundNumber: sp.RoundNumber, TimeSeconds: sp.TimeSeconds})
	}
	if m := w.Metrics; m != nil {
		out.Metrics = &ExportMetrics{
			TotalEWU:                 m.TotalEWU,
			DensityPowerMin:          m.DensityPowerMin,
			DensityPowerSec:          m.DensityPowerSec,
			ActivePower:              m.ActivePower,
			RepeatabilityDrift:       m.RepeatabilityDrift,
			RepeatabilitySpread:      m.RepeatabilitySpread,
			RepeatabilityConsistency: m.RepeatabilityConsistency,
			LiftEWU:                  m.LiftEWU,
			MachineEWU:               m.MachineEWU,
			GymnasticsEWU:            m.GymnasticsEWU,
			LiftShare:                m.LiftShare,
			MachineShare:             m.MachineShare,
			GymnasticsShare:          m.GymnasticsShare,
			PerRoundPower:            m.PerRoundPower,
			TotalActiveSeconds:       m.TotalActiveSeconds,
			RestSeconds:              m.RestSeconds,
			ComputedAt:               m.ComputedAt,
		}
	}
	return out
}
