package engine

import "math"

// MovementEntry is a single prescribed movement within a round. Load carries
// pounds for barbell movements, Calories carries machine work output; either
// may be zero when not applicable.
type MovementEntry struct {
	Kind       MovementKind
	Reps       int
	LoadLb     float64
	Calories   int
	OrderIndex int
}

// MovementWorkUnits is the computed work for one movement entry.
type MovementWorkUnits struct {
	Kind     MovementKind
	Modality Modality
	EWU      float64
	Entry    MovementEntry
}

// RoundWorkUnits aggregates movement work for a single round.
type RoundWorkUnits struct {
	RoundNumber   int
	Movements     []MovementWorkUnits
	TotalEWU      float64
	LiftEWU       float64
	MachineEWU    float64
	GymnasticsEWU float64
}

// WorkoutWorkUnits is the complete work-unit breakdown for a workout.
// Shares sum to 1.0 whenever TotalEWU is positive and are all zero otherwise.
type WorkoutWorkUnits struct {
	Rounds          []RoundWorkUnits
	TotalEWU        float64
	LiftEWU         float64
	MachineEWU      float64
	GymnasticsEWU   float64
	LiftShare       float64
	MachineShare    float64
	GymnasticsShare float64
}

// Converter turns movement entries into effective work units using a fixed
// formula set.
type Converter struct {
	formulas FormulaSet
}

// NewConverter builds a Converter for the given formula set.
func NewConverter(formulas FormulaSet) Converter {
	return Converter{formulas: formulas}
}

// Convert computes the work units for a single movement entry. The result is
// rounded to 2 decimals here, not at aggregation time, so downstream sums
// stay reproducible.
func (c Converter) Convert(entry MovementEntry) MovementWorkUnits {
	modality := ModalityOf(entry.Kind)
	var ewu float64

	switch modality {
	case ModalityMachine:
		if entry.Kind == MovementRun {
			// Runs are measured in distance, carried in the reps field.
			ewu = float64(entry.Reps) / c.formulas.RunDivisor
		} else {
			factor, ok := c.formulas.MachineFactors[entry.Kind]
			if !ok {
				factor = c.formulas.DefaultMachineFactor
			}
			ewu = float64(entry.Calories) * factor
		}
	case ModalityLift:
		ewu = (entry.LoadLb * float64(entry.Reps)) / c.formulas.LiftDivisor
	case ModalityGymnastics:
		factor, ok := c.formulas.GymnasticsFactors[entry.Kind]
		if !ok {
			factor = c.formulas.DefaultGymnasticsFactor
		}
		ewu = float64(entry.Reps) * factor
	}

	return MovementWorkUnits{
		Kind:     entry.Kind,
		Modality: modality,
		EWU:      round2(ewu),
		Entry:    entry,
	}
}

// ConvertRound computes per-modality subtotals for one round of movements.
func (c Converter) ConvertRound(entries []MovementEntry, roundNumber int) RoundWorkUnits {
	movements := make([]MovementWorkUnits, 0, len(entries))
	var lift, machine, gymnastics float64

	for _, entry := range entries {
		mwu := c.Convert(entry)
		movements = append(movements, mwu)
		switch mwu.Modality {
		case ModalityLift:
			lift += mwu.EWU
		case ModalityMachine:
			machine += mwu.EWU
		case ModalityGymnastics:
			gymnastics += mwu.EWU
		}
	}

	return RoundWorkUnits{
		RoundNumber:   roundNumber,
		Movements:     movements,
		TotalEWU:      round2(lift + machine + gymnastics),
		LiftEWU:       round2(lift),
		MachineEWU:    round2(machine),
		GymnasticsEWU: round2(gymnastics),
	}
}

// ConvertWorkout computes the full breakdown for a workout. The entries
// describe one round; interval workouts are structurally identical each
// round, so the template round's values are replicated across roundCount
// and the totals scaled, rather than recomputing the formulas per round.
func (c Converter) ConvertWorkout(entries []MovementEntry, roundCount int) WorkoutWorkUnits {
	template := c.ConvertRound(entries, 1)

	rounds := make([]RoundWorkUnits, 0, roundCount)
	for i := 0; i < roundCount; i++ {
		rounds = append(rounds, RoundWorkUnits{
			RoundNumber:   i + 1,
			Movements:     template.Movements,
			TotalEWU:      template.TotalEWU,
			LiftEWU:       template.LiftEWU,
			MachineEWU:    template.MachineEWU,
			GymnasticsEWU: template.GymnasticsEWU,
		})
	}

	total := template.TotalEWU * float64(roundCount)
	lift := template.LiftEWU * float64(roundCount)
	machine := template.MachineEWU * float64(roundCount)
	gymnastics := template.GymnasticsEWU * float64(roundCount)

	var liftShare, machineShare, gymnasticsShare float64
	if total > 0 {
		liftShare = lift / total
		machineShare = machine / total
		gymnasticsShare = gymnastics / total
	}

	return WorkoutWorkUnits{
		Rounds:          rounds,
		TotalEWU:        round2(total),
		LiftEWU:         round2(lift),
		MachineEWU:      round2(machine),
		GymnasticsEWU:   round2(gymnastics),
		LiftShare:       round4(liftShare),
		MachineShare:    round4(machineShare),
		GymnasticsShare: round4(gymnasticsShare),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

func round6(v float64) float64 { return math.Round(v*1000000) / 1000000 }
