// Package engine computes standardized work units, derived performance
// metrics, workout classification, and percentile-based completeness scores.
// Every function here is pure computation over in-memory values; persistence
// and transport live with the callers.
package engine

// Modality groups movement kinds by how their work output is measured.
type Modality string

const (
	ModalityMachine    Modality = "machine"
	ModalityLift       Modality = "lift"
	ModalityGymnastics Modality = "gymnastics"
)

// MovementKind identifies an entry in the movement catalog.
type MovementKind string

// Machine movements.
const (
	MovementEchoBike    MovementKind = "echo_bike"
	MovementRower       MovementKind = "rower"
	MovementSkiErg      MovementKind = "ski_erg"
	MovementRun         MovementKind = "run"
	MovementAssaultBike MovementKind = "assault_bike"
)

// Barbell movements.
const (
	MovementPowerSnatch     MovementKind = "power_snatch"
	MovementSquatSnatch     MovementKind = "squat_snatch"
	MovementPowerClean      MovementKind = "power_clean"
	MovementSquatClean      MovementKind = "squat_clean"
	MovementCleanAndJerk    MovementKind = "clean_and_jerk"
	MovementDeadlift        MovementKind = "deadlift"
	MovementBackSquat       MovementKind = "back_squat"
	MovementFrontSquat      MovementKind = "front_squat"
	MovementOverheadSquat   MovementKind = "overhead_squat"
	MovementStrictPress     MovementKind = "strict_press"
	MovementPushPress       MovementKind = "push_press"
	MovementPushJerk        MovementKind = "push_jerk"
	MovementSplitJerk       MovementKind = "split_jerk"
	MovementThruster        MovementKind = "thruster"
	MovementHangPowerSnatch MovementKind = "hang_power_snatch"
	MovementHangPowerClean  MovementKind = "hang_power_clean"
	MovementHangSquatSnatch MovementKind = "hang_squat_snatch"
	MovementHangSquatClean  MovementKind = "hang_squat_clean"
	MovementSumoDeadlift    MovementKind = "sumo_deadlift"
	MovementRomanianDL      MovementKind = "romanian_deadlift"
)

// Gymnastics movements.
const (
	MovementPullUp            MovementKind = "pull_up"
	MovementChestToBar        MovementKind = "chest_to_bar"
	MovementMuscleUp          MovementKind = "muscle_up"
	MovementBarMuscleUp       MovementKind = "bar_muscle_up"
	MovementToesToBar         MovementKind = "toes_to_bar"
	MovementHandstandPushUp   MovementKind = "handstand_push_up"
	MovementBoxJump           MovementKind = "box_jump"
	MovementBoxJumpOver       MovementKind = "box_jump_over"
	MovementBurpee            MovementKind = "burpee"
	MovementBurpeeBoxJumpOver MovementKind = "burpee_box_jump_over"
	MovementDoubleUnder       MovementKind = "double_under"
	MovementWallBall          MovementKind = "wall_ball"
	MovementKettlebellSwing   MovementKind = "kettlebell_swing"
	MovementDumbbellSnatch    MovementKind = "dumbbell_snatch"
	MovementDumbbellClean     MovementKind = "dumbbell_clean"
)

// movementModality is the closed catalog mapping. Kinds missing from the map
// fall back to gymnastics so an extended catalog degrades instead of failing.
var movementModality = map[MovementKind]Modality{
	MovementEchoBike:    ModalityMachine,
	MovementRower:       ModalityMachine,
	MovementSkiErg:      ModalityMachine,
	MovementRun:         ModalityMachine,
	MovementAssaultBike: ModalityMachine,

	MovementPowerSnatch:     ModalityLift,
	MovementSquatSnatch:     ModalityLift,
	MovementPowerClean:      ModalityLift,
	MovementSquatClean:      ModalityLift,
	MovementCleanAndJerk:    ModalityLift,
	MovementDeadlift:        ModalityLift,
	MovementBackSquat:       ModalityLift,
	MovementFrontSquat:      ModalityLift,
	MovementOverheadSquat:   ModalityLift,
	MovementStrictPress:     ModalityLift,
	MovementPushPress:       ModalityLift,
	MovementPushJerk:        ModalityLift,
	MovementSplitJerk:       ModalityLift,
	MovementThruster:        ModalityLift,
	MovementHangPowerSnatch: ModalityLift,
	MovementHangPowerClean:  ModalityLift,
	MovementHangSquatSnatch: ModalityLift,
	MovementHangSquatClean:  ModalityLift,
	MovementSumoDeadlift:    ModalityLift,
	MovementRomanianDL:      ModalityLift,

	MovementPullUp:            ModalityGymnastics,
	MovementChestToBar:        ModalityGymnastics,
	MovementMuscleUp:          ModalityGymnastics,
	MovementBarMuscleUp:       ModalityGymnastics,
	MovementToesToBar:         ModalityGymnastics,
	MovementHandstandPushUp:   ModalityGymnastics,
	MovementBoxJump:           ModalityGymnastics,
	MovementBoxJumpOver:       ModalityGymnastics,
	MovementBurpee:            ModalityGymnastics,
	MovementBurpeeBoxJumpOver: ModalityGymnastics,
	MovementDoubleUnder:       ModalityGymnastics,
	MovementWallBall:          ModalityGymnastics,
	MovementKettlebellSwing:   ModalityGymnastics,
	MovementDumbbellSnatch:    ModalityGymnastics,
	MovementDumbbellClean:     ModalityGymnastics,
}

// ModalityOf returns the modality for a movement kind. Unmapped kinds
// default to gymnastics.
func ModalityOf(kind MovementKind) Modality {
	if m, ok := movementModality[kind]; ok {
		return m
	}
	return ModalityGymnastics
}

// FormulaSet holds the calibration tables used to convert raw movement work
// into effective work units. Calibration changes ship as a new set rather
// than edits to these values, so results stay reproducible per version.
type FormulaSet struct {
	Version string

	// MachineFactors convert machine work output (calories) to EWU.
	MachineFactors map[MovementKind]float64
	// DefaultMachineFactor applies to machine kinds absent from the table.
	DefaultMachineFactor float64
	// LiftDivisor scales load*reps for barbell movements.
	LiftDivisor float64
	// RunDivisor converts run distance (meters, carried in the reps field)
	// to EWU.
	RunDivisor float64
	// GymnasticsFactors convert reps to EWU per kind.
	GymnasticsFactors map[MovementKind]float64
	// DefaultGymnasticsFactor applies to gymnastics kinds absent from the table.
	DefaultGymnasticsFactor float64
}

// FormulaV1 returns the v1 calibration set.
func FormulaV1() FormulaSet {
	return FormulaSet{
		Version: "v1",
		MachineFactors: map[MovementKind]float64{
			MovementEchoBike:    1.0,
			MovementRower:       1.0,
			MovementSkiErg:      1.0,
			MovementAssaultBike: 1.0,
		},
		DefaultMachineFactor: 1.0,
		LiftDivisor:          50.0,
		RunDivisor:           100.0,
		GymnasticsFactors: map[MovementKind]float64{
			MovementPullUp:            0.5,
			MovementChestToBar:        0.6,
			MovementMuscleUp:          1.5,
			MovementBarMuscleUp:       1.2,
			MovementToesToBar:         0.4,
			MovementHandstandPushUp:   0.8,
			MovementBoxJump:           0.3,
			MovementBoxJumpOver:       0.35,
			MovementBurpee:            0.5,
			MovementBurpeeBoxJumpOver: 0.7,
			MovementDoubleUnder:       0.05,
			MovementWallBall:          0.4,
			MovementKettlebellSwing:   0.3,
			MovementDumbbellSnatch:    0.4,
			MovementDumbbellClean:     0.4,
		},
		DefaultGymnasticsFactor: 0.3,
	}
}
