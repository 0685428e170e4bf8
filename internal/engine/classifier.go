package engine

import "fmt"

// WorkoutType is the derived workout archetype. It is assigned by Classify,
// never set directly by callers.
type WorkoutType string

const (
	WorkoutSprint         WorkoutType = "sprint"
	WorkoutThreshold      WorkoutType = "threshold"
	WorkoutEndurance      WorkoutType = "endurance"
	WorkoutInterval       WorkoutType = "interval"
	WorkoutChipper        WorkoutType = "chipper"
	WorkoutStrength       WorkoutType = "strength"
	WorkoutMonostructural WorkoutType = "monostructural"
)

// TemplateType is the caller-declared workout template, used only as a
// confidence hint for classification.
type TemplateType string

const (
	TemplateInterval       TemplateType = "interval"
	TemplateChipper        TemplateType = "chipper"
	TemplateSprintTest     TemplateType = "sprint_test"
	TemplateThreshold      TemplateType = "threshold"
	TemplateEndurance      TemplateType = "endurance"
	TemplateStrength       TemplateType = "strength_session"
	TemplateMonostructural TemplateType = "monostructural_test"
	TemplateCustom         TemplateType = "custom"
)

// Classification is the result of workout-type detection.
type Classification struct {
	Type       WorkoutType
	Confidence float64
	Reasoning  string

	IsInterval        bool
	IsChipper         bool
	IsMonostructural  bool
	IsStrengthFocused bool
	DurationCategory  string
}

// Duration thresholds in seconds.
const (
	sprintMaxSeconds    = 300
	thresholdMaxSeconds = 900
)

// Composition thresholds.
const (
	monostructuralMinShare = 1.0
	strengthMinLiftShare   = 0.80
	strengthMaxAvgReps     = 5
	chipperMinMovements    = 4
)

var templateToType = map[TemplateType]WorkoutType{
	TemplateInterval:       WorkoutInterval,
	TemplateChipper:        WorkoutChipper,
	TemplateSprintTest:     WorkoutSprint,
	TemplateThreshold:      WorkoutThreshold,
	TemplateEndurance:      WorkoutEndurance,
	TemplateStrength:       WorkoutStrength,
	TemplateMonostructural: WorkoutMonostructural,
}

func durationCategory(totalSeconds int) string {
	switch {
	case totalSeconds < sprintMaxSeconds:
		return "sprint"
	case totalSeconds < thresholdMaxSeconds:
		return "threshold"
	default:
		return "endurance"
	}
}

// isStrengthFocused reports whether the workout is dominated by heavy,
// low-rep barbell work.
func isStrengthFocused(entries []MovementEntry, units WorkoutWorkUnits) bool {
	if units.LiftShare < strengthMinLiftShare {
		return false
	}

	var liftEntries, totalReps int
	for _, entry := range entries {
		if ModalityOf(entry.Kind) == ModalityLift {
			liftEntries++
			totalReps += entry.Reps
		}
	}
	if liftEntries == 0 {
		return false
	}

	return float64(totalReps)/float64(liftEntries) <= strengthMaxAvgReps
}

// Classify assigns a workout archetype from structural signals. Rules apply
// in fixed priority order and the first match wins:
//
//  1. monostructural: machine share at 100%
//  2. strength: lift share >= 80% with low-rep sets
//  3. interval: multiple rounds with tracked splits
//  4. chipper: 4+ distinct movements in a single pass
//  5. duration fallback: sprint / threshold / endurance
//
// A template hint only adjusts confidence; it never overrides the
// structural decision.
func Classify(entries []MovementEntry, units WorkoutWorkUnits, totalSeconds, roundCount int, hasSplits bool, hint TemplateType) Classification {
	isMono := units.MachineShare >= monostructuralMinShare
	isStrength := isStrengthFocused(entries, units)
	isInterval := roundCount > 1 && hasSplits

	distinct := make(map[MovementKind]struct{}, len(entries))
	for _, entry := range entries {
		distinct[entry.Kind] = struct{}{}
	}
	isChipper := len(distinct) >= chipperMinMovements && roundCount == 1

	category := durationCategory(totalSeconds)

	var (
		workoutType WorkoutType
		confidence  float64
		reasoning   string
	)

	switch {
	case isMono:
		workoutType = WorkoutMonostructural
		confidence = 1.0
		reasoning = "100% machine work (bike/row/ski/run only)"
	case isStrength:
		workoutType = WorkoutStrength
		confidence = 0.9
		reasoning = fmt.Sprintf(">%.0f%% lift share with low rep sets", strengthMinLiftShare*100)
	case isInterval:
		workoutType = WorkoutInterval
		confidence = 0.95
		reasoning = fmt.Sprintf("%d rounds with tracked split times", roundCount)
	case isChipper:
		workoutType = WorkoutChipper
		confidence = 0.85
		reasoning = fmt.Sprintf("%d distinct movements in single pass", len(distinct))
	default:
		confidence = 0.7
		switch category {
		case "sprint":
			workoutType = WorkoutSprint
			reasoning = fmt.Sprintf("short duration (%ds < 5 min)", totalSeconds)
		case "threshold":
			workoutType = WorkoutThreshold
			reasoning = "medium duration (5-15 min range)"
		default:
			workoutType = WorkoutEndurance
			reasoning = fmt.Sprintf("long duration (%ds >= 15 min)", totalSeconds)
		}
	}

	// The hint nudges confidence within [0.5, 1.0] but the structural
	// decision stands either way.
	if expected, ok := templateToType[hint]; ok {
		if expected == workoutType {
			confidence = minF(1.0, confidence+0.1)
		} else {
			confidence = maxF(0.5, confidence-0.1)
			reasoning += fmt.Sprintf(" (template suggested %s)", hint)
		}
	}

	return Classification{
		Type:              workoutType,
		Confidence:        round2(confidence),
		Reasoning:         reasoning,
		IsInterval:        isInterval,
		IsChipper:         isChipper,
		IsMonostructural:  isMono,
		IsStrengthFocused: isStrength,
		DurationCategory:  category,
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
