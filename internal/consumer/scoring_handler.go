package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"example.com/scoring/internal/domain"
	"example.com/scoring/internal/engine"
	"example.com/scoring/internal/events"
)

// EventWorkoutLogged is the upstream event type that triggers scoring.
const EventWorkoutLogged = "workout.logged"

// ScoringHandler scores workout.logged events through the same pipeline as
// API submissions. Events of other types are acknowledged and skipped.
type ScoringHandler struct {
	service *domain.Service
}

// NewScoringHandler constructs a handler backed by the domain service.
func NewScoringHandler(service *domain.Service) *ScoringHandler {
	return &ScoringHandler{service: service}
}

// Handle decodes and scores one consumed event.
func (h *ScoringHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != EventWorkoutLogged {
		log.Printf("[consumer] skipping event_type=%s topic=%s offset=%d", msg.EventType, msg.Topic, msg.Offset)
		return nil
	}

	var event events.WorkoutLogged
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("decode workout.logged: %w", err)
	}
	if event.UserID == "" {
		return fmt.Errorf("workout.logged missing user_id (offset=%d)", msg.Offset)
	}
	if event.TotalTimeSeconds <= 0 {
		return fmt.Errorf("workout.logged invalid total_time_seconds=%d", event.TotalTimeSeconds)
	}

	result, err := h.service.LogWorkout(ctx, toInput(event))
	if err != nil {
		return fmt.Errorf("score workout for user %s: %w", event.UserID, err)
	}

	if result.Replay {
		log.Printf("[consumer] replayed workout %s for user %s", result.Workout.ID, event.UserID)
	}
	return nil
}

func toInput(event events.WorkoutLogged) domain.LogWorkoutInput {
	roundCount := event.RoundCount
	if roundCount < 1 {
		roundCount = 1
	}

	input := domain.LogWorkoutInput{
		UserID:           event.UserID,
		Name:             event.Name,
		TemplateType:     engine.TemplateType(event.TemplateType),
		TotalTimeSeconds: event.TotalTimeSeconds,
		RoundCount:       roundCount,
		Notes:            event.Notes,
		PerformedAt:      event.PerformedAt,
		IdempotencyKey:   event.IdempotencyKey,
		Movements:        make([]domain.MovementInput, 0, len(event.Movements)),
		Splits:           make([]domain.SplitInput, 0, len(event.Splits)),
	}
	for i, m := range event.Movements {
		order := i
		if m.OrderIndex != nil {
			order = *m.OrderIndex
		}
		input.Movements = append(input.Movements, domain.MovementInput{
			Kind:       engine.MovementKind(m.MovementType),
			Reps:       m.Reps,
			LoadLb:     m.LoadLb,
			Calories:   m.Calories,
			OrderIndex: order,
		})
	}
	for _, sp := range event.Splits {
		input.Splits = append(input.Splits, domain.SplitInput{RoundNumber: sp.RoundNumber, TimeSeconds: sp.TimeSeconds})
	}
	return input
}
