package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/scoring/internal/domain"
	"example.com/scoring/internal/engine"
	"example.com/scoring/internal/events"
)

func intPtr(v int) *int { return &v }

func newScoringHandler(repo *stubWorkoutRepo) *ScoringHandler {
	distributions := engine.NewInMemoryDistributionStore()
	scores := engine.NewInMemoryDomainScoreStore()
	scorer := engine.NewScorer(distributions, scores, 0)
	service := domain.NewService(repo, engine.NewConverter(engine.FormulaV1()), scorer, distributions)
	return NewScoringHandler(service)
}

func workoutLoggedPayload(t *testing.T) []byte {
	t.Helper()
	load := 95.0
	cals := 10
	event := events.WorkoutLogged{
		UserID:           "user-1",
		Name:             "bike snatch intervals",
		TemplateType:     "interval",
		TotalTimeSeconds: 1094,
		RoundCount:       6,
		PerformedAt:      time.Date(2026, time.March, 2, 17, 30, 0, 0, time.UTC),
		Movements: []events.MovementPayload{
			{MovementType: "echo_bike", Calories: &cals, OrderIndex: intPtr(0)},
			{MovementType: "power_snatch", Reps: 8, LoadLb: &load, OrderIndex: intPtr(1)},
			{MovementType: "echo_bike", Calories: &cals, OrderIndex: intPtr(2)},
		},
		Splits: []events.SplitPayload{
			{RoundNumber: 1, TimeSeconds: 90},
			{RoundNumber: 2, TimeSeconds: 88},
		},
		IdempotencyKey: "evt-1",
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return payload
}

func TestScoringHandlerScoresWorkoutLogged(t *testing.T) {
	repo := &stubWorkoutRepo{}
	handler := newScoringHandler(repo)

	err := handler.Handle(context.Background(), Message{
		Topic:     "workout_logged",
		EventType: EventWorkoutLogged,
		Payload:   workoutLoggedPayload(t),
	})
	require.NoError(t, err)

	require.NotNil(t, repo.created)
	require.Equal(t, "user-1", repo.created.UserID)
	require.Equal(t, engine.WorkoutInterval, repo.created.WorkoutType)
	require.NotNil(t, repo.created.Metrics)
	require.Equal(t, 211.2, repo.created.Metrics.TotalEWU)
	require.Equal(t, "evt-1", repo.idempotencyKey)
}

func TestScoringHandlerPreservesExplicitOrderIndexes(t *testing.T) {
	repo := &stubWorkoutRepo{}
	handler := newScoringHandler(repo)

	load := 95.0
	cals := 10
	event := events.WorkoutLogged{
		UserID:           "user-1",
		TotalTimeSeconds: 600,
		RoundCount:       1,
		PerformedAt:      time.Date(2026, time.March, 2, 17, 30, 0, 0, time.UTC),
		Movements: []events.MovementPayload{
			// Explicit zero on a non-first movement must survive; an
			// omitted index falls back to the slice position.
			{MovementType: "power_snatch", Reps: 8, LoadLb: &load, OrderIndex: intPtr(1)},
			{MovementType: "echo_bike", Calories: &cals, OrderIndex: intPtr(0)},
			{MovementType: "burpee", Reps: 20},
		},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	err = handler.Handle(context.Background(), Message{
		EventType: EventWorkoutLogged,
		Payload:   payload,
	})
	require.NoError(t, err)

	require.NotNil(t, repo.created)
	require.Len(t, repo.created.Movements, 3)
	require.Equal(t, 1, repo.created.Movements[0].OrderIndex)
	require.Equal(t, 0, repo.created.Movements[1].OrderIndex)
	require.Equal(t, 2, repo.created.Movements[2].OrderIndex)
}

func TestScoringHandlerSkipsOtherEventTypes(t *testing.T) {
	repo := &stubWorkoutRepo{}
	handler := newScoringHandler(repo)

	err := handler.Handle(context.Background(), Message{
		Topic:     "workout_logged",
		EventType: "workout.deleted",
		Payload:   []byte(`{}`),
	})
	require.NoError(t, err)
	require.Nil(t, repo.created)
}

func TestScoringHandlerRejectsMissingUser(t *testing.T) {
	handler := newScoringHandler(&stubWorkoutRepo{})

	err := handler.Handle(context.Background(), Message{
		EventType: EventWorkoutLogged,
		Payload:   []byte(`{"total_time_seconds":600}`),
	})
	require.Error(t, err)
}

func TestScoringHandlerRejectsBadPayload(t *testing.T) {
	handler := newScoringHandler(&stubWorkoutRepo{})

	err := handler.Handle(context.Background(), Message{
		EventType: EventWorkoutLogged,
		Payload:   []byte(`{"total_time_seconds":"x"}`),
	})
	require.Error(t, err)
}

type stubWorkoutRepo struct {
	created        *domain.Workout
	idempotencyKey string
}

func (r *stubWorkoutRepo) FindByIdempotency(ctx context.Context, userID, idempotencyKey string) (*domain.Workout, error) {
	return nil, nil
}

func (r *stubWorkoutRepo) Create(ctx context.Context, workout domain.Workout, idempotencyKey string, updatedScores []*engine.DomainScore) error {
	r.created = &workout
	r.idempotencyKey = idempotencyKey
	return nil
}

func (r *stubWorkoutRepo) Get(ctx context.Context, userID, workoutID string) (*domain.Workout, error) {
	return nil, nil
}

func (r *stubWorkoutRepo) ListByUser(ctx context.Context, userID string, filter domain.ListFilter, cursor *domain.Cursor, limit int) ([]domain.Workout, *domain.Cursor, error) {
	return nil, nil, nil
}

func (r *stubWorkoutRepo) ListSince(ctx context.Context, userID string, since time.Time) ([]domain.Workout, error) {
	return nil, nil
}

func (r *stubWorkoutRepo) ListForExport(ctx context.Context, userID string, start, end *time.Time) ([]domain.Workout, error) {
	return nil, nil
}

func (r *stubWorkoutRepo) Delete(ctx context.Context, userID, workoutID string) (bool, error) {
	return false, nil
}
