// Package postgres provides pgx-backed persistence for workouts, metric
// distributions, and domain scores.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/scoring/internal/domain"
	"example.com/scoring/internal/engine"
	"example.com/scoring/internal/events"
	"example.com/scoring/internal/observability"
)

// Repository provides Postgres-backed persistence for workouts and outbox events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const workoutColumns = `workout_id, user_id, name, workout_type, type_confidence, type_reasoning, template_type, total_time_seconds, round_count, notes, performed_at, created_at, updated_at`

func scanWorkout(row pgx.Row) (*domain.Workout, error) {
	var w domain.Workout
	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.Name,
		&w.WorkoutType,
		&w.TypeConfidence,
		&w.TypeReasoning,
		&w.TemplateType,
		&w.TotalTimeSeconds,
		&w.RoundCount,
		&w.Notes,
		&w.PerformedAt,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// FindByIdempotency checks if a workout already exists for the supplied idempotency key.
func (r *Repository) FindByIdempotency(ctx context.Context, userID, idempotencyKey string) (*domain.Workout, error) {
	if idempotencyKey == "" {
		return nil, nil
	}

	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id=$1 AND idempotency_key=$2`

	workout, err := scanWorkout(r.pool.QueryRow(ctx, query, userID, idempotencyKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadChildren(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

// Create persists the workout, its children, and the outbox events for the
// updated domain scores inside a single transaction.
func (r *Repository) Create(ctx context.Context, workout domain.Workout, idempotencyKey string, updatedScores []*engine.DomainScore) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	insertWorkout := `INSERT INTO workouts (workout_id, user_id, name, workout_type, type_confidence, type_reasoning, template_type, total_time_seconds, round_count, notes, performed_at, idempotency_key, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`

	_, err = tx.Exec(ctx, insertWorkout,
		workout.ID,
		workout.UserID,
		workout.Name,
		workout.WorkoutType,
		workout.TypeConfidence,
		workout.TypeReasoning,
		workout.TemplateType,
		workout.TotalTimeSeconds,
		workout.RoundCount,
		workout.Notes,
		workout.PerformedAt,
		nullIfEmpty(idempotencyKey),
		workout.CreatedAt,
		workout.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for _, m := range workout.Movements {
		_, err = tx.Exec(ctx,
			`INSERT INTO workout_movements (workout_id, movement_type, modality, reps, load_lb, calories, order_index) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			workout.ID, m.Kind, m.Modality, m.Reps, m.LoadLb, m.Calories, m.OrderIndex,
		)
		if err != nil {
			return err
		}
	}

	for _, s := range workout.Splits {
		_, err = tx.Exec(ctx,
			`INSERT INTO workout_splits (workout_id, round_number, time_seconds) VALUES ($1,$2,$3)`,
			workout.ID, s.RoundNumber, s.TimeSeconds,
		)
		if err != nil {
			return err
		}
	}

	if workout.Metrics != nil {
		if err = insertMetrics(ctx, tx, workout.ID, workout.Metrics); err != nil {
			return err
		}
	}

	if err = r.insertOutbox(ctx, tx, workout, "workout.scored", buildScoredEvent(workout, updatedScores)); err != nil {
		return err
	}
	if len(updatedScores) > 0 {
		if err = r.insertOutbox(ctx, tx, workout, "completeness.updated", buildCompletenessEvent(workout, updatedScores)); err != nil {
			return err
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}

	observability.RecordWorkoutPersisted(workout.UpdatedAt)
	observability.RecordWorkoutScored(string(workout.WorkoutType))
	for _, score := range updatedScores {
		observability.RecordDomainUpdate(string(score.Domain))
	}
	return nil
}

func insertMetrics(ctx context.Context, tx pgx.Tx, workoutID string, m *domain.WorkoutMetrics) error {
	var perRound []byte
	if m.PerRoundPower != nil {
		encoded, err := json.Marshal(m.PerRoundPower)
		if err != nil {
			return err
		}
		perRound = encoded
	}

	const stmt = `INSERT INTO workout_metrics (workout_id, total_ewu, density_power_min, density_power_sec, active_power, per_round_power, repeatability_drift, repeatability_spread, repeatability_consistency, lift_ewu, machine_ewu, gymnastics_ewu, lift_share, machine_share, gymnastics_share, total_active_seconds, rest_seconds, computed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`

	_, err := tx.Exec(ctx, stmt,
		workoutID,
		m.TotalEWU,
		m.DensityPowerMin,
		m.DensityPowerSec,
		m.ActivePower,
		perRound,
		m.RepeatabilityDrift,
		m.RepeatabilitySpread,
		m.RepeatabilityConsistency,
		m.LiftEWU,
		m.MachineEWU,
		m.GymnasticsEWU,
		m.LiftShare,
		m.MachineShare,
		m.GymnasticsShare,
		m.TotalActiveSeconds,
		m.RestSeconds,
		m.ComputedAt,
	)
	return err
}

func buildScoredEvent(workout domain.Workout, updatedScores []*engine.DomainScore) events.WorkoutScored {
	domains := make([]string, 0, len(updatedScores))
	for _, score := range updatedScores {
		domains = append(domains, string(score.Domain))
	}

	evt := events.WorkoutScored{
		WorkoutID:        workout.ID,
		UserID:           workout.UserID,
		WorkoutType:      string(workout.WorkoutType),
		TypeConfidence:   workout.TypeConfidence,
		PerformedAt:      workout.PerformedAt,
		ScoredAt:         workout.CreatedAt,
		QualifiedDomains: domains,
	}
	if workout.Metrics != nil {
		evt.TotalEWU = workout.Metrics.TotalEWU
		evt.DensityPowerMin = workout.Metrics.DensityPowerMin
	}
	return evt
}

func buildCompletenessEvent(workout domain.Workout, updatedScores []*engine.DomainScore) events.CompletenessUpdated {
	payloads := make([]events.DomainScorePayload, 0, len(updatedScores))
	for _, score := range updatedScores {
		payloads = append(payloads, events.DomainScorePayload{
			Domain:      string(score.Domain),
			RawValue:    score.RawValue,
			Score:       score.Score,
			SampleCount: score.SampleCount,
			Confidence:  string(score.Confidence),
		})
	}
	return events.CompletenessUpdated{
		UserID:    workout.UserID,
		WorkoutID: workout.ID,
		Domains:   payloads,
		UpdatedAt: workout.CreatedAt,
	}
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, workout domain.Workout, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[eventType]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	partitionKey := meta.PartitionKeyFn(workout)
	dedupeKey := fmt.Sprintf("%s:%s", workout.ID, eventType)

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = tx.Exec(ctx, stmt,
		"workout",
		workout.ID,
		eventType,
		meta.Topic,
		partitionKey,
		body,
		dedupeKey,
	)
	return err
}

// Get retrieves a workout owned by the user, with movements, splits, and metrics.
func (r *Repository) Get(ctx context.Context, userID, workoutID string) (*domain.Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id=$1 AND workout_id=$2`

	workout, err := scanWorkout(r.pool.QueryRow(ctx, query, userID, workoutID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadChildren(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

func (r *Repository) loadChildren(ctx context.Context, workout *domain.Workout) error {
	rows, err := r.pool.Query(ctx,
		`SELECT movement_type, modality, reps, load_lb, calories, order_index FROM workout_movements WHERE workout_id=$1 ORDER BY order_index`,
		workout.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var m domain.Movement
		if err := rows.Scan(&m.Kind, &m.Modality, &m.Reps, &m.LoadLb, &m.Calories, &m.OrderIndex); err != nil {
			return err
		}
		workout.Movements = append(workout.Movements, m)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	splitRows, err := r.pool.Query(ctx,
		`SELECT round_number, time_seconds FROM workout_splits WHERE workout_id=$1 ORDER BY round_number`,
		workout.ID,
	)
	if err != nil {
		return err
	}
	defer splitRows.Close()
	for splitRows.Next() {
		var s domain.Split
		if err := splitRows.Scan(&s.RoundNumber, &s.TimeSeconds); err != nil {
			return err
		}
		workout.Splits = append(workout.Splits, s)
	}
	if err := splitRows.Err(); err != nil {
		return err
	}

	metrics, err := r.loadMetrics(ctx, workout.ID)
	if err != nil {
		return err
	}
	workout.Metrics = metrics
	return nil
}

func (r *Repository) loadMetrics(ctx context.Context, workoutID string) (*domain.WorkoutMetrics, error) {
	const query = `SELECT total_ewu, density_power_min, density_power_sec, active_power, per_round_power, repeatability_drift, repeatability_spread, repeatability_consistency, lift_ewu, machine_ewu, gymnastics_ewu, lift_share, machine_share, gymnastics_share, total_active_seconds, rest_seconds, computed_at
        FROM workout_metrics WHERE workout_id=$1`

	var m domain.WorkoutMetrics
	var perRound []byte
	err := r.pool.QueryRow(ctx, query, workoutID).Scan(
		&m.TotalEWU,
		&m.DensityPowerMin,
		&m.DensityPowerSec,
		&m.ActivePower,
		&perRound,
		&m.RepeatabilityDrift,
		&m.RepeatabilitySpread,
		&m.RepeatabilityConsistency,
		&m.LiftEWU,
		&m.MachineEWU,
		&m.GymnasticsEWU,
		&m.LiftShare,
		&m.MachineShare,
		&m.GymnasticsShare,
		&m.TotalActiveSeconds,
		&m.RestSeconds,
		&m.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(perRound) > 0 {
		if err := json.Unmarshal(perRound, &m.PerRoundPower); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// ListByUser returns workouts for a user ordered by time, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, filter domain.ListFilter, cursor *domain.Cursor, limit int) ([]domain.Workout, *domain.Cursor, error) {
	args := []interface{}{userID}
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id=$1`

	if filter.WorkoutType != "" {
		args = append(args, filter.WorkoutType)
		query += fmt.Sprintf(" AND workout_type=$%d", len(args))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		query += fmt.Sprintf(" AND performed_at >= $%d", len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		query += fmt.Sprintf(" AND performed_at <= $%d", len(args))
	}
	if cursor != nil {
		args = append(args, cursor.PerformedAt, cursor.ID)
		query += fmt.Sprintf(" AND (performed_at, workout_id) < ($%d, $%d)", len(args)-1, len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY performed_at DESC, workout_id DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.Workout, 0, limit)
	for rows.Next() {
		workout, err := scanWorkout(rows)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, *workout)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{PerformedAt: last.PerformedAt, ID: last.ID}
	}

	return results, nextCursor, nil
}

// ListSince returns workouts performed on or after the cutoff, oldest first,
// with their metric rows attached.
func (r *Repository) ListSince(ctx context.Context, userID string, since time.Time) ([]domain.Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id=$1 AND performed_at >= $2 ORDER BY performed_at ASC`

	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Workout
	for rows.Next() {
		workout, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *workout)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		metrics, err := r.loadMetrics(ctx, results[i].ID)
		if err != nil {
			return nil, err
		}
		results[i].Metrics = metrics
	}
	return results, nil
}

// ListForExport returns the user's workouts with children, newest first,
// optionally bounded by a date range.
func (r *Repository) ListForExport(ctx context.Context, userID string, start, end *time.Time) ([]domain.Workout, error) {
	args := []interface{}{userID}
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id=$1`
	if start != nil {
		args = append(args, *start)
		query += fmt.Sprintf(" AND performed_at >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += fmt.Sprintf(" AND performed_at <= $%d", len(args))
	}
	query += " ORDER BY performed_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Workout
	for rows.Next() {
		workout, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *workout)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		if err := r.loadChildren(ctx, &results[i]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Delete removes a workout and its children. Distribution history is kept.
func (r *Repository) Delete(ctx context.Context, userID, workoutID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workouts WHERE user_id=$1 AND workout_id=$2`, userID, workoutID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic          string
	PartitionKeyFn func(domain.Workout) string
}

var eventCatalog = map[string]EventMetadata{
	"workout.scored": {
		Topic: "workout_scored",
		PartitionKeyFn: func(w domain.Workout) string {
			return w.UserID
		},
	},
	"completeness.updated": {
		Topic: "completeness_updated",
		PartitionKeyFn: func(w domain.Workout) string {
			return w.UserID
		},
	},
}
