package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/scoring/internal/engine"
)

// DistributionStore persists metric distributions with values in a JSONB
// column, one row per (user, workout type, metric) key.
type DistributionStore struct {
	pool *pgxpool.Pool
}

// NewDistributionStore constructs a DistributionStore.
func NewDistributionStore(pool *pgxpool.Pool) *DistributionStore {
	return &DistributionStore{pool: pool}
}

// GetOrCreate returns the stored distribution or a fresh empty one. New
// distributions are not written until Save.
func (s *DistributionStore) GetOrCreate(ctx context.Context, userID, workoutType, metricName string) (*engine.Distribution, error) {
	const query = `SELECT values_json, window_days, updated_at FROM metric_distributions
        WHERE user_id=$1 AND workout_type=$2 AND metric_name=$3`

	dist := engine.Distribution{
		UserID:      userID,
		WorkoutType: workoutType,
		MetricName:  metricName,
	}

	var raw []byte
	err := s.pool.QueryRow(ctx, query, userID, workoutType, metricName).Scan(&raw, &dist.WindowDays, &dist.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return engine.NewDistribution(userID, workoutType, metricName), nil
		}
		return nil, err
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &dist.Values); err != nil {
			return nil, err
		}
	}
	return &dist, nil
}

// Save upserts the distribution row.
func (s *DistributionStore) Save(ctx context.Context, dist *engine.Distribution) error {
	raw, err := json.Marshal(dist.Values)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO metric_distributions (user_id, workout_type, metric_name, values_json, window_days, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (user_id, workout_type, metric_name)
        DO UPDATE SET values_json=EXCLUDED.values_json, window_days=EXCLUDED.window_days, updated_at=EXCLUDED.updated_at`

	_, err = s.pool.Exec(ctx, stmt, dist.UserID, dist.WorkoutType, dist.MetricName, raw, dist.WindowDays, dist.UpdatedAt)
	return err
}

// ListForUser returns every distribution row for the user.
func (s *DistributionStore) ListForUser(ctx context.Context, userID string) ([]*engine.Distribution, error) {
	const query = `SELECT user_id, workout_type, metric_name, values_json, window_days, updated_at
        FROM metric_distributions WHERE user_id=$1`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*engine.Distribution
	for rows.Next() {
		var dist engine.Distribution
		var raw []byte
		if err := rows.Scan(&dist.UserID, &dist.WorkoutType, &dist.MetricName, &raw, &dist.WindowDays, &dist.UpdatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &dist.Values); err != nil {
				return nil, err
			}
		}
		out = append(out, &dist)
	}
	return out, rows.Err()
}

// DomainScoreStore persists one row per (user, domain).
type DomainScoreStore struct {
	pool *pgxpool.Pool
}

// NewDomainScoreStore constructs a DomainScoreStore.
func NewDomainScoreStore(pool *pgxpool.Pool) *DomainScoreStore {
	return &DomainScoreStore{pool: pool}
}

const domainScoreColumns = `user_id, domain, raw_value, normalized_score, percentile, sample_count, confidence, provisional, source_workout_id, updated_at`

func scanDomainScore(row pgx.Row) (*engine.DomainScore, error) {
	var score engine.DomainScore
	err := row.Scan(
		&score.UserID,
		&score.Domain,
		&score.RawValue,
		&score.Score,
		&score.Percentile,
		&score.SampleCount,
		&score.Confidence,
		&score.Provisional,
		&score.SourceWorkoutID,
		&score.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &score, nil
}

// Get returns the user's score for one domain, or nil when absent.
func (s *DomainScoreStore) Get(ctx context.Context, userID string, domain engine.DomainTag) (*engine.DomainScore, error) {
	query := `SELECT ` + domainScoreColumns + ` FROM domain_scores WHERE user_id=$1 AND domain=$2`

	score, err := scanDomainScore(s.pool.QueryRow(ctx, query, userID, domain))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return score, nil
}

// Save upserts the domain score row.
func (s *DomainScoreStore) Save(ctx context.Context, score *engine.DomainScore) error {
	const stmt = `INSERT INTO domain_scores (user_id, domain, raw_value, normalized_score, percentile, sample_count, confidence, provisional, source_workout_id, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (user_id, domain)
        DO UPDATE SET raw_value=EXCLUDED.raw_value, normalized_score=EXCLUDED.normalized_score, percentile=EXCLUDED.percentile, sample_count=EXCLUDED.sample_count, confidence=EXCLUDED.confidence, provisional=EXCLUDED.provisional, source_workout_id=EXCLUDED.source_workout_id, updated_at=EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, stmt,
		score.UserID,
		score.Domain,
		score.RawValue,
		score.Score,
		score.Percentile,
		score.SampleCount,
		score.Confidence,
		score.Provisional,
		score.SourceWorkoutID,
		score.UpdatedAt,
	)
	return err
}

// ListForUser returns every stored domain score for the user.
func (s *DomainScoreStore) ListForUser(ctx context.Context, userID string) ([]*engine.DomainScore, error) {
	query := `SELECT ` + domainScoreColumns + ` FROM domain_scores WHERE user_id=$1`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*engine.DomainScore
	for rows.Next() {
		score, err := scanDomainScore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, score)
	}
	return out, rows.Err()
}

var _ engine.DistributionStore = (*DistributionStore)(nil)
var _ engine.DomainScoreStore = (*DomainScoreStore)(nil)
