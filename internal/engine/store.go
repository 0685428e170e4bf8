package engine

import (
	"context"
	"sync"
)

// DistributionStore persists metric distributions. Implementations must be
// safe for concurrent use.
type DistributionStore interface {
	// GetOrCreate returns the distribution for the key, creating an empty
	// one when none exists yet.
	GetOrCreate(ctx context.Context, userID, workoutType, metricName string) (*Distribution, error)
	Save(ctx context.Context, dist *Distribution) error
	ListForUser(ctx context.Context, userID string) ([]*Distribution, error)
}

// DomainScoreStore persists per-domain scores.
type DomainScoreStore interface {
	Get(ctx context.Context, userID string, domain DomainTag) (*DomainScore, error)
	Save(ctx context.Context, score *DomainScore) error
	ListForUser(ctx context.Context, userID string) ([]*DomainScore, error)
}

// InMemoryDistributionStore is a map-backed DistributionStore for tests and
// local runs.
type InMemoryDistributionStore struct {
	mu            sync.RWMutex
	distributions map[string]*Distribution
}

func NewInMemoryDistributionStore() *InMemoryDistributionStore {
	return &InMemoryDistributionStore{distributions: make(map[string]*Distribution)}
}

func distributionKey(userID, workoutType, metricName string) string {
	return userID + ":" + workoutType + ":" + metricName
}

func (s *InMemoryDistributionStore) GetOrCreate(_ context.Context, userID, workoutType, metricName string) (*Distribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := distributionKey(userID, workoutType, metricName)
	if dist, ok := s.distributions[key]; ok {
		return dist, nil
	}
	dist := NewDistribution(userID, workoutType, metricName)
	s.distributions[key] = dist
	return dist, nil
}

func (s *InMemoryDistributionStore) Save(_ context.Context, dist *Distribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distributions[distributionKey(dist.UserID, dist.WorkoutType, dist.MetricName)] = dist
	return nil
}

func (s *InMemoryDistributionStore) ListForUser(_ context.Context, userID string) ([]*Distribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Distribution
	for _, dist := range s.distributions {
		if dist.UserID == userID {
			out = append(out, dist)
		}
	}
	return out, nil
}

// InMemoryDomainScoreStore is a map-backed DomainScoreStore for tests and
// local runs.
type InMemoryDomainScoreStore struct {
	mu     sync.RWMutex
	scores map[string]*DomainScore
}

func NewInMemoryDomainScoreStore() *InMemoryDomainScoreStore {
	return &InMemoryDomainScoreStore{scores: make(map[string]*DomainScore)}
}

func (s *InMemoryDomainScoreStore) Get(_ context.Context, userID string, domain DomainTag) (*DomainScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	score, ok := s.scores[userID+":"+string(domain)]
	if !ok {
		return nil, nil
	}
	return score, nil
}

func (s *InMemoryDomainScoreStore) Save(_ context.Context, score *DomainScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[score.UserID+":"+string(score.Domain)] = score
	return nil
}

func (s *InMemoryDomainScoreStore) ListForUser(_ context.Context, userID string) ([]*DomainScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*DomainScore
	for _, score := range s.scores {
		if score.UserID == userID {
			out = append(out, score)
		}
	}
	return out, nil
}
