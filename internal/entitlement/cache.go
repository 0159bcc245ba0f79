package entitlement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lumora-academy/backend/internal/models"
)

// cachedFact is the Redis representation of an enrollment fact lookup.
// Missing enrollments are cached too (Found=false) so repeated denied
// requests don't hit Postgres on every attempt.
type cachedFact struct {
	Found        bool      `json:"found"`
	HasPaid      bool      `json:"has_paid"`
	IsFreeCourse bool      `json:"is_free_course"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

// CachedSource decorates an EnrollmentSource with a short-TTL Redis cache.
// The TTL must stay well below the stream token TTL (enforced at config
// load), so a revocation is never masked longer than the token itself lives.
// Cache failures fall through to the inner source; they never turn into an
// entitlement grant.
type CachedSource struct {
	inner  EnrollmentSource
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSource wraps an enrollment source with a Redis cache.
func NewCachedSource(inner EnrollmentSource, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{inner: inner, client: client, ttl: ttl, logger: logger}
}

func factKey(userID, courseID uuid.UUID) string {
	return fmt.Sprintf("entitlement:%s:%s", userID, courseID)
}

// FactFor returns the cached fact when present, consulting the inner source
// and caching the outcome otherwise.
func (s *CachedSource) FactFor(ctx context.Context, userID, courseID uuid.UUID) (*models.EnrollmentFact, error) {
	key := factKey(userID, courseID)
	if raw, err := s.client.Get(ctx, key).Result(); err == nil {
		var cf cachedFact
		if err := json.Unmarshal([]byte(raw), &cf); err == nil {
			if !cf.Found {
				return nil, ErrNoFact
			}
			return &models.EnrollmentFact{
				UserID:       userID,
				CourseID:     courseID,
				HasPaid:      cf.HasPaid,
				IsFreeCourse: cf.IsFreeCourse,
				EnrolledAt:   cf.EnrolledAt,
			}, nil
		}
	} else if err != redis.Nil {
		s.logger.Warn("entitlement cache read failed", zap.Error(err))
	}

	fact, err := s.inner.FactFor(ctx, userID, courseID)
	switch {
	case err == nil:
		s.store(ctx, key, cachedFact{Found: true, HasPaid: fact.HasPaid, IsFreeCourse: fact.IsFreeCourse, EnrolledAt: fact.EnrolledAt})
		return fact, nil
	case err == ErrNoFact:
		s.store(ctx, key, cachedFact{Found: false})
		return nil, ErrNoFact
	default:
		// Infrastructure faults are never cached.
		return nil, err
	}
}

func (s *CachedSource) store(ctx context.Context, key string, cf cachedFact) {
	raw, err := json.Marshal(cf)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("entitlement cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached fact for a (user, course) pair. Called when
// enrollment state changes so the next issuance sees fresh truth.
func (s *CachedSource) Invalidate(ctx context.Context, userID, courseID uuid.UUID) {
	if err := s.client.Del(ctx, factKey(userID, courseID)).Err(); err != nil {
		s.logger.Warn("entitlement cache invalidate failed", zap.Error(err))
	}
}
