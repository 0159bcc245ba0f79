package entitlement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumora-academy/backend/internal/models"
)

// ErrNoFact is returned when no enrollment exists for a (user, course) pair.
var ErrNoFact = errors.New("no enrollment fact")

// EnrollmentSource supplies read-only enrollment facts. The delivery core
// never mutates enrollment state.
type EnrollmentSource interface {
	FactFor(ctx context.Context, userID, courseID uuid.UUID) (*models.EnrollmentFact, error)
}

// Repository reads enrollment facts from Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an enrollment fact repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FactFor returns the enrollment fact for a user and course, or ErrNoFact.
func (r *Repository) FactFor(ctx context.Context, userID, courseID uuid.UUID) (*models.EnrollmentFact, error) {
	const q = `SELECT e.user_id, e.course_id, e.has_paid, c.is_free, e.enrolled_at
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1 AND e.course_id = $2`
	var f models.EnrollmentFact
	err := r.pool.QueryRow(ctx, q, userID, courseID).Scan(&f.UserID, &f.CourseID, &f.HasPaid, &f.IsFreeCourse, &f.EnrolledAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNoFact
		}
		return nil, err
	}
	return &f, nil
}
