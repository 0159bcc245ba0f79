package enrollments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumora-academy/backend/internal/models"
)

// Repository handles enrollment persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates an enrollments repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new enrollment. Returns an error wrapping pgx unique
// violation text when the user is already enrolled; callers check with
// GetByUserAndCourse first and treat duplicates as conflicts.
func (r *Repository) Create(ctx context.Context, e *models.Enrollment) error {
	const q = `
		INSERT INTO enrollments (id, user_id, course_id, has_paid, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, enrolled_at, updated_at`
	err := r.db.QueryRow(ctx, q, e.UserID, e.CourseID, e.HasPaid, e.Status).
		Scan(&e.ID, &e.EnrolledAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// GetByID fetches an enrollment by ID. Returns nil when not found.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error) {
	const q = `
		SELECT id, user_id, course_id, has_paid, status, enrolled_at, updated_at
		FROM enrollments WHERE id = $1`
	var e models.Enrollment
	err := r.db.QueryRow(ctx, q, id).
		Scan(&e.ID, &e.UserID, &e.CourseID, &e.HasPaid, &e.Status, &e.EnrolledAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return &e, nil
}

// GetByUserAndCourse fetches the enrollment for a (user, course) pair. Returns nil when not found.
func (r *Repository) GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	const q = `
		SELECT id, user_id, course_id, has_paid, status, enrolled_at, updated_at
		FROM enrollments WHERE user_id = $1 AND course_id = $2`
	var e models.Enrollment
	err := r.db.QueryRow(ctx, q, userID, courseID).
		Scan(&e.ID, &e.UserID, &e.CourseID, &e.HasPaid, &e.Status, &e.EnrolledAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return &e, nil
}

// ListByUser returns all enrollments for a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error) {
	const q = `
		SELECT id, user_id, course_id, has_paid, status, enrolled_at, updated_at
		FROM enrollments WHERE user_id = $1 ORDER BY enrolled_at DESC`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var list []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.HasPaid, &e.Status, &e.EnrolledAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// MarkPaid flips has_paid and activates the enrollment. Returns the updated
// row, or nil when the enrollment does not exist.
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID) (*models.Enrollment, error) {
	const q = `
		UPDATE enrollments
		SET has_paid = TRUE, status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, course_id, has_paid, status, enrolled_at, updated_at`
	var e models.Enrollment
	err := r.db.QueryRow(ctx, q, id, models.EnrollmentStatusActive).
		Scan(&e.ID, &e.UserID, &e.CourseID, &e.HasPaid, &e.Status, &e.EnrolledAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mark enrollment paid: %w", err)
	}
	return &e, nil
}

// Delete removes an enrollment.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	return err
}
