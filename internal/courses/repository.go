package courses

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumora-academy/backend/internal/models"
)

// Repository handles course and lesson persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a courses repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new course.
func (r *Repository) Create(ctx context.Context, course *models.Course) error {
	const q = `INSERT INTO courses (id, title, description, created_by, is_free, price_cents, currency)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, course.Title, course.Description, course.CreatedBy, course.IsFree, course.PriceCents, course.Currency).
		Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
}

// GetByID returns a course by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	const q = `SELECT id, title, description, created_by, is_free, price_cents, currency, created_at, updated_at
		FROM courses WHERE id = $1`
	var course models.Course
	err := r.pool.QueryRow(ctx, q, id).Scan(&course.ID, &course.Title, &course.Description, &course.CreatedBy,
		&course.IsFree, &course.PriceCents, &course.Currency, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

// List returns all courses, optionally filtered by creator.
func (r *Repository) List(ctx context.Context, createdBy *uuid.UUID) ([]models.Course, error) {
	base := `SELECT id, title, description, created_by, is_free, price_cents, currency, created_at, updated_at FROM courses`
	var args []interface{}
	var cond string
	if createdBy != nil {
		cond = " WHERE created_by = $1"
		args = append(args, *createdBy)
	}
	rows, err := r.pool.Query(ctx, base+cond+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Course
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(&course.ID, &course.Title, &course.Description, &course.CreatedBy,
			&course.IsFree, &course.PriceCents, &course.Currency, &course.CreatedAt, &course.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, course)
	}
	return list, rows.Err()
}

// Update updates course fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, description string, isFree *bool, priceCents *int) error {
	const q = `UPDATE courses SET title = $1, description = $2,
		is_free = COALESCE($3, is_free), price_cents = COALESCE($4, price_cents), updated_at = NOW()
		WHERE id = $5`
	_, err := r.pool.Exec(ctx, q, title, description, isFree, priceCents, id)
	return err
}

// Delete removes a course by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM courses WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// IsOwner returns true if the user created the course.
func (r *Repository) IsOwner(ctx context.Context, courseID, userID uuid.UUID) (bool, error) {
	course, err := r.GetByID(ctx, courseID)
	if err != nil {
		return false, err
	}
	return course != nil && course.CreatedBy == userID, nil
}

// CreateLesson inserts a lesson into a course.
func (r *Repository) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	const q = `INSERT INTO lessons (id, course_id, title, position, video_id)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, lesson.CourseID, lesson.Title, lesson.Position, lesson.VideoID).
		Scan(&lesson.ID, &lesson.CreatedAt, &lesson.UpdatedAt)
}

// ListLessons returns a course's lessons ordered by position.
func (r *Repository) ListLessons(ctx context.Context, courseID uuid.UUID) ([]models.Lesson, error) {
	const q = `SELECT id, course_id, title, position, video_id, created_at, updated_at
		FROM lessons WHERE course_id = $1 ORDER BY position, created_at`
	rows, err := r.pool.Query(ctx, q, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Lesson
	for rows.Next() {
		var lesson models.Lesson
		if err := rows.Scan(&lesson.ID, &lesson.CourseID, &lesson.Title, &lesson.Position, &lesson.VideoID, &lesson.CreatedAt, &lesson.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, lesson)
	}
	return list, rows.Err()
}
