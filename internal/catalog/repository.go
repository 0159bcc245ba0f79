package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumora-academy/backend/internal/models"
)

// Repository handles video asset persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a catalog repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const assetColumns = `id, course_id, title, storage_ref, duration_seconds, size_bytes, classification, thumbnail_url, created_at, updated_at`

func scanAsset(row pgx.Row) (*models.VideoAsset, error) {
	var v models.VideoAsset
	err := row.Scan(&v.ID, &v.CourseID, &v.Title, &v.StorageRef, &v.DurationSeconds, &v.SizeBytes, &v.Classification, &v.ThumbnailURL, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Lookup returns a video asset by ID, or ErrVideoNotFound.
func (r *Repository) Lookup(ctx context.Context, videoID uuid.UUID) (*models.VideoAsset, error) {
	const q = `SELECT ` + assetColumns + ` FROM video_assets WHERE id = $1`
	v, err := scanAsset(r.pool.QueryRow(ctx, q, videoID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return v, nil
}

// Create inserts a new video asset. Assets are immutable once published.
func (r *Repository) Create(ctx context.Context, v *models.VideoAsset) error {
	const q = `INSERT INTO video_assets (id, course_id, title, storage_ref, duration_seconds, size_bytes, classification, thumbnail_url)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, v.CourseID, v.Title, v.StorageRef, v.DurationSeconds, v.SizeBytes, v.Classification, v.ThumbnailURL).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

// ListByCourse returns all video assets for a course.
func (r *Repository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.VideoAsset, error) {
	const q = `SELECT ` + assetColumns + ` FROM video_assets WHERE course_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.VideoAsset
	for rows.Next() {
		v, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *v)
	}
	return list, rows.Err()
}

// ListAll returns every video asset (used to warm the startup cache).
func (r *Repository) ListAll(ctx context.Context) ([]models.VideoAsset, error) {
	const q = `SELECT ` + assetColumns + ` FROM video_assets`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.VideoAsset
	for rows.Next() {
		v, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *v)
	}
	return list, rows.Err()
}

// Delete removes a video asset by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM video_assets WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}
