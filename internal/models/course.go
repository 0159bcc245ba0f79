package models

import (
	"time"

	"github.com/google/uuid"
)

// Course represents a published course students can enroll in.
type Course struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedBy   uuid.UUID `json:"created_by"`
	IsFree      bool      `json:"is_free"`
	PriceCents  int       `json:"price_cents"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Lesson is one unit of a course; its video metadata lives in the catalog.
type Lesson struct {
	ID        uuid.UUID  `json:"id"`
	CourseID  uuid.UUID  `json:"course_id"`
	Title     string     `json:"title"`
	Position  int        `json:"position"`
	VideoID   *uuid.UUID `json:"video_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
