package models

import (
	"time"

	"github.com/google/uuid"
)

// Classification marks a video as publicly previewable or enrollment-gated.
type Classification string

const (
	ClassificationPublic  Classification = "public"
	ClassificationPremium Classification = "premium"
)

// VideoAsset is the durable metadata record for a lesson video.
// StorageRef locates the bytes (S3 key or local path) and is never exposed to clients.
// Immutable once published; owned by the catalog.
type VideoAsset struct {
	ID              uuid.UUID      `json:"id"`
	CourseID        uuid.UUID      `json:"course_id"`
	Title           string         `json:"title"`
	StorageRef      string         `json:"-"`
	DurationSeconds int            `json:"duration_seconds"`
	SizeBytes       int64          `json:"size_bytes"`
	Classification  Classification `json:"classification"`
	ThumbnailURL    string         `json:"thumbnail_url,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// IsPublic reports whether the asset is open to unauthenticated preview traffic.
func (v *VideoAsset) IsPublic() bool {
	return v.Classification == ClassificationPublic
}
