package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lumora-academy/backend/internal/models"
)

// ErrVideoNotFound is returned when a video ID does not resolve to an asset.
var ErrVideoNotFound = errors.New("video not found")

// Catalog resolves video IDs to immutable asset metadata. Read-only to the
// delivery core; implementations must return ErrVideoNotFound as a typed
// outcome rather than nil, nil.
type Catalog interface {
	Lookup(ctx context.Context, videoID uuid.UUID) (*models.VideoAsset, error)
}
