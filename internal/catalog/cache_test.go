package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumora-academy/backend/internal/models"
)

type countingCatalog struct {
	assets  map[uuid.UUID]*models.VideoAsset
	err     error
	lookups int
}

func (c *countingCatalog) Lookup(_ context.Context, videoID uuid.UUID) (*models.VideoAsset, error) {
	c.lookups++
	if c.err != nil {
		return nil, c.err
	}
	asset, ok := c.assets[videoID]
	if !ok {
		return nil, ErrVideoNotFound
	}
	return asset, nil
}

func TestCached_ReadThrough(t *testing.T) {
	asset := &models.VideoAsset{ID: uuid.New(), Classification: models.ClassificationPublic}
	inner := &countingCatalog{assets: map[uuid.UUID]*models.VideoAsset{asset.ID: asset}}
	cached := NewCached(inner, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := cached.Lookup(context.Background(), asset.ID)
		require.NoError(t, err)
		assert.Equal(t, asset, got)
	}
	assert.Equal(t, 1, inner.lookups)
}

func TestCached_RefetchAfterTTL(t *testing.T) {
	asset := &models.VideoAsset{ID: uuid.New()}
	inner := &countingCatalog{assets: map[uuid.UUID]*models.VideoAsset{asset.ID: asset}}
	cached := NewCached(inner, time.Minute)

	now := time.Now()
	cached.now = func() time.Time { return now }

	_, err := cached.Lookup(context.Background(), asset.ID)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = cached.Lookup(context.Background(), asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.lookups)
}

func TestCached_NotFoundNotCached(t *testing.T) {
	inner := &countingCatalog{assets: map[uuid.UUID]*models.VideoAsset{}}
	cached := NewCached(inner, time.Minute)

	id := uuid.New()
	_, err := cached.Lookup(context.Background(), id)
	assert.ErrorIs(t, err, ErrVideoNotFound)
	_, err = cached.Lookup(context.Background(), id)
	assert.ErrorIs(t, err, ErrVideoNotFound)
	assert.Equal(t, 2, inner.lookups)
}

func TestCached_DeletedAssetDroppedAfterTTL(t *testing.T) {
	asset := &models.VideoAsset{ID: uuid.New()}
	inner := &countingCatalog{assets: map[uuid.UUID]*models.VideoAsset{asset.ID: asset}}
	cached := NewCached(inner, time.Minute)

	now := time.Now()
	cached.now = func() time.Time { return now }

	_, err := cached.Lookup(context.Background(), asset.ID)
	require.NoError(t, err)

	delete(inner.assets, asset.ID)

	// Still fresh: cache keeps serving.
	got, err := cached.Lookup(context.Background(), asset.ID)
	require.NoError(t, err)
	assert.Equal(t, asset, got)

	// Stale: falls through, sees the deletion, drops the entry.
	now = now.Add(2 * time.Minute)
	_, err = cached.Lookup(context.Background(), asset.ID)
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestCached_InfrastructureErrorPropagates(t *testing.T) {
	inner := &countingCatalog{err: errors.New("connection refused")}
	cached := NewCached(inner, time.Minute)

	_, err := cached.Lookup(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrVideoNotFound)
}

func TestCached_WarmServesWithoutInnerLookup(t *testing.T) {
	inner := &countingCatalog{assets: map[uuid.UUID]*models.VideoAsset{}}
	cached := NewCached(inner, time.Minute)

	assets := []models.VideoAsset{
		{ID: uuid.New(), Title: "one"},
		{ID: uuid.New(), Title: "two"},
	}
	cached.Warm(assets)

	for _, a := range assets {
		got, err := cached.Lookup(context.Background(), a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.Title, got.Title)
	}
	assert.Equal(t, 0, inner.lookups)
}
