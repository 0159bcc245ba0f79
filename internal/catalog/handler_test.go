package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumora-academy/backend/internal/middleware"
	"github.com/lumora-academy/backend/internal/models"
)

func newMetadataRouter(cat Catalog, userID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(cat, nil, nil, nil)
	router := gin.New()
	router.GET("/videos/metadata/:videoId", func(c *gin.Context) {
		if userID != nil {
			c.Set(middleware.ContextUserID, *userID)
		}
		h.GetMetadata(c)
	})
	return router
}

func getMetadata(router *gin.Engine, videoID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/videos/metadata/"+videoID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetMetadata_PublicServedAnonymously(t *testing.T) {
	asset := &models.VideoAsset{
		ID:              uuid.New(),
		CourseID:        uuid.New(),
		Title:           "Intro",
		StorageRef:      "videos/c/v.mp4",
		DurationSeconds: 90,
		Classification:  models.ClassificationPublic,
	}
	cat := &countingCatalog{assets: map[uuid.UUID]*models.VideoAsset{asset.ID: asset}}
	router := newMetadataRouter(cat, nil)

	w := getMetadata(router, asset.ID.String())
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data MetadataResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, asset.ID, body.Data.VideoID)
	assert.Equal(t, "Intro", body.Data.Title)
	assert.Equal(t, 90, body.Data.DurationSeconds)
	// The storage ref never leaves the server.
	assert.NotContains(t, w.Body.String(), "videos/c/v.mp4")
}

func TestGetMetadata_PremiumRequiresAuth(t *testing.T) {
	asset := &models.VideoAsset{ID: uuid.New(), Classification: models.ClassificationPremium}
	cat := &countingCatalog{assets: map[uuid.UUID]*models.VideoAsset{asset.ID: asset}}

	w := getMetadata(newMetadataRouter(cat, nil), asset.ID.String())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	userID := uuid.New()
	w = getMetadata(newMetadataRouter(cat, &userID), asset.ID.String())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetMetadata_UnknownVideo(t *testing.T) {
	cat := &countingCatalog{assets: map[uuid.UUID]*models.VideoAsset{}}
	router := newMetadataRouter(cat, nil)

	w := getMetadata(router, uuid.New().String())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMetadata_InvalidID(t *testing.T) {
	cat := &countingCatalog{assets: map[uuid.UUID]*models.VideoAsset{}}
	router := newMetadataRouter(cat, nil)

	w := getMetadata(router, "not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
