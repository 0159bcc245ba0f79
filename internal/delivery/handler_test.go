package delivery

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumora-academy/backend/internal/catalog"
	"github.com/lumora-academy/backend/internal/models"
	"github.com/lumora-academy/backend/internal/streamtoken"
	"github.com/lumora-academy/backend/pkg/storage"
)

type fakeCatalog struct {
	assets map[uuid.UUID]*models.VideoAsset
	err    error
}

func (f *fakeCatalog) Lookup(_ context.Context, videoID uuid.UUID) (*models.VideoAsset, error) {
	if f.err != nil {
		return nil, f.err
	}
	asset, ok := f.assets[videoID]
	if !ok {
		return nil, catalog.ErrVideoNotFound
	}
	return asset, nil
}

type gatewayFixture struct {
	router  *gin.Engine
	issuer  *streamtoken.Issuer
	content []byte
	public  *models.VideoAsset
	premium *models.VideoAsset
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	content := make([]byte, 1000)
	_, err := rand.Read(content)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lesson.mp4"), content, 0o644))

	courseID := uuid.New()
	public := &models.VideoAsset{
		ID:             uuid.New(),
		CourseID:       courseID,
		Title:          "Intro",
		StorageRef:     "lesson.mp4",
		SizeBytes:      int64(len(content)),
		Classification: models.ClassificationPublic,
	}
	premium := &models.VideoAsset{
		ID:             uuid.New(),
		CourseID:       courseID,
		Title:          "Deep Dive",
		StorageRef:     "lesson.mp4",
		SizeBytes:      int64(len(content)),
		Classification: models.ClassificationPremium,
	}

	cat := &fakeCatalog{assets: map[uuid.UUID]*models.VideoAsset{
		public.ID:  public,
		premium.ID: premium,
	}}
	issuer := streamtoken.NewIssuer("gateway-test-secret", time.Hour)
	h := NewHandler(issuer, cat, storage.NewLocalStore(dir), nil)

	router := gin.New()
	router.GET("/video-stream/public/:videoId", h.StreamPublic)
	router.GET("/video-stream/:token", h.Stream)

	return &gatewayFixture{
		router:  router,
		issuer:  issuer,
		content: content,
		public:  public,
		premium: premium,
	}
}

func (fx *gatewayFixture) get(t *testing.T, path, rangeHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

func (fx *gatewayFixture) tokenFor(t *testing.T, asset *models.VideoAsset) string {
	t.Helper()
	tok, err := fx.issuer.Issue(uuid.New(), asset.ID, asset.CourseID)
	require.NoError(t, err)
	return tok.Token
}

func errReason(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Reason
}

func TestStream_FullAsset(t *testing.T) {
	fx := newGatewayFixture(t)
	token := fx.tokenFor(t, fx.premium)

	w := fx.get(t, "/video-stream/"+token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
	assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
	assert.Equal(t, "1000", w.Header().Get("Content-Length"))
	assert.Equal(t, fx.content, w.Body.Bytes())
}

func TestStream_PartialContent(t *testing.T) {
	fx := newGatewayFixture(t)
	token := fx.tokenFor(t, fx.premium)

	w := fx.get(t, "/video-stream/"+token, "bytes=100-199")
	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "bytes 100-199/1000", w.Header().Get("Content-Range"))
	assert.Equal(t, "100", w.Header().Get("Content-Length"))
	assert.Equal(t, fx.content[100:200], w.Body.Bytes())
}

func TestStream_SuffixRange(t *testing.T) {
	fx := newGatewayFixture(t)
	token := fx.tokenFor(t, fx.premium)

	w := fx.get(t, "/video-stream/"+token, "bytes=-100")
	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "bytes 900-999/1000", w.Header().Get("Content-Range"))
	assert.Equal(t, fx.content[900:], w.Body.Bytes())
}

func TestStream_RangeBeyondAsset(t *testing.T) {
	fx := newGatewayFixture(t)
	token := fx.tokenFor(t, fx.premium)

	w := fx.get(t, "/video-stream/"+token, "bytes=2000-2100")
	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, w.Code)
	assert.Equal(t, "bytes */1000", w.Header().Get("Content-Range"))
}

func TestStream_MalformedRangeServesFullAsset(t *testing.T) {
	fx := newGatewayFixture(t)
	token := fx.tokenFor(t, fx.premium)

	w := fx.get(t, "/video-stream/"+token, "bytes=zz-qq")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fx.content, w.Body.Bytes())
}

func TestStream_InvalidToken(t *testing.T) {
	fx := newGatewayFixture(t)

	w := fx.get(t, "/video-stream/garbage-token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_invalid", errReason(t, w))
}

func TestStream_ExpiredToken(t *testing.T) {
	fx := newGatewayFixture(t)

	shortIssuer := streamtoken.NewIssuer("gateway-test-secret", -time.Minute)
	tok, err := shortIssuer.Issue(uuid.New(), fx.premium.ID, fx.premium.CourseID)
	require.NoError(t, err)

	w := fx.get(t, "/video-stream/"+tok.Token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_expired", errReason(t, w))
}

func TestStream_TokenForUnknownVideo(t *testing.T) {
	fx := newGatewayFixture(t)
	tok, err := fx.issuer.Issue(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	w := fx.get(t, "/video-stream/"+tok.Token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errReason(t, w))
}

func TestStream_SameTokenServesConcurrentRanges(t *testing.T) {
	fx := newGatewayFixture(t)
	token := fx.tokenFor(t, fx.premium)

	ranges := []struct {
		header string
		want   []byte
	}{
		{"bytes=0-99", fx.content[0:100]},
		{"bytes=100-199", fx.content[100:200]},
		{"bytes=500-", fx.content[500:]},
		{"", fx.content},
	}

	var wg sync.WaitGroup
	for _, r := range ranges {
		wg.Add(1)
		go func(header string, want []byte) {
			defer wg.Done()
			w := fx.get(t, "/video-stream/"+token, header)
			assert.Contains(t, []int{http.StatusOK, http.StatusPartialContent}, w.Code)
			assert.Equal(t, want, w.Body.Bytes())
		}(r.header, r.want)
	}
	wg.Wait()
}

func TestStreamPublic_ServesPublicAsset(t *testing.T) {
	fx := newGatewayFixture(t)

	w := fx.get(t, "/video-stream/public/"+fx.public.ID.String(), "bytes=0-9")
	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, fx.content[:10], w.Body.Bytes())
}

func TestStreamPublic_PremiumHidden(t *testing.T) {
	fx := newGatewayFixture(t)

	w := fx.get(t, "/video-stream/public/"+fx.premium.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errReason(t, w))
}

func TestStreamPublic_UnknownVideo(t *testing.T) {
	fx := newGatewayFixture(t)

	w := fx.get(t, "/video-stream/public/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStream_CatalogUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cat := &fakeCatalog{err: errors.New("connection refused")}
	issuer := streamtoken.NewIssuer("gateway-test-secret", time.Hour)
	h := NewHandler(issuer, cat, storage.NewLocalStore(t.TempDir()), nil)

	router := gin.New()
	router.GET("/video-stream/:token", h.Stream)

	tok, err := issuer.Issue(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/video-stream/"+tok.Token, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "temporarily_unavailable", errReason(t, w))
}

func TestStream_MissingBlob(t *testing.T) {
	fx := newGatewayFixture(t)
	fx.premium.StorageRef = "missing.mp4"
	token := fx.tokenFor(t, fx.premium)

	w := fx.get(t, "/video-stream/"+token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errReason(t, w))
}
