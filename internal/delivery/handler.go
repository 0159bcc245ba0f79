// Package delivery is the stream gateway: it validates stream tokens on every
// byte-range request and serves video bytes with partial-content semantics.
package delivery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumora-academy/backend/internal/catalog"
	"github.com/lumora-academy/backend/internal/models"
	"github.com/lumora-academy/backend/internal/streamtoken"
	"github.com/lumora-academy/backend/pkg/response"
	"github.com/lumora-academy/backend/pkg/storage"
)

const (
	contentTypeMP4 = "video/mp4"
	// sizeTimeout bounds the storage size lookup so a hung backend cannot
	// stall the request indefinitely.
	sizeTimeout = 5 * time.Second
	copyBufSize = 64 * 1024
)

// Handler serves video bytes against verified stream tokens.
type Handler struct {
	issuer  *streamtoken.Issuer
	catalog catalog.Catalog
	store   storage.BlobStore
	logger  *zap.Logger
}

// NewHandler creates a stream gateway handler.
func NewHandler(issuer *streamtoken.Issuer, cat catalog.Catalog, store storage.BlobStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{issuer: issuer, catalog: cat, store: store, logger: logger}
}

// Stream handles GET /video-stream/:token. Tokens are multi-use until expiry:
// the same token may serve any number of overlapping or repeated range
// requests, which is what lets players seek and retry on stall.
func (h *Handler) Stream(c *gin.Context) {
	res := h.issuer.Verify(c.Param("token"))
	if !res.Valid {
		switch res.Reason {
		case streamtoken.ReasonExpired:
			response.UnauthorizedReason(c, "token_expired", "stream token expired")
		default:
			response.UnauthorizedReason(c, "token_invalid", "stream token invalid")
		}
		return
	}

	asset, ok := h.resolve(c, res.Claims.VideoID)
	if !ok {
		return
	}
	h.serveAsset(c, asset)
}

// StreamPublic handles GET /video-stream/public/:videoId — the tokenless
// variant for public-classified assets. Premium assets 404 here so their
// existence is not confirmed to unauthenticated callers.
func (h *Handler) StreamPublic(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}
	asset, ok := h.resolve(c, videoID)
	if !ok {
		return
	}
	if !asset.IsPublic() {
		response.NotFoundReason(c, "not_found", "video not found")
		return
	}
	h.serveAsset(c, asset)
}

// resolve looks up the asset, writing the error response on failure.
func (h *Handler) resolve(c *gin.Context, videoID uuid.UUID) (*models.VideoAsset, bool) {
	asset, err := h.catalog.Lookup(c.Request.Context(), videoID)
	if err != nil {
		if err == catalog.ErrVideoNotFound {
			response.NotFoundReason(c, "not_found", "video not found")
			return nil, false
		}
		h.logger.Error("catalog lookup failed", zap.Error(err), zap.String("video_id", videoID.String()))
		response.ServiceUnavailableReason(c, "temporarily_unavailable", "catalog unavailable")
		return nil, false
	}
	return asset, true
}

// serveAsset writes 200/206/416 with correct range semantics and streams the
// bytes without ever buffering the whole asset.
func (h *Handler) serveAsset(c *gin.Context, asset *models.VideoAsset) {
	sizeCtx, cancel := context.WithTimeout(c.Request.Context(), sizeTimeout)
	size, err := h.store.Size(sizeCtx, asset.StorageRef)
	cancel()
	if err != nil {
		if err == storage.ErrBlobNotFound {
			response.NotFoundReason(c, "not_found", "video not found")
			return
		}
		h.logger.Error("storage size lookup failed", zap.Error(err), zap.String("video_id", asset.ID.String()))
		response.ServiceUnavailableReason(c, "temporarily_unavailable", "storage unavailable")
		return
	}

	c.Header("Accept-Ranges", "bytes")

	rng, err := parseRange(c.GetHeader("Range"), size)
	if err != nil {
		c.Header("Content-Range", fmt.Sprintf("bytes */%d", size))
		response.RangeNotSatisfiable(c, "requested range beyond asset size")
		return
	}

	status := http.StatusOK
	if rng == nil {
		rng = &byteRange{start: 0, end: size - 1}
	} else {
		status = http.StatusPartialContent
		c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.start, rng.end, size))
	}

	// The body is opened against the request context so a client disconnect
	// aborts the backend read as well.
	body, err := h.store.OpenRange(c.Request.Context(), asset.StorageRef, rng.start, rng.end)
	if err != nil {
		if err == storage.ErrBlobNotFound {
			response.NotFoundReason(c, "not_found", "video not found")
			return
		}
		h.logger.Error("storage open failed", zap.Error(err), zap.String("video_id", asset.ID.String()))
		response.ServiceUnavailableReason(c, "temporarily_unavailable", "storage unavailable")
		return
	}
	defer body.Close()

	c.Header("Content-Type", contentTypeMP4)
	c.Header("Content-Length", fmt.Sprintf("%d", rng.length()))
	c.Status(status)

	written, err := copyWithContext(c.Request.Context(), c.Writer, body)
	if err != nil && c.Request.Context().Err() == nil {
		// Mid-stream failure after headers were sent; nothing to do but log.
		h.logger.Warn("stream aborted",
			zap.Error(err),
			zap.String("video_id", asset.ID.String()),
			zap.Int64("written", written),
			zap.Int64("expected", rng.length()),
		)
	}
}

// copyWithContext copies r to w, stopping as soon as ctx is cancelled so the
// underlying handle is released promptly on client disconnect.
func copyWithContext(ctx context.Context, w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, copyBufSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, werr
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
