package catalog

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumora-academy/backend/internal/middleware"
	"github.com/lumora-academy/backend/internal/models"
	"github.com/lumora-academy/backend/pkg/response"
	"github.com/lumora-academy/backend/pkg/storage"
)

// MetadataResponse is the public view of a video asset. StorageRef stays internal.
type MetadataResponse struct {
	VideoID         uuid.UUID             `json:"video_id"`
	CourseID        uuid.UUID             `json:"course_id"`
	Title           string                `json:"title"`
	DurationSeconds int                   `json:"duration_seconds"`
	Classification  models.Classification `json:"classification"`
	Thumbnail       string                `json:"thumbnail,omitempty"`
}

// Handler handles video catalog HTTP endpoints.
type Handler struct {
	catalog Catalog
	repo    *Repository
	s3      *storage.S3 // nil when the local backend is configured
	logger  *zap.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(catalog Catalog, repo *Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{catalog: catalog, repo: repo, s3: s3, logger: logger}
}

// GetMetadata handles GET /videos/metadata/:videoId. Public assets are served
// to anonymous callers; premium metadata requires an authenticated subject.
func (h *Handler) GetMetadata(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}
	asset, err := h.catalog.Lookup(c.Request.Context(), videoID)
	if err != nil {
		if err == ErrVideoNotFound {
			response.NotFoundReason(c, "not_found", "video not found")
			return
		}
		h.logger.Error("catalog lookup failed", zap.Error(err), zap.String("video_id", videoID.String()))
		response.ServiceUnavailableReason(c, "temporarily_unavailable", "catalog unavailable")
		return
	}
	if !asset.IsPublic() {
		if _, ok := c.Get(middleware.ContextUserID); !ok {
			response.UnauthorizedReason(c, "unauthenticated", "authentication required for premium video metadata")
			return
		}
	}
	response.OK(c, MetadataResponse{
		VideoID:         asset.ID,
		CourseID:        asset.CourseID,
		Title:           asset.Title,
		DurationSeconds: asset.DurationSeconds,
		Classification:  asset.Classification,
		Thumbnail:       asset.ThumbnailURL,
	})
}

// CreateVideoRequest is the body for POST /courses/:id/videos.
type CreateVideoRequest struct {
	Title           string `json:"title" binding:"required"`
	StorageRef      string `json:"storage_ref" binding:"required"`
	DurationSeconds int    `json:"duration_seconds"`
	SizeBytes       int64  `json:"size_bytes"`
	Classification  string `json:"classification" binding:"required,oneof=public premium"`
	ThumbnailURL    string `json:"thumbnail_url"`
}

// CreateVideo handles POST /courses/:id/videos. Instructor/admin only;
// publishes lesson video metadata into the catalog.
func (h *Handler) CreateVideo(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	asset := &models.VideoAsset{
		CourseID:        courseID,
		Title:           req.Title,
		StorageRef:      req.StorageRef,
		DurationSeconds: req.DurationSeconds,
		SizeBytes:       req.SizeBytes,
		Classification:  models.Classification(req.Classification),
		ThumbnailURL:    req.ThumbnailURL,
	}
	if err := h.repo.Create(c.Request.Context(), asset); err != nil {
		h.logger.Error("create video asset failed", zap.Error(err), zap.String("course_id", courseID.String()))
		response.Internal(c, "failed to create video")
		return
	}
	response.Created(c, asset)
}

// ListByCourse handles GET /courses/:id/videos.
func (h *Handler) ListByCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	list, err := h.repo.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.logger.Error("list videos failed", zap.Error(err), zap.String("course_id", courseID.String()))
		response.Internal(c, "failed to list videos")
		return
	}
	response.OK(c, list)
}

// UploadVideo handles POST /courses/:id/videos/upload. Server-side multipart
// upload for environments where direct-to-S3 PUT is blocked by CORS; large
// libraries should prefer the presigned flow.
func (h *Handler) UploadVideo(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "object storage not configured")
		return
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	contentType := storage.ContentTypeForFilename(fileHeader.Filename)
	if _, ok := storage.AllowedVideoTypes[contentType]; !ok {
		response.BadRequest(c, "unsupported video type")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "failed to read file")
		return
	}
	defer file.Close()

	key := storage.VideoKey(courseID.String(), uuid.New().String())
	if _, err := h.s3.Upload(c.Request.Context(), key, contentType, file, fileHeader.Size); err != nil {
		h.logger.Error("video upload failed", zap.Error(err), zap.String("course_id", courseID.String()))
		response.Internal(c, "failed to upload video")
		return
	}
	response.Created(c, gin.H{
		"storage_ref": key,
		"size_bytes":  fileHeader.Size,
	})
}

// DeleteVideo handles DELETE /videos/:id. Removes the catalog row and, when
// object storage is configured, the underlying blob. Cached lookups may keep
// serving the asset until the catalog refresh TTL passes.
func (h *Handler) DeleteVideo(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}
	asset, err := h.repo.Lookup(c.Request.Context(), videoID)
	if err != nil {
		if err == ErrVideoNotFound {
			response.NotFound(c, "video not found")
			return
		}
		h.logger.Error("catalog lookup failed", zap.Error(err), zap.String("video_id", videoID.String()))
		response.Internal(c, "failed to delete video")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), videoID); err != nil {
		h.logger.Error("delete video asset failed", zap.Error(err), zap.String("video_id", videoID.String()))
		response.Internal(c, "failed to delete video")
		return
	}
	if h.s3 != nil {
		if err := h.s3.DeleteObject(c.Request.Context(), asset.StorageRef); err != nil {
			// Row is gone; orphaned blobs are cleaned up out of band.
			h.logger.Warn("delete video blob failed", zap.Error(err), zap.String("video_id", videoID.String()))
		}
	}
	response.NoContent(c)
}

// GenerateUploadURLRequest is the body for POST /courses/:id/videos/upload-url.
type GenerateUploadURLRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// GenerateUploadURL handles POST /courses/:id/videos/upload-url. Returns a
// pre-signed PUT URL so the instructor uploads directly to S3; the returned
// key becomes the asset's storage ref on CreateVideo.
func (h *Handler) GenerateUploadURL(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "object storage not configured")
		return
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	var req GenerateUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	contentType := storage.ContentTypeForFilename(req.Filename)
	if _, ok := storage.AllowedVideoTypes[contentType]; !ok {
		response.BadRequest(c, "unsupported video type")
		return
	}
	key := storage.VideoKey(courseID.String(), uuid.New().String())
	expire := h.s3.PresignExpire()
	url, err := h.s3.GeneratePresignedUploadURL(c.Request.Context(), key, contentType, expire)
	if err != nil {
		h.logger.Error("presign video upload failed", zap.Error(err), zap.String("course_id", courseID.String()))
		response.Internal(c, "failed to generate upload URL")
		return
	}
	response.OK(c, gin.H{
		"upload_url":  url,
		"storage_ref": key,
		"expires_in":  int(expire.Seconds()),
	})
}
