package courses

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumora-academy/backend/internal/middleware"
	"github.com/lumora-academy/backend/internal/models"
	"github.com/lumora-academy/backend/pkg/response"
)

// CreateRequest is the body for POST /courses.
type CreateRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	IsFree      bool   `json:"is_free"`
	PriceCents  int    `json:"price_cents"`
	Currency    string `json:"currency"`
}

// UpdateRequest is the body for PATCH /courses/:id.
type UpdateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsFree      *bool  `json:"is_free"`
	PriceCents  *int   `json:"price_cents"`
}

// CreateLessonRequest is the body for POST /courses/:id/lessons.
type CreateLessonRequest struct {
	Title    string `json:"title" binding:"required"`
	Position int    `json:"position"`
	VideoID  string `json:"video_id" binding:"omitempty,uuid"`
}

// Handler handles course HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a courses handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /courses (instructor/admin).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   userID,
		IsFree:      req.IsFree,
		PriceCents:  req.PriceCents,
		Currency:    currency,
	}
	if err := h.repo.Create(c.Request.Context(), course); err != nil {
		h.logger.Error("create course failed", zap.Error(err))
		response.Internal(c, "failed to create course")
		return
	}
	response.Created(c, course)
}

// List handles GET /courses.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), nil)
	if err != nil {
		h.logger.Error("list courses failed", zap.Error(err))
		response.Internal(c, "failed to list courses")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /courses/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	course, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get course failed", zap.Error(err), zap.String("course_id", id.String()))
		response.Internal(c, "failed to get course")
		return
	}
	if course == nil {
		response.NotFound(c, "course not found")
		return
	}
	response.OK(c, course)
}

// Update handles PATCH /courses/:id (owner or admin).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	if !h.canManage(c, id) {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Title, req.Description, req.IsFree, req.PriceCents); err != nil {
		h.logger.Error("update course failed", zap.Error(err), zap.String("course_id", id.String()))
		response.Internal(c, "failed to update course")
		return
	}
	response.OK(c, gin.H{"updated": true})
}

// Delete handles DELETE /courses/:id (owner or admin).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	if !h.canManage(c, id) {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete course failed", zap.Error(err), zap.String("course_id", id.String()))
		response.Internal(c, "failed to delete course")
		return
	}
	response.NoContent(c)
}

// CreateLesson handles POST /courses/:id/lessons (owner or admin).
func (h *Handler) CreateLesson(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	if !h.canManage(c, courseID) {
		return
	}
	var req CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	lesson := &models.Lesson{
		CourseID: courseID,
		Title:    req.Title,
		Position: req.Position,
	}
	if req.VideoID != "" {
		vid, _ := uuid.Parse(req.VideoID)
		lesson.VideoID = &vid
	}
	if err := h.repo.CreateLesson(c.Request.Context(), lesson); err != nil {
		h.logger.Error("create lesson failed", zap.Error(err), zap.String("course_id", courseID.String()))
		response.Internal(c, "failed to create lesson")
		return
	}
	response.Created(c, lesson)
}

// ListLessons handles GET /courses/:id/lessons.
func (h *Handler) ListLessons(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}
	list, err := h.repo.ListLessons(c.Request.Context(), courseID)
	if err != nil {
		h.logger.Error("list lessons failed", zap.Error(err), zap.String("course_id", courseID.String()))
		response.Internal(c, "failed to list lessons")
		return
	}
	response.OK(c, list)
}

// canManage verifies the caller owns the course or is an admin, writing the
// error response when not.
func (h *Handler) canManage(c *gin.Context, courseID uuid.UUID) bool {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.MustGet(middleware.ContextUserRole).(string)
	if role == string(models.RoleAdmin) {
		return true
	}
	ok, err := h.repo.IsOwner(c.Request.Context(), courseID, userID)
	if err != nil {
		h.logger.Error("ownership check failed", zap.Error(err), zap.String("course_id", courseID.String()))
		response.Internal(c, "failed to verify course access")
		return false
	}
	if !ok {
		response.Forbidden(c, "not authorized to manage this course")
		return false
	}
	return true
}
