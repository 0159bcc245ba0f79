package enrollments

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumora-academy/backend/internal/courses"
	"github.com/lumora-academy/backend/internal/entitlement"
	"github.com/lumora-academy/backend/internal/middleware"
	"github.com/lumora-academy/backend/internal/models"
	"github.com/lumora-academy/backend/pkg/queue"
	"github.com/lumora-academy/backend/pkg/response"
)

// EnrollRequest is the body for POST /enrollments.
type EnrollRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
}

// PaymentConfirmation is the body posted by the payment provider webhook.
type PaymentConfirmation struct {
	EnrollmentID string `json:"enrollment_id" binding:"required,uuid"`
	ProviderRef  string `json:"provider_ref"`
}

// Handler handles enrollment HTTP endpoints.
type Handler struct {
	repo    *Repository
	courses *courses.Repository
	cache   *entitlement.CachedSource
	queue   *queue.Queue
	logger  *zap.Logger
}

// NewHandler creates an enrollments handler. cache and q may be nil in tests.
func NewHandler(repo *Repository, courseRepo *courses.Repository, cache *entitlement.CachedSource, q *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, courses: courseRepo, cache: cache, queue: q, logger: logger}
}

// Enroll handles POST /enrollments. Free courses activate immediately; paid
// courses start pending until the payment webhook confirms capture.
func (h *Handler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	courseID, _ := uuid.Parse(req.CourseID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	email, _ := c.MustGet(middleware.ContextUserEmail).(string)

	course, err := h.courses.GetByID(c.Request.Context(), courseID)
	if err != nil {
		h.logger.Error("course lookup failed", zap.Error(err), zap.String("course_id", courseID.String()))
		response.Internal(c, "failed to enroll")
		return
	}
	if course == nil {
		response.NotFound(c, "course not found")
		return
	}

	existing, err := h.repo.GetByUserAndCourse(c.Request.Context(), userID, courseID)
	if err != nil {
		h.logger.Error("enrollment lookup failed", zap.Error(err))
		response.Internal(c, "failed to enroll")
		return
	}
	if existing != nil {
		response.Conflict(c, "already enrolled in this course")
		return
	}

	enrollment := &models.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		HasPaid:  false,
		Status:   models.EnrollmentStatusPending,
	}
	if course.IsFree {
		enrollment.Status = models.EnrollmentStatusActive
	}
	if err := h.repo.Create(c.Request.Context(), enrollment); err != nil {
		h.logger.Error("create enrollment failed", zap.Error(err))
		response.Internal(c, "failed to enroll")
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), userID, courseID)
	}
	h.sendEmail(c, "enrollment_confirmation", enrollment, email, course.Title)

	h.logger.Info("user enrolled",
		zap.String("user_id", userID.String()),
		zap.String("course_id", courseID.String()),
		zap.String("status", enrollment.Status))
	response.Created(c, enrollment)
}

// ConfirmPayment handles POST /enrollments/payment-confirmation. Marks the
// enrollment paid/active and drops the cached entitlement fact so the next
// token issuance sees the new state.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	var req PaymentConfirmation
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	enrollmentID, _ := uuid.Parse(req.EnrollmentID)

	updated, err := h.repo.MarkPaid(c.Request.Context(), enrollmentID)
	if err != nil {
		h.logger.Error("payment confirmation failed", zap.Error(err), zap.String("enrollment_id", enrollmentID.String()))
		response.Internal(c, "failed to confirm payment")
		return
	}
	if updated == nil {
		response.NotFound(c, "enrollment not found")
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), updated.UserID, updated.CourseID)
	}

	h.logger.Info("payment confirmed",
		zap.String("enrollment_id", updated.ID.String()),
		zap.String("provider_ref", req.ProviderRef))
	response.OK(c, updated)
}

// ListMine handles GET /enrollments/me.
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list enrollments failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to list enrollments")
		return
	}
	response.OK(c, list)
}

// Unenroll handles DELETE /enrollments/:id for the enrollment owner or admin.
func (h *Handler) Unenroll(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid enrollment id")
		return
	}
	enrollment, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("enrollment lookup failed", zap.Error(err))
		response.Internal(c, "failed to unenroll")
		return
	}
	if enrollment == nil {
		response.NotFound(c, "enrollment not found")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.MustGet(middleware.ContextUserRole).(string)
	if enrollment.UserID != userID && role != string(models.RoleAdmin) {
		response.Forbidden(c, "not authorized to remove this enrollment")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete enrollment failed", zap.Error(err))
		response.Internal(c, "failed to unenroll")
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), enrollment.UserID, enrollment.CourseID)
	}
	response.NoContent(c)
}

func (h *Handler) sendEmail(c *gin.Context, emailType string, e *models.Enrollment, recipient, courseTitle string) {
	if h.queue == nil || recipient == "" {
		return
	}
	err := h.queue.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		EmailType:      emailType,
		CourseID:       e.CourseID,
		EnrollmentID:   e.ID,
		RecipientEmail: recipient,
		Subject:        "You're enrolled: " + courseTitle,
		BodyHTML:       "<p>Your enrollment in <strong>" + courseTitle + "</strong> is confirmed.</p>",
	})
	if err != nil {
		h.logger.Warn("enqueue email failed", zap.Error(err), zap.String("enrollment_id", e.ID.String()))
	}
}
