package access

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumora-academy/backend/internal/entitlement"
	"github.com/lumora-academy/backend/internal/middleware"
	"github.com/lumora-academy/backend/pkg/response"
)

// SecureURLRequest is the body for POST /video-stream/secure-url.
type SecureURLRequest struct {
	VideoID  string `json:"video_id" binding:"required,uuid"`
	CourseID string `json:"course_id" binding:"omitempty,uuid"`
}

// Handler handles access HTTP endpoints.
type Handler struct {
	orchestrator *Orchestrator
}

// NewHandler creates an access handler.
func NewHandler(orchestrator *Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

// SecureURL handles POST /video-stream/secure-url. Returns a short-lived
// stream URL for premium assets, or the permanent public URL for public ones.
func (h *Handler) SecureURL(c *gin.Context) {
	var req SecureURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	videoID, _ := uuid.Parse(req.VideoID)
	courseID := uuid.Nil
	if req.CourseID != "" {
		courseID, _ = uuid.Parse(req.CourseID)
	}

	var subject *uuid.UUID
	if v, ok := c.Get(middleware.ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			subject = &id
		}
	}

	result := h.orchestrator.Request(c.Request.Context(), subject, videoID, courseID)
	if !result.Granted {
		switch result.Reason {
		case entitlement.ReasonNotFound:
			response.NotFoundReason(c, string(result.Reason), "video not found")
		case entitlement.ReasonUnauthenticated:
			response.UnauthorizedReason(c, string(result.Reason), "authentication required")
		case entitlement.ReasonTemporarilyUnavailable:
			response.ServiceUnavailableReason(c, string(result.Reason), "entitlement check unavailable, retry later")
		default:
			response.ForbiddenReason(c, string(result.Reason), "not enrolled in this course")
		}
		return
	}
	response.OK(c, gin.H{
		"url":        result.URL,
		"expires_in": result.ExpiresIn,
	})
}
