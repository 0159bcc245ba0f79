package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the standard API response envelope. Reason carries a short
// machine-readable code (e.g. "not_enrolled") alongside the human message.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Reason  string      `json:"reason,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err})
}

// UnauthorizedReason sends 401 with a machine-readable reason code.
func UnauthorizedReason(c *gin.Context, reason, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err, Reason: reason})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: err})
}

// ForbiddenReason sends 403 with a machine-readable reason code.
func ForbiddenReason(c *gin.Context, reason, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: err, Reason: reason})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err})
}

// NotFoundReason sends 404 with a machine-readable reason code.
func NotFoundReason(c *gin.Context, reason, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err, Reason: reason})
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, Body{Success: false, Error: err})
}

// RangeNotSatisfiable sends 416; Content-Range must already be set by the caller.
func RangeNotSatisfiable(c *gin.Context, err string) {
	c.JSON(http.StatusRequestedRangeNotSatisfiable, Body{Success: false, Error: err, Reason: "range_not_satisfiable"})
}

// ServiceUnavailable sends 503.
func ServiceUnavailable(c *gin.Context, err string) {
	c.JSON(http.StatusServiceUnavailable, Body{Success: false, Error: err})
}

// ServiceUnavailableReason sends 503 with a machine-readable reason code.
func ServiceUnavailableReason(c *gin.Context, reason, err string) {
	c.JSON(http.StatusServiceUnavailable, Body{Success: false, Error: err, Reason: reason})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err})
}
