package models

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus represents enrollment lifecycle.
const (
	EnrollmentStatusPending = "pending"
	EnrollmentStatusActive  = "active"
)

// Enrollment links a user to a course. HasPaid flips when the payment
// provider confirms capture; free courses are active immediately.
type Enrollment struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	CourseID   uuid.UUID `json:"course_id"`
	HasPaid    bool      `json:"has_paid"`
	Status     string    `json:"status"`
	EnrolledAt time.Time `json:"enrolled_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EnrollmentFact is the read-only entitlement input for a (user, course) pair.
// Derived from Enrollment + Course; never mutated by the delivery core.
type EnrollmentFact struct {
	UserID       uuid.UUID
	CourseID     uuid.UUID
	HasPaid      bool
	IsFreeCourse bool
	EnrolledAt   time.Time
}

// Entitled reports whether the fact grants premium access.
func (f EnrollmentFact) Entitled() bool {
	return f.IsFreeCourse || f.HasPaid
}
