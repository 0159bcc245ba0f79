package entitlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumora-academy/backend/internal/catalog"
)

// Checker decides whether delivery of a video is permitted right now.
// Pure decision function over external state: no side effects, fail closed.
type Checker struct {
	catalog       catalog.Catalog
	enrollments   EnrollmentSource
	lookupTimeout time.Duration
	logger        *zap.Logger
}

// NewChecker creates an entitlement checker.
func NewChecker(cat catalog.Catalog, enrollments EnrollmentSource, lookupTimeout time.Duration, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{catalog: cat, enrollments: enrollments, lookupTimeout: lookupTimeout, logger: logger}
}

// Check decides access for userID (nil for anonymous callers) to videoID.
// courseID must match the asset's course when supplied (uuid.Nil skips the check).
//
//   - public assets: Allow for anyone, no enrollment lookup performed
//   - premium assets: Allow iff an enrollment fact shows paid-or-free membership
//   - unknown video: Deny(NotFound), distinguished from NotEnrolled
//   - lookup failure or timeout: Deny(TemporarilyUnavailable)
func (ch *Checker) Check(ctx context.Context, userID *uuid.UUID, videoID, courseID uuid.UUID) Decision {
	asset, err := ch.catalog.Lookup(ctx, videoID)
	if err != nil {
		if err == catalog.ErrVideoNotFound {
			return Deny(ReasonNotFound)
		}
		ch.logger.Error("catalog lookup failed", zap.Error(err), zap.String("video_id", videoID.String()))
		return Deny(ReasonTemporarilyUnavailable)
	}
	if courseID != uuid.Nil && courseID != asset.CourseID {
		// The asset does not belong to the claimed course.
		return Deny(ReasonNotFound)
	}

	if asset.IsPublic() {
		return Allow()
	}

	if userID == nil {
		return Deny(ReasonUnauthenticated)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, ch.lookupTimeout)
	defer cancel()
	fact, err := ch.enrollments.FactFor(lookupCtx, *userID, asset.CourseID)
	if err != nil {
		if err == ErrNoFact {
			return Deny(ReasonNotEnrolled)
		}
		ch.logger.Warn("enrollment lookup failed, denying",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("course_id", asset.CourseID.String()),
		)
		return Deny(ReasonTemporarilyUnavailable)
	}
	if !fact.Entitled() {
		return Deny(ReasonNotEnrolled)
	}
	return Allow()
}
