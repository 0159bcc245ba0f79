// Package access ties catalog lookup, entitlement checking and token issuance
// together for a single secure-URL request. Streaming happens later on an
// independent request against the gateway; no state is shared between the two,
// which keeps the service stateless and horizontally scalable.
package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumora-academy/backend/internal/catalog"
	"github.com/lumora-academy/backend/internal/entitlement"
	"github.com/lumora-academy/backend/internal/streamtoken"
)

// State is the terminal state of an access request.
type State string

const (
	StateDeniedNotFound    State = "denied_not_found"
	StateClassifiedPublic  State = "classified_public"
	StateDenied            State = "entitlement_denied"
	StateTokenIssued       State = "token_issued"
	StateDeniedUnavailable State = "denied_unavailable"
)

// Result is the outcome of an access request. When Granted, URL is ready to
// use; ExpiresIn is zero for public assets, which carry no token and no expiry.
type Result struct {
	Granted   bool
	State     State
	URL       string
	ExpiresIn int
	Reason    entitlement.Reason // set when not granted
}

// Orchestrator runs the per-request access flow:
// metadata lookup → classify → entitlement check → token issue.
type Orchestrator struct {
	catalog catalog.Catalog
	checker *entitlement.Checker
	issuer  *streamtoken.Issuer
	baseURL string
	logger  *zap.Logger
}

// NewOrchestrator creates an access orchestrator. baseURL is the external
// server URL embedded in returned stream URLs.
func NewOrchestrator(cat catalog.Catalog, checker *entitlement.Checker, issuer *streamtoken.Issuer, baseURL string, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{catalog: cat, checker: checker, issuer: issuer, baseURL: baseURL, logger: logger}
}

// Request resolves access for subject (nil when anonymous) to videoID.
// Public assets short-circuit to a tokenless URL; premium assets require a
// subject and a positive entitlement decision before a token is minted.
func (o *Orchestrator) Request(ctx context.Context, subject *uuid.UUID, videoID, courseID uuid.UUID) Result {
	asset, err := o.catalog.Lookup(ctx, videoID)
	if err != nil {
		if err == catalog.ErrVideoNotFound {
			return Result{State: StateDeniedNotFound, Reason: entitlement.ReasonNotFound}
		}
		o.logger.Error("catalog lookup failed", zap.Error(err), zap.String("video_id", videoID.String()))
		return Result{State: StateDeniedUnavailable, Reason: entitlement.ReasonTemporarilyUnavailable}
	}

	if asset.IsPublic() {
		return Result{
			Granted: true,
			State:   StateClassifiedPublic,
			URL:     fmt.Sprintf("%s/video-stream/public/%s", o.baseURL, asset.ID),
		}
	}

	if subject == nil {
		return Result{State: StateDenied, Reason: entitlement.ReasonUnauthenticated}
	}

	decision := o.checker.Check(ctx, subject, videoID, courseID)
	if !decision.Allowed {
		state := StateDenied
		switch decision.Reason {
		case entitlement.ReasonNotFound:
			state = StateDeniedNotFound
		case entitlement.ReasonTemporarilyUnavailable:
			state = StateDeniedUnavailable
		}
		return Result{State: state, Reason: decision.Reason}
	}

	token, err := o.issuer.Issue(*subject, asset.ID, asset.CourseID)
	if err != nil {
		o.logger.Error("token issue failed", zap.Error(err), zap.String("video_id", videoID.String()))
		return Result{State: StateDeniedUnavailable, Reason: entitlement.ReasonTemporarilyUnavailable}
	}
	return Result{
		Granted:   true,
		State:     StateTokenIssued,
		URL:       fmt.Sprintf("%s/video-stream/%s", o.baseURL, token.Token),
		ExpiresIn: token.ExpiresIn(),
	}
}
