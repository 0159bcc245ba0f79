package entitlement

// Reason is a short machine-readable denial code.
type Reason string

const (
	ReasonNotFound               Reason = "not_found"
	ReasonUnauthenticated        Reason = "unauthenticated"
	ReasonNotEnrolled            Reason = "not_enrolled"
	ReasonTemporarilyUnavailable Reason = "temporarily_unavailable"
)

// Decision is the outcome of an entitlement check. Denials carry a reason so
// callers can map them to 401/403/404/503 without string matching.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow is the single allowed decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny returns a denial with the given reason.
func Deny(reason Reason) Decision { return Decision{Allowed: false, Reason: reason} }
