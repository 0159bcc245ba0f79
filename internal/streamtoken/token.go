// Package streamtoken mints and verifies the short-lived bearer tokens that
// gate video byte delivery. A token is the HMAC-signed claim set
// {user, video, course, issued, expiry}; possession plus validity is
// sufficient, so verification needs no server-side state.
package streamtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InvalidReason identifies why a token failed verification.
type InvalidReason string

const (
	ReasonMalformed    InvalidReason = "malformed"
	ReasonBadSignature InvalidReason = "bad_signature"
	ReasonExpired      InvalidReason = "expired"
)

// Claims are the signed token contents. Field order is fixed by the struct,
// so serialization is canonical and signing is deterministic.
type Claims struct {
	Subject  uuid.UUID `json:"sub"`
	VideoID  uuid.UUID `json:"vid"`
	CourseID uuid.UUID `json:"cid"`
	IssuedAt int64     `json:"iat"`
	Expiry   int64     `json:"exp"`
}

// AccessToken is an issued capability token.
type AccessToken struct {
	Token     string
	Claims    Claims
	ExpiresAt time.Time
}

// ExpiresIn returns the remaining lifetime in whole seconds at issuance.
func (t AccessToken) ExpiresIn() int {
	return int(t.Claims.Expiry - t.Claims.IssuedAt)
}

// Result is the outcome of verifying a presented token.
type Result struct {
	Valid  bool
	Reason InvalidReason // set when Valid is false
	Claims *Claims       // set when Valid is true
}

// Issuer signs and verifies stream access tokens with a process-wide secret.
// The secret never appears in tokens or logs.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates a token issuer with the given secret and TTL.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue mints a token for the given subject and video. Callable only after
// the entitlement check allowed the pair; the issuer itself does not re-check.
func (i *Issuer) Issue(userID, videoID, courseID uuid.UUID) (AccessToken, error) {
	issuedAt := i.now().Truncate(time.Second)
	claims := Claims{
		Subject:  userID,
		VideoID:  videoID,
		CourseID: courseID,
		IssuedAt: issuedAt.Unix(),
		Expiry:   issuedAt.Add(i.ttl).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return AccessToken{}, err
	}
	sig := i.sign(payload)
	token := base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(sig)
	return AccessToken{
		Token:     token,
		Claims:    claims,
		ExpiresAt: time.Unix(claims.Expiry, 0),
	}, nil
}

// Verify recomputes the signature over the presented claim bytes and compares
// it in constant time, then checks expiry. Tokens are multi-use until expiry.
func (i *Issuer) Verify(token string) Result {
	payloadPart, sigPart, ok := strings.Cut(token, ".")
	if !ok {
		return Result{Reason: ReasonMalformed}
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return Result{Reason: ReasonMalformed}
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return Result{Reason: ReasonMalformed}
	}
	if !hmac.Equal(sig, i.sign(payload)) {
		return Result{Reason: ReasonBadSignature}
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Result{Reason: ReasonMalformed}
	}
	if !i.now().Before(time.Unix(claims.Expiry, 0)) {
		return Result{Reason: ReasonExpired}
	}
	return Result{Valid: true, Claims: &claims}
}

func (i *Issuer) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}
