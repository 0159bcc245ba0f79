package streamtoken

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedIssuer(t *testing.T, ttl time.Duration, at time.Time) *Issuer {
	t.Helper()
	i := NewIssuer("test-secret", ttl)
	i.now = func() time.Time { return at }
	return i
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := fixedIssuer(t, time.Hour, now)

	user := uuid.New()
	video := uuid.New()
	course := uuid.New()

	tok, err := issuer.Issue(user, video, course)
	require.NoError(t, err)
	assert.Equal(t, 3600, tok.ExpiresIn())
	assert.Equal(t, now.Add(time.Hour).Unix(), tok.ExpiresAt.Unix())

	res := issuer.Verify(tok.Token)
	require.True(t, res.Valid)
	assert.Equal(t, user, res.Claims.Subject)
	assert.Equal(t, video, res.Claims.VideoID)
	assert.Equal(t, course, res.Claims.CourseID)
}

func TestVerify_MultiUse(t *testing.T) {
	issuer := fixedIssuer(t, time.Hour, time.Now())
	tok, err := issuer.Issue(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.True(t, issuer.Verify(tok.Token).Valid)
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := fixedIssuer(t, time.Hour, issued)
	tok, err := issuer.Issue(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	cases := []struct {
		name  string
		at    time.Time
		valid bool
	}{
		{"one second before expiry", issued.Add(time.Hour - time.Second), true},
		{"exactly at expiry", issued.Add(time.Hour), false},
		{"one second after expiry", issued.Add(time.Hour + time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issuer.now = func() time.Time { return tc.at }
			res := issuer.Verify(tok.Token)
			assert.Equal(t, tc.valid, res.Valid)
			if !tc.valid {
				assert.Equal(t, ReasonExpired, res.Reason)
			}
		})
	}
}

func TestVerify_TamperedClaimsRejected(t *testing.T) {
	issuer := fixedIssuer(t, time.Hour, time.Now())
	tok, err := issuer.Issue(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	payloadPart, sigPart, ok := strings.Cut(tok.Token, ".")
	require.True(t, ok)

	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	require.NoError(t, err)
	payload[10] ^= 0x01
	tampered := base64.RawURLEncoding.EncodeToString(payload) + "." + sigPart

	res := issuer.Verify(tampered)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonBadSignature, res.Reason)
}

func TestVerify_TamperedSignatureRejected(t *testing.T) {
	issuer := fixedIssuer(t, time.Hour, time.Now())
	tok, err := issuer.Issue(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	payloadPart, sigPart, ok := strings.Cut(tok.Token, ".")
	require.True(t, ok)

	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	require.NoError(t, err)
	sig[0] ^= 0x01
	tampered := payloadPart + "." + base64.RawURLEncoding.EncodeToString(sig)

	res := issuer.Verify(tampered)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonBadSignature, res.Reason)
}

func TestVerify_WrongSecretRejected(t *testing.T) {
	issuer := fixedIssuer(t, time.Hour, time.Now())
	tok, err := issuer.Issue(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	other := NewIssuer("different-secret", time.Hour)
	res := other.Verify(tok.Token)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonBadSignature, res.Reason)
}

func TestVerify_Malformed(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	for _, token := range []string{
		"",
		"no-dot-here",
		"not!base64.alsonot!base64",
		"onlyonepart.",
		".onlysig",
	} {
		res := issuer.Verify(token)
		assert.False(t, res.Valid, "token %q", token)
		assert.Equal(t, ReasonMalformed, res.Reason, "token %q", token)
	}
}

func TestVerify_ValidEncodingButNotJSON(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	payload := []byte("not json at all")
	mac := issuer.sign(payload)
	token := base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(mac)

	res := issuer.Verify(token)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonMalformed, res.Reason)
}
