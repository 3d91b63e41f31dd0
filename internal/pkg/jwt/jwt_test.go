package jwt

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T, clock *fakeClock) *Service {
	t.Helper()
	svc, err := NewService(Options{
		Secret:    "test-secret-that-is-long-enough-0123456789",
		Algorithm: "HS256",
		TTL:       30 * time.Minute,
		Issuer:    "ripple-test",
		Now:       clock.Now,
	})
	require.NoError(t, err)
	return svc
}

func TestService_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	token, err := svc.Issue("alice")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, clock.now.Add(30*time.Minute), token.ExpiresAt)

	subject, err := svc.Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestService_ExpiresWithClock(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	token, err := svc.IssueWithTTL("bob", 10*time.Minute)
	require.NoError(t, err)

	clock.Advance(10*time.Minute - time.Second)
	_, err = svc.Validate(token.AccessToken)
	assert.NoError(t, err, "token should still be valid just before expiry")

	clock.Advance(time.Second)
	_, err = svc.Validate(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "token must be rejected once now reaches expiry")
}

func TestService_RejectsTampering(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	token, err := svc.Issue("carol")
	require.NoError(t, err)

	parts := strings.Split(token.AccessToken, ".")
	require.Len(t, parts, 3)

	// Swap the payload for one claiming a different subject.
	forged, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "mallory",
			ExpiresAt: gojwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"payload swapped", parts[0] + "." + forgedParts[1] + "." + parts[2]},
		{"wrong secret", forged},
		{"truncated signature", parts[0] + "." + parts[1] + "." + parts[2][:10]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := svc.Validate(tt.token)
			assert.Empty(t, subject)
			assert.Equal(t, ErrInvalidToken, err)
		})
	}
}

func TestService_RejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	other, err := NewService(Options{
		Secret:    "test-secret-that-is-long-enough-0123456789",
		Algorithm: "HS512",
		Now:       clock.Now,
	})
	require.NoError(t, err)

	token, err := other.Issue("dave")
	require.NoError(t, err)

	_, err = svc.Validate(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "dave",
			ExpiresAt: gojwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewService_Options(t *testing.T) {
	_, err := NewService(Options{})
	assert.Error(t, err, "secret is required")

	_, err = NewService(Options{Secret: "s", Algorithm: "RS256"})
	assert.Error(t, err, "only HMAC algorithms are supported")

	svc, err := NewService(Options{Secret: "s"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, svc.TTL())
}
