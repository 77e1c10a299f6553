package auth

import (
	"strings"
	"testing"
	"time"

	"ChatHive/internal/app_errors"
	"ChatHive/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(accessTTL, refreshTTL time.Duration) (*TokenManager, *time.Time) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := start
	m := NewTokenManager(testKey, "chathive-test", accessTTL, refreshTTL)
	m.now = func() time.Time { return current }
	return m, &current
}

// tamperSignature flips the first character of the signature segment so the
// token no longer verifies.
func tamperSignature(token string) string {
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}

func TestIssueAndVerify(t *testing.T) {
	m, _ := newTestManager(30*time.Minute, 7*24*time.Hour)

	pair, err := m.Issue("alice@example.com", []string{models.RoleUser, models.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, models.BearerTokenType, pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := m.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, []string{models.RoleUser, models.RoleManager}, claims.Roles())

	refresh, err := m.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", refresh.Subject)
}

func TestRotateMintsDistinctRefreshToken(t *testing.T) {
	m, _ := newTestManager(30*time.Minute, 7*24*time.Hour)

	// The injected clock never advances: sub, iss, iat and exp are identical
	// across both calls, so only the jti separates the tokens.
	pair, err := m.Issue("alice@example.com", []string{models.RoleUser})
	require.NoError(t, err)

	rotated, err := m.Rotate("alice@example.com", []string{models.RoleUser})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	again, err := m.Rotate("alice@example.com", []string{models.RoleUser})
	require.NoError(t, err)
	assert.NotEqual(t, rotated.RefreshToken, again.RefreshToken)

	claims, err := m.VerifyRefresh(again.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyDistinguishesExpiredFromInvalid(t *testing.T) {
	m, current := newTestManager(30*time.Minute, 7*24*time.Hour)

	pair, err := m.Issue("alice@example.com", []string{models.RoleUser})
	require.NoError(t, err)

	// Still valid one second before the deadline.
	*current = current.Add(30*time.Minute - time.Second)
	_, err = m.Verify(pair.AccessToken)
	assert.NoError(t, err)

	// Expired one second past it, and recoverable.
	*current = current.Add(2 * time.Second)
	_, err = m.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, app_errors.ErrTokenExpired)

	// Tampering is never recoverable, expired or not.
	_, err = m.Verify(tamperSignature(pair.AccessToken))
	assert.ErrorIs(t, err, app_errors.ErrTokenInvalid)
	assert.NotErrorIs(t, err, app_errors.ErrTokenExpired)
}

func TestVerifyRejectsForeignKeyAndAlg(t *testing.T) {
	m, _ := newTestManager(30*time.Minute, 7*24*time.Hour)

	other := NewTokenManager([]byte("another-signing-key-another-key!"), "chathive-test", 30*time.Minute, 7*24*time.Hour)
	pair, err := other.Issue("alice@example.com", []string{models.RoleUser})
	require.NoError(t, err)

	_, err = m.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, app_errors.ErrTokenInvalid)

	// Same key, wrong algorithm.
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := tok.SignedString(testKey)
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, app_errors.ErrTokenInvalid)
}

func TestVerifyRefreshExpired(t *testing.T) {
	m, current := newTestManager(30*time.Minute, time.Hour)

	pair, err := m.Issue("alice@example.com", []string{models.RoleUser})
	require.NoError(t, err)

	*current = current.Add(time.Hour + time.Second)
	_, err = m.VerifyRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, app_errors.ErrRefreshExpired)
}

func TestSubjectFromExpired(t *testing.T) {
	m, current := newTestManager(30*time.Minute, 7*24*time.Hour)

	pair, err := m.Issue("alice@example.com", []string{models.RoleUser})
	require.NoError(t, err)

	// Valid token: subject is readable.
	subject, err := m.SubjectFromExpired(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)

	// Expired token: still readable, that is the point.
	*current = current.Add(time.Hour)
	subject, err = m.SubjectFromExpired(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)

	// Tampered token: no subject, ever.
	_, err = m.SubjectFromExpired(tamperSignature(pair.AccessToken))
	assert.ErrorIs(t, err, app_errors.ErrTokenInvalid)
}

func TestRemainingValidity(t *testing.T) {
	m, current := newTestManager(30*time.Minute, 7*24*time.Hour)

	pair, err := m.Issue("alice@example.com", []string{models.RoleUser})
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, m.RemainingValidity(pair.AccessToken))

	*current = current.Add(10 * time.Minute)
	assert.Equal(t, 20*time.Minute, m.RemainingValidity(pair.AccessToken))

	*current = current.Add(25 * time.Minute)
	assert.LessOrEqual(t, m.RemainingValidity(pair.AccessToken), time.Duration(0))

	assert.Equal(t, time.Duration(0), m.RemainingValidity("not-a-token"))
	assert.Equal(t, time.Duration(0), m.RemainingValidity(tamperSignature(pair.AccessToken)))
}
