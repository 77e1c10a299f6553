package auth

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/models"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingMethod = jwt.SigningMethodHS256

// TokenManager mints and verifies the access/refresh token pair. The signing
// key is loaded once at startup and immutable for the process lifetime, so the
// manager is safe to share between request workers without locking.
type TokenManager struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

func NewTokenManager(key []byte, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		key:        key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		now:        time.Now,
	}
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

type AccessClaims struct {
	Email string `json:"email"`
	Auth  string `json:"auth"` // comma-joined role names
	jwt.RegisteredClaims
}

func (c *AccessClaims) Roles() []string {
	return models.SplitRoles(c.Auth)
}

// RefreshClaims carry the subject too, so a refresh token is self-describing
// even though renewal keys the cache lookup off the expired access token.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// Issue mints a fresh access/refresh pair for a subject. The refresh token is
// not yet bound in the revocation store; the caller does that.
func (m *TokenManager) Issue(subject string, roles []string) (*models.TokenPair, error) {
	now := m.now()

	accessToken := jwt.NewWithClaims(signingMethod, AccessClaims{
		Email: subject,
		Auth:  models.JoinRoles(roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	signedAccess, err := accessToken.SignedString(m.key)
	if err != nil {
		return nil, fmt.Errorf("access token signing failed: %w", err)
	}

	// The jti keeps every refresh token distinct even when two issuances land
	// in the same second; without it a rotation could mint the exact bytes it
	// was meant to supersede.
	refreshToken := jwt.NewWithClaims(signingMethod, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	signedRefresh, err := refreshToken.SignedString(m.key)
	if err != nil {
		return nil, fmt.Errorf("refresh token signing failed: %w", err)
	}

	return &models.TokenPair{
		AccessToken:  signedAccess,
		RefreshToken: signedRefresh,
		TokenType:    models.BearerTokenType,
	}, nil
}

// Rotate reissues a pair during renewal. The refresh token is always new
// (rolling refresh); the previous one dies when the caller overwrites the
// cache binding.
func (m *TokenManager) Rotate(subject string, roles []string) (*models.TokenPair, error) {
	return m.Issue(subject, roles)
}

func (m *TokenManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != signingMethod {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return m.key, nil
}

// Verify checks signature and expiry of an access token. Expiry and any other
// failure are distinct outcomes: only app_errors.ErrTokenExpired is
// recoverable via the renewal protocol.
func (m *TokenManager) Verify(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, m.keyFunc, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, app_errors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", app_errors.ErrTokenInvalid, err)
	}
	return claims, nil
}

// VerifyRefresh checks a refresh token. An expired refresh token forces
// re-login, so it gets its own sentinel.
func (m *TokenManager) VerifyRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, m.keyFunc, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, app_errors.ErrRefreshExpired
		}
		return nil, fmt.Errorf("%w: %v", app_errors.ErrTokenInvalid, err)
	}
	return claims, nil
}

// SubjectFromExpired extracts the subject of a token whose only defect is
// expiry. The signature must still verify: an expired-and-tampered token
// yields no usable subject.
func (m *TokenManager) SubjectFromExpired(tokenStr string) (string, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, m.keyFunc, jwt.WithTimeFunc(m.now))
	if err == nil {
		return claims.Subject, nil
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		return claims.Subject, nil
	}
	return "", fmt.Errorf("%w: %v", app_errors.ErrTokenInvalid, err)
}

// RemainingValidity reports how long a token stays valid; zero or negative for
// invalid or unparseable tokens. Callers use this only to size a denylist TTL,
// so it never fails.
func (m *TokenManager) RemainingValidity(tokenStr string) time.Duration {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, m.keyFunc,
		jwt.WithTimeFunc(m.now), jwt.WithoutClaimsValidation())
	if err != nil {
		return 0
	}
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(m.now())
}
