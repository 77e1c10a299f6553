package auth

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/models"
	"ChatHive/pkg/logger"
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type UserRepo interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, email, hashedPassword string) error
	DeleteUser(ctx context.Context, email string) error
}

type TokenCache interface {
	Denylist(ctx context.Context, accessToken string, ttl time.Duration) error
	IsDenylisted(ctx context.Context, accessToken string) (bool, error)
	StoreRefresh(ctx context.Context, subject, refreshToken string, ttl time.Duration) error
	Refresh(ctx context.Context, subject string) (string, error)
	DeleteRefresh(ctx context.Context, subject string) error
}

type UserIndexer interface {
	Index(ctx context.Context, user models.User) error
	Delete(ctx context.Context, email string) error
}

// AuthService owns the session boundary: issuing the token pair on login,
// renewing it on expiry, and revoking it on logout, password change and
// account deletion. The token cache is the single source of truth for
// revocation and refresh matching.
type AuthService struct {
	log     logger.Log
	tokens  *TokenManager
	users   UserRepo
	cache   TokenCache
	indexer UserIndexer // optional
}

func NewAuthService(l logger.Log, tokens *TokenManager, users UserRepo, cache TokenCache, indexer UserIndexer) *AuthService {
	return &AuthService{
		log:     l,
		tokens:  tokens,
		users:   users,
		cache:   cache,
		indexer: indexer,
	}
}

func (s *AuthService) Register(ctx context.Context, user models.User) (*models.User, error) {
	if len(user.Password) > 16 || len(user.Password) < 6 {
		return nil, app_errors.ErrIncorrectPassword
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	hashed, err := hashPassword(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed

	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.indexer != nil {
		if err := s.indexer.Index(ctx, *created); err != nil {
			s.log.ErrorErr("failed to index user", err, "email", created.Email)
		}
	}
	return created, nil
}

// Login issues a token pair and binds the refresh token in the cache with the
// refresh lifetime as TTL. Any previously bound refresh token for the subject
// dies with the overwrite.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.TokenPair, *models.Identity, error) {
	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if !checkPasswordHash(password, user.Password) {
		return nil, nil, app_errors.ErrIncorrectPassword
	}

	pair, err := s.tokens.Issue(user.Email, user.Roles())
	if err != nil {
		return nil, nil, err
	}
	if err := s.cache.StoreRefresh(ctx, user.Email, pair.RefreshToken, s.tokens.RefreshTTL()); err != nil {
		return nil, nil, fmt.Errorf("failed to store refresh binding: %w", err)
	}

	return pair, &models.Identity{Subject: user.Email, Roles: user.Roles()}, nil
}

// Authenticate verifies an access token and re-derives the identity. A valid
// token for a deleted account fails: stale tokens must not outlive the user.
func (s *AuthService) Authenticate(ctx context.Context, tokenStr string) (*models.Identity, error) {
	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, app_errors.ErrUserNotFound
	}

	return &models.Identity{Subject: claims.Subject, Roles: claims.Roles()}, nil
}

func (s *AuthService) IsDenylisted(ctx context.Context, accessToken string) (bool, error) {
	return s.cache.IsDenylisted(ctx, accessToken)
}

func (s *AuthService) SubjectFromExpired(tokenStr string) (string, error) {
	return s.tokens.SubjectFromExpired(tokenStr)
}

// Renew drives the refresh protocol for a subject whose access token expired.
// The client refresh token must byte-for-byte match the cache binding; a
// mismatch is treated as a potential replay and deletes the binding, forcing
// re-login for every outstanding session of the subject.
func (s *AuthService) Renew(ctx context.Context, subject, clientRefresh string) (*models.TokenPair, *models.Identity, error) {
	bound, err := s.cache.Refresh(ctx, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("refresh binding lookup failed: %w", err)
	}
	if bound == "" || bound != clientRefresh {
		if derr := s.cache.DeleteRefresh(ctx, subject); derr != nil {
			s.log.ErrorErr("failed to delete refresh binding", derr, "subject", subject)
		}
		return nil, nil, app_errors.ErrRefreshMismatch
	}

	if _, err := s.tokens.VerifyRefresh(clientRefresh); err != nil {
		if derr := s.cache.DeleteRefresh(ctx, subject); derr != nil {
			s.log.ErrorErr("failed to delete refresh binding", derr, "subject", subject)
		}
		return nil, nil, err
	}

	// Roles may have changed since the access token was issued; always
	// re-read them.
	user, err := s.users.UserByEmail(ctx, subject)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.Rotate(user.Email, user.Roles())
	if err != nil {
		return nil, nil, err
	}
	if err := s.cache.StoreRefresh(ctx, user.Email, pair.RefreshToken, s.tokens.RefreshTTL()); err != nil {
		return nil, nil, fmt.Errorf("failed to rotate refresh binding: %w", err)
	}

	s.log.Info("token pair renewed", "subject", subject)
	return pair, &models.Identity{Subject: user.Email, Roles: user.Roles()}, nil
}

// Logout deletes the refresh binding. The access token is left to die by its
// own expiry unless the caller also revokes it.
func (s *AuthService) Logout(ctx context.Context, subject string) error {
	return s.cache.DeleteRefresh(ctx, subject)
}

// RevokeAccess denylists the current access token for its remaining validity
// and deletes the refresh binding, making the pair unusable immediately.
func (s *AuthService) RevokeAccess(ctx context.Context, accessToken, subject string) error {
	if accessToken != "" {
		if ttl := s.tokens.RemainingValidity(accessToken); ttl > 0 {
			if err := s.cache.Denylist(ctx, accessToken, ttl); err != nil {
				return fmt.Errorf("failed to denylist token: %w", err)
			}
		}
	}
	return s.cache.DeleteRefresh(ctx, subject)
}

func (s *AuthService) ChangePassword(ctx context.Context, email, currentPassword, newPassword, accessToken string) error {
	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !checkPasswordHash(currentPassword, user.Password) {
		return app_errors.ErrIncorrectPassword
	}
	if len(newPassword) > 16 || len(newPassword) < 6 {
		return app_errors.ErrIncorrectPassword
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, email, hashed); err != nil {
		return err
	}

	return s.RevokeAccess(ctx, accessToken, email)
}

func (s *AuthService) DeleteAccount(ctx context.Context, email, password, accessToken string) error {
	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !checkPasswordHash(password, user.Password) {
		return app_errors.ErrIncorrectPassword
	}

	if err := s.users.DeleteUser(ctx, email); err != nil {
		return err
	}
	if s.indexer != nil {
		if err := s.indexer.Delete(ctx, email); err != nil {
			s.log.ErrorErr("failed to deindex user", err, "email", email)
		}
	}

	return s.RevokeAccess(ctx, accessToken, email)
}

func (s *AuthService) Profile(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
