package middleware

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/config"
	"ChatHive/internal/models"
	"ChatHive/pkg/logger"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type AuthService interface {
	IsDenylisted(ctx context.Context, accessToken string) (bool, error)
	Authenticate(ctx context.Context, accessToken string) (*models.Identity, error)
	SubjectFromExpired(accessToken string) (string, error)
	Renew(ctx context.Context, subject, clientRefresh string) (*models.TokenPair, *models.Identity, error)
}

// AuthMiddlewareProvider runs the per-request token state machine: extract,
// check denylist, verify, and on expiry drive the silent renewal protocol.
// Every failure short of a denylist hit degrades to an unauthenticated request;
// route-level authorization decides whether that matters.
type AuthMiddlewareProvider struct {
	log     logger.Log
	service AuthService
	cfg     config.JWT
	renewal *keyedMutex
}

func NewAuthMiddlewareProvider(log logger.Log, s AuthService, cfg config.JWT) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:     log,
		service: s,
		cfg:     cfg,
		renewal: newKeyedMutex(),
	}
}

// accountDeletePath manages its own token lifecycle; the interceptor must not
// renew or clear tokens mid-deletion.
const accountDeletePath = "/v1/my-account"

func (p *AuthMiddlewareProvider) Authenticate(c *gin.Context) {
	if c.Request.Method == http.MethodDelete && c.Request.URL.Path == accountDeletePath {
		c.Next()
		return
	}

	accessToken := p.extractAccessToken(c)
	refreshToken, _ := c.Cookie(p.cfg.RefreshCookie)

	if accessToken == "" {
		c.Next()
		return
	}

	// Denylist check is fail-closed: if the store cannot answer, a possibly
	// revoked token must not pass.
	denied, err := p.service.IsDenylisted(c.Request.Context(), accessToken)
	if err != nil {
		p.log.ErrorErr("denylist check failed", err)
		p.clearTokenCookies(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication unavailable"})
		return
	}
	if denied {
		p.log.Warn("denylisted token presented", "path", c.Request.URL.Path)
		p.clearTokenCookies(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
		return
	}

	ident, err := p.service.Authenticate(c.Request.Context(), accessToken)
	if err == nil {
		SetIdentity(c, ident)
		c.Next()
		return
	}
	if !errors.Is(err, app_errors.ErrTokenExpired) {
		// Signature mismatch, malformed token, deleted subject: never
		// recoverable, never renewed.
		p.log.Info("token rejected", "reason", err.Error())
		c.Next()
		return
	}

	p.renew(c, accessToken, refreshToken)
	c.Next()
}

// renew drives the silent renewal for one request. On any failure the request
// proceeds unauthenticated with cleared cookies.
func (p *AuthMiddlewareProvider) renew(c *gin.Context, accessToken, refreshToken string) {
	subject, err := p.service.SubjectFromExpired(accessToken)
	if err != nil {
		p.log.Info("expired token yields no subject", "reason", err.Error())
		return
	}
	if refreshToken == "" || subject == "" {
		p.clearTokenCookies(c)
		return
	}

	unlock := p.renewal.lock(subject)
	defer unlock()

	pair, ident, err := p.service.Renew(c.Request.Context(), subject, refreshToken)
	if err != nil {
		p.log.Warn("token renewal failed", "subject", subject, "reason", err.Error())
		p.clearTokenCookies(c)
		return
	}

	p.setTokenCookies(c, pair, ident.Subject)
	SetIdentity(c, ident)
}

func (p *AuthMiddlewareProvider) extractAccessToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if parts := strings.Split(authHeader, "Bearer "); len(parts) == 2 {
		return parts[1]
	}
	if token, err := c.Cookie(p.cfg.AccessCookie); err == nil {
		return token
	}
	return ""
}

func (p *AuthMiddlewareProvider) setTokenCookies(c *gin.Context, pair *models.TokenPair, subject string) {
	maxAge := int(p.cfg.RefreshTTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	// Access cookie keeps the refresh lifetime so its shell survives expiry
	// and the renewal path keeps triggering. Readable by script; see config.
	c.SetCookie(p.cfg.AccessCookie, pair.AccessToken, maxAge, "/", "", p.cfg.SecureCookies, false)
	c.SetCookie(p.cfg.RefreshCookie, pair.RefreshToken, maxAge, "/", "", p.cfg.SecureCookies, true)
	c.SetCookie(p.cfg.EmailCookie, subject, maxAge, "/", "", p.cfg.SecureCookies, false)
}

// clearTokenCookies expires the session cookies with the same HttpOnly
// attributes they were set with, so every stored variant is replaced.
func (p *AuthMiddlewareProvider) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(p.cfg.AccessCookie, "", -1, "/", "", p.cfg.SecureCookies, false)
	c.SetCookie(p.cfg.RefreshCookie, "", -1, "/", "", p.cfg.SecureCookies, true)
	c.SetCookie(p.cfg.EmailCookie, "", -1, "/", "", p.cfg.SecureCookies, false)
}

// RequireAuth guards routes that need an authenticated principal; the
// interceptor itself never rejects an unauthenticated request.
func RequireAuth(c *gin.Context) {
	if Identity(c) == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.Next()
}
