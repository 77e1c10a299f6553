package auth

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/config"
	"ChatHive/internal/delivery/http/controllers/middleware"
	"ChatHive/internal/models"
	"ChatHive/pkg/logger"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Register(ctx context.Context, user models.User) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, *models.Identity, error)
	Logout(ctx context.Context, subject string) error
	Authenticate(ctx context.Context, accessToken string) (*models.Identity, error)
	ChangePassword(ctx context.Context, email, currentPassword, newPassword, accessToken string) error
	DeleteAccount(ctx context.Context, email, password, accessToken string) error
	Profile(ctx context.Context, email string) (*models.User, error)
}

type AuthHandler struct {
	AuthService AuthService
	log         logger.Log
	cfg         config.JWT
}

func NewAuthHandler(l logger.Log, auth AuthService, cfg config.JWT) *AuthHandler {
	return &AuthHandler{
		AuthService: auth,
		log:         l,
		cfg:         cfg,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Email:    input.Email,
		Password: input.Password,
		Nickname: input.Nickname,
		Role:     models.RoleUser,
	}

	_, err := h.AuthService.Register(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserExists) || errors.Is(err, app_errors.ErrIncorrectPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error handling register user", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "registration success"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Redirect     string `json:"redirect"`
}

// Login issues the pair, binds the refresh token, and places all three cookies:
// access (script-readable), refresh (HttpOnly) and a display-only email cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, ident, err := h.AuthService.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) || errors.Is(err, app_errors.ErrIncorrectPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error handling login user", err)
		return
	}

	maxAge := int(h.cfg.RefreshTTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.AccessCookie, pair.AccessToken, maxAge, "/", "", h.cfg.SecureCookies, false)
	c.SetCookie(h.cfg.RefreshCookie, pair.RefreshToken, maxAge, "/", "", h.cfg.SecureCookies, true)
	c.SetCookie(h.cfg.EmailCookie, ident.Subject, maxAge, "/", "", h.cfg.SecureCookies, false)

	c.JSON(http.StatusOK, loginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		Redirect:     redirectByRole(ident),
	})
}

func redirectByRole(ident *models.Identity) string {
	switch {
	case ident.HasRole(models.RoleAdmin):
		return "/admin"
	case ident.HasRole(models.RoleManager):
		return "/manager"
	default:
		return "/main"
	}
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ident := middleware.Identity(c)
	if ident != nil {
		if err := h.AuthService.Logout(c.Request.Context(), ident.Subject); err != nil {
			h.log.ErrorErr("error deleting refresh binding", err, "subject", ident.Subject)
		}
	}

	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	ident := middleware.Identity(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.AuthService.Profile(c.Request.Context(), ident.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error retrieving user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":    user.Email,
		"nickname": user.Nickname,
		"roles":    user.Roles(),
	})
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword revokes the current pair: the access token goes on the
// denylist for its remaining validity and the refresh binding dies.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	ident := middleware.Identity(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var input passwordChangeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken := h.resolveToken(c)
	err := h.AuthService.ChangePassword(c.Request.Context(), ident.Subject, input.CurrentPassword, input.NewPassword, accessToken)
	if err != nil {
		if errors.Is(err, app_errors.ErrIncorrectPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error changing password", err, "subject", ident.Subject)
		return
	}

	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "password changed", "redirect": "/login"})
}

type deleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// DeleteAccount is exempt from the auth interceptor (it manages its own token
// lifecycle), so it authenticates the access token itself.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	accessToken := h.resolveToken(c)
	if accessToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ident, err := h.AuthService.Authenticate(c.Request.Context(), accessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var input deleteAccountRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.AuthService.DeleteAccount(c.Request.Context(), ident.Subject, input.Password, accessToken)
	if err != nil {
		if errors.Is(err, app_errors.ErrIncorrectPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error deleting account", err, "subject", ident.Subject)
		return
	}

	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

func (h *AuthHandler) resolveToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if parts := strings.Split(authHeader, "Bearer "); len(parts) == 2 {
		return parts[1]
	}
	if token, err := c.Cookie(h.cfg.AccessCookie); err == nil {
		return token
	}
	return ""
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.AccessCookie, "", -1, "/", "", h.cfg.SecureCookies, false)
	c.SetCookie(h.cfg.RefreshCookie, "", -1, "/", "", h.cfg.SecureCookies, true)
	c.SetCookie(h.cfg.EmailCookie, "", -1, "/", "", h.cfg.SecureCookies, false)
}
