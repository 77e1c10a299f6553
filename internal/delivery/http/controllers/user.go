package controllers

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/delivery/http/controllers/middleware"
	"ChatHive/internal/models"
	"ChatHive/pkg/logger"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type UserService interface {
	Search(ctx context.Context, query string, size int) ([]string, error)
	Profile(ctx context.Context, email string) (*models.User, error)
	UpdateNickname(ctx context.Context, email, nickname string) error
	UploadAvatar(ctx context.Context, email, filename string, reader io.Reader, size int64, contentType string) (string, error)
	AvatarURL(ctx context.Context, email string) (string, error)
}

type UserHandler struct {
	UserService UserService
	log         logger.Log
}

func NewUserHandler(l logger.Log, users UserService) *UserHandler {
	return &UserHandler{UserService: users, log: l}
}

func (h *UserHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	emails, err := h.UserService.Search(c.Request.Context(), query, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("user search failed", err, "query", query)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": emails})
}

func (h *UserHandler) Profile(c *gin.Context) {
	email := c.Param("email")

	user, err := h.UserService.Profile(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":    user.Email,
		"nickname": user.Nickname,
	})
}

type nicknameInput struct {
	Nickname string `json:"nickname" binding:"required"`
}

func (h *UserHandler) UpdateNickname(c *gin.Context) {
	ident := middleware.Identity(c)

	var input nicknameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.UserService.UpdateNickname(c.Request.Context(), ident.Subject, input.Nickname); err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "nickname updated"})
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	ident := middleware.Identity(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	key, err := h.UserService.UploadAvatar(
		c.Request.Context(),
		ident.Subject,
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("avatar upload failed", err, "email", ident.Subject)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar_key": key})
}

func (h *UserHandler) Avatar(c *gin.Context) {
	email := c.Param("email")

	url, err := h.UserService.AvatarURL(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if url == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no avatar"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
