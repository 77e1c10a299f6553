package controllers

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/delivery/http/controllers/middleware"
	"ChatHive/internal/models"
	"ChatHive/pkg/logger"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommunityService interface {
	CreatePost(ctx context.Context, author, title, content string) (*models.Post, error)
	Post(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Posts(ctx context.Context, limit, offset int) ([]models.Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, requester *models.Identity, title, content string) error
	DeletePost(ctx context.Context, id uuid.UUID, requester *models.Identity) error
	CreateInquiry(ctx context.Context, author, title, content string) (*models.Inquiry, error)
	MyInquiries(ctx context.Context, author string) ([]models.Inquiry, error)
	AnswerInquiry(ctx context.Context, id uuid.UUID, answer string) error
}

type CommunityHandler struct {
	CommunityService CommunityService
	log              logger.Log
}

func NewCommunityHandler(l logger.Log, community CommunityService) *CommunityHandler {
	return &CommunityHandler{CommunityService: community, log: l}
}

type postInput struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (h *CommunityHandler) CreatePost(c *gin.Context) {
	ident := middleware.Identity(c)

	var input postInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.CommunityService.CreatePost(c.Request.Context(), ident.Subject, input.Title, input.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error creating post", err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *CommunityHandler) Post(c *gin.Context) {
	id, err := uuid.Parse(c.Param("post_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	post, err := h.CommunityService.Post(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, app_errors.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *CommunityHandler) Posts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	posts, err := h.CommunityService.Posts(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *CommunityHandler) UpdatePost(c *gin.Context) {
	ident := middleware.Identity(c)
	id, err := uuid.Parse(c.Param("post_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	var input postInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.CommunityService.UpdatePost(c.Request.Context(), id, ident, input.Title, input.Content); err != nil {
		h.postError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post updated"})
}

func (h *CommunityHandler) DeletePost(c *gin.Context) {
	ident := middleware.Identity(c)
	id, err := uuid.Parse(c.Param("post_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	if err := h.CommunityService.DeletePost(c.Request.Context(), id, ident); err != nil {
		h.postError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func (h *CommunityHandler) CreateInquiry(c *gin.Context) {
	ident := middleware.Identity(c)

	var input postInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inquiry, err := h.CommunityService.CreateInquiry(c.Request.Context(), ident.Subject, input.Title, input.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error creating inquiry", err)
		return
	}
	c.JSON(http.StatusCreated, inquiry)
}

func (h *CommunityHandler) MyInquiries(c *gin.Context) {
	ident := middleware.Identity(c)

	inquiries, err := h.CommunityService.MyInquiries(c.Request.Context(), ident.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inquiries": inquiries})
}

type answerInput struct {
	Answer string `json:"answer" binding:"required"`
}

func (h *CommunityHandler) AnswerInquiry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("inquiry_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inquiry id"})
		return
	}

	var input answerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.CommunityService.AnswerInquiry(c.Request.Context(), id, input.Answer); err != nil {
		if errors.Is(err, app_errors.ErrInquiryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "inquiry answered"})
}

func (h *CommunityHandler) postError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app_errors.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrNotPostAuthor):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("community request failed", err)
	}
}
