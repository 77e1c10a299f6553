package controllers

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/delivery/http/controllers/middleware"
	"ChatHive/internal/models"
	"ChatHive/pkg/logger"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FriendService interface {
	SendRequest(ctx context.Context, requester, addressee string) (*models.FriendRequest, error)
	Respond(ctx context.Context, id uuid.UUID, addressee string, accept bool) error
	Friends(ctx context.Context, email string) ([]string, error)
	Pending(ctx context.Context, email string) ([]models.FriendRequest, error)
	Block(ctx context.Context, blocker, blocked string) error
	Unblock(ctx context.Context, blocker, blocked string) error
}

type FriendHandler struct {
	FriendService FriendService
	log           logger.Log
}

func NewFriendHandler(l logger.Log, friends FriendService) *FriendHandler {
	return &FriendHandler{FriendService: friends, log: l}
}

type friendRequestInput struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	ident := middleware.Identity(c)

	var input friendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.FriendService.SendRequest(c.Request.Context(), ident.Subject, input.Email)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrAlreadyFriends),
			errors.Is(err, app_errors.ErrFriendRequestExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrUserBlocked):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error sending friend request", err)
		}
		return
	}
	c.JSON(http.StatusCreated, req)
}

type friendRespondInput struct {
	Accept *bool `json:"accept" binding:"required"`
}

func (h *FriendHandler) Respond(c *gin.Context) {
	ident := middleware.Identity(c)
	id, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var input friendRespondInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.FriendService.Respond(c.Request.Context(), id, ident.Subject, *input.Accept); err != nil {
		if errors.Is(err, app_errors.ErrFriendRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error responding to friend request", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "request updated"})
}

func (h *FriendHandler) Friends(c *gin.Context) {
	ident := middleware.Identity(c)

	friends, err := h.FriendService.Friends(c.Request.Context(), ident.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

func (h *FriendHandler) Pending(c *gin.Context) {
	ident := middleware.Identity(c)

	requests, err := h.FriendService.Pending(c.Request.Context(), ident.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

type blockInput struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *FriendHandler) Block(c *gin.Context) {
	ident := middleware.Identity(c)

	var input blockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.FriendService.Block(c.Request.Context(), ident.Subject, input.Email); err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "blocked"})
}

func (h *FriendHandler) Unblock(c *gin.Context) {
	ident := middleware.Identity(c)

	var input blockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.FriendService.Unblock(c.Request.Context(), ident.Subject, input.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unblocked"})
}
