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
	"github.com/google/uuid"
)

type ChatService interface {
	CreateRoom(ctx context.Context, creator, name, roomType string, members []string) (*models.ChatRoom, error)
	Rooms(ctx context.Context, member string) ([]models.ChatRoom, error)
	Room(ctx context.Context, roomID uuid.UUID, requester string) (*models.ChatRoom, error)
	Join(ctx context.Context, roomID uuid.UUID, email string) error
	Leave(ctx context.Context, roomID uuid.UUID, email string) error
	History(ctx context.Context, roomID uuid.UUID, requester string, limit, offset int) ([]models.ChatMessage, error)
	UploadAttachment(ctx context.Context, roomID uuid.UUID, sender, filename string, reader io.Reader, size int64, contentType string) (string, error)
	AttachmentURL(ctx context.Context, roomID uuid.UUID, requester, objectKey string) (string, error)
}

type RoomHandler struct {
	ChatService ChatService
	log         logger.Log
}

func NewRoomHandler(l logger.Log, chat ChatService) *RoomHandler {
	return &RoomHandler{ChatService: chat, log: l}
}

type newRoomRequest struct {
	Name    string   `json:"name" binding:"required"`
	Type    string   `json:"type"`
	Members []string `json:"members"`
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	ident := middleware.Identity(c)

	var input newRoomRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.ChatService.CreateRoom(c.Request.Context(), ident.Subject, input.Name, input.Type, input.Members)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserBlocked) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error creating room", err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *RoomHandler) MyRooms(c *gin.Context) {
	ident := middleware.Identity(c)

	rooms, err := h.ChatService.Rooms(c.Request.Context(), ident.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *RoomHandler) Room(c *gin.Context) {
	ident := middleware.Identity(c)
	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	room, err := h.ChatService.Room(c.Request.Context(), roomID, ident.Subject)
	if err != nil {
		h.roomError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) Join(c *gin.Context) {
	ident := middleware.Identity(c)
	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	if err := h.ChatService.Join(c.Request.Context(), roomID, ident.Subject); err != nil {
		if errors.Is(err, app_errors.ErrAlreadyRoomMember) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.roomError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "joined"})
}

func (h *RoomHandler) Leave(c *gin.Context) {
	ident := middleware.Identity(c)
	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	if err := h.ChatService.Leave(c.Request.Context(), roomID, ident.Subject); err != nil {
		h.roomError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left"})
}

func (h *RoomHandler) History(c *gin.Context) {
	ident := middleware.Identity(c)
	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, err := h.ChatService.History(c.Request.Context(), roomID, ident.Subject, limit, offset)
	if err != nil {
		h.roomError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *RoomHandler) UploadAttachment(c *gin.Context) {
	ident := middleware.Identity(c)
	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	key, err := h.ChatService.UploadAttachment(
		c.Request.Context(), roomID, ident.Subject,
		header.Filename, file, header.Size, header.Header.Get("Content-Type"),
	)
	if err != nil {
		h.roomError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"file_key": key})
}

func (h *RoomHandler) AttachmentURL(c *gin.Context) {
	ident := middleware.Identity(c)
	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	url, err := h.ChatService.AttachmentURL(c.Request.Context(), roomID, ident.Subject, key)
	if err != nil {
		h.roomError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *RoomHandler) roomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app_errors.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrNotRoomMember):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("room request failed", err)
	}
}
