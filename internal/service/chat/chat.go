package chat

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/models"
	"ChatHive/pkg/logger"
	"context"
	"io"

	"github.com/google/uuid"
)

type RoomRepo interface {
	CreateRoom(ctx context.Context, room models.ChatRoom) (*models.ChatRoom, error)
	RoomByID(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error)
	RoomsByMember(ctx context.Context, email string) ([]models.ChatRoom, error)
	AddMember(ctx context.Context, roomID uuid.UUID, email string) error
	RemoveMember(ctx context.Context, roomID uuid.UUID, email string) error
	IsMember(ctx context.Context, roomID uuid.UUID, email string) (bool, error)
}

type MessageRepo interface {
	CreateMessage(ctx context.Context, msg models.ChatMessage) (*models.ChatMessage, error)
	History(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]models.ChatMessage, error)
}

type FileStorage interface {
	Upload(ctx context.Context, roomID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

type BlockChecker interface {
	IsBlocked(ctx context.Context, blocker, blocked string) (bool, error)
}

type ChatService struct {
	log      logger.Log
	rooms    RoomRepo
	messages MessageRepo
	files    FileStorage
	blocks   BlockChecker
}

func NewChatService(l logger.Log, rooms RoomRepo, messages MessageRepo, files FileStorage, blocks BlockChecker) *ChatService {
	return &ChatService{
		log:      l,
		rooms:    rooms,
		messages: messages,
		files:    files,
		blocks:   blocks,
	}
}

func (s *ChatService) CreateRoom(ctx context.Context, creator, name, roomType string, members []string) (*models.ChatRoom, error) {
	if roomType != models.RoomTypePersonal {
		roomType = models.RoomTypeGroup
	}

	if roomType == models.RoomTypePersonal && len(members) == 1 {
		other := members[0]
		for _, pair := range [][2]string{{other, creator}, {creator, other}} {
			blocked, err := s.blocks.IsBlocked(ctx, pair[0], pair[1])
			if err != nil {
				return nil, err
			}
			if blocked {
				return nil, app_errors.ErrUserBlocked
			}
		}
	}

	all := append([]string{creator}, members...)
	seen := make(map[string]struct{}, len(all))
	unique := all[:0]
	for _, m := range all {
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			unique = append(unique, m)
		}
	}

	room := models.ChatRoom{
		Name:      name,
		Type:      roomType,
		CreatedBy: creator,
		Members:   unique,
	}
	return s.rooms.CreateRoom(ctx, room)
}

func (s *ChatService) Rooms(ctx context.Context, member string) ([]models.ChatRoom, error) {
	return s.rooms.RoomsByMember(ctx, member)
}

func (s *ChatService) Room(ctx context.Context, roomID uuid.UUID, requester string) (*models.ChatRoom, error) {
	room, err := s.rooms.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	member, err := s.rooms.IsMember(ctx, roomID, requester)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, app_errors.ErrNotRoomMember
	}
	return room, nil
}

func (s *ChatService) Join(ctx context.Context, roomID uuid.UUID, email string) error {
	return s.rooms.AddMember(ctx, roomID, email)
}

func (s *ChatService) Leave(ctx context.Context, roomID uuid.UUID, email string) error {
	return s.rooms.RemoveMember(ctx, roomID, email)
}

// SendMessage persists a message from a room member. The hub fan-out happens
// at the transport layer; persistence must not depend on who is connected.
func (s *ChatService) SendMessage(ctx context.Context, msg models.ChatMessage) (*models.ChatMessage, error) {
	member, err := s.rooms.IsMember(ctx, msg.RoomID, msg.Sender)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, app_errors.ErrNotRoomMember
	}
	return s.messages.CreateMessage(ctx, msg)
}

func (s *ChatService) History(ctx context.Context, roomID uuid.UUID, requester string, limit, offset int) ([]models.ChatMessage, error) {
	member, err := s.rooms.IsMember(ctx, roomID, requester)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, app_errors.ErrNotRoomMember
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.messages.History(ctx, roomID, limit, offset)
}

func (s *ChatService) UploadAttachment(ctx context.Context, roomID uuid.UUID, sender, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	member, err := s.rooms.IsMember(ctx, roomID, sender)
	if err != nil {
		return "", err
	}
	if !member {
		return "", app_errors.ErrNotRoomMember
	}
	return s.files.Upload(ctx, roomID, filename, reader, size, contentType)
}

func (s *ChatService) AttachmentURL(ctx context.Context, roomID uuid.UUID, requester, objectKey string) (string, error) {
	member, err := s.rooms.IsMember(ctx, roomID, requester)
	if err != nil {
		return "", err
	}
	if !member {
		return "", app_errors.ErrNotRoomMember
	}
	return s.files.PresignedURL(ctx, objectKey)
}
