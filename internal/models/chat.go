package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoomTypeGroup    = "group"
	RoomTypePersonal = "personal"
)

type ChatRoom struct {
	ID        uuid.UUID
	Name      string
	Type      string
	CreatedBy string // creator email
	CreatedAt time.Time
	Members   []string
}

type ChatMessage struct {
	ID        uuid.UUID
	RoomID    uuid.UUID
	Sender    string // sender email
	Content   string
	FileKey   string // optional attachment object key
	CreatedAt time.Time
}
