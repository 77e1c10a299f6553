package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"
	FriendStatusDeclined = "declined"
)

type FriendRequest struct {
	ID        uuid.UUID
	Requester string // email
	Addressee string // email
	Status    string
	CreatedAt time.Time
}

type Block struct {
	Blocker   string
	Blocked   string
	CreatedAt time.Time
}
