package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID
	Author    string // email
	Title     string
	Content   string
	Views     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Inquiry struct {
	ID        uuid.UUID
	Author    string // email
	Title     string
	Content   string
	Answer    string
	CreatedAt time.Time
}
