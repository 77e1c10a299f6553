package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser    = "ROLE_USER"
	RoleManager = "ROLE_MANAGER"
	RoleAdmin   = "ROLE_ADMIN"
)

type User struct {
	ID        uuid.UUID
	Email     string
	Password  string
	Nickname  string
	Role      string // comma-joined role names, e.g. "ROLE_USER,ROLE_ADMIN"
	AvatarKey string // object key of the profile image, "" when unset
	CreatedAt time.Time
}

func (u *User) Roles() []string {
	return SplitRoles(u.Role)
}

// Identity is the authenticated principal threaded through request handling.
type Identity struct {
	Subject string
	Roles   []string
}

func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func JoinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func SplitRoles(auth string) []string {
	if auth == "" {
		return nil
	}
	parts := strings.Split(auth, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roles = append(roles, p)
		}
	}
	return roles
}
