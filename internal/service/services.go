package service

import (
	"ChatHive/internal/service/auth"
	"ChatHive/internal/service/chat"
	"ChatHive/internal/service/community"
	"ChatHive/internal/service/friend"
	"ChatHive/internal/service/user"
)

type Collection struct {
	AuthService      *auth.AuthService
	ChatService      *chat.ChatService
	FriendService    *friend.FriendService
	CommunityService *community.CommunityService
	UserService      *user.UserService
}
