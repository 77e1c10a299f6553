package user

import (
	"ChatHive/internal/models"
	"ChatHive/pkg/logger"
	"context"
	"io"
)

type SearchRepo interface {
	Search(ctx context.Context, query string, size int) ([]string, error)
}

type ProfileRepo interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateNickname(ctx context.Context, email, nickname string) error
	UpdateAvatarKey(ctx context.Context, email, avatarKey string) error
}

type AvatarStore interface {
	Upload(ctx context.Context, email, filename string, reader io.Reader, size int64, contentType string) (string, error)
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

type UserService struct {
	log      logger.Log
	search   SearchRepo
	profiles ProfileRepo
	avatars  AvatarStore
}

func NewUserService(l logger.Log, search SearchRepo, profiles ProfileRepo, avatars AvatarStore) *UserService {
	return &UserService{log: l, search: search, profiles: profiles, avatars: avatars}
}

// Search returns user emails matching a prefix query against email/nickname.
func (s *UserService) Search(ctx context.Context, query string, size int) ([]string, error) {
	return s.search.Search(ctx, query, size)
}

func (s *UserService) Profile(ctx context.Context, email string) (*models.User, error) {
	u, err := s.profiles.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	u.Password = ""
	return u, nil
}

func (s *UserService) UpdateNickname(ctx context.Context, email, nickname string) error {
	return s.profiles.UpdateNickname(ctx, email, nickname)
}

func (s *UserService) UploadAvatar(ctx context.Context, email, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	key, err := s.avatars.Upload(ctx, email, filename, reader, size, contentType)
	if err != nil {
		return "", err
	}
	if err := s.profiles.UpdateAvatarKey(ctx, email, key); err != nil {
		return "", err
	}
	return key, nil
}

// AvatarURL resolves a short-lived download URL for a user's avatar; "" when
// the user has none.
func (s *UserService) AvatarURL(ctx context.Context, email string) (string, error) {
	u, err := s.profiles.UserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if u.AvatarKey == "" {
		return "", nil
	}
	return s.avatars.PresignedURL(ctx, u.AvatarKey)
}
