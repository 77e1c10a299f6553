package friend

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/models"
	"ChatHive/pkg/logger"
	"context"

	"github.com/google/uuid"
)

type FriendRepo interface {
	CreateRequest(ctx context.Context, req models.FriendRequest) (*models.FriendRequest, error)
	RequestByID(ctx context.Context, id uuid.UUID) (*models.FriendRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	AreFriends(ctx context.Context, a, b string) (bool, error)
	Friends(ctx context.Context, email string) ([]string, error)
	PendingFor(ctx context.Context, email string) ([]models.FriendRequest, error)
	CreateBlock(ctx context.Context, blocker, blocked string) error
	DeleteBlock(ctx context.Context, blocker, blocked string) error
	IsBlocked(ctx context.Context, blocker, blocked string) (bool, error)
}

type UserChecker interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type FriendService struct {
	log     logger.Log
	friends FriendRepo
	users   UserChecker
}

func NewFriendService(l logger.Log, friends FriendRepo, users UserChecker) *FriendService {
	return &FriendService{log: l, friends: friends, users: users}
}

func (s *FriendService) SendRequest(ctx context.Context, requester, addressee string) (*models.FriendRequest, error) {
	exists, err := s.users.ExistsByEmail(ctx, addressee)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, app_errors.ErrUserNotFound
	}

	blocked, err := s.friends.IsBlocked(ctx, addressee, requester)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, app_errors.ErrUserBlocked
	}

	already, err := s.friends.AreFriends(ctx, requester, addressee)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, app_errors.ErrAlreadyFriends
	}

	req := models.FriendRequest{
		Requester: requester,
		Addressee: addressee,
		Status:    models.FriendStatusPending,
	}
	return s.friends.CreateRequest(ctx, req)
}

// Respond accepts or declines a pending request; only the addressee may do so.
func (s *FriendService) Respond(ctx context.Context, id uuid.UUID, addressee string, accept bool) error {
	req, err := s.friends.RequestByID(ctx, id)
	if err != nil {
		return err
	}
	if req.Addressee != addressee || req.Status != models.FriendStatusPending {
		return app_errors.ErrFriendRequestNotFound
	}

	status := models.FriendStatusDeclined
	if accept {
		status = models.FriendStatusAccepted
	}
	return s.friends.UpdateStatus(ctx, id, status)
}

func (s *FriendService) Friends(ctx context.Context, email string) ([]string, error) {
	return s.friends.Friends(ctx, email)
}

func (s *FriendService) Pending(ctx context.Context, email string) ([]models.FriendRequest, error) {
	return s.friends.PendingFor(ctx, email)
}

func (s *FriendService) Block(ctx context.Context, blocker, blocked string) error {
	exists, err := s.users.ExistsByEmail(ctx, blocked)
	if err != nil {
		return err
	}
	if !exists {
		return app_errors.ErrUserNotFound
	}
	return s.friends.CreateBlock(ctx, blocker, blocked)
}

func (s *FriendService) Unblock(ctx context.Context, blocker, blocked string) error {
	return s.friends.DeleteBlock(ctx, blocker, blocked)
}
