package community

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/models"
	"ChatHive/pkg/logger"
	"context"

	"github.com/google/uuid"
)

type CommunityRepo interface {
	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)
	PostByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Posts(ctx context.Context, limit, offset int) ([]models.Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, title, content string) error
	DeletePost(ctx context.Context, id uuid.UUID) error
	CreateInquiry(ctx context.Context, inquiry models.Inquiry) (*models.Inquiry, error)
	InquiriesByAuthor(ctx context.Context, author string) ([]models.Inquiry, error)
	AnswerInquiry(ctx context.Context, id uuid.UUID, answer string) error
}

type CommunityService struct {
	log  logger.Log
	repo CommunityRepo
}

func NewCommunityService(l logger.Log, repo CommunityRepo) *CommunityService {
	return &CommunityService{log: l, repo: repo}
}

func (s *CommunityService) CreatePost(ctx context.Context, author, title, content string) (*models.Post, error) {
	post := models.Post{Author: author, Title: title, Content: content}
	return s.repo.CreatePost(ctx, post)
}

func (s *CommunityService) Post(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.repo.PostByID(ctx, id)
}

func (s *CommunityService) Posts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.Posts(ctx, limit, offset)
}

func (s *CommunityService) UpdatePost(ctx context.Context, id uuid.UUID, requester *models.Identity, title, content string) error {
	post, err := s.repo.PostByID(ctx, id)
	if err != nil {
		return err
	}
	if post.Author != requester.Subject {
		return app_errors.ErrNotPostAuthor
	}
	return s.repo.UpdatePost(ctx, id, title, content)
}

// DeletePost allows the author or an admin.
func (s *CommunityService) DeletePost(ctx context.Context, id uuid.UUID, requester *models.Identity) error {
	post, err := s.repo.PostByID(ctx, id)
	if err != nil {
		return err
	}
	if post.Author != requester.Subject && !requester.HasRole(models.RoleAdmin) {
		return app_errors.ErrNotPostAuthor
	}
	return s.repo.DeletePost(ctx, id)
}

func (s *CommunityService) CreateInquiry(ctx context.Context, author, title, content string) (*models.Inquiry, error) {
	inquiry := models.Inquiry{Author: author, Title: title, Content: content}
	return s.repo.CreateInquiry(ctx, inquiry)
}

func (s *CommunityService) MyInquiries(ctx context.Context, author string) ([]models.Inquiry, error) {
	return s.repo.InquiriesByAuthor(ctx, author)
}

func (s *CommunityService) AnswerInquiry(ctx context.Context, id uuid.UUID, answer string) error {
	return s.repo.AnswerInquiry(ctx, id, answer)
}
