package postgres

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/models"
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommunityPostgres struct {
	db *pgxpool.Pool
}

func NewCommunityPostgres(db *pgxpool.Pool) *CommunityPostgres {
	return &CommunityPostgres{db: db}
}

func (r *CommunityPostgres) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (author, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, views, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, post.Author, post.Title, post.Content).
		Scan(&post.ID, &post.Views, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *CommunityPostgres) PostByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	query := `
		UPDATE posts SET views = views + 1
		WHERE id = $1
		RETURNING id, author, title, content, views, created_at, updated_at
	`

	var post models.Post
	err := r.db.QueryRow(ctx, query, id).
		Scan(&post.ID, &post.Author, &post.Title, &post.Content, &post.Views, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *CommunityPostgres) Posts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	query := `
		SELECT id, author, title, content, views, created_at, updated_at
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Author, &post.Title, &post.Content, &post.Views, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *CommunityPostgres) UpdatePost(ctx context.Context, id uuid.UUID, title, content string) error {
	query := `UPDATE posts SET title = $2, content = $3, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, title, content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrPostNotFound
	}
	return nil
}

func (r *CommunityPostgres) DeletePost(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM posts WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrPostNotFound
	}
	return nil
}

func (r *CommunityPostgres) CreateInquiry(ctx context.Context, inquiry models.Inquiry) (*models.Inquiry, error) {
	query := `
		INSERT INTO inquiries (author, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, inquiry.Author, inquiry.Title, inquiry.Content).
		Scan(&inquiry.ID, &inquiry.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (r *CommunityPostgres) InquiriesByAuthor(ctx context.Context, author string) ([]models.Inquiry, error) {
	query := `
		SELECT id, author, title, content, COALESCE(answer, ''), created_at
		FROM inquiries
		WHERE author = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, author)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inquiries []models.Inquiry
	for rows.Next() {
		var inquiry models.Inquiry
		if err := rows.Scan(&inquiry.ID, &inquiry.Author, &inquiry.Title, &inquiry.Content, &inquiry.Answer, &inquiry.CreatedAt); err != nil {
			return nil, err
		}
		inquiries = append(inquiries, inquiry)
	}
	return inquiries, rows.Err()
}

func (r *CommunityPostgres) AnswerInquiry(ctx context.Context, id uuid.UUID, answer string) error {
	query := `UPDATE inquiries SET answer = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, answer)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrInquiryNotFound
	}
	return nil
}
