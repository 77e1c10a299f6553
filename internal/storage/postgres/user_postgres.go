package postgres

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/models"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserPostgres struct {
	db *pgxpool.Pool
}

func NewUserPostgres(db *pgxpool.Pool) *UserPostgres {
	return &UserPostgres{db: db}
}

func (r *UserPostgres) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password, nickname, role, COALESCE(avatar_key, ''), created_at
		FROM users
		WHERE email = $1
	`

	row := r.db.QueryRow(ctx, query, email)
	var user models.User

	err := row.Scan(&user.ID, &user.Email, &user.Password, &user.Nickname, &user.Role, &user.AvatarKey, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserPostgres) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserPostgres) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, password, nickname, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, user.Email, user.Password, user.Nickname, user.Role).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if ok := (errors.As(err, &pgErr)); ok && pgErr.Code == "23505" {
			return nil, app_errors.ErrUserExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &user, nil
}

func (r *UserPostgres) UpdatePassword(ctx context.Context, email, hashedPassword string) error {
	query := `UPDATE users SET password = $2 WHERE email = $1`

	tag, err := r.db.Exec(ctx, query, email, hashedPassword)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrUserNotFound
	}
	return nil
}

func (r *UserPostgres) UpdateNickname(ctx context.Context, email, nickname string) error {
	query := `UPDATE users SET nickname = $2 WHERE email = $1`

	tag, err := r.db.Exec(ctx, query, email, nickname)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrUserNotFound
	}
	return nil
}

func (r *UserPostgres) UpdateAvatarKey(ctx context.Context, email, avatarKey string) error {
	query := `UPDATE users SET avatar_key = $2 WHERE email = $1`

	tag, err := r.db.Exec(ctx, query, email, avatarKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrUserNotFound
	}
	return nil
}

func (r *UserPostgres) DeleteUser(ctx context.Context, email string) error {
	query := `DELETE FROM users WHERE email = $1`

	tag, err := r.db.Exec(ctx, query, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrUserNotFound
	}
	return nil
}
