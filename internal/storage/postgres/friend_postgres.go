package postgres

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/models"
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FriendPostgres struct {
	db *pgxpool.Pool
}

func NewFriendPostgres(db *pgxpool.Pool) *FriendPostgres {
	return &FriendPostgres{db: db}
}

func (r *FriendPostgres) CreateRequest(ctx context.Context, req models.FriendRequest) (*models.FriendRequest, error) {
	query := `
		INSERT INTO friend_requests (requester, addressee, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, req.Requester, req.Addressee, req.Status).
		Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if ok := (errors.As(err, &pgErr)); ok && pgErr.Code == "23505" {
			return nil, app_errors.ErrFriendRequestExists
		}
		return nil, err
	}
	return &req, nil
}

func (r *FriendPostgres) RequestByID(ctx context.Context, id uuid.UUID) (*models.FriendRequest, error) {
	query := `
		SELECT id, requester, addressee, status, created_at
		FROM friend_requests
		WHERE id = $1
	`

	var req models.FriendRequest
	err := r.db.QueryRow(ctx, query, id).
		Scan(&req.ID, &req.Requester, &req.Addressee, &req.Status, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrFriendRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *FriendPostgres) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE friend_requests SET status = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrFriendRequestNotFound
	}
	return nil
}

func (r *FriendPostgres) AreFriends(ctx context.Context, a, b string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM friend_requests
			WHERE status = 'accepted'
			AND ((requester = $1 AND addressee = $2) OR (requester = $2 AND addressee = $1))
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, a, b).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *FriendPostgres) Friends(ctx context.Context, email string) ([]string, error) {
	query := `
		SELECT CASE WHEN requester = $1 THEN addressee ELSE requester END
		FROM friend_requests
		WHERE status = 'accepted' AND (requester = $1 OR addressee = $1)
	`

	rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []string
	for rows.Next() {
		var friend string
		if err := rows.Scan(&friend); err != nil {
			return nil, err
		}
		friends = append(friends, friend)
	}
	return friends, rows.Err()
}

func (r *FriendPostgres) PendingFor(ctx context.Context, email string) ([]models.FriendRequest, error) {
	query := `
		SELECT id, requester, addressee, status, created_at
		FROM friend_requests
		WHERE addressee = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.FriendRequest
	for rows.Next() {
		var req models.FriendRequest
		if err := rows.Scan(&req.ID, &req.Requester, &req.Addressee, &req.Status, &req.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *FriendPostgres) CreateBlock(ctx context.Context, blocker, blocked string) error {
	query := `INSERT INTO blocks (blocker, blocked) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	_, err := r.db.Exec(ctx, query, blocker, blocked)
	return err
}

func (r *FriendPostgres) DeleteBlock(ctx context.Context, blocker, blocked string) error {
	query := `DELETE FROM blocks WHERE blocker = $1 AND blocked = $2`

	_, err := r.db.Exec(ctx, query, blocker, blocked)
	return err
}

func (r *FriendPostgres) IsBlocked(ctx context.Context, blocker, blocked string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM blocks WHERE blocker = $1 AND blocked = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, blocker, blocked).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
