package postgres

import (
	"ChatHive/internal/app_errors"
	"ChatHive/internal/models"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomPostgres struct {
	db *pgxpool.Pool
}

func NewRoomPostgres(db *pgxpool.Pool) *RoomPostgres {
	return &RoomPostgres{db: db}
}

func (r *RoomPostgres) CreateRoom(ctx context.Context, room models.ChatRoom) (*models.ChatRoom, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	queryRoom := `
		INSERT INTO chat_rooms (name, type, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, queryRoom, room.Name, room.Type, room.CreatedBy).
		Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert room: %w", err)
	}

	queryMember := `INSERT INTO room_members (room_id, email) VALUES ($1, $2)`
	for _, member := range room.Members {
		if _, err = tx.Exec(ctx, queryMember, room.ID, member); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &room, nil
}

func (r *RoomPostgres) RoomByID(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	query := `
		SELECT r.id, r.name, r.type, r.created_by, r.created_at, array_agg(m.email)
		FROM chat_rooms r
		LEFT JOIN room_members m ON r.id = m.room_id
		WHERE r.id = $1
		GROUP BY r.id
	`

	row := r.db.QueryRow(ctx, query, id)
	var room models.ChatRoom
	var members []string

	err := row.Scan(&room.ID, &room.Name, &room.Type, &room.CreatedBy, &room.CreatedAt, &members)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrRoomNotFound
		}
		return nil, err
	}

	room.Members = members
	return &room, nil
}

func (r *RoomPostgres) RoomsByMember(ctx context.Context, email string) ([]models.ChatRoom, error) {
	query := `
		SELECT r.id, r.name, r.type, r.created_by, r.created_at
		FROM chat_rooms r
		JOIN room_members m ON r.id = m.room_id
		WHERE m.email = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.ChatRoom
	for rows.Next() {
		var room models.ChatRoom
		if err := rows.Scan(&room.ID, &room.Name, &room.Type, &room.CreatedBy, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *RoomPostgres) AddMember(ctx context.Context, roomID uuid.UUID, email string) error {
	query := `INSERT INTO room_members (room_id, email) VALUES ($1, $2)`

	_, err := r.db.Exec(ctx, query, roomID, email)
	if err != nil {
		var pgErr *pgconn.PgError
		if ok := (errors.As(err, &pgErr)); ok {
			switch pgErr.Code {
			case "23505":
				return app_errors.ErrAlreadyRoomMember
			case "23503":
				return app_errors.ErrRoomNotFound
			}
		}
		return err
	}
	return nil
}

func (r *RoomPostgres) RemoveMember(ctx context.Context, roomID uuid.UUID, email string) error {
	query := `DELETE FROM room_members WHERE room_id = $1 AND email = $2`

	tag, err := r.db.Exec(ctx, query, roomID, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrNotRoomMember
	}
	return nil
}

func (r *RoomPostgres) IsMember(ctx context.Context, roomID uuid.UUID, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM room_members WHERE room_id = $1 AND email = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, roomID, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
