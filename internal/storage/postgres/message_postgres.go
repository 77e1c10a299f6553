package postgres

import (
	"ChatHive/internal/models"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessagePostgres struct {
	db *pgxpool.Pool
}

func NewMessagePostgres(db *pgxpool.Pool) *MessagePostgres {
	return &MessagePostgres{db: db}
}

func (r *MessagePostgres) CreateMessage(ctx context.Context, msg models.ChatMessage) (*models.ChatMessage, error) {
	query := `
		INSERT INTO chat_messages (room_id, sender, content, file_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, msg.RoomID, msg.Sender, msg.Content, msg.FileKey).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return &msg, nil
}

// History returns messages for a room, newest first, paged by offset.
func (r *MessagePostgres) History(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, room_id, sender, content, file_key, created_at
		FROM chat_messages
		WHERE room_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, roomID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.Sender, &msg.Content, &msg.FileKey, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *MessagePostgres) DeleteRoomMessages(ctx context.Context, roomID uuid.UUID) error {
	query := `DELETE FROM chat_messages WHERE room_id = $1`

	_, err := r.db.Exec(ctx, query, roomID)
	return err
}
