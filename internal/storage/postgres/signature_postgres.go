package postgres

import (
	"ChatHive/internal/app_errors"
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SignaturePostgres persists the raw bytes of the token signing key. The row is
// written once at first startup and only ever read afterwards.
type SignaturePostgres struct {
	db *pgxpool.Pool
}

func NewSignaturePostgres(db *pgxpool.Pool) *SignaturePostgres {
	return &SignaturePostgres{db: db}
}

func (r *SignaturePostgres) Key(ctx context.Context) ([]byte, error) {
	query := `SELECT key_bytes FROM signatures ORDER BY id LIMIT 1`

	var keyBytes []byte
	err := r.db.QueryRow(ctx, query).Scan(&keyBytes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrKeyNotFound
		}
		return nil, err
	}
	return keyBytes, nil
}

func (r *SignaturePostgres) SaveKey(ctx context.Context, keyBytes []byte) error {
	query := `INSERT INTO signatures (key_bytes) VALUES ($1)`

	_, err := r.db.Exec(ctx, query, keyBytes)
	return err
}
