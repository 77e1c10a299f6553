package auth

import (
	"ChatHive/internal/app_errors"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
)

// SigningKeyLength is the HMAC-SHA256 key size in bytes.
const SigningKeyLength = 32

type KeyRepo interface {
	Key(ctx context.Context) ([]byte, error)
	SaveKey(ctx context.Context, keyBytes []byte) error
}

// LoadSigningKey returns the process signing key, generating and persisting it
// on the very first startup. A storage failure here is fatal for the caller:
// without the key no token can be verified.
func LoadSigningKey(ctx context.Context, repo KeyRepo) ([]byte, error) {
	key, err := repo.Key(ctx)
	if err == nil {
		if len(key) != SigningKeyLength {
			return nil, fmt.Errorf("stored signing key has length %d, want %d", len(key), SigningKeyLength)
		}
		return key, nil
	}
	if !errors.Is(err, app_errors.ErrKeyNotFound) {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	key = make([]byte, SigningKeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	if err := repo.SaveKey(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to persist signing key: %w", err)
	}
	return key, nil
}
