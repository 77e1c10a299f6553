package auth

import (
	"context"
	"errors"
	"testing"

	"ChatHive/internal/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeyRepo struct {
	key    []byte
	keyErr error
	saves  int
}

func (r *fakeKeyRepo) Key(_ context.Context) ([]byte, error) {
	if r.keyErr != nil {
		return nil, r.keyErr
	}
	if r.key == nil {
		return nil, app_errors.ErrKeyNotFound
	}
	return r.key, nil
}

func (r *fakeKeyRepo) SaveKey(_ context.Context, keyBytes []byte) error {
	r.key = keyBytes
	r.saves++
	return nil
}

func TestLoadSigningKeyGeneratesOnce(t *testing.T) {
	repo := &fakeKeyRepo{}

	key, err := LoadSigningKey(context.Background(), repo)
	require.NoError(t, err)
	assert.Len(t, key, SigningKeyLength)
	assert.Equal(t, 1, repo.saves)

	// Second startup reuses the persisted key.
	again, err := LoadSigningKey(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, key, again)
	assert.Equal(t, 1, repo.saves)
}

func TestLoadSigningKeyRejectsBadLength(t *testing.T) {
	repo := &fakeKeyRepo{key: []byte("too-short")}

	_, err := LoadSigningKey(context.Background(), repo)
	assert.Error(t, err)
}

func TestLoadSigningKeyPropagatesStorageFailure(t *testing.T) {
	repo := &fakeKeyRepo{keyErr: errors.New("connection refused")}

	_, err := LoadSigningKey(context.Background(), repo)
	assert.Error(t, err)
	assert.Equal(t, 0, repo.saves)
}
