package minio_storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// AvatarStorage keeps one profile image per user, keyed by email. Re-uploading
// overwrites the previous avatar in place.
type AvatarStorage struct {
	storage      *MinioStorage
	bucket       string
	presignedTTL time.Duration
}

func NewAvatarStorage(storage *MinioStorage, bucketName string, presignedTTL time.Duration) (*AvatarStorage, error) {
	exists, err := storage.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err = storage.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &AvatarStorage{storage: storage, bucket: bucketName, presignedTTL: presignedTTL}, nil
}

func avatarKey(email, filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".png"
	}
	// Email is the stable subject identifier; '@' is object-key safe but kept
	// out of the path segment for readability.
	return fmt.Sprintf("avatars/%s%s", strings.ReplaceAll(email, "@", "_at_"), ext)
}

func (s *AvatarStorage) Upload(
	ctx context.Context,
	email string,
	filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (objectKey string, err error) {
	objectKey = avatarKey(email, filename)

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(objectKey))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	_, err = s.storage.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		reader,
		size,
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return objectKey, nil
}

func (s *AvatarStorage) PresignedURL(ctx context.Context, objectKey string) (string, error) {
	reqParams := make(url.Values)
	u, err := s.storage.client.PresignedGetObject(ctx, s.bucket, objectKey, s.presignedTTL, reqParams)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", objectKey, err)
	}
	return u.String(), nil
}

func (s *AvatarStorage) Delete(ctx context.Context, objectKey string) error {
	return s.storage.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}
