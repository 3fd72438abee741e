package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/pkg/avatar"
	"fundocs-be/pkg/storage"

	"github.com/google/uuid"
)

type AvatarService struct {
	storage   storage.Storage
	generator *avatar.Generator
	logger    logger.ILogger
}

func NewAvatarService(store storage.Storage, generator *avatar.Generator, log logger.ILogger) *AvatarService {
	return &AvatarService{storage: store, generator: generator, logger: log}
}

// CheckUpload rejects non-images and files over the upload limit.
func CheckUpload(data []byte, contentType string) error {
	if !avatar.IsImageType(contentType) {
		return serverutils.NewBadRequest("avatar must be an image")
	}
	if len(data) > avatar.MaxUploadBytes {
		return serverutils.NewBadRequest("avatar must be 2MB or smaller")
	}
	return nil
}

func avatarKey(userID uuid.UUID) string {
	return fmt.Sprintf("avatars/%s-%d.png", userID, time.Now().UnixNano())
}

// Upload normalizes an uploaded image and stores it.
func (s *AvatarService) Upload(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (url, key string, err error) {
	if err := CheckUpload(data, contentType); err != nil {
		return "", "", err
	}
	png, err := avatar.Normalize(data)
	if err != nil {
		return "", "", serverutils.NewBadRequest("avatar could not be decoded")
	}
	return s.put(ctx, userID, png)
}

// Generate stores an initials avatar for name.
func (s *AvatarService) Generate(ctx context.Context, userID uuid.UUID, name string) (url, key string, err error) {
	png, err := s.generator.Initials(name, userID.String())
	if err != nil {
		return "", "", err
	}
	return s.put(ctx, userID, png)
}

func (s *AvatarService) put(ctx context.Context, userID uuid.UUID, png []byte) (string, string, error) {
	key := avatarKey(userID)
	if err := s.storage.Put(ctx, key, bytes.NewReader(png), "image/png"); err != nil {
		return "", "", fmt.Errorf("failed to store avatar: %w", err)
	}
	return s.storage.URL(key), key, nil
}

// Remove deletes a stored avatar; failures are only logged.
func (s *AvatarService) Remove(ctx context.Context, key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := s.storage.Delete(ctx, *key); err != nil {
		s.logger.Warn("AvatarService", "Failed to delete avatar object", map[string]interface{}{
			"key":   *key,
			"error": err.Error(),
		})
	}
}
