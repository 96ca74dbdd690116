package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"
	"fitmeal/platform/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const profileImagePrefix = "profile-images"

// UserService covers account lookups and profile images.
type UserService interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context, role domain.Role) ([]domain.User, error)
	// UploadProfileImage stores the image and returns a presigned URL to it.
	// The content type is sniffed from the bytes; the declared one is ignored.
	UploadProfileImage(ctx context.Context, userID primitive.ObjectID, body io.Reader) (string, error)
	// ProfileImageURL returns "" when the user has no image.
	ProfileImageURL(ctx context.Context, u *domain.User) (string, error)
}

type userService struct {
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
	log         *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, fileStorage storage.FileStorage, log *zap.Logger) UserService {
	return &userService{userRepo: userRepo, fileStorage: fileStorage, log: log}
}

func (s *userService) Get(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return u, nil
}

func (s *userService) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if role != "" && !role.Valid() {
		return nil, invalidf("unknown role %q", role)
	}
	return s.userRepo.ListByRole(ctx, role)
}

func (s *userService) UploadProfileImage(ctx context.Context, userID primitive.ObjectID, body io.Reader) (string, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(body, domain.MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	detected := mimetype.Detect(data).String()
	if err := domain.ValidateImage(detected, int64(len(data))); err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	ext, _ := domain.ImageExtension(detected)

	key := fmt.Sprintf("%s/%s/%s.%s", profileImagePrefix, userID.Hex(), uuid.NewString(), ext)
	if err := s.fileStorage.PutObject(ctx, key, detected, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("store profile image: %w", err)
	}
	if err := s.userRepo.SetProfileImageKey(ctx, userID, key); err != nil {
		return "", err
	}

	if old := user.ProfileImageKey; old != "" && old != key {
		if err := s.fileStorage.DeleteObject(ctx, old); err != nil {
			s.log.Warn("failed to delete previous profile image", zap.String("key", old), zap.Error(err))
		}
	}

	return s.fileStorage.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
}

func (s *userService) ProfileImageURL(ctx context.Context, u *domain.User) (string, error) {
	if u.ProfileImageKey == "" {
		return "", nil
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, u.ProfileImageKey, storage.DefaultPresignedURLExpiry)
}
