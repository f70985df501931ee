package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/store"
)

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrEmptyFullName   = errors.New("full name is required")
	ErrAvatarTooLarge  = errors.New("avatar exceeds maximum size")
	ErrInvalidImage    = errors.New("avatar must be a PNG or JPEG image")
	ErrProfileNotFound = errors.New("profile not found")
)

const maxAvatarBytes = 2 << 20 // 2 MiB

// ProfileService manages account profiles and avatars.
type ProfileService struct {
	profiles store.ProfileStore
	avatars  store.AvatarStore
}

func NewProfileService(profiles store.ProfileStore, avatars store.AvatarStore) *ProfileService {
	return &ProfileService{profiles: profiles, avatars: avatars}
}

// Get returns the user's profile.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (store.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return store.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Update overwrites the editable profile fields after validation.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, fullName, phone string) (store.Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return store.Profile{}, ErrEmptyFullName
	}

	p, err := s.Get(ctx, userID)
	if err != nil {
		return store.Profile{}, err
	}

	p.FullName = fullName
	p.Phone = strings.TrimSpace(phone)
	p.UpdatedAt = time.Now().UTC()

	if err := s.profiles.UpdateProfile(ctx, p); err != nil {
		return store.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

// UploadAvatar validates and stores the avatar image, recording its
// name on the profile.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID uuid.UUID, name string, data []byte) error {
	if len(data) > maxAvatarBytes {
		return ErrAvatarTooLarge
	}
	if !isSupportedImage(data) {
		return ErrInvalidImage
	}

	if err := s.avatars.SaveAvatar(ctx, userID, name, data); err != nil {
		return fmt.Errorf("save avatar: %w", err)
	}

	p, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	p.AvatarName = name
	p.UpdatedAt = time.Now().UTC()
	if err := s.profiles.UpdateProfile(ctx, p); err != nil {
		return fmt.Errorf("update profile avatar name: %w", err)
	}
	return nil
}

// Avatar returns the stored avatar image for a user.
func (s *ProfileService) Avatar(ctx context.Context, userID uuid.UUID) (string, []byte, error) {
	name, data, err := s.avatars.GetAvatar(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrProfileNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("get avatar: %w", err)
	}
	return name, data, nil
}

// isSupportedImage sniffs PNG and JPEG magic bytes.
func isSupportedImage(data []byte) bool {
	if len(data) >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n" {
		return true
	}
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return true
	}
	return false
}
