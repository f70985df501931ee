package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/auth"
	"finanzas/internal/store"
)

// AuthService handles signup, login and logout against the profile
// store and the in-memory session manager.
type AuthService struct {
	profiles store.ProfileStore
	sessions *auth.SessionManager
}

func NewAuthService(profiles store.ProfileStore, sessions *auth.SessionManager) *AuthService {
	return &AuthService{profiles: profiles, sessions: sessions}
}

// Signup registers a new account and opens a session for it.
func (s *AuthService) Signup(ctx context.Context, email, password, fullName string) (store.Profile, auth.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return store.Profile{}, auth.Session{}, ErrInvalidEmail
	}

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return store.Profile{}, auth.Session{}, ErrEmptyFullName
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return store.Profile{}, auth.Session{}, err
	}

	now := time.Now().UTC()
	profile := store.Profile{
		UserID:       uuid.New(),
		Email:        email,
		PasswordHash: []byte(hash),
		FullName:     fullName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.profiles.CreateProfile(ctx, &profile); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return store.Profile{}, auth.Session{}, err
		}
		return store.Profile{}, auth.Session{}, fmt.Errorf("create profile: %w", err)
	}

	session := s.sessions.Create(profile.UserID)
	return profile, session, nil
}

// Login verifies credentials and opens a session. Unknown emails and
// wrong passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (store.Profile, auth.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	profile, err := s.profiles.GetProfileByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return store.Profile{}, auth.Session{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return store.Profile{}, auth.Session{}, fmt.Errorf("get profile by email: %w", err)
	}

	if err := auth.CheckPassword(string(profile.PasswordHash), password); err != nil {
		return store.Profile{}, auth.Session{}, err
	}

	session := s.sessions.Create(profile.UserID)
	return profile, session, nil
}

// Logout invalidates a session token.
func (s *AuthService) Logout(ctx context.Context, token string) {
	s.sessions.Delete(token)
}

// Authenticate resolves a session token to a user id.
func (s *AuthService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	session, err := s.sessions.Get(token)
	if err != nil {
		return uuid.Nil, err
	}
	return session.UserID, nil
}
