package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finanzas/internal/auth"
	"finanzas/internal/store"
	"finanzas/internal/store/memory"
)

func newAuthService(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	st := memory.New()
	sessions := auth.NewSessionManager(time.Hour)
	t.Cleanup(sessions.Stop)
	return NewAuthService(st, sessions), st
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	profile, session, err := svc.Signup(ctx, "Ana@Example.com", "contraseña-segura", "Ana García")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if profile.Email != "ana@example.com" {
		t.Errorf("email = %q, want lowercased %q", profile.Email, "ana@example.com")
	}
	if session.Token == "" {
		t.Error("expected a session token from signup")
	}

	userID, err := svc.Authenticate(ctx, session.Token)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if userID != profile.UserID {
		t.Errorf("authenticated user = %v, want %v", userID, profile.UserID)
	}

	_, loginSession, err := svc.Login(ctx, "ana@example.com", "contraseña-segura")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loginSession.Token == session.Token {
		t.Error("login should issue a fresh session token")
	}
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "ana@example.com", "contraseña-segura", "Ana"); err != nil {
		t.Fatalf("first Signup failed: %v", err)
	}
	_, _, err := svc.Signup(ctx, "ANA@example.com", "otra-contraseña", "Ana B")
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Signup_Invalid(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "not-an-email", "contraseña-segura", "Ana"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if _, _, err := svc.Signup(ctx, "ana@example.com", "corta", "Ana"); !errors.Is(err, auth.ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
	if _, _, err := svc.Signup(ctx, "ana@example.com", "contraseña-segura", "  "); !errors.Is(err, ErrEmptyFullName) {
		t.Errorf("expected ErrEmptyFullName, got %v", err)
	}
}

func TestAuthService_Login_WrongCredentials(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "ana@example.com", "contraseña-segura", "Ana"); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, "ana@example.com", "incorrecta-123"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nadie@example.com", "contraseña-segura"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, session, err := svc.Signup(ctx, "ana@example.com", "contraseña-segura", "Ana")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	svc.Logout(ctx, session.Token)

	if _, err := svc.Authenticate(ctx, session.Token); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
	}
}
