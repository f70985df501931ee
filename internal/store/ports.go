// Package store defines the ports the application requires from its
// persistence backend. Implementations live in the postgres, sqlite
// and memory subpackages and are selected by the backend factory.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/core"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// TransactionFilter narrows a transaction fetch. Zero values mean
// unbounded: no date floor, no date ceiling, any kind. From is
// inclusive and To is exclusive, matching the month-window rule.
type TransactionFilter struct {
	From time.Time
	To   time.Time
	Kind core.Kind
}

// Profile is the user-facing account record: credentials for the web
// UI plus the editable profile fields and avatar reference.
type Profile struct {
	UserID       uuid.UUID
	Email        string
	PasswordHash []byte
	FullName     string
	Phone        string
	AvatarName   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Ports for outbound adapters.
type (
	TransactionStore interface {
		// CreateTransaction persists a new transaction.
		CreateTransaction(ctx context.Context, tx core.Transaction) error

		// FetchTransactions returns the owner's transactions matching
		// the filter, ordered by date then creation time.
		FetchTransactions(ctx context.Context, ownerID uuid.UUID, f TransactionFilter) ([]core.Transaction, error)

		// FetchAllTransactions returns every transaction the owner ever
		// recorded, without a date filter.
		FetchAllTransactions(ctx context.Context, ownerID uuid.UUID) ([]core.Transaction, error)

		// FetchRecentTransactions returns at most limit transactions,
		// most recent by date first.
		FetchRecentTransactions(ctx context.Context, ownerID uuid.UUID, limit int) ([]core.Transaction, error)
	}

	ProfileStore interface {
		// CreateProfile inserts a new profile. Returns
		// ErrDuplicateEmail when the email is taken.
		CreateProfile(ctx context.Context, p *Profile) error

		// GetProfile returns the profile for a user id, or ErrNotFound.
		GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error)

		// GetProfileByEmail returns the profile for an email, or ErrNotFound.
		GetProfileByEmail(ctx context.Context, email string) (Profile, error)

		// UpdateProfile overwrites the editable fields of an existing profile.
		UpdateProfile(ctx context.Context, p Profile) error
	}

	AvatarStore interface {
		// SaveAvatar stores the avatar bytes for a user, replacing any
		// previous one.
		SaveAvatar(ctx context.Context, userID uuid.UUID, name string, data []byte) error

		// GetAvatar returns the stored avatar, or ErrNotFound.
		GetAvatar(ctx context.Context, userID uuid.UUID) (name string, data []byte, err error)

		// DeleteAvatar removes the user's avatar if present.
		DeleteAvatar(ctx context.Context, userID uuid.UUID) error
	}
)

// Store is the full backend contract assembled from the ports.
type Store interface {
	TransactionStore
	ProfileStore
	AvatarStore

	Close() error
}
