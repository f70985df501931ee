package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"finanzas/internal/store"
)

// uniqueViolation is the Postgres error code for unique constraint breaks.
const uniqueViolation = "23505"

func (r *Repository) CreateProfile(ctx context.Context, p *store.Profile) error {
	if p.UserID == uuid.Nil {
		p.UserID = uuid.New()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	const q = `
		INSERT INTO profiles (user_id, email, password_hash, full_name, phone, avatar_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, q,
		p.UserID, p.Email, p.PasswordHash, p.FullName, p.Phone, p.AvatarName, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrDuplicateEmail
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *Repository) GetProfile(ctx context.Context, userID uuid.UUID) (store.Profile, error) {
	const q = `
		SELECT user_id, email, password_hash, full_name, phone, avatar_name, created_at, updated_at
		FROM profiles
		WHERE user_id = $1`
	return r.scanProfile(r.pool.QueryRow(ctx, q, userID))
}

func (r *Repository) GetProfileByEmail(ctx context.Context, email string) (store.Profile, error) {
	const q = `
		SELECT user_id, email, password_hash, full_name, phone, avatar_name, created_at, updated_at
		FROM profiles
		WHERE lower(email) = lower($1)`
	return r.scanProfile(r.pool.QueryRow(ctx, q, email))
}

func (r *Repository) scanProfile(row pgx.Row) (store.Profile, error) {
	var p store.Profile
	err := row.Scan(&p.UserID, &p.Email, &p.PasswordHash, &p.FullName,
		&p.Phone, &p.AvatarName, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Profile{}, store.ErrNotFound
	}
	if err != nil {
		return store.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, p store.Profile) error {
	const q = `
		UPDATE profiles
		SET full_name = $2, phone = $3, avatar_name = $4, updated_at = $5
		WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, q, p.UserID, p.FullName, p.Phone, p.AvatarName, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) SaveAvatar(ctx context.Context, userID uuid.UUID, name string, data []byte) error {
	const q = `
		INSERT INTO avatars (user_id, name, data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET name = $2, data = $3, updated_at = $4`
	if _, err := r.pool.Exec(ctx, q, userID, name, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("save avatar: %w", err)
	}
	return nil
}

func (r *Repository) GetAvatar(ctx context.Context, userID uuid.UUID) (string, []byte, error) {
	const q = `SELECT name, data FROM avatars WHERE user_id = $1`
	var (
		name string
		data []byte
	)
	err := r.pool.QueryRow(ctx, q, userID).Scan(&name, &data)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil, store.ErrNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("get avatar: %w", err)
	}
	return name, data, nil
}

func (r *Repository) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM avatars WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	return nil
}
