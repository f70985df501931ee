package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/store"
)

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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		p.UserID.String(), p.Email, p.PasswordHash, p.FullName, p.Phone, p.AvatarName,
		p.CreatedAt.Format(timeLayout), p.UpdatedAt.Format(timeLayout))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
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
		WHERE user_id = ?`
	return r.scanProfile(r.db.QueryRowContext(ctx, q, userID.String()))
}

func (r *Repository) GetProfileByEmail(ctx context.Context, email string) (store.Profile, error) {
	const q = `
		SELECT user_id, email, password_hash, full_name, phone, avatar_name, created_at, updated_at
		FROM profiles
		WHERE email = ?`
	return r.scanProfile(r.db.QueryRowContext(ctx, q, email))
}

func (r *Repository) scanProfile(row *sql.Row) (store.Profile, error) {
	var (
		p                    store.Profile
		id, created, updated string
	)
	err := row.Scan(&id, &p.Email, &p.PasswordHash, &p.FullName, &p.Phone, &p.AvatarName, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Profile{}, store.ErrNotFound
	}
	if err != nil {
		return store.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	if p.UserID, err = uuid.Parse(id); err != nil {
		return store.Profile{}, fmt.Errorf("parse user id %q: %w", id, err)
	}
	if p.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return store.Profile{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	if p.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return store.Profile{}, fmt.Errorf("parse updated_at %q: %w", updated, err)
	}
	return p, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, p store.Profile) error {
	const q = `
		UPDATE profiles
		SET full_name = ?, phone = ?, avatar_name = ?, updated_at = ?
		WHERE user_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		p.FullName, p.Phone, p.AvatarName, time.Now().UTC().Format(timeLayout), p.UserID.String())
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) SaveAvatar(ctx context.Context, userID uuid.UUID, name string, data []byte) error {
	const q = `
		INSERT INTO avatars (user_id, name, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, q, userID.String(), name, data, time.Now().UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("save avatar: %w", err)
	}
	return nil
}

func (r *Repository) GetAvatar(ctx context.Context, userID uuid.UUID) (string, []byte, error) {
	var (
		name string
		data []byte
	)
	err := r.db.QueryRowContext(ctx, `SELECT name, data FROM avatars WHERE user_id = ?`, userID.String()).Scan(&name, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, store.ErrNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("get avatar: %w", err)
	}
	return name, data, nil
}

func (r *Repository) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM avatars WHERE user_id = ?`, userID.String()); err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	return nil
}
