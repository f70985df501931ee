package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

func (r *Repository) CreateTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO transactions (id, owner_id, amount, kind, category, description, tx_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, q,
		tx.ID, tx.OwnerID, tx.Amount.String(), string(tx.Kind),
		tx.Category, tx.Description, tx.Date.Time, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *Repository) FetchTransactions(ctx context.Context, ownerID uuid.UUID, f store.TransactionFilter) ([]core.Transaction, error) {
	// Half-open window: tx_date >= from AND tx_date < to.
	const q = `
		SELECT id, owner_id, amount::text, kind, category, description, tx_date, created_at
		FROM transactions
		WHERE owner_id = $1
		  AND ($2::timestamptz IS NULL OR tx_date >= $2)
		  AND ($3::timestamptz IS NULL OR tx_date < $3)
		  AND ($4::text IS NULL OR kind = $4)
		ORDER BY tx_date, created_at`

	var from, to *time.Time
	if !f.From.IsZero() {
		from = &f.From
	}
	if !f.To.IsZero() {
		to = &f.To
	}
	var kind *string
	if f.Kind != "" {
		k := string(f.Kind)
		kind = &k
	}

	rows, err := r.pool.Query(ctx, q, ownerID, from, to, kind)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx     core.Transaction
			amount string
			kind   string
			date   time.Time
		)
		if err := rows.Scan(&tx.ID, &tx.OwnerID, &amount, &kind, &tx.Category,
			&tx.Description, &date, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		tx.Kind = core.Kind(kind)
		tx.Date = core.Date{Time: date.UTC()}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) FetchAllTransactions(ctx context.Context, ownerID uuid.UUID) ([]core.Transaction, error) {
	return r.FetchTransactions(ctx, ownerID, store.TransactionFilter{})
}

func (r *Repository) FetchRecentTransactions(ctx context.Context, ownerID uuid.UUID, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
		SELECT id, owner_id, amount::text, kind, category, description, tx_date, created_at
		FROM transactions
		WHERE owner_id = $1
		ORDER BY tx_date DESC, created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, q, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx     core.Transaction
			amount string
			kind   string
			date   time.Time
		)
		if err := rows.Scan(&tx.ID, &tx.OwnerID, &amount, &kind, &tx.Category,
			&tx.Description, &date, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		tx.Kind = core.Kind(kind)
		tx.Date = core.Date{Time: date.UTC()}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
