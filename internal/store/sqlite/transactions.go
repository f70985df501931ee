package sqlite

import (
	"context"
	"database/sql"
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		tx.ID.String(), tx.OwnerID.String(), tx.Amount.String(), string(tx.Kind),
		tx.Category, tx.Description, tx.Date.Format(dateLayout), tx.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *Repository) FetchTransactions(ctx context.Context, ownerID uuid.UUID, f store.TransactionFilter) ([]core.Transaction, error) {
	q := `
		SELECT id, owner_id, amount, kind, category, description, tx_date, created_at
		FROM transactions
		WHERE owner_id = ?`
	args := []any{ownerID.String()}

	// Half-open window: tx_date >= from AND tx_date < to.
	if !f.From.IsZero() {
		q += ` AND tx_date >= ?`
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		q += ` AND tx_date < ?`
		args = append(args, f.To.Format(dateLayout))
	}
	if f.Kind != "" {
		q += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}
	q += ` ORDER BY tx_date, created_at`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (r *Repository) FetchAllTransactions(ctx context.Context, ownerID uuid.UUID) ([]core.Transaction, error) {
	return r.FetchTransactions(ctx, ownerID, store.TransactionFilter{})
}

func (r *Repository) FetchRecentTransactions(ctx context.Context, ownerID uuid.UUID, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
		SELECT id, owner_id, amount, kind, category, description, tx_date, created_at
		FROM transactions
		WHERE owner_id = ?
		ORDER BY tx_date DESC, created_at DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, q, ownerID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("query recent transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var (
			tx                      core.Transaction
			id, owner, amount, kind string
			txDate, createdAt       string
		)
		if err := rows.Scan(&id, &owner, &amount, &kind, &tx.Category,
			&tx.Description, &txDate, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		var err error
		if tx.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse id %q: %w", id, err)
		}
		if tx.OwnerID, err = uuid.Parse(owner); err != nil {
			return nil, fmt.Errorf("parse owner id %q: %w", owner, err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		tx.Kind = core.Kind(kind)
		if tx.Date, err = core.ParseDate(txDate); err != nil {
			return nil, err
		}
		if tx.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
