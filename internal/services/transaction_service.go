package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/store"
)

// TransactionService orchestrates transaction writes across the
// store and AMQP.
type TransactionService struct {
	store      store.TransactionStore
	amqpClient *amqp.Client
}

func NewTransactionService(store store.TransactionStore, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// Create validates and persists a transaction, then publishes a
// created event. Publish failures are logged, not returned: the
// transaction is already saved.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishCreated(ctx, tx); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction created message",
			"transaction_id", tx.ID, "error", err)
	}

	return tx, nil
}

// List returns the owner's transactions matching the filter, ordered
// by date then creation time.
func (s *TransactionService) List(ctx context.Context, ownerID uuid.UUID, filter store.TransactionFilter) ([]core.Transaction, error) {
	txs, err := s.store.FetchTransactions(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) publishCreated(ctx context.Context, tx core.Transaction) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping created message")
		return nil
	}
	return s.amqpClient.PublishTransactionCreated(ctx, amqp.NewTransactionCreatedMessage(tx.ID, tx.OwnerID))
}
