package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/store"
	"finanzas/internal/store/memory"
)

func TestTransactionService_Create(t *testing.T) {
	st := memory.New()
	// nil AMQP client: publish degrades to a logged skip.
	svc := NewTransactionService(st, nil)

	owner := uuid.New()
	tx := core.Transaction{
		OwnerID:     owner,
		Amount:      decimal.RequireFromString("12.50"),
		Kind:        core.KindExpense,
		Category:    "Comida",
		Description: "Almuerzo",
		Date:        core.NewDate(2025, 6, 15),
	}

	saved, err := svc.Create(context.Background(), tx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if saved.ID == uuid.Nil {
		t.Error("expected a generated transaction ID")
	}
	if saved.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := st.FetchAllTransactions(context.Background(), owner)
	if err != nil {
		t.Fatalf("FetchAllTransactions failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d transactions in store, want 1", len(got))
	}
	if !got[0].Amount.Equal(tx.Amount) {
		t.Errorf("stored amount = %s, want %s", got[0].Amount, tx.Amount)
	}
}

func TestTransactionService_Create_Invalid(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil)

	tests := []struct {
		name    string
		mutate  func(*core.Transaction)
		wantErr error
	}{
		{"missing owner", func(tx *core.Transaction) { tx.OwnerID = uuid.Nil }, core.ErrMissingOwner},
		{"bad kind", func(tx *core.Transaction) { tx.Kind = "transfer" }, core.ErrInvalidKind},
		{"negative amount", func(tx *core.Transaction) { tx.Amount = decimal.RequireFromString("-5") }, core.ErrNegativeAmount},
		{"empty category", func(tx *core.Transaction) { tx.Category = "" }, core.ErrEmptyCategory},
		{"empty description", func(tx *core.Transaction) { tx.Description = "  " }, core.ErrEmptyDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := core.Transaction{
				OwnerID:     uuid.New(),
				Amount:      decimal.RequireFromString("10"),
				Kind:        core.KindIncome,
				Category:    "Salario",
				Description: "Nómina",
				Date:        core.NewDate(2025, 6, 1),
			}
			tt.mutate(&tx)

			if _, err := svc.Create(context.Background(), tx); !errors.Is(err, tt.wantErr) {
				t.Errorf("Create error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionService_List_Filter(t *testing.T) {
	owner := uuid.New()
	st := memory.New()
	st.Seed(
		seedTx(owner, core.KindExpense, "10", "Comida", 2025, time.June, 30),
		seedTx(owner, core.KindExpense, "20", "Comida", 2025, time.July, 1),
		seedTx(owner, core.KindIncome, "100", "Salario", 2025, time.July, 1),
	)

	svc := NewTransactionService(st, nil)
	window := core.MonthWindow{Year: 2025, Month: time.July}

	txs, err := svc.List(context.Background(), owner, store.TransactionFilter{
		From: window.Start(),
		To:   window.NextStart(),
		Kind: core.KindExpense,
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if !txs[0].Amount.Equal(decimal.RequireFromString("20")) {
		t.Errorf("amount = %s, want 20", txs[0].Amount)
	}
}
