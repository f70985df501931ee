package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

type (
	// Kind is the semantic sign of a transaction. Amounts are always
	// non-negative; income adds to the balance, expense subtracts.
	Kind string

	// Transaction is one financial event. Immutable after creation.
	Transaction struct {
		ID          uuid.UUID
		OwnerID     uuid.UUID
		Amount      decimal.Decimal
		Kind        Kind
		Category    string
		Description string
		Date        Date
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrNegativeAmount   = errors.New("negative amount")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrMissingOwner     = errors.New("missing owner id")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (t Transaction) Validate() error {
	if t.OwnerID == uuid.Nil {
		return ErrMissingOwner
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Signed returns the amount with its semantic sign applied: positive
// for income, negative for expense.
func (t Transaction) Signed() (decimal.Decimal, error) {
	switch t.Kind {
	case KindIncome:
		return t.Amount, nil
	case KindExpense:
		return t.Amount.Neg(), nil
	default:
		return decimal.Zero, ErrInvalidKind
	}
}
