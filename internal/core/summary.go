package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type (
	// FinancialSummary is the derived overview shown on the dashboard.
	// Monthly figures cover the reference month; TotalBalance covers
	// every transaction the owner ever recorded.
	FinancialSummary struct {
		TotalBalance    decimal.Decimal `json:"totalBalance"`
		MonthlyIncome   decimal.Decimal `json:"monthlyIncome"`
		MonthlyExpenses decimal.Decimal `json:"monthlyExpenses"`
		Savings         decimal.Decimal `json:"savings"`
		IncomeChange    float64         `json:"incomeChange"`
		ExpenseChange   float64         `json:"expenseChange"`
	}

	// CategoryExpense is one slice of the reference month's expenses.
	CategoryExpense struct {
		Category   string          `json:"category"`
		Amount     decimal.Decimal `json:"amount"`
		Percentage float64         `json:"percentage"`
	}

	// MonthlyPoint is one entry of the dashboard's month series.
	MonthlyPoint struct {
		Window   MonthWindow     `json:"-"`
		Label    string          `json:"label"`
		Income   decimal.Decimal `json:"income"`
		Expenses decimal.Decimal `json:"expenses"`
	}
)

// SumByKind totals income and expense amounts over the given
// transactions. A transaction with an unrecognized kind is a
// data-integrity defect and fails the whole computation; skipping it
// silently would corrupt totals without signal.
func SumByKind(txs []Transaction) (income, expenses decimal.Decimal, err error) {
	for _, t := range txs {
		switch t.Kind {
		case KindIncome:
			income = income.Add(t.Amount)
		case KindExpense:
			expenses = expenses.Add(t.Amount)
		default:
			return decimal.Zero, decimal.Zero,
				fmt.Errorf("transaction %s: %w: %q", t.ID, ErrInvalidKind, t.Kind)
		}
	}
	return income, expenses, nil
}

// ComputeFinancialSummary derives the dashboard summary from three
// pre-filtered transaction sets: the reference month, the preceding
// month, and the owner's complete history. The caller is responsible
// for the month-window filtering (see MonthWindow).
func ComputeFinancialSummary(current, previous, all []Transaction) (FinancialSummary, error) {
	curIncome, curExpenses, err := SumByKind(current)
	if err != nil {
		return FinancialSummary{}, fmt.Errorf("current month: %w", err)
	}
	prevIncome, prevExpenses, err := SumByKind(previous)
	if err != nil {
		return FinancialSummary{}, fmt.Errorf("previous month: %w", err)
	}

	balance := decimal.Zero
	for _, t := range all {
		signed, err := t.Signed()
		if err != nil {
			return FinancialSummary{}, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		balance = balance.Add(signed)
	}

	return FinancialSummary{
		TotalBalance:    balance,
		MonthlyIncome:   curIncome,
		MonthlyExpenses: curExpenses,
		Savings:         curIncome.Sub(curExpenses),
		IncomeChange:    percentChange(curIncome, prevIncome),
		ExpenseChange:   percentChange(curExpenses, prevExpenses),
	}, nil
}

// percentChange returns the relative delta between two totals, in
// percent. A zero baseline yields 0: with no prior-month figure there
// is no percentage to report, even when the current total is positive.
func percentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	change, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Float64()
	return change
}

// ComputeCategoryBreakdown groups the reference month's expense
// transactions by exact category label and computes each group's share
// of the month's total expenses. Income transactions are ignored.
// Groups appear in order of first appearance, so the result is stable
// for a given input. With no expenses the result is empty.
func ComputeCategoryBreakdown(current []Transaction) ([]CategoryExpense, error) {
	var (
		order  []string
		totals = make(map[string]decimal.Decimal)
		sum    decimal.Decimal
	)
	for _, t := range current {
		switch t.Kind {
		case KindIncome:
			continue
		case KindExpense:
			if _, seen := totals[t.Category]; !seen {
				order = append(order, t.Category)
			}
			totals[t.Category] = totals[t.Category].Add(t.Amount)
			sum = sum.Add(t.Amount)
		default:
			return nil, fmt.Errorf("transaction %s: %w: %q", t.ID, ErrInvalidKind, t.Kind)
		}
	}

	breakdown := make([]CategoryExpense, 0, len(order))
	for _, cat := range order {
		amount := totals[cat]
		pct := 0.0
		if !sum.IsZero() {
			pct, _ = amount.Div(sum).Mul(decimal.NewFromInt(100)).Float64()
		}
		breakdown = append(breakdown, CategoryExpense{
			Category:   cat,
			Amount:     amount,
			Percentage: pct,
		})
	}
	return breakdown, nil
}
