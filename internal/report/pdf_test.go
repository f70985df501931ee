package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

func TestRenderPDF(t *testing.T) {
	r := MonthlyReport{
		Window:    core.MonthWindow{Year: 2025, Month: time.January},
		OwnerName: "Ana García",
		Summary: core.FinancialSummary{
			TotalBalance:    decimal.RequireFromString("40"),
			MonthlyIncome:   decimal.RequireFromString("100"),
			MonthlyExpenses: decimal.RequireFromString("60"),
			Savings:         decimal.RequireFromString("40"),
			IncomeChange:    0,
			ExpenseChange:   100,
		},
		Breakdown: []core.CategoryExpense{
			{Category: "Comida", Amount: decimal.RequireFromString("40"), Percentage: 66.67},
			{Category: "Transporte", Amount: decimal.RequireFromString("20"), Percentage: 33.33},
		},
		Series: []core.MonthlyPoint{
			{Label: "dic 24", Income: decimal.Zero, Expenses: decimal.RequireFromString("20")},
			{Label: "ene 25", Income: decimal.RequireFromString("100"), Expenses: decimal.RequireFromString("60")},
		},
		Recent: []core.Transaction{
			{
				ID:          uuid.New(),
				OwnerID:     uuid.New(),
				Amount:      decimal.RequireFromString("40"),
				Kind:        core.KindExpense,
				Category:    "Comida",
				Description: "Supermercado",
				Date:        core.NewDate(2025, 1, 20),
			},
		},
	}

	var buf bytes.Buffer
	if err := RenderPDF(r, &buf); err != nil {
		t.Fatalf("RenderPDF failed: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with PDF header, got %q", buf.Bytes()[:min(8, buf.Len())])
	}
	if buf.Len() < 1000 {
		t.Errorf("suspiciously small PDF: %d bytes", buf.Len())
	}
}

func TestRenderPDF_EmptyMonth(t *testing.T) {
	r := MonthlyReport{
		Window:  core.MonthWindow{Year: 2025, Month: time.June},
		Summary: core.FinancialSummary{},
	}

	var buf bytes.Buffer
	if err := RenderPDF(r, &buf); err != nil {
		t.Fatalf("RenderPDF failed on empty report: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not start with PDF header")
	}
}
