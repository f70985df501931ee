package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/store"
	"finanzas/internal/store/memory"
)

func seedTx(owner uuid.UUID, kind core.Kind, amount, category string, year int, month time.Month, day int) core.Transaction {
	return core.Transaction{
		ID:          uuid.New(),
		OwnerID:     owner,
		Amount:      decimal.RequireFromString(amount),
		Kind:        kind,
		Category:    category,
		Description: category,
		Date:        core.NewDate(year, int(month), day),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestDashboardService_Summary(t *testing.T) {
	owner := uuid.New()
	st := memory.New()
	st.Seed(
		seedTx(owner, core.KindIncome, "100", "Salario", 2025, time.January, 15),
		seedTx(owner, core.KindExpense, "40", "Comida", 2025, time.January, 20),
		seedTx(owner, core.KindExpense, "20", "Comida", 2024, time.December, 10),
	)

	svc := NewDashboardService(st)
	ref := time.Date(2025, time.January, 25, 12, 0, 0, 0, time.UTC)

	summary, err := svc.Summary(context.Background(), owner, ref)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	if !summary.TotalBalance.Equal(decimal.RequireFromString("40")) {
		t.Errorf("TotalBalance = %s, want 40", summary.TotalBalance)
	}
	if !summary.MonthlyIncome.Equal(decimal.RequireFromString("100")) {
		t.Errorf("MonthlyIncome = %s, want 100", summary.MonthlyIncome)
	}
	if !summary.MonthlyExpenses.Equal(decimal.RequireFromString("40")) {
		t.Errorf("MonthlyExpenses = %s, want 40", summary.MonthlyExpenses)
	}
	if !summary.Savings.Equal(decimal.RequireFromString("60")) {
		t.Errorf("Savings = %s, want 60", summary.Savings)
	}
	if summary.IncomeChange != 0 {
		t.Errorf("IncomeChange = %v, want 0 (no income last month)", summary.IncomeChange)
	}
	if summary.ExpenseChange != 100 {
		t.Errorf("ExpenseChange = %v, want 100", summary.ExpenseChange)
	}
}

func TestDashboardService_Summary_OwnerIsolation(t *testing.T) {
	owner, other := uuid.New(), uuid.New()
	st := memory.New()
	st.Seed(
		seedTx(owner, core.KindIncome, "100", "Salario", 2025, time.March, 1),
		seedTx(other, core.KindIncome, "9999", "Salario", 2025, time.March, 1),
	)

	svc := NewDashboardService(st)
	ref := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	summary, err := svc.Summary(context.Background(), owner, ref)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !summary.TotalBalance.Equal(decimal.RequireFromString("100")) {
		t.Errorf("TotalBalance = %s, want 100 (other owner's data leaked)", summary.TotalBalance)
	}
}

func TestDashboardService_CategoryBreakdown(t *testing.T) {
	owner := uuid.New()
	st := memory.New()
	st.Seed(
		seedTx(owner, core.KindExpense, "60", "Comida", 2025, time.May, 2),
		seedTx(owner, core.KindExpense, "40", "Transporte", 2025, time.May, 5),
		seedTx(owner, core.KindIncome, "500", "Salario", 2025, time.May, 1),
		// Outside the reference month, must not appear.
		seedTx(owner, core.KindExpense, "300", "Viajes", 2025, time.April, 30),
	)

	svc := NewDashboardService(st)
	ref := time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC)

	breakdown, err := svc.CategoryBreakdown(context.Background(), owner, ref)
	if err != nil {
		t.Fatalf("CategoryBreakdown failed: %v", err)
	}

	if len(breakdown) != 2 {
		t.Fatalf("got %d categories, want 2: %+v", len(breakdown), breakdown)
	}

	var totalPct float64
	for _, c := range breakdown {
		totalPct += c.Percentage
		if c.Category == "Viajes" {
			t.Error("previous month's category leaked into the breakdown")
		}
	}
	if totalPct < 99.999 || totalPct > 100.001 {
		t.Errorf("percentages sum to %v, want 100", totalPct)
	}
}

func TestDashboardService_MonthlySeries(t *testing.T) {
	owner := uuid.New()
	st := memory.New()
	st.Seed(
		seedTx(owner, core.KindIncome, "100", "Salario", 2025, time.January, 10),
		seedTx(owner, core.KindExpense, "30", "Comida", 2025, time.February, 10),
		seedTx(owner, core.KindIncome, "200", "Salario", 2025, time.March, 10),
	)

	svc := NewDashboardService(st)
	ref := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)

	points, err := svc.MonthlySeries(context.Background(), owner, ref, 3)
	if err != nil {
		t.Fatalf("MonthlySeries failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}

	wantLabels := []string{"ene 25", "feb 25", "mar 25"}
	for i, want := range wantLabels {
		if points[i].Label != want {
			t.Errorf("points[%d].Label = %q, want %q", i, points[i].Label, want)
		}
	}

	if !points[0].Income.Equal(decimal.RequireFromString("100")) {
		t.Errorf("January income = %s, want 100", points[0].Income)
	}
	if !points[1].Expenses.Equal(decimal.RequireFromString("30")) {
		t.Errorf("February expenses = %s, want 30", points[1].Expenses)
	}
	if !points[2].Income.Equal(decimal.RequireFromString("200")) {
		t.Errorf("March income = %s, want 200", points[2].Income)
	}
}

// The series must partition the covered window exactly: summing its
// points equals summing the raw transactions of the same date range.
func TestDashboardService_MonthlySeries_RoundTripSum(t *testing.T) {
	owner := uuid.New()
	st := memory.New()
	st.Seed(
		seedTx(owner, core.KindIncome, "100", "Salario", 2025, time.January, 10),
		seedTx(owner, core.KindIncome, "50.25", "Extra", 2025, time.January, 31),
		seedTx(owner, core.KindIncome, "30", "Salario", 2025, time.February, 1),
		seedTx(owner, core.KindExpense, "70.10", "Comida", 2025, time.February, 14),
		seedTx(owner, core.KindIncome, "200.50", "Salario", 2025, time.March, 10),
		seedTx(owner, core.KindExpense, "12", "Transporte", 2025, time.March, 20),
		// Before the series window, must not be counted.
		seedTx(owner, core.KindIncome, "999", "Salario", 2024, time.December, 31),
		seedTx(owner, core.KindExpense, "888", "Viajes", 2024, time.November, 5),
		// Another owner inside the window, must not be counted.
		seedTx(uuid.New(), core.KindIncome, "777", "Salario", 2025, time.February, 2),
	)

	svc := NewDashboardService(st)
	ref := time.Date(2025, time.March, 25, 0, 0, 0, 0, time.UTC)
	const monthCount = 3

	points, err := svc.MonthlySeries(context.Background(), owner, ref, monthCount)
	if err != nil {
		t.Fatalf("MonthlySeries failed: %v", err)
	}

	var seriesIncome, seriesExpenses decimal.Decimal
	for _, p := range points {
		seriesIncome = seriesIncome.Add(p.Income)
		seriesExpenses = seriesExpenses.Add(p.Expenses)
	}

	window := core.MonthOf(ref)
	oldest := window.Back(monthCount - 1)
	txs, err := st.FetchTransactions(context.Background(), owner, store.TransactionFilter{
		From: oldest.Start(),
		To:   window.NextStart(),
	})
	if err != nil {
		t.Fatalf("FetchTransactions failed: %v", err)
	}
	directIncome, directExpenses, err := core.SumByKind(txs)
	if err != nil {
		t.Fatalf("SumByKind failed: %v", err)
	}

	if !seriesIncome.Equal(directIncome) {
		t.Errorf("series income sum = %s, direct window sum = %s", seriesIncome, directIncome)
	}
	if !seriesExpenses.Equal(directExpenses) {
		t.Errorf("series expense sum = %s, direct window sum = %s", seriesExpenses, directExpenses)
	}
}

func TestDashboardService_MonthlySeries_YearRollover(t *testing.T) {
	owner := uuid.New()
	st := memory.New()

	svc := NewDashboardService(st)
	ref := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)

	points, err := svc.MonthlySeries(context.Background(), owner, ref, 4)
	if err != nil {
		t.Fatalf("MonthlySeries failed: %v", err)
	}

	wantLabels := []string{"nov 24", "dic 24", "ene 25", "feb 25"}
	for i, want := range wantLabels {
		if points[i].Label != want {
			t.Errorf("points[%d].Label = %q, want %q", i, points[i].Label, want)
		}
		if !points[i].Income.IsZero() || !points[i].Expenses.IsZero() {
			t.Errorf("points[%d] totals = %s/%s, want zero for empty months",
				i, points[i].Income, points[i].Expenses)
		}
	}
}

func TestDashboardService_RecentTransactions(t *testing.T) {
	owner := uuid.New()
	st := memory.New()
	for day := 1; day <= 8; day++ {
		st.Seed(seedTx(owner, core.KindExpense, "10", "Comida", 2025, time.June, day))
	}

	svc := NewDashboardService(st)

	recent, err := svc.RecentTransactions(context.Background(), owner, 5)
	if err != nil {
		t.Fatalf("RecentTransactions failed: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("got %d transactions, want 5", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].Date.After(recent[i-1].Date.Time) {
			t.Errorf("transactions not in newest-first order at index %d", i)
		}
	}
}
