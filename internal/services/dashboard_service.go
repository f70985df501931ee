package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

// DashboardService assembles the aggregated views served by the
// dashboard: financial summary, category breakdown, monthly series
// and recent activity.
type DashboardService struct {
	store store.TransactionStore
}

func NewDashboardService(store store.TransactionStore) *DashboardService {
	return &DashboardService{store: store}
}

// Summary computes the financial summary for the month containing
// ref, compared against the preceding month.
func (s *DashboardService) Summary(ctx context.Context, ownerID uuid.UUID, ref time.Time) (core.FinancialSummary, error) {
	window := core.MonthOf(ref)

	all, err := s.store.FetchAllTransactions(ctx, ownerID)
	if err != nil {
		return core.FinancialSummary{}, fmt.Errorf("fetch all transactions: %w", err)
	}

	current, err := s.fetchWindow(ctx, ownerID, window)
	if err != nil {
		return core.FinancialSummary{}, err
	}

	previous, err := s.fetchWindow(ctx, ownerID, window.Prev())
	if err != nil {
		return core.FinancialSummary{}, err
	}

	summary, err := core.ComputeFinancialSummary(current, previous, all)
	if err != nil {
		return core.FinancialSummary{}, fmt.Errorf("compute summary: %w", err)
	}
	return summary, nil
}

// CategoryBreakdown groups the current month's expenses by category.
func (s *DashboardService) CategoryBreakdown(ctx context.Context, ownerID uuid.UUID, ref time.Time) ([]core.CategoryExpense, error) {
	window := core.MonthOf(ref)

	txs, err := s.fetchWindow(ctx, ownerID, window)
	if err != nil {
		return nil, err
	}

	breakdown, err := core.ComputeCategoryBreakdown(txs)
	if err != nil {
		return nil, fmt.Errorf("compute category breakdown: %w", err)
	}
	return breakdown, nil
}

// MonthlySeries returns income and expense totals for the months
// months-1 back through the month of ref, oldest first. The month
// fetches run concurrently; results keep chronological order.
func (s *DashboardService) MonthlySeries(ctx context.Context, ownerID uuid.UUID, ref time.Time, months int) ([]core.MonthlyPoint, error) {
	if months < 1 {
		months = 1
	}

	current := core.MonthOf(ref)
	points := make([]core.MonthlyPoint, months)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < months; i++ {
		window := current.Back(months - 1 - i)
		g.Go(func() error {
			txs, err := s.fetchWindow(gctx, ownerID, window)
			if err != nil {
				return err
			}

			income, expenses, err := core.SumByKind(txs)
			if err != nil {
				return fmt.Errorf("sum totals for %s: %w", window.Label(), err)
			}

			points[i] = core.MonthlyPoint{
				Window:   window,
				Label:    window.Label(),
				Income:   income,
				Expenses: expenses,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// RecentTransactions returns the owner's latest transactions, newest
// first.
func (s *DashboardService) RecentTransactions(ctx context.Context, ownerID uuid.UUID, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = 5
	}
	txs, err := s.store.FetchRecentTransactions(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch recent transactions: %w", err)
	}
	return txs, nil
}

func (s *DashboardService) fetchWindow(ctx context.Context, ownerID uuid.UUID, window core.MonthWindow) ([]core.Transaction, error) {
	txs, err := s.store.FetchTransactions(ctx, ownerID, store.TransactionFilter{
		From: window.Start(),
		To:   window.NextStart(),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch transactions for %s: %w", window.Label(), err)
	}
	return txs, nil
}
