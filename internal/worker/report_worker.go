// Package worker contains the background report worker: it consumes
// AMQP messages and renders monthly PDF reports to disk.
package worker

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/report"
	"finanzas/internal/services"
	"finanzas/internal/store"
)

// ReportWorker renders monthly reports in response to report-request
// messages. Transaction-created events mark the owner dirty so a
// periodic pass can refresh reports that went stale between requests.
type ReportWorker struct {
	dashboard  *services.DashboardService
	profiles   store.ProfileStore
	outputDir  string
	seriesLen  int
	mu         sync.Mutex
	dirtyOwner map[uuid.UUID]time.Time
}

func NewReportWorker(dashboard *services.DashboardService, profiles store.ProfileStore, outputDir string, seriesLen int) *ReportWorker {
	if seriesLen < 1 {
		seriesLen = 6
	}
	return &ReportWorker{
		dashboard:  dashboard,
		profiles:   profiles,
		outputDir:  outputDir,
		seriesLen:  seriesLen,
		dirtyOwner: make(map[uuid.UUID]time.Time),
	}
}

// HandleTransactionCreated marks the owner dirty; the periodic
// refresh picks it up later.
func (w *ReportWorker) HandleTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	w.mu.Lock()
	w.dirtyOwner[msg.OwnerID] = time.Now()
	w.mu.Unlock()

	fields := applog.NewFields().
		WithComponent(applog.ComponentWorker).
		WithOwner(msg.OwnerID.String())
	fields[applog.FieldTxID] = msg.TransactionID
	slog.InfoContext(ctx, "Marked owner reports stale", fields.ToSlice()...)
	return nil
}

// HandleReportRequest renders the requested month's report to the
// output directory.
func (w *ReportWorker) HandleReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error {
	window := core.MonthWindow{Year: msg.Year, Month: time.Month(msg.Month)}
	months := msg.MonthCount
	if months < 1 {
		months = w.seriesLen
	}
	return w.renderReport(ctx, msg.OwnerID, window, months)
}

// RefreshStaleReports re-renders the current month's report for every
// owner marked dirty since the last pass.
func (w *ReportWorker) RefreshStaleReports(ctx context.Context) error {
	w.mu.Lock()
	owners := make([]uuid.UUID, 0, len(w.dirtyOwner))
	for owner := range w.dirtyOwner {
		owners = append(owners, owner)
	}
	w.dirtyOwner = make(map[uuid.UUID]time.Time)
	w.mu.Unlock()

	if len(owners) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Refreshing stale reports", "owners", len(owners))

	window := core.MonthOf(time.Now().UTC())
	var failed int
	for _, owner := range owners {
		if err := w.renderReport(ctx, owner, window, w.seriesLen); err != nil {
			slog.ErrorContext(ctx, "Failed to refresh report",
				"owner_id", owner, "error", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("refresh reports: %d of %d owners failed", failed, len(owners))
	}
	return nil
}

// Run consumes messages until the context is cancelled, running the
// periodic stale-report refresh alongside.
func (w *ReportWorker) Run(ctx context.Context, client *amqp.Client, refreshInterval time.Duration) error {
	if refreshInterval <= 0 {
		refreshInterval = 5 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.RefreshStaleReports(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic report refresh failed", "error", err)
				}
			}
		}
	}()

	return client.ConsumeMessages(ctx, w.HandleTransactionCreated, w.HandleReportRequest)
}

func (w *ReportWorker) renderReport(ctx context.Context, ownerID uuid.UUID, window core.MonthWindow, months int) error {
	ref := window.Start()

	summary, err := w.dashboard.Summary(ctx, ownerID, ref)
	if err != nil {
		return fmt.Errorf("summary for report: %w", err)
	}
	breakdown, err := w.dashboard.CategoryBreakdown(ctx, ownerID, ref)
	if err != nil {
		return fmt.Errorf("breakdown for report: %w", err)
	}
	series, err := w.dashboard.MonthlySeries(ctx, ownerID, ref, months)
	if err != nil {
		return fmt.Errorf("series for report: %w", err)
	}
	recent, err := w.dashboard.RecentTransactions(ctx, ownerID, 10)
	if err != nil {
		return fmt.Errorf("recent transactions for report: %w", err)
	}

	var ownerName string
	if profile, err := w.profiles.GetProfile(ctx, ownerID); err == nil {
		ownerName = profile.FullName
	}

	// Render fully in memory first so a failed render never leaves a
	// truncated file where a previous good report may have been.
	var buf bytes.Buffer
	err = report.RenderPDF(report.MonthlyReport{
		Window:    window,
		OwnerName: ownerName,
		Summary:   summary,
		Breakdown: breakdown,
		Series:    series,
		Recent:    recent,
	}, &buf)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	path := w.reportPath(ownerID, window)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	fields := applog.NewFields().
		WithComponent(applog.ComponentWorker).
		WithOperation(applog.OpRender).
		WithOwner(ownerID.String())
	fields[applog.FieldMonth] = window.Label()
	fields[applog.FieldReportPath] = path
	slog.InfoContext(ctx, "Rendered monthly report", fields.ToSlice()...)
	return nil
}

func (w *ReportWorker) reportPath(ownerID uuid.UUID, window core.MonthWindow) string {
	name := fmt.Sprintf("informe-%04d-%02d.pdf", window.Year, int(window.Month))
	return filepath.Join(w.outputDir, ownerID.String(), name)
}
