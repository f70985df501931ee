package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/core"
	"finanzas/internal/report"
	"finanzas/internal/services"
)

const maxSeriesMonths = 24

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	profile, err := s.profileSvc.Get(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load profile for dashboard",
			"user_id", userID, "error", err)
	}

	data := struct {
		FullName     string
		AvatarName   string
		SeriesMonths int
	}{
		FullName:     profile.FullName,
		AvatarName:   profile.AvatarName,
		SeriesMonths: s.seriesMonths,
	}
	s.renderPage(w, r, "dashboard.html", data)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	ref := time.Now().UTC()
	key := s.cacheKey(userID, ref)

	if summary, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "user_id", userID)
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := s.dashboardSvc.Summary(r.Context(), userID, ref)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary computation failed",
			"user_id", userID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not compute summary")
		return
	}

	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	ref := time.Now().UTC()
	key := s.cacheKey(userID, ref)

	if breakdown, found := s.breakdownCache.Get(key); found {
		slog.DebugContext(r.Context(), "Breakdown cache hit", "user_id", userID)
		writeJSON(w, http.StatusOK, breakdown)
		return
	}

	breakdown, err := s.dashboardSvc.CategoryBreakdown(r.Context(), userID, ref)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category breakdown failed",
			"user_id", userID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not compute breakdown")
		return
	}

	s.breakdownCache.Set(key, breakdown)
	writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleMonthlySeries(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	ref := time.Now().UTC()
	months := parseIntQuery(r, "months", s.seriesMonths, maxSeriesMonths)
	key := s.cacheKey(userID, ref) + ":" + strconv.Itoa(months)

	if series, found := s.seriesCache.Get(key); found {
		slog.DebugContext(r.Context(), "Series cache hit", "user_id", userID, "months", months)
		writeJSON(w, http.StatusOK, series)
		return
	}

	series, err := s.dashboardSvc.MonthlySeries(r.Context(), userID, ref, months)
	if err != nil {
		slog.ErrorContext(r.Context(), "Monthly series failed",
			"user_id", userID, "months", months, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not compute series")
		return
	}

	s.seriesCache.Set(key, series)
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	limit := parseIntQuery(r, "limit", 5, 50)

	txs, err := s.dashboardSvc.RecentTransactions(r.Context(), userID, limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recent transactions failed",
			"user_id", userID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load transactions")
		return
	}

	type item struct {
		ID          uuid.UUID `json:"id"`
		Kind        core.Kind `json:"kind"`
		Amount      string    `json:"amount"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Date        string    `json:"date"`
	}
	items := make([]item, 0, len(txs))
	for _, t := range txs {
		items = append(items, item{
			ID:          t.ID,
			Kind:        t.Kind,
			Amount:      t.Amount.StringFixed(2),
			Category:    t.Category,
			Description: t.Description,
			Date:        t.Date.Format("2006-01-02"),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleMonthlyReportPDF(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	ref := time.Now().UTC()
	window := core.MonthOf(ref)
	months := parseIntQuery(r, "months", s.seriesMonths, maxSeriesMonths)
	ctx := r.Context()

	summary, err := s.dashboardSvc.Summary(ctx, userID, ref)
	if err != nil {
		slog.ErrorContext(ctx, "Report summary failed", "user_id", userID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not build report")
		return
	}
	breakdown, err := s.dashboardSvc.CategoryBreakdown(ctx, userID, ref)
	if err != nil {
		slog.ErrorContext(ctx, "Report breakdown failed", "user_id", userID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not build report")
		return
	}
	series, err := s.dashboardSvc.MonthlySeries(ctx, userID, ref, months)
	if err != nil {
		slog.ErrorContext(ctx, "Report series failed", "user_id", userID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not build report")
		return
	}
	recent, err := s.dashboardSvc.RecentTransactions(ctx, userID, 10)
	if err != nil {
		slog.ErrorContext(ctx, "Report recent transactions failed", "user_id", userID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not build report")
		return
	}

	var ownerName string
	if profile, err := s.profileSvc.Get(ctx, userID); err == nil {
		ownerName = profile.FullName
	}

	// Render into a buffer so a mid-render failure becomes a clean 500
	// instead of a truncated 200 response.
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
		slog.ErrorContext(ctx, "PDF rendering failed", "user_id", userID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not render report")
		return
	}

	filename := fmt.Sprintf("informe-%04d-%02d.pdf", window.Year, int(window.Month))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.WarnContext(ctx, "Report download interrupted", "user_id", userID, "error", err)
	}
}

// handleRequestReport queues an asynchronous report render for the
// report worker; the HTTP response only acknowledges the request.
func (s *Server) handleRequestReport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}

	userID := currentUserID(r)
	window := core.MonthOf(time.Now().UTC())
	year, month := window.Year, int(window.Month)

	if v := sanitizeInput(r.Form.Get("year")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSONError(w, http.StatusUnprocessableEntity, "año no válido")
			return
		}
		year = n
	}
	if v := sanitizeInput(r.Form.Get("month")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			writeJSONError(w, http.StatusUnprocessableEntity, "mes no válido")
			return
		}
		month = n
	}
	months := s.seriesMonths
	if v := sanitizeInput(r.Form.Get("months")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= maxSeriesMonths {
			months = n
		}
	}

	if s.reportSvc == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "informes no disponibles")
		return
	}

	err := s.reportSvc.Request(r.Context(), userID, year, month, months)
	switch {
	case errors.Is(err, services.ErrInvalidReportMonth):
		writeJSONError(w, http.StatusUnprocessableEntity, "mes no válido")
	case errors.Is(err, services.ErrReportsUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, "informes no disponibles")
	case err != nil:
		slog.ErrorContext(r.Context(), "Report request failed",
			"user_id", userID, "year", year, "month", month, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not queue report")
	default:
		writeJSON(w, http.StatusAccepted, map[string]any{
			"status": "queued",
			"year":   year,
			"month":  month,
		})
	}
}

// cacheKey scopes cached aggregates to one user and one month.
func (s *Server) cacheKey(userID uuid.UUID, ref time.Time) string {
	window := core.MonthOf(ref)
	return fmt.Sprintf("%s:%04d-%02d", userID, window.Year, int(window.Month))
}

// invalidateDashboard drops every cached aggregate for the user's
// current month after a write.
func (s *Server) invalidateDashboard(userID uuid.UUID, ref time.Time) {
	key := s.cacheKey(userID, ref)
	s.summaryCache.Delete(key)
	s.breakdownCache.Delete(key)
	for months := 1; months <= maxSeriesMonths; months++ {
		s.seriesCache.Delete(key + ":" + strconv.Itoa(months))
	}
}
