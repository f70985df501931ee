package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}

	userID := currentUserID(r)

	kind := core.Kind(sanitizeInput(r.Form.Get("kind")))
	category := sanitizeInput(r.Form.Get("category"))
	description := sanitizeInput(r.Form.Get("description"))

	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "importe no válido")
		return
	}

	date, err := parseTxDate(r.Form.Get("date"))
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "fecha no válida")
		return
	}

	tx := core.Transaction{
		OwnerID:     userID,
		Amount:      amount,
		Kind:        kind,
		Category:    category,
		Description: description,
		Date:        date,
	}

	saved, err := s.txSvc.Create(r.Context(), tx)
	if err != nil {
		if isValidationError(err) {
			writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Transaction create failed",
			"user_id", userID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not save transaction")
		return
	}

	// A write in any month can move the dashboard aggregates for the
	// current one (total balance spans all history).
	s.invalidateDashboard(userID, time.Now().UTC())
	s.invalidateDashboard(userID, saved.Date.Time)

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":   saved.ID.String(),
		"date": saved.Date.Format("2006-01-02"),
	})
}

// handleListTransactions returns the user's transactions, optionally
// narrowed by kind and by a single month (year + month parameters).
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	var filter store.TransactionFilter
	switch kind := sanitizeInput(r.URL.Query().Get("kind")); kind {
	case "":
	case string(core.KindIncome), string(core.KindExpense):
		filter.Kind = core.Kind(kind)
	default:
		writeJSONError(w, http.StatusUnprocessableEntity, "tipo no válido")
		return
	}

	yearParam := sanitizeInput(r.URL.Query().Get("year"))
	monthParam := sanitizeInput(r.URL.Query().Get("month"))
	if yearParam != "" || monthParam != "" {
		year, errY := strconv.Atoi(yearParam)
		month, errM := strconv.Atoi(monthParam)
		if errY != nil || errM != nil || month < 1 || month > 12 {
			writeJSONError(w, http.StatusUnprocessableEntity, "mes no válido")
			return
		}
		window := core.MonthWindow{Year: year, Month: time.Month(month)}
		filter.From = window.Start()
		filter.To = window.NextStart()
	}

	txs, err := s.txSvc.List(r.Context(), userID, filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list failed",
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

// parseTxDate parses the transaction date field, defaulting to today.
func parseTxDate(v string) (core.Date, error) {
	v = sanitizeInput(v)
	if v == "" {
		now := time.Now().UTC()
		return core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}
	return core.ParseDate(v)
}

func isValidationError(err error) bool {
	for _, known := range []error{
		core.ErrInvalidKind,
		core.ErrNegativeAmount,
		core.ErrInvalidAmount,
		core.ErrMissingOwner,
		core.ErrEmptyCategory,
		core.ErrEmptyDescription,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
