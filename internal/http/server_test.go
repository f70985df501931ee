package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"finanzas/internal/auth"
	"finanzas/internal/services"
	"finanzas/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	st := memory.New()
	sessions := auth.NewSessionManager(time.Hour)
	t.Cleanup(sessions.Stop)

	s := NewServer(Options{
		Addr:         ":0",
		Auth:         services.NewAuthService(st, sessions),
		Transactions: services.NewTransactionService(st, nil),
		Dashboard:    services.NewDashboardService(st),
		Profiles:     services.NewProfileService(st, st),
		Reports:      services.NewReportService(nil),
		SeriesMonths: 6,
	})
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	return s
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

// signup registers a test account and returns its session cookie.
func signup(t *testing.T, s *Server) *http.Cookie {
	t.Helper()

	form := url.Values{
		"email":     {"ana@example.com"},
		"password":  {"contraseña-segura"},
		"full_name": {"Ana García"},
	}
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := doRequest(s, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("signup status = %d, want 303; body: %s", rec.Code, rec.Body.String())
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("signup did not set a session cookie")
	return nil
}

func createTransaction(t *testing.T, s *Server, cookie *http.Cookie, kind, amount, category, date string) {
	t.Helper()

	form := url.Values{
		"kind":        {kind},
		"amount":      {amount},
		"category":    {category},
		"description": {category},
		"date":        {date},
	}
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)

	rec := doRequest(s, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(s, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	s := newTestServer(t)

	// API endpoints answer 401.
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/summary = %d, want 401", rec.Code)
	}

	// Pages redirect to the login form.
	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("GET / = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect location = %q, want /login", loc)
	}
}

func TestSignupLoginLogoutFlow(t *testing.T) {
	s := newTestServer(t)
	cookie := signup(t, s)

	// Authenticated page loads.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := doRequest(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / with session = %d, want 200", rec.Code)
	}

	// Logout invalidates the session.
	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec = doRequest(s, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /logout = %d, want 303", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.AddCookie(cookie)
	rec = doRequest(s, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/summary after logout = %d, want 401", rec.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	signup(t, s)

	form := url.Values{
		"email":    {"ana@example.com"},
		"password": {"incorrecta-123"},
	}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := doRequest(s, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login with wrong password = %d, want 401", rec.Code)
	}
}

func TestCreateTransactionAndSummary(t *testing.T) {
	s := newTestServer(t)
	cookie := signup(t, s)

	today := time.Now().UTC().Format("2006-01-02")
	createTransaction(t, s, cookie, "income", "100", "Salario", today)
	createTransaction(t, s, cookie, "expense", "40,50", "Comida", today)

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.AddCookie(cookie)
	rec := doRequest(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/summary = %d; body: %s", rec.Code, rec.Body.String())
	}

	var summary struct {
		TotalBalance    string `json:"totalBalance"`
		MonthlyIncome   string `json:"monthlyIncome"`
		MonthlyExpenses string `json:"monthlyExpenses"`
		Savings         string `json:"savings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalBalance != "59.5" {
		t.Errorf("totalBalance = %q, want 59.5", summary.TotalBalance)
	}
	if summary.MonthlyIncome != "100" {
		t.Errorf("monthlyIncome = %q, want 100", summary.MonthlyIncome)
	}
	if summary.MonthlyExpenses != "40.5" {
		t.Errorf("monthlyExpenses = %q, want 40.5", summary.MonthlyExpenses)
	}
}

func TestCreateTransaction_Invalid(t *testing.T) {
	s := newTestServer(t)
	cookie := signup(t, s)

	tests := []struct {
		name string
		form url.Values
	}{
		{"bad amount", url.Values{"kind": {"expense"}, "amount": {"abc"}, "category": {"x"}, "description": {"x"}}},
		{"negative amount", url.Values{"kind": {"expense"}, "amount": {"-5"}, "category": {"x"}, "description": {"x"}}},
		{"bad kind", url.Values{"kind": {"transfer"}, "amount": {"5"}, "category": {"x"}, "description": {"x"}}},
		{"bad date", url.Values{"kind": {"expense"}, "amount": {"5"}, "category": {"x"}, "description": {"x"}, "date": {"31-12-2025"}}},
		{"empty category", url.Values{"kind": {"expense"}, "amount": {"5"}, "category": {""}, "description": {"x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.AddCookie(cookie)

			rec := doRequest(s, req)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422; body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSummaryCacheInvalidation(t *testing.T) {
	s := newTestServer(t)
	cookie := signup(t, s)

	today := time.Now().UTC().Format("2006-01-02")
	createTransaction(t, s, cookie, "income", "100", "Salario", today)

	// Prime the cache.
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.AddCookie(cookie)
	doRequest(s, req)

	// A new write must invalidate it.
	createTransaction(t, s, cookie, "expense", "30", "Comida", today)

	req = httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.AddCookie(cookie)
	rec := doRequest(s, req)

	var summary struct {
		TotalBalance string `json:"totalBalance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalBalance != "70" {
		t.Errorf("totalBalance after second write = %q, want 70", summary.TotalBalance)
	}
}

func TestMonthlySeriesEndpoint(t *testing.T) {
	s := newTestServer(t)
	cookie := signup(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/monthly?months=3", nil)
	req.AddCookie(cookie)
	rec := doRequest(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/monthly = %d", rec.Code)
	}

	var points []struct {
		Label    string `json:"label"`
		Income   string `json:"income"`
		Expenses string `json:"expenses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &points); err != nil {
		t.Fatalf("decode series: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	for _, p := range points {
		if p.Label == "" {
			t.Error("series point with empty label")
		}
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	s := newTestServer(t)
	cookie := signup(t, s)

	today := time.Now().UTC().Format("2006-01-02")
	createTransaction(t, s, cookie, "expense", "60", "Comida", today)
	createTransaction(t, s, cookie, "expense", "40", "Transporte", today)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.AddCookie(cookie)
	rec := doRequest(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/categories = %d", rec.Code)
	}

	var breakdown []struct {
		Category   string  `json:"category"`
		Percentage float64 `json:"percentage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &breakdown); err != nil {
		t.Fatalf("decode breakdown: %v", err)
	}
	if len(breakdown) != 2 {
		t.Fatalf("got %d categories, want 2", len(breakdown))
	}
	var total float64
	for _, c := range breakdown {
		total += c.Percentage
	}
	if total < 99.999 || total > 100.001 {
		t.Errorf("percentages sum to %v, want 100", total)
	}
}

func TestMonthlyReportPDF(t *testing.T) {
	s := newTestServer(t)
	cookie := signup(t, s)

	today := time.Now().UTC().Format("2006-01-02")
	createTransaction(t, s, cookie, "expense", "25", "Comida", today)

	req := httptest.NewRequest(http.MethodGet, "/reports/monthly.pdf", nil)
	req.AddCookie(cookie)
	rec := doRequest(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /reports/monthly.pdf = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("response body is not a PDF")
	}
	// The document is rendered before any header is written, so the
	// declared length must match the body exactly.
	if cl := rec.Header().Get("Content-Length"); cl != strconv.Itoa(rec.Body.Len()) {
		t.Errorf("Content-Length = %q, body has %d bytes", cl, rec.Body.Len())
	}
}

func TestListTransactionsEndpoint(t *testing.T) {
	s := newTestServer(t)
	cookie := signup(t, s)

	createTransaction(t, s, cookie, "income", "100", "Salario", "2025-01-15")
	createTransaction(t, s, cookie, "expense", "40", "Comida", "2025-01-20")
	createTransaction(t, s, cookie, "expense", "10", "Comida", "2025-02-03")

	list := func(query string) (*httptest.ResponseRecorder, []struct {
		Kind     string `json:"kind"`
		Amount   string `json:"amount"`
		Category string `json:"category"`
		Date     string `json:"date"`
	}) {
		req := httptest.NewRequest(http.MethodGet, "/api/transactions"+query, nil)
		req.AddCookie(cookie)
		rec := doRequest(s, req)

		var items []struct {
			Kind     string `json:"kind"`
			Amount   string `json:"amount"`
			Category string `json:"category"`
			Date     string `json:"date"`
		}
		if rec.Code == http.StatusOK {
			if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
				t.Fatalf("decode transactions: %v", err)
			}
		}
		return rec, items
	}

	rec, items := list("")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/transactions = %d", rec.Code)
	}
	if len(items) != 3 {
		t.Fatalf("unfiltered list has %d items, want 3", len(items))
	}

	// Kind + month narrow to the single January expense.
	rec, items = list("?kind=expense&year=2025&month=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered GET /api/transactions = %d", rec.Code)
	}
	if len(items) != 1 {
		t.Fatalf("filtered list has %d items, want 1: %+v", len(items), items)
	}
	if items[0].Amount != "40.00" || items[0].Category != "Comida" || items[0].Date != "2025-01-20" {
		t.Errorf("filtered item = %+v, want the January expense", items[0])
	}

	rec, _ = list("?kind=transfer")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid kind status = %d, want 422", rec.Code)
	}

	rec, _ = list("?year=2025&month=13")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid month status = %d, want 422", rec.Code)
	}
}

func TestRequestReportEndpoint(t *testing.T) {
	s := newTestServer(t)

	// Requires a session like the rest of the report surface.
	rec := doRequest(s, httptest.NewRequest(http.MethodPost, "/reports/request", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated POST /reports/request = %d, want 401", rec.Code)
	}

	cookie := signup(t, s)

	// The test server has no broker connection, so a valid request is
	// acknowledged as unavailable rather than silently dropped.
	req := httptest.NewRequest(http.MethodPost, "/reports/request", nil)
	req.AddCookie(cookie)
	rec = doRequest(s, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("POST /reports/request without broker = %d, want 503; body: %s",
			rec.Code, rec.Body.String())
	}

	form := url.Values{"year": {"2025"}, "month": {"13"}}
	req = httptest.NewRequest(http.MethodPost, "/reports/request", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec = doRequest(s, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("POST /reports/request with month 13 = %d, want 422", rec.Code)
	}
}

func TestProfileUpdateFlow(t *testing.T) {
	s := newTestServer(t)
	cookie := signup(t, s)

	form := url.Values{
		"full_name": {"Ana María García"},
		"phone":     {"+34 600 000 000"},
	}
	req := httptest.NewRequest(http.MethodPost, "/profile", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)

	rec := doRequest(s, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /profile = %d, want 303; body: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(cookie)
	rec = doRequest(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /profile = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Ana María García") {
		t.Error("profile page does not show the updated name")
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/login", nil))
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy header")
	}
}

func TestSuspiciousRequestBlocked(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/.git/config", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("suspicious path status = %d, want 404", rec.Code)
	}
}
