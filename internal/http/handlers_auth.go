package http

import (
	"errors"
	"log/slog"
	"net/http"

	"finanzas/internal/auth"
	"finanzas/internal/services"
	"finanzas/internal/store"
)

type authPageData struct {
	Error string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "login.html", authPageData{})
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "signup.html", authPageData{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("password")

	_, session, err := s.authSvc.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			w.WriteHeader(http.StatusUnauthorized)
			s.renderPage(w, r, "login.html", authPageData{Error: "Correo o contraseña incorrectos"})
			return
		}
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.setSessionCookie(w, session.Token, session.ExpiresAt)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("password")
	fullName := sanitizeInput(r.Form.Get("full_name"))

	_, session, err := s.authSvc.Signup(r.Context(), email, password, fullName)
	if err != nil {
		msg := signupErrorMessage(err)
		if msg == "" {
			slog.ErrorContext(r.Context(), "Signup failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.renderPage(w, r, "signup.html", authPageData{Error: msg})
		return
	}

	s.setSessionCookie(w, session.Token, session.ExpiresAt)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.authSvc.Logout(r.Context(), cookie.Value)
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// signupErrorMessage maps validation failures to user-facing Spanish
// messages. Unknown errors return "" and are treated as internal.
func signupErrorMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		return "Ya existe una cuenta con ese correo"
	case errors.Is(err, auth.ErrPasswordTooShort):
		return "La contraseña debe tener al menos 8 caracteres"
	case errors.Is(err, services.ErrInvalidEmail):
		return "Correo electrónico no válido"
	case errors.Is(err, services.ErrEmptyFullName):
		return "El nombre es obligatorio"
	default:
		return ""
	}
}
