package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"finanzas/internal/services"
)

func (s *Server) handleProfilePage(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	profile, err := s.profileSvc.Get(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load profile",
			"user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := struct {
		Email      string
		FullName   string
		Phone      string
		AvatarName string
		UserID     string
		Saved      bool
	}{
		Email:      profile.Email,
		FullName:   profile.FullName,
		Phone:      profile.Phone,
		AvatarName: profile.AvatarName,
		UserID:     profile.UserID.String(),
		Saved:      r.URL.Query().Get("saved") == "1",
	}
	s.renderPage(w, r, "profile.html", data)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	userID := currentUserID(r)
	fullName := sanitizeInput(r.Form.Get("full_name"))
	phone := sanitizeInput(r.Form.Get("phone"))

	if _, err := s.profileSvc.Update(r.Context(), userID, fullName, phone); err != nil {
		if errors.Is(err, services.ErrEmptyFullName) {
			http.Error(w, "el nombre es obligatorio", http.StatusUnprocessableEntity)
			return
		}
		slog.ErrorContext(r.Context(), "Profile update failed",
			"user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/profile?saved=1", http.StatusSeeOther)
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	if err := r.ParseMultipartForm(4 << 20); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		http.Error(w, "avatar file missing", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "could not read upload", http.StatusBadRequest)
		return
	}

	if err := s.profileSvc.UploadAvatar(r.Context(), userID, header.Filename, data); err != nil {
		switch {
		case errors.Is(err, services.ErrAvatarTooLarge):
			http.Error(w, "la imagen es demasiado grande", http.StatusRequestEntityTooLarge)
		case errors.Is(err, services.ErrInvalidImage):
			http.Error(w, "formato de imagen no soportado", http.StatusUnsupportedMediaType)
		default:
			slog.ErrorContext(r.Context(), "Avatar upload failed",
				"user_id", userID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, "/profile?saved=1", http.StatusSeeOther)
}

// handleAvatar serves stored avatar images. Unauthenticated access is
// fine: avatar URLs contain an unguessable user id.
func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("user"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	_, data, err := s.profileSvc.Avatar(r.Context(), userID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = w.Write(data)
}

// renderPage executes a template, degrading to an error page when the
// template set failed to parse at startup.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed",
			"template", name, "error", err)
	}
}
