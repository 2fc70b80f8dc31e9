package server

import (
	"net/http"

	"cadenza/internal/view"
	"cadenza/pkg/models"

	"github.com/go-chi/chi/v5"
)

// preferencesResponse is the body of GET /api/preferences
type preferencesResponse struct {
	Preferences    models.Preferences `json:"preferences"`
	DiversityLabel string             `json:"diversityLabel"`
	Theme          string             `json:"theme"`
}

// handleGetPreferences returns the preferences in effect
func (s *ConsoleServer) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	p := s.console.Preferences()
	s.respondOK(w, preferencesResponse{
		Preferences:    p,
		DiversityLabel: view.DiversityLabel(p.DiversityValue),
		Theme:          s.console.Theme(),
	})
}

// handleSavePreferences validates and stores preferences
func (s *ConsoleServer) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var p models.Preferences
	if verr := decodeJSON(r, &p); verr != nil {
		s.respondWithValidationError(w, r, *verr)
		return
	}
	p.DefaultAlgorithm = sanitizeInput(p.DefaultAlgorithm)

	if err := s.console.SavePreferences(p); err != nil {
		s.respondForError(w, r, err)
		return
	}
	s.handleGetPreferences(w, r)
}

// handleResetPreferences restores the default preferences
func (s *ConsoleServer) handleResetPreferences(w http.ResponseWriter, r *http.Request) {
	if _, err := s.console.ResetPreferences(); err != nil {
		s.respondForError(w, r, err)
		return
	}
	s.handleGetPreferences(w, r)
}

// handleToggleTheme switches between light and dark
func (s *ConsoleServer) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.console.ToggleTheme()
	if err != nil {
		s.respondForError(w, r, err)
		return
	}
	s.respondOK(w, map[string]string{"theme": theme})
}

// handleGetNotifications lists visible notifications
func (s *ConsoleServer) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	s.respondOK(w, s.center.List())
}

// handleDismissNotification removes a notification
func (s *ConsoleServer) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	if !s.center.Dismiss(chi.URLParam(r, "id")) {
		s.respondWithError(w, r, http.StatusNotFound, "Notification not found", nil)
		return
	}
	s.respondOK(w, s.center.List())
}
