package server

import (
	"net/http"

	"cadenza/internal/pipeline"

	"github.com/go-chi/chi/v5"
)

// recommendRequest is the body of POST /api/recommend
type recommendRequest struct {
	UserID    string `json:"user_id"`
	Algorithm string `json:"algorithm"`
	N         int    `json:"n"`
}

// feedbackRequest is the body of POST /api/feedback
type feedbackRequest struct {
	UserID  string `json:"user_id"`
	SongID  string `json:"song_id"`
	Action  string `json:"action"`
	Comment string `json:"comment"`
}

// handleHome renders the console page
func (s *ConsoleServer) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderPage(w); err != nil {
		s.logger.WithError(err).Error("Failed to render console page")
	}
}

// handleGetPanels returns every committed panel view
func (s *ConsoleServer) handleGetPanels(w http.ResponseWriter, r *http.Request) {
	s.respondOK(w, s.console.Snapshot())
}

// handleGetPanel returns one committed panel view
func (s *ConsoleServer) handleGetPanel(w http.ResponseWriter, r *http.Request) {
	panel := pipeline.Panel(chi.URLParam(r, "panel"))
	if !panel.Valid() {
		s.respondWithError(w, r, http.StatusNotFound, "Unknown panel", nil)
		return
	}

	v, ok := s.console.Panel(panel)
	if !ok {
		s.respondWithError(w, r, http.StatusNotFound, "Panel has not been loaded", nil)
		return
	}
	s.respondOK(w, v)
}

// handleRecommend loads recommendations
func (s *ConsoleServer) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if verr := decodeJSON(r, &req); verr != nil {
		s.respondWithValidationError(w, r, *verr)
		return
	}

	res, err := s.console.Recommend(r.Context(), sanitizeInput(req.UserID), sanitizeInput(req.Algorithm), req.N)
	if err != nil {
		s.respondForError(w, r, err)
		return
	}
	s.respondOK(w, res)
}

// handleHotSongs loads the hot songs panel
func (s *ConsoleServer) handleHotSongs(w http.ResponseWriter, r *http.Request) {
	res := s.console.HotSongs(r.Context(), sanitizeInput(r.URL.Query().Get("tier")))
	s.respondOK(w, res)
}

// handleSongsByGenre loads the genre songs panel
func (s *ConsoleServer) handleSongsByGenre(w http.ResponseWriter, r *http.Request) {
	limit, verr := parseOptionalInt("limit", r.URL.Query().Get("limit"))
	if verr != nil {
		s.respondWithValidationError(w, r, *verr)
		return
	}

	res, err := s.console.SongsByGenre(r.Context(), sanitizeInput(r.URL.Query().Get("genre")), limit)
	if err != nil {
		s.respondForError(w, r, err)
		return
	}
	s.respondOK(w, res)
}

// handleGenres loads the genre picker
func (s *ConsoleServer) handleGenres(w http.ResponseWriter, r *http.Request) {
	s.respondOK(w, s.console.Genres(r.Context()))
}

// handleSongDetail loads one song
func (s *ConsoleServer) handleSongDetail(w http.ResponseWriter, r *http.Request) {
	res, err := s.console.SongDetail(r.Context(), sanitizeInput(chi.URLParam(r, "id")))
	if err != nil {
		s.respondForError(w, r, err)
		return
	}
	s.respondOK(w, res)
}

// handleHistory loads a user's history
func (s *ConsoleServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	res, err := s.console.History(r.Context(), sanitizeInput(chi.URLParam(r, "id")))
	if err != nil {
		s.respondForError(w, r, err)
		return
	}
	s.respondOK(w, res)
}

// handleProfile loads a user's profile
func (s *ConsoleServer) handleProfile(w http.ResponseWriter, r *http.Request) {
	res, err := s.console.Profile(r.Context(), sanitizeInput(chi.URLParam(r, "id")))
	if err != nil {
		s.respondForError(w, r, err)
		return
	}
	s.respondOK(w, res)
}

// handleFeedback submits feedback
func (s *ConsoleServer) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if verr := decodeJSON(r, &req); verr != nil {
		s.respondWithValidationError(w, r, *verr)
		return
	}

	err := s.console.SubmitFeedback(r.Context(), sanitizeInput(req.UserID), sanitizeInput(req.SongID), sanitizeInput(req.Action), req.Comment)
	if err != nil {
		s.respondForError(w, r, err)
		return
	}
	s.respondOK(w, map[string]string{"message": "Feedback submitted"})
}
