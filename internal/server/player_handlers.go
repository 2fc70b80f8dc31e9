package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// volumeRequest is the body of POST /api/player/volume. Absent fields keep
// their current value.
type volumeRequest struct {
	Volume *float64 `json:"volume,omitempty"`
	Muted  *bool    `json:"muted,omitempty"`
}

// handleGetPlayerState returns the current player state
func (s *ConsoleServer) handleGetPlayerState(w http.ResponseWriter, r *http.Request) {
	s.respondOK(w, s.console.PlayerState())
}

// handleTogglePlayback flips play/pause
func (s *ConsoleServer) handleTogglePlayback(w http.ResponseWriter, r *http.Request) {
	s.console.TogglePlayback()
	s.respondOK(w, s.console.PlayerState())
}

// handleNextTrack skips forward
func (s *ConsoleServer) handleNextTrack(w http.ResponseWriter, r *http.Request) {
	s.console.Next()
	s.respondOK(w, s.console.PlayerState())
}

// handlePreviousTrack skips back
func (s *ConsoleServer) handlePreviousTrack(w http.ResponseWriter, r *http.Request) {
	s.console.Previous()
	s.respondOK(w, s.console.PlayerState())
}

// handleSetVolume updates volume and mute
func (s *ConsoleServer) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if verr := decodeJSON(r, &req); verr != nil {
		s.respondWithValidationError(w, r, *verr)
		return
	}

	current := s.console.PlayerState()
	volume, muted := current.Volume, current.IsMuted
	if req.Volume != nil {
		volume = *req.Volume
	}
	if req.Muted != nil {
		muted = *req.Muted
	}

	s.console.SetVolume(volume, muted)
	s.respondOK(w, s.console.PlayerState())
}

// handlePlaySong loads a song shown on a panel and starts it
func (s *ConsoleServer) handlePlaySong(w http.ResponseWriter, r *http.Request) {
	state, err := s.console.PlaySong(sanitizeInput(chi.URLParam(r, "songID")))
	if err != nil {
		s.respondForError(w, r, err)
		return
	}

	s.logger.WithField("song_id", state.Song.ID).Info("Now playing")
	s.respondOK(w, state)
}
