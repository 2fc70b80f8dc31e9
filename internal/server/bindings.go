package server

import (
	"bytes"
	"fmt"
	"net/http"
)

// Action is a logical user action on the console page
type Action string

const (
	ActionRecommend           Action = "recommend"
	ActionHotSongs            Action = "hot-songs"
	ActionGenreSongs          Action = "genre-songs"
	ActionLoadGenres          Action = "load-genres"
	ActionSongDetail          Action = "song-detail"
	ActionHistory             Action = "history"
	ActionProfile             Action = "profile"
	ActionSubmitFeedback      Action = "submit-feedback"
	ActionTogglePlayback      Action = "toggle-playback"
	ActionNextTrack           Action = "next-track"
	ActionPreviousTrack       Action = "previous-track"
	ActionSetVolume           Action = "set-volume"
	ActionPlaySong            Action = "play-song"
	ActionToggleTheme         Action = "toggle-theme"
	ActionSavePreferences     Action = "save-preferences"
	ActionResetPreferences    Action = "reset-preferences"
	ActionDismissNotification Action = "dismiss-notification"
)

// requiredActions is every action the page offers, in display order
var requiredActions = []Action{
	ActionRecommend,
	ActionHotSongs,
	ActionGenreSongs,
	ActionLoadGenres,
	ActionSongDetail,
	ActionHistory,
	ActionProfile,
	ActionSubmitFeedback,
	ActionTogglePlayback,
	ActionNextTrack,
	ActionPreviousTrack,
	ActionSetVolume,
	ActionPlaySong,
	ActionToggleTheme,
	ActionSavePreferences,
	ActionResetPreferences,
	ActionDismissNotification,
}

// Binding ties an action to the page element that triggers it and the
// handler that serves it
type Binding struct {
	Action    Action `json:"action"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	ElementID string `json:"elementId"`
	Shortcut  string `json:"shortcut,omitempty"`

	handler http.HandlerFunc
}

// actionTable is the binding of every action
func (s *ConsoleServer) actionTable() []Binding {
	return []Binding{
		{Action: ActionRecommend, Method: http.MethodPost, Path: "/api/recommend", ElementID: "recommend-btn", Shortcut: "Ctrl+Enter", handler: s.handleRecommend},
		{Action: ActionHotSongs, Method: http.MethodGet, Path: "/api/songs/hot", ElementID: "hot-songs-btn", handler: s.handleHotSongs},
		{Action: ActionGenreSongs, Method: http.MethodGet, Path: "/api/songs/by-genre", ElementID: "genre-select", handler: s.handleSongsByGenre},
		{Action: ActionLoadGenres, Method: http.MethodGet, Path: "/api/songs/genres", ElementID: "genres-btn", handler: s.handleGenres},
		{Action: ActionSongDetail, Method: http.MethodGet, Path: "/api/songs/{id}", ElementID: "song-detail-panel", handler: s.handleSongDetail},
		{Action: ActionHistory, Method: http.MethodGet, Path: "/api/users/{id}/history", ElementID: "history-btn", handler: s.handleHistory},
		{Action: ActionProfile, Method: http.MethodGet, Path: "/api/users/{id}/profile", ElementID: "profile-btn", handler: s.handleProfile},
		{Action: ActionSubmitFeedback, Method: http.MethodPost, Path: "/api/feedback", ElementID: "feedback-submit", handler: s.handleFeedback},
		{Action: ActionTogglePlayback, Method: http.MethodPost, Path: "/api/player/toggle", ElementID: "play-btn", Shortcut: "Space", handler: s.handleTogglePlayback},
		{Action: ActionNextTrack, Method: http.MethodPost, Path: "/api/player/next", ElementID: "next-btn", Shortcut: "ArrowRight", handler: s.handleNextTrack},
		{Action: ActionPreviousTrack, Method: http.MethodPost, Path: "/api/player/previous", ElementID: "prev-btn", Shortcut: "ArrowLeft", handler: s.handlePreviousTrack},
		{Action: ActionSetVolume, Method: http.MethodPost, Path: "/api/player/volume", ElementID: "volume-slider", handler: s.handleSetVolume},
		{Action: ActionPlaySong, Method: http.MethodPost, Path: "/api/player/play/{songID}", ElementID: "recommendations-panel", handler: s.handlePlaySong},
		{Action: ActionToggleTheme, Method: http.MethodPost, Path: "/api/theme/toggle", ElementID: "theme-toggle", Shortcut: "Alt+T", handler: s.handleToggleTheme},
		{Action: ActionSavePreferences, Method: http.MethodPut, Path: "/api/preferences", ElementID: "save-preferences-btn", handler: s.handleSavePreferences},
		{Action: ActionResetPreferences, Method: http.MethodDelete, Path: "/api/preferences", ElementID: "reset-preferences-btn", handler: s.handleResetPreferences},
		{Action: ActionDismissNotification, Method: http.MethodDelete, Path: "/api/notifications/{id}", ElementID: "notifications", handler: s.handleDismissNotification},
	}
}

// resolveBindings checks table against the required actions and the
// rendered page. Every required action needs exactly one binding with a
// handler, and its element must be present in page.
func resolveBindings(table []Binding, page []byte) (map[Action]Binding, error) {
	required := make(map[Action]bool, len(requiredActions))
	for _, a := range requiredActions {
		required[a] = true
	}

	resolved := make(map[Action]Binding, len(table))
	for _, b := range table {
		if !required[b.Action] {
			return nil, fmt.Errorf("binding for unknown action %q", b.Action)
		}
		if _, dup := resolved[b.Action]; dup {
			return nil, fmt.Errorf("action %q is bound twice", b.Action)
		}
		resolved[b.Action] = b
	}

	for _, a := range requiredActions {
		b, ok := resolved[a]
		if !ok || b.handler == nil {
			return nil, fmt.Errorf("no handler bound for action %q", a)
		}
		if b.Method == "" || b.Path == "" {
			return nil, fmt.Errorf("action %q has no route", a)
		}
		if !bytes.Contains(page, []byte(`id="`+b.ElementID+`"`)) {
			return nil, fmt.Errorf("page element #%s for action %q is missing", b.ElementID, a)
		}
	}
	return resolved, nil
}

// handleGetActions lists the bindings so the page can wire its controls
func (s *ConsoleServer) handleGetActions(w http.ResponseWriter, r *http.Request) {
	out := make([]Binding, 0, len(requiredActions))
	for _, a := range requiredActions {
		out = append(out, s.bindings[a])
	}
	s.respondOK(w, out)
}
