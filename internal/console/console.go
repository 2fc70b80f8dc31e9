// Package console is the application state of the web console. Every panel
// load, player action and preference change goes through a Console method;
// HTTP handlers never touch state directly.
package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cadenza/internal/cache"
	"cadenza/internal/notify"
	"cadenza/internal/pipeline"
	"cadenza/internal/player"
	"cadenza/internal/prefs"
	"cadenza/internal/view"
	"cadenza/pkg/models"

	"github.com/sirupsen/logrus"
)

// ErrValidation wraps every input validation failure. No request is sent
// upstream when it is returned.
var ErrValidation = errors.New("validation failed")

// API is the part of the recommendation API client the console uses
type API interface {
	Recommendations(ctx context.Context, userID, algorithm string, n int) (models.RecommendationPayload, error)
	HotSongs(ctx context.Context, tier string) (models.SongsPayload, error)
	SongsByGenre(ctx context.Context, genre string, limit int) (models.SongsPayload, error)
	Genres(ctx context.Context) ([]string, error)
	Song(ctx context.Context, songID string) (models.Song, error)
	UserProfile(ctx context.Context, userID string) (models.UserProfile, error)
	UserHistory(ctx context.Context, userID string) (models.HistoryPayload, error)
	Health(ctx context.Context) (models.Health, error)
	SubmitFeedback(ctx context.Context, feedback models.Feedback) error
}

// PreferenceStore persists preferences and the theme
type PreferenceStore interface {
	Load() (models.Preferences, error)
	Save(models.Preferences) error
	Reset() (models.Preferences, error)
	Theme() (string, error)
	SetTheme(theme string) error
	ToggleTheme() (string, error)
}

// Options configures a Console
type Options struct {
	API         API
	Notifier    notify.Notifier
	Player      *player.Simulator
	Preferences PreferenceStore
	Logger      *logrus.Logger

	DefaultTier string
	GenreLimit  int
	HealthTTL   time.Duration
	Now         func() time.Time // defaults to time.Now
}

// panels holds the last committed view of every panel. Nil means the
// panel has not been loaded yet.
type panels struct {
	recommendations *view.RecommendationsView
	hotSongs        *view.SongListView
	genreSongs      *view.SongListView
	genres          *view.GenresView
	history         *view.HistoryView
	profile         *view.ProfileView
	songDetail      *view.SongDetailView
}

// Console owns the console's application state
type Console struct {
	api      API
	notifier notify.Notifier
	player   *player.Simulator
	store    PreferenceStore
	logger   *logrus.Logger
	pipeline *pipeline.Pipeline
	health   *cache.MemoryCache[HealthStatus]
	now      func() time.Time

	defaultTier string
	genreLimit  int

	mu          sync.RWMutex
	currentUser string
	current     []models.Song
	playable    map[string]models.Song
	views       panels
	preferences models.Preferences
	theme       string

	followOns sync.WaitGroup
}

// New creates a console with default preferences. Call
// ApplyStoredPreferences to load the saved ones.
func New(opts Options) *Console {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	tier := opts.DefaultTier
	if tier == "" {
		tier = "all"
	}
	limit := opts.GenreLimit
	if limit <= 0 {
		limit = 20
	}

	return &Console{
		api:         opts.API,
		notifier:    opts.Notifier,
		player:      opts.Player,
		store:       opts.Preferences,
		logger:      opts.Logger,
		pipeline:    pipeline.New(opts.Notifier, opts.Logger),
		health:      cache.NewMemoryCache[HealthStatus](opts.HealthTTL),
		now:         now,
		defaultTier: tier,
		genreLimit:  limit,
		playable:    make(map[string]models.Song),
		preferences: prefs.Defaults(),
		theme:       prefs.DefaultTheme,
	}
}

// Snapshot is every committed panel view plus the surrounding page state
type Snapshot struct {
	UserID          string                    `json:"userId"`
	Recommendations *view.RecommendationsView `json:"recommendations,omitempty"`
	HotSongs        *view.SongListView        `json:"hotSongs,omitempty"`
	GenreSongs      *view.SongListView        `json:"genreSongs,omitempty"`
	Genres          *view.GenresView          `json:"genres,omitempty"`
	History         *view.HistoryView         `json:"history,omitempty"`
	Profile         *view.ProfileView         `json:"profile,omitempty"`
	SongDetail      *view.SongDetailView      `json:"songDetail,omitempty"`
	Preferences     models.Preferences        `json:"preferences"`
	DiversityLabel  string                    `json:"diversityLabel"`
	Algorithms      []string                  `json:"algorithms"`
	Theme           string                    `json:"theme"`
	Player          *player.State             `json:"player"`
}

// Snapshot returns the current page state
func (c *Console) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UserID:          c.currentUser,
		Recommendations: c.views.recommendations,
		HotSongs:        c.views.hotSongs,
		GenreSongs:      c.views.genreSongs,
		Genres:          c.views.genres,
		History:         c.views.history,
		Profile:         c.views.profile,
		SongDetail:      c.views.songDetail,
		Preferences:     c.preferences,
		DiversityLabel:  view.DiversityLabel(c.preferences.DiversityValue),
		Algorithms:      prefs.Algorithms,
		Theme:           c.theme,
		Player:          c.player.State().GetState(),
	}
}

// Panel returns the committed view of one panel, or false if it was never loaded
func (c *Console) Panel(p pipeline.Panel) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var v any
	switch p {
	case pipeline.Recommendations:
		if c.views.recommendations != nil {
			v = c.views.recommendations
		}
	case pipeline.HotSongs:
		if c.views.hotSongs != nil {
			v = c.views.hotSongs
		}
	case pipeline.GenreSongs:
		if c.views.genreSongs != nil {
			v = c.views.genreSongs
		}
	case pipeline.Genres:
		if c.views.genres != nil {
			v = c.views.genres
		}
	case pipeline.History:
		if c.views.history != nil {
			v = c.views.history
		}
	case pipeline.Profile:
		if c.views.profile != nil {
			v = c.views.profile
		}
	case pipeline.SongDetail:
		if c.views.songDetail != nil {
			v = c.views.songDetail
		}
	}
	return v, v != nil
}

// CurrentUser returns the user of the last rendered recommendations
func (c *Console) CurrentUser() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentUser
}

// CurrentRecommendations returns the songs of the last rendered recommendations
func (c *Console) CurrentRecommendations() []models.Song {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Song, len(c.current))
	copy(out, c.current)
	return out
}

// Wait blocks until in-flight follow-on loads have finished
func (c *Console) Wait() {
	c.followOns.Wait()
}

// Close waits for follow-ons and stops the player and health cache
func (c *Console) Close() {
	c.Wait()
	c.player.Close()
	c.health.Close()
}

// invalid raises the single warning for a rejected input and returns the
// matching validation error
func (c *Console) invalid(message string) error {
	c.notifier.Notify(message, notify.Warning)
	return fmt.Errorf("%w: %s", ErrValidation, message)
}

// rememberSongs makes songs playable by id (must hold c.mu)
func (c *Console) rememberSongs(songs []models.Song) {
	for _, s := range songs {
		if s.ID != "" {
			c.playable[s.ID] = s
		}
	}
}
