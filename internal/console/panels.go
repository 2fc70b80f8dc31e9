package console

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"cadenza/internal/notify"
	"cadenza/internal/pipeline"
	"cadenza/internal/view"
	"cadenza/pkg/models"
)

// Recommend loads recommendations for userID. An empty algorithm or a
// non-positive n takes the saved default. After a rendered result the
// user's history and profile are loaded in the background.
func (c *Console) Recommend(ctx context.Context, userID, algorithm string, n int) (pipeline.Result[view.RecommendationsView], error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return pipeline.Result[view.RecommendationsView]{}, c.invalid("Please enter a user ID")
	}

	defaults := c.Preferences()
	algorithm = strings.TrimSpace(algorithm)
	if algorithm == "" {
		algorithm = defaults.DefaultAlgorithm
	}
	if n <= 0 {
		n = defaults.DefaultCount
	}

	res := pipeline.Run(ctx, c.pipeline, pipeline.Job[models.RecommendationResult, view.RecommendationsView]{
		Panel: pipeline.Recommendations,
		Fetch: func(ctx context.Context) (models.RecommendationResult, error) {
			// URLs are built by plain interpolation, so values are escaped here
			payload, err := c.api.Recommendations(ctx, url.PathEscape(userID), url.QueryEscape(algorithm), n)
			if err != nil {
				return models.RecommendationResult{}, err
			}
			result := models.RecommendationResult{
				UserID:    payload.UserID,
				Algorithm: payload.Algorithm,
				Count:     n,
				Songs:     payload.Recommendations,
			}
			if result.UserID == "" {
				result.UserID = userID
			}
			if result.Algorithm == "" {
				result.Algorithm = algorithm
			}
			return result, nil
		},
		Render: view.Recommendations,
		Mock: func() models.RecommendationResult {
			return view.MockRecommendations(userID, algorithm, n)
		},
		Commit: func(result models.RecommendationResult, v view.RecommendationsView, fallback bool) {
			c.mu.Lock()
			defer c.mu.Unlock()

			c.views.recommendations = &v
			c.rememberSongs(result.Songs)
			if !fallback {
				c.currentUser = userID
				c.current = result.Songs
			}
		},
	})

	if res.Fallback || res.Stale {
		return res, nil
	}

	c.notifier.Notify(fmt.Sprintf("Loaded %s recommendations for user %s", res.View.Count, userID), notify.Success)
	c.startFollowOns(ctx, userID)
	return res, nil
}

// startFollowOns loads history and profile for userID without blocking the
// caller. Their outcome never touches the recommendations panel.
func (c *Console) startFollowOns(ctx context.Context, userID string) {
	ctx = context.WithoutCancel(ctx)

	c.followOns.Add(2)
	go func() {
		defer c.followOns.Done()
		c.loadHistory(ctx, userID)
	}()
	go func() {
		defer c.followOns.Done()
		c.loadProfile(ctx, userID)
	}()
}

// HotSongs loads the hot songs of tier, "all" when empty
func (c *Console) HotSongs(ctx context.Context, tier string) pipeline.Result[view.SongListView] {
	tier = strings.TrimSpace(tier)
	if tier == "" {
		tier = c.defaultTier
	}

	return pipeline.Run(ctx, c.pipeline, pipeline.Job[[]models.Song, view.SongListView]{
		Panel: pipeline.HotSongs,
		Fetch: func(ctx context.Context) ([]models.Song, error) {
			payload, err := c.api.HotSongs(ctx, url.QueryEscape(tier))
			return payload.Songs, err
		},
		Render: func(songs []models.Song) view.SongListView { return view.HotSongs(tier, songs) },
		Mock:   view.MockHotSongs,
		Commit: func(songs []models.Song, v view.SongListView, _ bool) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.views.hotSongs = &v
			c.rememberSongs(songs)
		},
	})
}

// SongsByGenre loads up to limit songs of genre. A non-positive limit uses
// the configured default.
func (c *Console) SongsByGenre(ctx context.Context, genre string, limit int) (pipeline.Result[view.SongListView], error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return pipeline.Result[view.SongListView]{}, c.invalid("Please choose a genre")
	}
	if limit <= 0 {
		limit = c.genreLimit
	}

	return pipeline.Run(ctx, c.pipeline, pipeline.Job[[]models.Song, view.SongListView]{
		Panel: pipeline.GenreSongs,
		Fetch: func(ctx context.Context) ([]models.Song, error) {
			payload, err := c.api.SongsByGenre(ctx, url.QueryEscape(genre), limit)
			return payload.Songs, err
		},
		Render: func(songs []models.Song) view.SongListView { return view.GenreSongs(genre, songs) },
		Mock:   func() []models.Song { return view.MockGenreSongs(genre) },
		Commit: func(songs []models.Song, v view.SongListView, _ bool) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.views.genreSongs = &v
			c.rememberSongs(songs)
		},
	}), nil
}

// Genres loads the genre picker
func (c *Console) Genres(ctx context.Context) pipeline.Result[view.GenresView] {
	return pipeline.Run(ctx, c.pipeline, pipeline.Job[[]string, view.GenresView]{
		Panel:  pipeline.Genres,
		Fetch:  c.api.Genres,
		Render: view.Genres,
		Mock:   view.MockGenres,
		Commit: func(_ []string, v view.GenresView, _ bool) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.views.genres = &v
		},
	})
}

// History loads the listening history of userID
func (c *Console) History(ctx context.Context, userID string) (pipeline.Result[view.HistoryView], error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return pipeline.Result[view.HistoryView]{}, c.invalid("Please enter a user ID")
	}
	return c.loadHistory(ctx, userID), nil
}

func (c *Console) loadHistory(ctx context.Context, userID string) pipeline.Result[view.HistoryView] {
	return pipeline.Run(ctx, c.pipeline, pipeline.Job[[]models.HistoryEntry, view.HistoryView]{
		Panel: pipeline.History,
		Fetch: func(ctx context.Context) ([]models.HistoryEntry, error) {
			payload, err := c.api.UserHistory(ctx, url.PathEscape(userID))
			return payload.History, err
		},
		Render: func(entries []models.HistoryEntry) view.HistoryView { return view.History(userID, entries) },
		Mock:   view.MockHistory,
		Commit: func(_ []models.HistoryEntry, v view.HistoryView, _ bool) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.views.history = &v
		},
	})
}

// Profile loads the profile of userID
func (c *Console) Profile(ctx context.Context, userID string) (pipeline.Result[view.ProfileView], error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return pipeline.Result[view.ProfileView]{}, c.invalid("Please enter a user ID")
	}
	return c.loadProfile(ctx, userID), nil
}

func (c *Console) loadProfile(ctx context.Context, userID string) pipeline.Result[view.ProfileView] {
	return pipeline.Run(ctx, c.pipeline, pipeline.Job[models.UserProfile, view.ProfileView]{
		Panel: pipeline.Profile,
		Fetch: func(ctx context.Context) (models.UserProfile, error) {
			profile, err := c.api.UserProfile(ctx, url.PathEscape(userID))
			if err == nil && profile.UserID == "" {
				profile.UserID = userID
			}
			return profile, err
		},
		Render: view.Profile,
		Mock:   func() models.UserProfile { return view.MockProfile(userID) },
		Commit: func(_ models.UserProfile, v view.ProfileView, _ bool) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.views.profile = &v
		},
	})
}

// SongDetail loads one song
func (c *Console) SongDetail(ctx context.Context, songID string) (pipeline.Result[view.SongDetailView], error) {
	songID = strings.TrimSpace(songID)
	if songID == "" {
		return pipeline.Result[view.SongDetailView]{}, c.invalid("Please choose a song")
	}

	return pipeline.Run(ctx, c.pipeline, pipeline.Job[models.Song, view.SongDetailView]{
		Panel: pipeline.SongDetail,
		Fetch: func(ctx context.Context) (models.Song, error) {
			return c.api.Song(ctx, url.PathEscape(songID))
		},
		Render: view.SongDetail,
		Mock:   func() models.Song { return view.MockSongDetail(songID) },
		Commit: func(song models.Song, v view.SongDetailView, _ bool) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.views.songDetail = &v
			c.rememberSongs([]models.Song{song})
		},
	}), nil
}
