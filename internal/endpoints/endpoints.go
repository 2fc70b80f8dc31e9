// Package endpoints maps logical recommendation API resources to URLs.
//
// Builders do no I/O and never fail: parameters are interpolated as given, so
// callers are responsible for passing identifiers that are safe in a URL.
package endpoints

import (
	"fmt"
	"strings"
)

// Builder produces URLs relative to the API base
type Builder struct {
	base string
}

// New returns a builder for baseURL. One trailing slash is dropped.
func New(baseURL string) Builder {
	return Builder{base: strings.TrimSuffix(baseURL, "/")}
}

// Base returns the normalised base URL
func (b Builder) Base() string {
	return b.base
}

// Recommend is GET /recommend/{userId}?algorithm={name}&n={count}
func (b Builder) Recommend(userID, algorithm string, n int) string {
	return fmt.Sprintf("%s/recommend/%s?algorithm=%s&n=%d", b.base, userID, algorithm, n)
}

// HotSongs is GET /songs/hot?tier={tier}
func (b Builder) HotSongs(tier string) string {
	return fmt.Sprintf("%s/songs/hot?tier=%s", b.base, tier)
}

// Song is GET /songs/{songId}
func (b Builder) Song(songID string) string {
	return fmt.Sprintf("%s/songs/%s", b.base, songID)
}

// UserProfile is GET /users/{userId}/profile
func (b Builder) UserProfile(userID string) string {
	return fmt.Sprintf("%s/users/%s/profile", b.base, userID)
}

// UserHistory is GET /users/{userId}/history
func (b Builder) UserHistory(userID string) string {
	return fmt.Sprintf("%s/users/%s/history", b.base, userID)
}

// SongsByGenre is GET /songs/by-genre?genre={genre}&limit={n}
func (b Builder) SongsByGenre(genre string, limit int) string {
	return fmt.Sprintf("%s/songs/by-genre?genre=%s&limit=%d", b.base, genre, limit)
}

// Genres is GET /songs/genres
func (b Builder) Genres() string {
	return b.base + "/songs/genres"
}

// Health is GET /health
func (b Builder) Health() string {
	return b.base + "/health"
}

// Feedback is POST /feedback
func (b Builder) Feedback() string {
	return b.base + "/feedback"
}
