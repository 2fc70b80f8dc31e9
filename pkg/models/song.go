package models

// AudioFeatures holds the subset of audio analysis values the console displays.
// Any of them may be missing from an upstream payload.
type AudioFeatures struct {
	Danceability *float64 `json:"danceability,omitempty"`
	Energy       *float64 `json:"energy,omitempty"`
	Valence      *float64 `json:"valence,omitempty"`
	Tempo        *float64 `json:"tempo,omitempty"`
}

// Song represents a song as returned by the recommendation API
type Song struct {
	ID            string         `json:"song_id"`
	Name          string         `json:"song_name"`
	Artist        string         `json:"artist"`
	Genre         string         `json:"genre"`
	Popularity    *float64       `json:"popularity,omitempty"` // 0-100
	Score         *float64       `json:"score,omitempty"`      // 0.0-1.0, recommendations only
	IsColdStart   bool           `json:"is_cold_start,omitempty"`
	AudioFeatures *AudioFeatures `json:"audio_features,omitempty"`
}

// RecommendationPayload is the data section of GET /recommend/{userId}
type RecommendationPayload struct {
	UserID          string `json:"user_id,omitempty"`
	Algorithm       string `json:"algorithm,omitempty"`
	Recommendations []Song `json:"recommendations"`
}

// RecommendationResult is an ordered recommendation list tagged with the request
// that produced it. Order is the server's order.
type RecommendationResult struct {
	UserID    string `json:"userId"`
	Algorithm string `json:"algorithm"`
	Count     int    `json:"count"`
	Songs     []Song `json:"songs"`
}

// SongsPayload is the data section of the hot and by-genre song listings
type SongsPayload struct {
	Songs []Song `json:"songs"`
}

// UserProfile summarises a user's listening behaviour
type UserProfile struct {
	UserID        string   `json:"user_id"`
	SongCount     *int     `json:"song_count,omitempty"`
	TopGenres     []string `json:"top_genres"`
	AvgPopularity *float64 `json:"avg_popularity,omitempty"`
}

// Behavior labels a history interaction
type Behavior string

const (
	BehaviorPlay     Behavior = "play"
	BehaviorLike     Behavior = "like"
	BehaviorFavorite Behavior = "favorite"
)

// HistoryEntry is one row of a user's interaction history
type HistoryEntry struct {
	SongID   string   `json:"song_id"`
	SongName string   `json:"song_name"`
	Artist   string   `json:"artist"`
	Behavior Behavior `json:"behavior"`
	TimeAgo  string   `json:"time_ago"`
}

// HistoryPayload is the data section of GET /users/{userId}/history
type HistoryPayload struct {
	History []HistoryEntry `json:"history"`
}
