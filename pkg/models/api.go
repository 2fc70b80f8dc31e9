package models

// Envelope is the wrapper every recommendation API endpoint returns
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// Health is the body of GET /health
type Health struct {
	Healthy bool `json:"healthy"`
}

// FeedbackContext carries the free-form part of a feedback submission
type FeedbackContext struct {
	Comment   string `json:"comment"`
	Timestamp string `json:"timestamp"` // ISO-8601
}

// Feedback is the body of POST /feedback
type Feedback struct {
	UserID  string          `json:"user_id"`
	SongID  string          `json:"song_id"`
	Action  string          `json:"action"`
	Context FeedbackContext `json:"context"`
}

// Preferences are the durable console defaults
type Preferences struct {
	DefaultAlgorithm string `json:"defaultAlgorithm"`
	DefaultCount     int    `json:"defaultCount"`
	DiversityValue   int    `json:"diversityValue"`
}
