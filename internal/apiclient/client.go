// Package apiclient talks to the recommendation REST API. Every call issues
// exactly one request: there are no retries.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"cadenza/internal/endpoints"
	"cadenza/pkg/models"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/sirupsen/logrus"
)

// maxErrorBodySize limits how much of a failed response body is kept for diagnostics
const maxErrorBodySize = 4 * 1024

// Options configures a Client
type Options struct {
	BaseURL        string
	Timeout        time.Duration // zero means no timeout
	CircuitBreaker bool
	Logger         *logrus.Logger
	HTTPClient     *http.Client // optional, mainly for tests
}

// Client is a recommendation API client. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	logger  *logrus.Logger
	breaker *gobreaker.CircuitBreaker[any]

	mu   sync.RWMutex
	urls endpoints.Builder
}

// New creates a client for the API at opts.BaseURL
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	c := &Client{
		http:   httpClient,
		logger: logger,
		urls:   endpoints.New(opts.BaseURL),
	}
	if opts.CircuitBreaker {
		c.breaker = newBreaker(logger)
	}
	return c
}

// SetBaseURL points the client at a different API base (config reload)
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls = endpoints.New(baseURL)
}

// Endpoints returns the current endpoint builder
func (c *Client) Endpoints() endpoints.Builder {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.urls
}

// Recommendations fetches the ranked recommendations for a user
func (c *Client) Recommendations(ctx context.Context, userID, algorithm string, n int) (models.RecommendationPayload, error) {
	return getData[models.RecommendationPayload](ctx, c, c.Endpoints().Recommend(userID, algorithm, n))
}

// HotSongs fetches the popularity chart for a tier
func (c *Client) HotSongs(ctx context.Context, tier string) (models.SongsPayload, error) {
	return getData[models.SongsPayload](ctx, c, c.Endpoints().HotSongs(tier))
}

// SongsByGenre fetches up to limit songs of one genre
func (c *Client) SongsByGenre(ctx context.Context, genre string, limit int) (models.SongsPayload, error) {
	return getData[models.SongsPayload](ctx, c, c.Endpoints().SongsByGenre(genre, limit))
}

// Genres fetches the list of known genres
func (c *Client) Genres(ctx context.Context) ([]string, error) {
	return getData[[]string](ctx, c, c.Endpoints().Genres())
}

// Song fetches a single song's details
func (c *Client) Song(ctx context.Context, songID string) (models.Song, error) {
	return getData[models.Song](ctx, c, c.Endpoints().Song(songID))
}

// UserProfile fetches a user's listening profile
func (c *Client) UserProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	return getData[models.UserProfile](ctx, c, c.Endpoints().UserProfile(userID))
}

// UserHistory fetches a user's interaction history
func (c *Client) UserHistory(ctx context.Context, userID string) (models.HistoryPayload, error) {
	return getData[models.HistoryPayload](ctx, c, c.Endpoints().UserHistory(userID))
}

// Health probes the API. The health body is not an envelope.
func (c *Client) Health(ctx context.Context) (models.Health, error) {
	reqURL := c.Endpoints().Health()
	result, err := c.execute(func() (any, error) {
		var health models.Health
		if err := c.doJSON(ctx, http.MethodGet, reqURL, nil, &health); err != nil {
			return nil, err
		}
		return health, nil
	})
	if err != nil {
		return models.Health{}, err
	}
	return result.(models.Health), nil
}

// SubmitFeedback posts a feedback record and checks the envelope
func (c *Client) SubmitFeedback(ctx context.Context, feedback models.Feedback) error {
	reqURL := c.Endpoints().Feedback()

	body, err := json.Marshal(feedback)
	if err != nil {
		return fmt.Errorf("failed to encode feedback: %w", err)
	}

	_, err = c.execute(func() (any, error) {
		var env models.Envelope[any]
		if err := c.doJSON(ctx, http.MethodPost, reqURL, body, &env); err != nil {
			return nil, err
		}
		if !env.Success {
			return nil, &EnvelopeError{URL: reqURL, Message: env.Message}
		}
		return nil, nil
	})
	return err
}

// getData issues one GET, decodes the envelope and returns its payload
func getData[T any](ctx context.Context, c *Client, reqURL string) (T, error) {
	var zero T

	result, err := c.execute(func() (any, error) {
		var env models.Envelope[T]
		if err := c.doJSON(ctx, http.MethodGet, reqURL, nil, &env); err != nil {
			return nil, err
		}
		if !env.Success {
			return nil, &EnvelopeError{URL: reqURL, Message: env.Message}
		}
		return env.Data, nil
	})
	if err != nil {
		return zero, err
	}

	data, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected result type %T", result)
	}
	return data, nil
}

// doJSON performs the HTTP exchange and decodes a JSON body into out
func (c *Client) doJSON(ctx context.Context, method, reqURL string, body []byte, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return &TransportError{URL: reqURL, Err: fmt.Errorf("create request failed: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"url":      reqURL,
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("API request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", readBodyForError(resp.Body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{URL: reqURL, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// readBodyForError reads at most maxErrorBodySize bytes for error reporting
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == 0 {
		return []byte("(empty body)")
	}
	return body
}
