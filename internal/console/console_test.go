package console

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cadenza/internal/apiclient"
	"cadenza/internal/database"
	"cadenza/internal/logging"
	"cadenza/internal/notify"
	"cadenza/internal/player"
	"cadenza/internal/prefs"
	"cadenza/pkg/models"
)

// fakeAPI answers from function fields and counts every call
type fakeAPI struct {
	calls int32

	recommendations func(userID, algorithm string, n int) (models.RecommendationPayload, error)
	hotSongs        func(tier string) (models.SongsPayload, error)
	songsByGenre    func(genre string, limit int) (models.SongsPayload, error)
	genres          func() ([]string, error)
	song            func(songID string) (models.Song, error)
	profile         func(userID string) (models.UserProfile, error)
	history         func(userID string) (models.HistoryPayload, error)
	health          func() (models.Health, error)
	feedback        func(models.Feedback) error
}

var errDown = &apiclient.TransportError{URL: "http://api.test", Err: errors.New("connection refused")}

func (f *fakeAPI) hit() { atomic.AddInt32(&f.calls, 1) }

func (f *fakeAPI) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

func (f *fakeAPI) Recommendations(_ context.Context, userID, algorithm string, n int) (models.RecommendationPayload, error) {
	f.hit()
	if f.recommendations == nil {
		return models.RecommendationPayload{}, errDown
	}
	return f.recommendations(userID, algorithm, n)
}

func (f *fakeAPI) HotSongs(_ context.Context, tier string) (models.SongsPayload, error) {
	f.hit()
	if f.hotSongs == nil {
		return models.SongsPayload{}, errDown
	}
	return f.hotSongs(tier)
}

func (f *fakeAPI) SongsByGenre(_ context.Context, genre string, limit int) (models.SongsPayload, error) {
	f.hit()
	if f.songsByGenre == nil {
		return models.SongsPayload{}, errDown
	}
	return f.songsByGenre(genre, limit)
}

func (f *fakeAPI) Genres(context.Context) ([]string, error) {
	f.hit()
	if f.genres == nil {
		return nil, errDown
	}
	return f.genres()
}

func (f *fakeAPI) Song(_ context.Context, songID string) (models.Song, error) {
	f.hit()
	if f.song == nil {
		return models.Song{}, errDown
	}
	return f.song(songID)
}

func (f *fakeAPI) UserProfile(_ context.Context, userID string) (models.UserProfile, error) {
	f.hit()
	if f.profile == nil {
		return models.UserProfile{}, errDown
	}
	return f.profile(userID)
}

func (f *fakeAPI) UserHistory(_ context.Context, userID string) (models.HistoryPayload, error) {
	f.hit()
	if f.history == nil {
		return models.HistoryPayload{}, errDown
	}
	return f.history(userID)
}

func (f *fakeAPI) Health(context.Context) (models.Health, error) {
	f.hit()
	if f.health == nil {
		return models.Health{}, errDown
	}
	return f.health()
}

func (f *fakeAPI) SubmitFeedback(_ context.Context, fb models.Feedback) error {
	f.hit()
	if f.feedback == nil {
		return errDown
	}
	return f.feedback(fb)
}

type recorder struct {
	mu    sync.Mutex
	items []notify.Notification
}

func (r *recorder) Notify(message string, severity notify.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, notify.Notification{Message: message, Severity: severity})
}

func (r *recorder) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.items...)
}

// mapKV is an in-memory preference backend
type mapKV struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func (m *mapKV) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.data[key]
	if !ok {
		return "", database.ErrNotFound
	}
	return v, nil
}

func (m *mapKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.data, key)
	return nil
}

func (m *mapKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

// idleTicker never fires
type idleTicker struct{ c chan time.Time }

func (t idleTicker) C() <-chan time.Time { return t.c }
func (t idleTicker) Stop()               {}

func newIdleTicker(time.Duration) player.Ticker {
	return idleTicker{c: make(chan time.Time)}
}

type fixture struct {
	console *Console
	api     *fakeAPI
	notes   *recorder
	kv      *mapKV
}

func newFixture(t *testing.T, api *fakeAPI) *fixture {
	t.Helper()
	notes := &recorder{}
	kv := &mapKV{data: map[string]string{}}
	logger := logging.Discard()

	sim := player.NewSimulator(player.NewStateManager(180), notes, time.Second, newIdleTicker)
	c := New(Options{
		API:         api,
		Notifier:    notes,
		Player:      sim,
		Preferences: prefs.NewStore(kv, logger),
		Logger:      logger,
		HealthTTL:   time.Minute,
		Now: func() time.Time {
			return time.Date(2024, 5, 1, 14, 30, 45, 123_000_000, time.FixedZone("CEST", 2*3600))
		},
	})
	t.Cleanup(c.Close)
	return &fixture{console: c, api: api, notes: notes, kv: kv}
}

func TestRecommendEmptyUserID(t *testing.T) {
	f := newFixture(t, &fakeAPI{})

	for _, id := range []string{"", "   "} {
		f.notes.items = nil
		_, err := f.console.Recommend(context.Background(), id, "hybrid", 10)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Recommend(%q) error = %v, want ErrValidation", id, err)
		}
		items := f.notes.all()
		if len(items) != 1 || items[0].Severity != notify.Warning {
			t.Errorf("notifications = %+v, want exactly one warning", items)
		}
	}

	if f.api.Calls() != 0 {
		t.Errorf("API called %d times, want 0", f.api.Calls())
	}
}

func TestRecommendFallback(t *testing.T) {
	f := newFixture(t, &fakeAPI{})

	res, err := f.console.Recommend(context.Background(), "1001", "hybrid", 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	f.console.Wait()

	if !res.Fallback {
		t.Error("Fallback = false")
	}
	if len(res.View.Cards) != 3 || res.View.Count != "3" {
		t.Errorf("view = %d cards, count %q; want 3 and \"3\"", len(res.View.Cards), res.View.Count)
	}
	items := f.notes.all()
	if len(items) != 1 || items[0].Severity != notify.Error {
		t.Errorf("notifications = %+v, want one error", items)
	}
	if f.api.Calls() != 1 {
		t.Errorf("API called %d times, want 1 (no follow-ons after fallback)", f.api.Calls())
	}

	snap := f.console.Snapshot()
	if snap.Recommendations == nil || snap.Recommendations.Count != "3" {
		t.Errorf("committed recommendations = %+v", snap.Recommendations)
	}
	if snap.UserID != "" || len(f.console.CurrentRecommendations()) != 0 {
		t.Error("mock recommendations became the current recommendations")
	}
}

func TestRecommendSuccessRunsFollowOns(t *testing.T) {
	count := 42
	api := &fakeAPI{
		recommendations: func(userID, algorithm string, n int) (models.RecommendationPayload, error) {
			if userID != "1001" || algorithm != "itemcf" || n != 2 {
				t.Errorf("Recommendations(%q, %q, %d)", userID, algorithm, n)
			}
			return models.RecommendationPayload{Recommendations: []models.Song{
				{ID: "S2", Name: "Second"},
				{ID: "S1", Name: "First"},
			}}, nil
		},
		history: func(string) (models.HistoryPayload, error) {
			return models.HistoryPayload{History: []models.HistoryEntry{{SongID: "S1"}}}, nil
		},
		profile: func(userID string) (models.UserProfile, error) {
			return models.UserProfile{SongCount: &count}, nil
		},
	}
	f := newFixture(t, api)

	res, err := f.console.Recommend(context.Background(), " 1001 ", "itemcf", 2)
	if err != nil {
		t.Fatal(err)
	}
	f.console.Wait()

	if res.Fallback || res.View.Count != "2" || res.View.Cards[0].ID != "S2" {
		t.Errorf("result = %+v", res)
	}
	if f.api.Calls() != 3 {
		t.Errorf("API called %d times, want 3", f.api.Calls())
	}

	snap := f.console.Snapshot()
	if snap.UserID != "1001" {
		t.Errorf("current user = %q", snap.UserID)
	}
	if snap.History == nil || len(snap.History.Rows) != 1 {
		t.Errorf("history = %+v", snap.History)
	}
	if snap.Profile == nil || snap.Profile.SongCount != 42 || snap.Profile.UserID != "1001" {
		t.Errorf("profile = %+v", snap.Profile)
	}

	var success int
	for _, n := range f.notes.all() {
		if n.Severity == notify.Success {
			success++
		}
	}
	if success != 1 {
		t.Errorf("success notifications = %d, want 1", success)
	}
}

func TestFollowOnFailureKeepsRecommendations(t *testing.T) {
	api := &fakeAPI{
		recommendations: func(string, string, int) (models.RecommendationPayload, error) {
			return models.RecommendationPayload{Recommendations: []models.Song{{ID: "S1"}}}, nil
		},
	}
	f := newFixture(t, api)

	if _, err := f.console.Recommend(context.Background(), "1001", "", 0); err != nil {
		t.Fatal(err)
	}
	f.console.Wait()

	snap := f.console.Snapshot()
	if snap.Recommendations == nil || snap.Recommendations.Count != "1" {
		t.Errorf("recommendations = %+v", snap.Recommendations)
	}
	if snap.History == nil || len(snap.History.Rows) != 3 {
		t.Errorf("history fallback = %+v", snap.History)
	}
	if got := f.console.CurrentRecommendations(); len(got) != 1 || got[0].ID != "S1" {
		t.Errorf("current = %+v", got)
	}
}

func TestRecommendUsesSavedDefaults(t *testing.T) {
	var gotAlgo string
	var gotN int
	api := &fakeAPI{
		recommendations: func(_ string, algorithm string, n int) (models.RecommendationPayload, error) {
			gotAlgo, gotN = algorithm, n
			return models.RecommendationPayload{}, nil
		},
	}
	f := newFixture(t, api)
	if err := f.console.SavePreferences(models.Preferences{DefaultAlgorithm: "popular", DefaultCount: 25, DiversityValue: 3}); err != nil {
		t.Fatal(err)
	}

	if _, err := f.console.Recommend(context.Background(), "7", "", 0); err != nil {
		t.Fatal(err)
	}
	f.console.Wait()

	if gotAlgo != "popular" || gotN != 25 {
		t.Errorf("request used %q/%d, want popular/25", gotAlgo, gotN)
	}
}

func TestHotSongsEmptyList(t *testing.T) {
	var gotTier string
	api := &fakeAPI{
		hotSongs: func(tier string) (models.SongsPayload, error) {
			gotTier = tier
			return models.SongsPayload{Songs: []models.Song{}}, nil
		},
	}
	f := newFixture(t, api)

	res := f.console.HotSongs(context.Background(), "")
	if gotTier != "all" {
		t.Errorf("tier = %q, want all", gotTier)
	}
	if res.Fallback || res.View.Empty == nil || len(res.View.Cards) != 0 {
		t.Errorf("view = %+v, want empty state", res.View)
	}
	if len(f.notes.all()) != 0 {
		t.Errorf("notifications = %+v", f.notes.all())
	}
}

func TestPanelFallbacks(t *testing.T) {
	f := newFixture(t, &fakeAPI{})
	ctx := context.Background()

	if res := f.console.HotSongs(ctx, "all"); len(res.View.Cards) != 5 {
		t.Errorf("hot songs fallback = %d cards, want 5", len(res.View.Cards))
	}
	if res, _ := f.console.SongsByGenre(ctx, "Jazz", 0); len(res.View.Cards) != 3 || res.View.Cards[0].Genre != "Jazz" {
		t.Errorf("genre fallback = %+v", res.View)
	}
	if res := f.console.Genres(ctx); len(res.View.Chips) != 8 {
		t.Errorf("genres fallback = %d chips, want 8", len(res.View.Chips))
	}
	if res, _ := f.console.History(ctx, "1001"); len(res.View.Rows) != 3 {
		t.Errorf("history fallback = %d rows, want 3", len(res.View.Rows))
	}
	if res, _ := f.console.Profile(ctx, "1001"); res.View.UserID != "1001" {
		t.Errorf("profile fallback = %+v", res.View)
	}
	if res, _ := f.console.SongDetail(ctx, "S9"); res.View.Card.ID != "S9" {
		t.Errorf("detail fallback = %+v", res.View)
	}

	if len(f.notes.all()) != 6 {
		t.Errorf("notifications = %d, want one per panel", len(f.notes.all()))
	}
}

func TestRequiredInputs(t *testing.T) {
	f := newFixture(t, &fakeAPI{})
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["genre"] = f.console.SongsByGenre(ctx, " ", 10)
	_, checks["history"] = f.console.History(ctx, "")
	_, checks["profile"] = f.console.Profile(ctx, "")
	_, checks["detail"] = f.console.SongDetail(ctx, "")
	_, checks["play"] = f.console.PlaySong("")

	for name, err := range checks {
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: error = %v, want ErrValidation", name, err)
		}
	}
	if f.api.Calls() != 0 {
		t.Errorf("API called %d times", f.api.Calls())
	}
}

func TestSubmitFeedback(t *testing.T) {
	var got models.Feedback
	api := &fakeAPI{
		feedback: func(fb models.Feedback) error {
			got = fb
			return nil
		},
	}
	f := newFixture(t, api)

	if err := f.console.SubmitFeedback(context.Background(), "1001", "S1", "like", ""); err != nil {
		t.Fatal(err)
	}

	want := models.Feedback{
		UserID:  "1001",
		SongID:  "S1",
		Action:  "like",
		Context: models.FeedbackContext{Comment: "", Timestamp: "2024-05-01T12:30:45.123Z"},
	}
	if got != want {
		t.Errorf("feedback = %+v, want %+v", got, want)
	}
	items := f.notes.all()
	if len(items) != 1 || items[0].Severity != notify.Success {
		t.Errorf("notifications = %+v", items)
	}
}

func TestSubmitFeedbackFailure(t *testing.T) {
	f := newFixture(t, &fakeAPI{})

	err := f.console.SubmitFeedback(context.Background(), "1001", "S1", "like", "nice")
	var trErr *apiclient.TransportError
	if !errors.As(err, &trErr) {
		t.Errorf("error = %v, want transport error", err)
	}
	items := f.notes.all()
	if len(items) != 1 || items[0].Severity != notify.Error {
		t.Errorf("notifications = %+v", items)
	}
}

func TestSubmitFeedbackValidation(t *testing.T) {
	f := newFixture(t, &fakeAPI{})

	cases := [][3]string{{"", "S1", "like"}, {"1001", "", "like"}, {"1001", "S1", " "}}
	for _, c := range cases {
		if err := f.console.SubmitFeedback(context.Background(), c[0], c[1], c[2], ""); !errors.Is(err, ErrValidation) {
			t.Errorf("SubmitFeedback(%q) error = %v", c, err)
		}
	}
	if f.api.Calls() != 0 {
		t.Errorf("API called %d times", f.api.Calls())
	}
	if len(f.notes.all()) != 3 {
		t.Errorf("notifications = %d, want 3", len(f.notes.all()))
	}
}

func TestPlaySong(t *testing.T) {
	f := newFixture(t, &fakeAPI{})
	f.console.Recommend(context.Background(), "1001", "hybrid", 10)
	f.console.Wait()

	id := f.console.Snapshot().Recommendations.Cards[0].ID
	state, err := f.console.PlaySong(id)
	if err != nil {
		t.Fatal(err)
	}
	if !state.IsPlaying || state.Song == nil || state.Song.ID != id || state.Elapsed != 0 {
		t.Errorf("state = %+v", state)
	}

	if _, err := f.console.PlaySong("nope"); !errors.Is(err, ErrValidation) {
		t.Errorf("PlaySong(unknown) error = %v", err)
	}

	if f.console.TogglePlayback() {
		t.Error("toggle after play should pause")
	}
	if f.console.PlayerState().IsPlaying {
		t.Error("still playing after toggle")
	}
}

func TestPreferences(t *testing.T) {
	f := newFixture(t, &fakeAPI{})

	if err := f.console.SavePreferences(models.Preferences{DefaultAlgorithm: "bogus", DefaultCount: 10}); !errors.Is(err, ErrValidation) {
		t.Errorf("invalid save error = %v", err)
	}

	f.kv.data[prefs.KeyTheme] = prefs.ThemeDark
	f.kv.data[prefs.KeyPreferences] = `{"defaultAlgorithm":"content","defaultCount":15,"diversityValue":10}`
	if err := f.console.ApplyStoredPreferences(); err != nil {
		t.Fatal(err)
	}
	snap := f.console.Snapshot()
	if snap.Theme != "dark" || snap.Preferences.DefaultAlgorithm != "content" || snap.DiversityLabel != "very high" {
		t.Errorf("snapshot = %+v", snap)
	}

	theme, err := f.console.ToggleTheme()
	if err != nil || theme != "light" || f.console.Theme() != "light" {
		t.Errorf("ToggleTheme() = %q, %v", theme, err)
	}

	p, err := f.console.ResetPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if p != prefs.Defaults() || f.console.Preferences() != prefs.Defaults() {
		t.Errorf("after reset = %+v", f.console.Preferences())
	}
	if _, stored := f.kv.data[prefs.KeyPreferences]; stored {
		t.Error("saved preferences not removed")
	}
}

func TestPreferencesStorageError(t *testing.T) {
	f := newFixture(t, &fakeAPI{})
	boom := errors.New("disk full")
	f.kv.err = boom

	if err := f.console.ApplyStoredPreferences(); !errors.Is(err, boom) {
		t.Errorf("ApplyStoredPreferences() error = %v", err)
	}
	if err := f.console.SavePreferences(prefs.Defaults()); !errors.Is(err, boom) || errors.Is(err, ErrValidation) {
		t.Errorf("SavePreferences() error = %v", err)
	}
	if _, err := f.console.ToggleTheme(); !errors.Is(err, boom) {
		t.Errorf("ToggleTheme() error = %v", err)
	}
	if _, err := f.console.ResetPreferences(); !errors.Is(err, boom) {
		t.Errorf("ResetPreferences() error = %v", err)
	}
}

func TestHealthIsCached(t *testing.T) {
	api := &fakeAPI{
		health: func() (models.Health, error) { return models.Health{Healthy: true}, nil },
	}
	f := newFixture(t, api)

	for i := 0; i < 3; i++ {
		if !f.console.Health(context.Background()).Healthy {
			t.Fatal("Health() unhealthy")
		}
	}
	if f.api.Calls() != 1 {
		t.Errorf("health probed %d times, want 1", f.api.Calls())
	}
}

func TestHealthUnreachable(t *testing.T) {
	f := newFixture(t, &fakeAPI{})

	status := f.console.Health(context.Background())
	if status.Healthy || status.Error == "" {
		t.Errorf("status = %+v", status)
	}
}

func TestPanelLookup(t *testing.T) {
	f := newFixture(t, &fakeAPI{})

	if _, ok := f.console.Panel("genres"); ok {
		t.Error("unloaded panel reported present")
	}
	f.console.Genres(context.Background())
	if _, ok := f.console.Panel("genres"); !ok {
		t.Error("loaded panel missing")
	}
}

// newClientConsole runs a console on a real API client against upstream
func newClientConsole(t *testing.T, upstream http.HandlerFunc) *Console {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	logger := logging.Discard()
	notes := &recorder{}
	c := New(Options{
		API:         apiclient.New(apiclient.Options{BaseURL: srv.URL + "/api", Logger: logger}),
		Notifier:    notes,
		Player:      player.NewSimulator(player.NewStateManager(180), notes, time.Second, newIdleTicker),
		Preferences: prefs.NewStore(&mapKV{data: map[string]string{}}, logger),
		Logger:      logger,
	})
	t.Cleanup(c.Close)
	return c
}

func TestGenreWithReservedCharacters(t *testing.T) {
	var (
		mu    sync.Mutex
		genre string
		limit string
	)
	c := newClientConsole(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		genre = r.URL.Query().Get("genre")
		limit = r.URL.Query().Get("limit")
		mu.Unlock()
		w.Write([]byte(`{"success":true,"data":{"songs":[{"song_id":"S7","song_name":"Slow Jam"}]}}`))
	})

	res, err := c.SongsByGenre(context.Background(), "R&B", 20)
	if err != nil {
		t.Fatal(err)
	}
	if res.Fallback {
		t.Fatalf("fell back: %s", res.Reason)
	}

	mu.Lock()
	defer mu.Unlock()
	if genre != "R&B" || limit != "20" {
		t.Errorf("upstream saw genre=%q limit=%q, want R&B and 20", genre, limit)
	}
	if res.View.Title != "Genre: R&B" {
		t.Errorf("title = %q", res.View.Title)
	}
}

func TestUserIDIsPathEscaped(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
		algo  string
	)
	c := newClientConsole(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.EscapedPath())
		if strings.HasPrefix(r.URL.Path, "/api/recommend/") {
			algo = r.URL.Query().Get("algorithm")
		}
		mu.Unlock()

		switch r.URL.Path {
		case "/api/recommend/user 7":
			w.Write([]byte(`{"success":true,"data":{"recommendations":[{"song_id":"S1","song_name":"One"}]}}`))
		case "/api/songs/a/b":
			w.Write([]byte(`{"success":true,"data":{"song_id":"a/b","song_name":"Slash"}}`))
		default:
			http.NotFound(w, r)
		}
	})

	res, err := c.Recommend(context.Background(), "user 7", "hybrid", 5)
	if err != nil {
		t.Fatal(err)
	}
	if res.Fallback {
		t.Fatalf("recommendations fell back: %s", res.Reason)
	}
	if c.CurrentUser() != "user 7" {
		t.Errorf("current user = %q", c.CurrentUser())
	}

	detail, err := c.SongDetail(context.Background(), "a/b")
	if err != nil {
		t.Fatal(err)
	}
	if detail.Fallback {
		t.Errorf("song detail fell back: %s", detail.Reason)
	}
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	seen := make(map[string]bool)
	for _, p := range paths {
		seen[p] = true
	}
	for _, p := range []string{
		"/api/recommend/user%207",
		"/api/users/user%207/history",
		"/api/users/user%207/profile",
		"/api/songs/a%2Fb",
	} {
		if !seen[p] {
			t.Errorf("upstream never saw %s (got %v)", p, paths)
		}
	}
	if algo != "hybrid" {
		t.Errorf("algorithm = %q", algo)
	}
}
