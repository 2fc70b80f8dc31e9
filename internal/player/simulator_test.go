package player

import (
	"sync"
	"testing"
	"time"

	"cadenza/internal/notify"
	"cadenza/pkg/models"
)

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// fakeClock hands out manually driven tickers and remembers them
type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) active() []*fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTicker
	for _, t := range c.tickers {
		if !t.isStopped() {
			out = append(out, t)
		}
	}
	return out
}

func newTestSimulator(duration int) (*Simulator, *fakeClock, *notify.Center) {
	clock := &fakeClock{}
	center := notify.NewCenter(time.Minute)
	sim := NewSimulator(NewStateManager(duration), center, time.Second, clock.NewTicker)
	return sim, clock, center
}

func waitForElapsed(t *testing.T, sm *StateManager, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for sm.GetState().Elapsed != want {
		if time.Now().After(deadline) {
			t.Fatalf("elapsed = %d, want %d", sm.GetState().Elapsed, want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTripleToggleKeepsOneTimer(t *testing.T) {
	sim, clock, center := newTestSimulator(180)
	defer center.Close()
	defer sim.Close()

	if !sim.Toggle() || sim.Toggle() || !sim.Toggle() {
		t.Fatal("toggle sequence should be play, pause, play")
	}

	active := clock.active()
	if len(active) != 1 {
		t.Fatalf("%d active tickers, want 1", len(active))
	}

	active[0].ch <- time.Now()
	waitForElapsed(t, sim.State(), 1)
	active[0].ch <- time.Now()
	waitForElapsed(t, sim.State(), 2)

	// Nothing else may advance the counter
	time.Sleep(20 * time.Millisecond)
	if got := sim.State().GetState().Elapsed; got != 2 {
		t.Errorf("elapsed = %d after two ticks, want 2", got)
	}
}

func TestPlayTwiceReplacesTimer(t *testing.T) {
	sim, clock, center := newTestSimulator(180)
	defer center.Close()
	defer sim.Close()

	sim.Play()
	sim.Play()

	if n := len(clock.active()); n != 1 {
		t.Errorf("%d active tickers, want 1", n)
	}
	if len(clock.tickers) != 2 {
		t.Errorf("created %d tickers, want 2", len(clock.tickers))
	}
}

func TestPauseKeepsElapsed(t *testing.T) {
	sim, clock, center := newTestSimulator(180)
	defer center.Close()

	sim.Play()
	clock.active()[0].ch <- time.Now()
	waitForElapsed(t, sim.State(), 1)

	sim.Pause()
	state := sim.State().GetState()
	if state.IsPlaying {
		t.Error("still playing after Pause()")
	}
	if state.Elapsed != 1 {
		t.Errorf("elapsed = %d after pause, want 1", state.Elapsed)
	}
	if n := len(clock.active()); n != 0 {
		t.Errorf("%d active tickers after pause, want 0", n)
	}
}

func TestTrackEndWrapsAndAdvances(t *testing.T) {
	sim, clock, center := newTestSimulator(3)
	defer center.Close()
	defer sim.Close()

	sim.Play()
	ticker := clock.active()[0]
	ticker.ch <- time.Now()
	ticker.ch <- time.Now()
	waitForElapsed(t, sim.State(), 2)
	ticker.ch <- time.Now()
	waitForElapsed(t, sim.State(), 0)

	deadline := time.Now().Add(time.Second)
	for len(center.List()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no next-track notification")
		}
		time.Sleep(time.Millisecond)
	}
	if msg := center.List()[0].Message; msg != "Skipped to next track" {
		t.Errorf("notification = %q", msg)
	}
	if !sim.State().GetState().IsPlaying {
		t.Error("playback should continue on the next track")
	}
}

func TestLoadRewindsAndPlays(t *testing.T) {
	sim, clock, center := newTestSimulator(180)
	defer center.Close()
	defer sim.Close()

	sim.Play()
	clock.active()[0].ch <- time.Now()
	waitForElapsed(t, sim.State(), 1)

	sim.Load(&models.Song{ID: "S9", Name: "Loaded"})
	state := sim.State().GetState()
	if state.Song == nil || state.Song.ID != "S9" {
		t.Fatalf("song = %+v", state.Song)
	}
	if state.Elapsed != 0 || !state.IsPlaying {
		t.Errorf("elapsed = %d playing = %v, want 0 and true", state.Elapsed, state.IsPlaying)
	}
	if n := len(clock.active()); n != 1 {
		t.Errorf("%d active tickers, want 1", n)
	}
}

func TestNextPreviousOnlyNotify(t *testing.T) {
	sim, _, center := newTestSimulator(180)
	defer center.Close()

	sim.Next()
	sim.Previous()

	items := center.List()
	if len(items) != 2 {
		t.Fatalf("got %d notifications, want 2", len(items))
	}
	for _, n := range items {
		if n.Severity != notify.Info {
			t.Errorf("severity = %s, want info", n.Severity)
		}
	}
}

func TestSetVolumeClamps(t *testing.T) {
	sim, _, center := newTestSimulator(180)
	defer center.Close()

	sim.SetVolume(1.7, false)
	if v := sim.State().GetState().Volume; v != 1 {
		t.Errorf("volume = %v, want 1", v)
	}
	sim.SetVolume(-0.2, true)
	state := sim.State().GetState()
	if state.Volume != 0 || !state.IsMuted {
		t.Errorf("volume = %v muted = %v", state.Volume, state.IsMuted)
	}
}

func TestStateSubscribe(t *testing.T) {
	sm := NewStateManager(180)
	updates := sm.Subscribe()

	sm.SetPlaying(true)
	select {
	case st := <-updates:
		if !st.IsPlaying {
			t.Error("update should report playing")
		}
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}

	sm.Unsubscribe(updates)
	if _, ok := <-updates; ok {
		t.Error("channel not closed after Unsubscribe")
	}
}
