// Package player simulates an audio player. Nothing is decoded or played:
// a once-per-interval tick advances a progress counter against a fixed track
// length.
package player

import (
	"sync"
	"time"

	"cadenza/internal/notify"
	"cadenza/pkg/models"
)

// Ticker is the part of time.Ticker the simulator depends on
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker firing every d
type TickerFunc func(d time.Duration) Ticker

type realTicker struct {
	*time.Ticker
}

func (t realTicker) C() <-chan time.Time {
	return t.Ticker.C
}

// NewRealTicker is the default TickerFunc
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

// tickTask is the handle of the running progress tick. Whoever holds it owns
// the goroutine and must cancel it.
type tickTask struct {
	ticker Ticker
	stop   chan struct{}
	done   chan struct{}
}

// cancel stops the task and waits until its goroutine has exited
func (t *tickTask) cancel() {
	close(t.stop)
	t.ticker.Stop()
	<-t.done
}

// Simulator drives a StateManager from a repeating tick
type Simulator struct {
	state     *StateManager
	notifier  notify.Notifier
	interval  time.Duration
	newTicker TickerFunc

	mu   sync.Mutex
	task *tickTask
}

// NewSimulator creates a stopped simulator. A nil newTicker uses real tickers.
func NewSimulator(state *StateManager, notifier notify.Notifier, interval time.Duration, newTicker TickerFunc) *Simulator {
	if newTicker == nil {
		newTicker = NewRealTicker
	}
	return &Simulator{
		state:     state,
		notifier:  notifier,
		interval:  interval,
		newTicker: newTicker,
	}
}

// State returns the player state manager
func (s *Simulator) State() *StateManager {
	return s.state
}

// Toggle switches between playing and paused and reports the new state
func (s *Simulator) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.task != nil {
		s.pauseLocked()
		return false
	}
	s.playLocked()
	return true
}

// Play starts playback; already playing restarts the tick
func (s *Simulator) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playLocked()
}

// Pause stops the tick without rewinding
func (s *Simulator) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseLocked()
}

// Load puts a song in the player, rewinds, and starts playing it
func (s *Simulator) Load(song *models.Song) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.LoadSong(song)
	s.playLocked()
}

// Next skips forward. There is no playlist, so this only rewinds and says so.
func (s *Simulator) Next() {
	s.state.Rewind()
	s.notifier.Notify("Skipped to next track", notify.Info)
}

// Previous skips back. There is no playlist, so this only rewinds and says so.
func (s *Simulator) Previous() {
	s.state.Rewind()
	s.notifier.Notify("Back to previous track", notify.Info)
}

// SetVolume clamps volume to 0..1 and applies it
func (s *Simulator) SetVolume(volume float64, muted bool) {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	s.state.SetVolume(volume, muted)
}

// Close stops any running tick
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseLocked()
}

// playLocked replaces any running tick with a fresh one (must hold s.mu)
func (s *Simulator) playLocked() {
	if s.task != nil {
		s.task.cancel()
		s.task = nil
	}

	task := &tickTask{
		ticker: s.newTicker(s.interval),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.task = task
	s.state.SetPlaying(true)

	go s.run(task)
}

// pauseLocked cancels the running tick, if any (must hold s.mu)
func (s *Simulator) pauseLocked() {
	if s.task == nil {
		return
	}
	s.task.cancel()
	s.task = nil
	s.state.SetPlaying(false)
}

// run advances the state once per tick until the task is cancelled. It must
// not take s.mu: cancel waits for it while s.mu is held.
func (s *Simulator) run(task *tickTask) {
	defer close(task.done)

	for {
		select {
		case <-task.stop:
			return
		case <-task.ticker.C():
			if s.state.Advance() {
				s.Next()
			}
		}
	}
}
