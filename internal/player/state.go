package player

import (
	"sync"
	"time"

	"cadenza/pkg/models"
)

// State represents the current player state
type State struct {
	Song      *models.Song `json:"song,omitempty"`
	IsPlaying bool         `json:"isPlaying"`
	Elapsed   int          `json:"elapsed"`  // in seconds
	Duration  int          `json:"duration"` // in seconds
	Progress  float64      `json:"progress"` // 0.0 to 1.0
	Volume    float64      `json:"volume"`   // 0.0 to 1.0
	IsMuted   bool         `json:"isMuted"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// StateManager manages the player state and notifies listeners
type StateManager struct {
	state     *State
	mutex     sync.RWMutex
	listeners []chan *State
}

// NewStateManager creates a new player state manager for tracks of the given length
func NewStateManager(duration int) *StateManager {
	return &StateManager{
		state: &State{
			Duration:  duration,
			Volume:    1.0,
			UpdatedAt: time.Now(),
		},
	}
}

// GetState returns the current player state (thread-safe)
func (sm *StateManager) GetState() *State {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	stateCopy := *sm.state
	return &stateCopy
}

// LoadSong replaces the current song and rewinds to the start
func (sm *StateManager) LoadSong(song *models.Song) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.state.Song = song
	sm.state.Elapsed = 0
	sm.state.Progress = 0
	sm.touch()
}

// SetPlaying updates playback state (playing/paused)
func (sm *StateManager) SetPlaying(isPlaying bool) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.state.IsPlaying = isPlaying
	sm.touch()
}

// Advance moves playback forward one second. When the end of the track is
// reached the position wraps to zero and wrapped is true.
func (sm *StateManager) Advance() (wrapped bool) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.state.Elapsed++
	if sm.state.Elapsed >= sm.state.Duration {
		sm.state.Elapsed = 0
		wrapped = true
	}
	sm.state.Progress = float64(sm.state.Elapsed) / float64(sm.state.Duration)
	sm.touch()
	return wrapped
}

// Rewind moves playback back to the start of the track
func (sm *StateManager) Rewind() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.state.Elapsed = 0
	sm.state.Progress = 0
	sm.touch()
}

// SetVolume updates volume and mute state
func (sm *StateManager) SetVolume(volume float64, isMuted bool) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.state.Volume = volume
	sm.state.IsMuted = isMuted
	sm.touch()
}

// Subscribe adds a listener for state changes
func (sm *StateManager) Subscribe() <-chan *State {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	ch := make(chan *State, 10)
	sm.listeners = append(sm.listeners, ch)
	return ch
}

// Unsubscribe removes a listener (call this when done to prevent memory leaks)
func (sm *StateManager) Unsubscribe(ch <-chan *State) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	for i, listener := range sm.listeners {
		if listener == ch {
			close(listener)
			sm.listeners = append(sm.listeners[:i], sm.listeners[i+1:]...)
			break
		}
	}
}

// touch stamps the state and notifies listeners (must be called with lock held)
func (sm *StateManager) touch() {
	sm.state.UpdatedAt = time.Now()

	stateCopy := *sm.state
	kept := sm.listeners[:0]
	for _, listener := range sm.listeners {
		select {
		case listener <- &stateCopy:
			kept = append(kept, listener)
		default:
			// Listener is not draining, drop it
			close(listener)
		}
	}
	sm.listeners = kept
}
