package pipeline

import "sync"

// Tracker issues monotonically increasing request tokens per panel and only
// lets the holder of the latest token commit to that panel.
type Tracker struct {
	mu     sync.Mutex
	latest map[Panel]uint64
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{latest: make(map[Panel]uint64)}
}

// Issue returns a new token for panel, superseding every earlier one
func (t *Tracker) Issue(panel Panel) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.latest[panel]++
	return t.latest[panel]
}

// Latest returns the newest token issued for panel, 0 if none
func (t *Tracker) Latest(panel Panel) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[panel]
}

// Commit runs apply if token is still the latest for panel and reports
// whether it did. No token can be issued for panel while apply runs.
func (t *Tracker) Commit(panel Panel, token uint64, apply func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.latest[panel] != token {
		return false
	}
	if apply != nil {
		apply()
	}
	return true
}
