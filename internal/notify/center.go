// Package notify keeps the stack of transient notification banners shown by
// the console. Banners expire on their own after a fixed delay or when the
// user dismisses them; several may be visible at once.
package notify

import (
	"sync"
	"time"

	"cadenza/internal/metrics"

	"github.com/google/uuid"
)

// Severity of a notification
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Icon returns the icon name shown next to a banner of this severity
func (s Severity) Icon() string {
	switch s {
	case Success:
		return "check-circle"
	case Warning:
		return "exclamation-triangle"
	case Error:
		return "times-circle"
	default:
		return "info-circle"
	}
}

// Normalize maps unknown severities to Info
func (s Severity) Normalize() Severity {
	switch s {
	case Info, Success, Warning, Error:
		return s
	default:
		return Info
	}
}

// Notification is one visible banner
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// EventKind says whether a notification appeared or went away
type EventKind string

const (
	Added   EventKind = "added"
	Removed EventKind = "removed"
)

// Event is delivered to subscribers
type Event struct {
	Kind         EventKind    `json:"kind"`
	Notification Notification `json:"notification"`
}

// Notifier is the surface other components raise notifications through
type Notifier interface {
	Notify(message string, severity Severity)
}

// Center holds the visible notifications
type Center struct {
	delay time.Duration

	mu        sync.Mutex
	items     []Notification
	timers    map[string]*time.Timer
	listeners []chan Event
}

// NewCenter creates a center whose banners disappear after delay
func NewCenter(delay time.Duration) *Center {
	return &Center{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// SetDelay changes the expiry delay for notifications raised from now on
func (c *Center) SetDelay(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = delay
}

// Notify appends a banner to the stack. It never fails.
func (c *Center) Notify(message string, severity Severity) {
	severity = severity.Normalize()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		Icon:      severity.Icon(),
		CreatedAt: now,
		ExpiresAt: now.Add(c.delay),
	}
	c.items = append(c.items, n)

	id := n.ID
	c.timers[id] = time.AfterFunc(c.delay, func() {
		c.Dismiss(id)
	})

	c.publish(Event{Kind: Added, Notification: n})
	metrics.RecordNotification(string(severity))
}

// Dismiss removes a banner immediately. Unknown ids are ignored.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.items {
		if n.ID != id {
			continue
		}
		c.items = append(c.items[:i], c.items[i+1:]...)
		if timer, ok := c.timers[id]; ok {
			timer.Stop()
			delete(c.timers, id)
		}
		c.publish(Event{Kind: Removed, Notification: n})
		return true
	}
	return false
}

// List returns the visible banners, oldest first
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Subscribe adds a listener for add/remove events
func (c *Center) Subscribe() <-chan Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Event, 32)
	c.listeners = append(c.listeners, ch)
	return ch
}

// Unsubscribe removes a listener and closes its channel
func (c *Center) Unsubscribe(ch <-chan Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, listener := range c.listeners {
		if listener == ch {
			close(listener)
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// Close stops pending expiry timers and closes all listeners
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
	for _, listener := range c.listeners {
		close(listener)
	}
	c.listeners = nil
}

// publish sends an event to every listener (must be called with lock held).
// Listeners that cannot keep up are dropped.
func (c *Center) publish(ev Event) {
	kept := c.listeners[:0]
	for _, listener := range c.listeners {
		select {
		case listener <- ev:
			kept = append(kept, listener)
		default:
			close(listener)
		}
	}
	c.listeners = kept
}
