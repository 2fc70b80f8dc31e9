// Package pipeline runs the fetch, render and fallback sequence every console
// panel goes through. A run always produces a view: when the fetch fails the
// panel's mock dataset is rendered instead and a notification says why.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"cadenza/internal/apiclient"
	"cadenza/internal/metrics"
	"cadenza/internal/notify"

	"github.com/sirupsen/logrus"
)

// Panel names a view slot on the console page
type Panel string

const (
	Recommendations Panel = "recommendations"
	HotSongs        Panel = "hot-songs"
	GenreSongs      Panel = "genre-songs"
	Genres          Panel = "genres"
	History         Panel = "history"
	Profile         Panel = "profile"
	SongDetail      Panel = "song-detail"
)

// Panels lists every panel in page order
var Panels = []Panel{Recommendations, HotSongs, GenreSongs, Genres, History, Profile, SongDetail}

// Valid reports whether p is a known panel
func (p Panel) Valid() bool {
	for _, known := range Panels {
		if p == known {
			return true
		}
	}
	return false
}

// Title is the human readable panel name used in notifications
func (p Panel) Title() string {
	switch p {
	case HotSongs:
		return "hot songs"
	case GenreSongs:
		return "genre songs"
	case SongDetail:
		return "song details"
	default:
		return string(p)
	}
}

// Job describes one run for a panel. Fetch is called exactly once. Mock
// supplies the fallback payload, which goes through the same Render.
type Job[T, V any] struct {
	Panel  Panel
	Fetch  func(ctx context.Context) (T, error)
	Render func(T) V
	Mock   func() T
	// Commit stores the view if this run is still the latest for the panel.
	// It receives the payload too so callers can keep derived state.
	Commit func(payload T, view V, fallback bool)
}

// Result is what a run hands back to its caller
type Result[V any] struct {
	Panel    Panel  `json:"panel"`
	Token    uint64 `json:"token"`
	View     V      `json:"view"`
	Fallback bool   `json:"fallback"`
	Stale    bool   `json:"stale"`
	Reason   string `json:"reason,omitempty"`
	Err      error  `json:"-"`
}

// Pipeline carries what every run shares
type Pipeline struct {
	tracker  *Tracker
	notifier notify.Notifier
	logger   *logrus.Logger
}

// New creates a pipeline
func New(notifier notify.Notifier, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		tracker:  NewTracker(),
		notifier: notifier,
		logger:   logger,
	}
}

// Tracker exposes the request token tracker
func (p *Pipeline) Tracker() *Tracker {
	return p.tracker
}

// Run executes job. It never returns without a view.
func Run[T, V any](ctx context.Context, p *Pipeline, job Job[T, V]) Result[V] {
	token := p.tracker.Issue(job.Panel)
	log := p.logger.WithFields(logrus.Fields{
		"panel": job.Panel,
		"token": token,
	})

	start := time.Now()
	payload, err := job.Fetch(ctx)
	elapsed := time.Since(start)

	result := Result[V]{Panel: job.Panel, Token: token}
	if err != nil {
		result.Fallback = true
		result.Err = err
		result.Reason = apiclient.Reason(err)
		payload = job.Mock()

		log.WithError(err).WithField("duration", elapsed).Warn("Panel fetch failed, rendering sample data")
		p.notifier.Notify(failureMessage(job.Panel, result.Reason), severityFor(err))
	} else {
		log.WithField("duration", elapsed).Debug("Panel fetched")
	}

	result.View = job.Render(payload)
	metrics.RecordPipelineRun(string(job.Panel), result.Fallback, elapsed)

	committed := p.tracker.Commit(job.Panel, token, func() {
		if job.Commit != nil {
			job.Commit(payload, result.View, result.Fallback)
		}
	})
	if !committed {
		result.Stale = true
		metrics.RecordStale(string(job.Panel))
		log.WithField("latest", p.tracker.Latest(job.Panel)).Debug("Dropping stale panel result")
	}

	return result
}

func severityFor(err error) notify.Severity {
	if apiclient.IsEnvelopeError(err) {
		return notify.Warning
	}
	return notify.Error
}

func failureMessage(panel Panel, reason string) string {
	if reason == "" {
		return fmt.Sprintf("Could not load %s, showing sample data", panel.Title())
	}
	return fmt.Sprintf("Could not load %s (%s), showing sample data", panel.Title(), reason)
}
