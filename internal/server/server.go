package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"cadenza/internal/config"
	"cadenza/internal/console"
	"cadenza/internal/ngrok"
	"cadenza/internal/notify"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether the preference database is usable
type Pinger interface {
	Ping() error
}

// Options wires a ConsoleServer
type Options struct {
	Config        *config.Config
	Console       *console.Console
	Notifications *notify.Center
	Database      Pinger
	Tunnel        *ngrok.Service // optional
	Logger        *logrus.Logger
}

// ConsoleServer serves the console page, the JSON view API and the live
// update websocket
type ConsoleServer struct {
	config   *config.Config
	console  *console.Console
	center   *notify.Center
	db       Pinger
	tunnel   *ngrok.Service
	logger   *logrus.Logger
	page     *template.Template
	hub      *Hub
	bindings map[Action]Binding
	router   chi.Router
	started  time.Time
}

// NewConsoleServer builds the router. It fails if an action has no handler
// or if the page lacks an element an action is bound to.
func NewConsoleServer(opts Options) (*ConsoleServer, error) {
	page, err := parsePage()
	if err != nil {
		return nil, fmt.Errorf("failed to parse console page: %w", err)
	}

	s := &ConsoleServer{
		config:  opts.Config,
		console: opts.Console,
		center:  opts.Notifications,
		db:      opts.Database,
		tunnel:  opts.Tunnel,
		logger:  opts.Logger,
		page:    page,
		hub:     NewHub(opts.Logger),
		started: time.Now(),
	}

	var rendered bytes.Buffer
	if err := s.renderPage(&rendered); err != nil {
		return nil, fmt.Errorf("failed to render console page: %w", err)
	}
	s.bindings, err = resolveBindings(s.actionTable(), rendered.Bytes())
	if err != nil {
		return nil, err
	}

	s.router = s.setupRoutes()
	return s, nil
}

// Handler returns the root HTTP handler
func (s *ConsoleServer) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub
func (s *ConsoleServer) Hub() *Hub {
	return s.hub
}

func (s *ConsoleServer) setupRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.panicRecoveryMiddleware)
	r.Use(s.requestLoggingMiddleware)
	if s.config.Server.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/", s.handleHome)
	r.Get("/health", s.handleHealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.handleWebSocket)

	r.Get("/api/panels", s.handleGetPanels)
	r.Get("/api/panels/{panel}", s.handleGetPanel)
	r.Get("/api/player", s.handleGetPlayerState)
	r.Get("/api/notifications", s.handleGetNotifications)
	r.Get("/api/preferences", s.handleGetPreferences)
	r.Get("/api/actions", s.handleGetActions)

	// Every user action is routed from its binding
	for _, action := range requiredActions {
		b := s.bindings[action]
		r.Method(b.Method, b.Path, b.handler)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *ConsoleServer) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)
	go s.forwardPlayerUpdates(hubCtx)
	go s.forwardNotifications(hubCtx)

	srv := &http.Server{
		Addr:         s.config.GetAddress(),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	localAddress := fmt.Sprintf("http://%s", s.config.GetAddress())
	s.logger.WithFields(logrus.Fields{
		"address":  localAddress,
		"api_base": s.config.API.BaseURL,
	}).Info("Cadenza console starting")

	if s.tunnel != nil {
		if err := s.tunnel.StartTunnel(ctx, localAddress); err != nil {
			s.logger.WithError(err).Warn("Could not start ngrok tunnel")
		} else {
			defer s.tunnel.Stop()
		}
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down console server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	s.logger.Info("Console server shutdown complete")
	return nil
}

// forwardPlayerUpdates pushes every player state change to websocket clients
func (s *ConsoleServer) forwardPlayerUpdates(ctx context.Context) {
	states := s.console.PlayerStates()
	defer s.console.StopPlayerStates(states)

	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			s.hub.Broadcast(MessageTypePlayer, state)
		}
	}
}

// forwardNotifications pushes notification add/remove events to websocket clients
func (s *ConsoleServer) forwardNotifications(ctx context.Context) {
	events := s.center.Subscribe()
	defer s.center.Unsubscribe(events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.hub.Broadcast(MessageTypeNotification, ev)
		}
	}
}
