package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"cadenza/internal/apiclient"
	"cadenza/internal/config"
	"cadenza/internal/console"
	"cadenza/internal/database"
	"cadenza/internal/logging"
	"cadenza/internal/ngrok"
	"cadenza/internal/notify"
	"cadenza/internal/player"
	"cadenza/internal/prefs"
	"cadenza/internal/server"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the TOML configuration file")
	envPath := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	// Basic logger until the configured one exists
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := config.LoadDotEnv(*envPath); err != nil {
		logger.WithError(err).Fatal("Error loading .env file")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		logrus.WithError(err).Fatal("Error initializing logger")
	}
	defer logCloser.Close()

	db, err := database.NewDatabase(cfg.Database.Path, cfg.Database.MaxConnections, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error initializing database")
	}
	defer db.Close()

	client := apiclient.New(apiclient.Options{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.APITimeout(),
		CircuitBreaker: cfg.API.CircuitBreaker,
		Logger:         logger,
	})

	center := notify.NewCenter(cfg.NotificationDelay())
	defer center.Close()

	simulator := player.NewSimulator(player.NewStateManager(cfg.Player.TrackSeconds), center, cfg.TickInterval(), nil)

	con := console.New(console.Options{
		API:         client,
		Notifier:    center,
		Player:      simulator,
		Preferences: prefs.NewStore(db, logger),
		Logger:      logger,
		DefaultTier: cfg.Console.DefaultTier,
		GenreLimit:  cfg.Console.GenreLimit,
		HealthTTL:   cfg.HealthCacheTTL(),
	})
	defer con.Close()

	if err := con.ApplyStoredPreferences(); err != nil {
		logger.WithError(err).Fatal("Error loading stored preferences")
	}

	tunnel, err := ngrok.NewService(&cfg.Ngrok, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error configuring ngrok")
	}

	consoleServer, err := server.NewConsoleServer(server.Options{
		Config:        cfg,
		Console:       con,
		Notifications: center,
		Database:      db,
		Tunnel:        tunnel,
		Logger:        logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Error creating console server")
	}

	if cfg.Console.WatchConfig {
		watcher, err := config.NewWatcher(*configPath, logger, func(next *config.Config) {
			client.SetBaseURL(next.API.BaseURL)
			center.SetDelay(next.NotificationDelay())
			con.SetHealthTTL(next.HealthCacheTTL())
			logger.WithField("api_base_url", next.API.BaseURL).Info("Configuration reloaded")
		})
		if err != nil {
			logger.WithError(err).Warn("Config watcher disabled")
		} else {
			defer watcher.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := consoleServer.Run(ctx); err != nil {
		logger.WithError(err).Error("Server stopped with error")
	}
	logger.Info("Shutdown complete")
}
