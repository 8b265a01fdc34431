package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/lockiemedia/lockie/internal/api"
	"github.com/lockiemedia/lockie/internal/config"
	"github.com/lockiemedia/lockie/internal/events"
	"github.com/lockiemedia/lockie/internal/logging"
	"github.com/lockiemedia/lockie/internal/notify"
	"github.com/lockiemedia/lockie/internal/store"
	"github.com/lockiemedia/lockie/internal/tui"
)

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// runApp starts the main TUI application.
func runApp(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	apiKey, err := cfg.APIKey()
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	if apiKey == "" {
		return errors.New("no API key configured; run 'lockie login' first")
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := cfg.LogFile()
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: "json",
		File:   logFile,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	relay := &tui.Relay{}
	notifiers := notify.Multi{relay}
	var reminders notify.Notifier = notify.Nop
	if cfg.Notifications.Desktop {
		desktop := notify.NewDesktop("LockieMedia", logger)
		desktop.IncludeInfo = cfg.Notifications.IncludeInfo
		notifiers = append(notifiers, desktop)

		// Due reminders are info level but always worth a desktop popup.
		reminderDesktop := notify.NewDesktop("LockieMedia", logger)
		reminderDesktop.IncludeInfo = true
		reminders = reminderDesktop
	}

	client := api.NewClient(cfg.Server.URL, apiKey,
		api.WithDataPath(cfg.Server.DataPath),
		api.WithKeyHeader(cfg.Server.APIKeyHeader),
		api.WithHTTPClient(&http.Client{Timeout: cfg.Server.Timeout}),
		api.WithMalformedHandler(func(collection string, err error) {
			logger.Warn("dropping malformed collection",
				zap.String("collection", collection),
				zap.Error(err),
			)
			notifiers.Notify(notify.Notification{
				Level:   notify.LevelWarning,
				Title:   "Some data could not be read",
				Message: fmt.Sprintf("The %s collection was malformed and was loaded empty.", collection),
			})
		}),
	)

	s := store.New(client, events.NewBus(), notifiers, logger)

	logger.Info("starting", zap.String("version", version), zap.String("server", cfg.Server.URL))
	defer logger.Info("stopped")

	return tui.Run(ctx, s, cfg, relay,
		tui.WithLogger(logger),
		tui.WithReminders(reminders),
	)
}
