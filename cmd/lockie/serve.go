package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lockiemedia/lockie/internal/logging"
	"github.com/lockiemedia/lockie/internal/server"
	"github.com/lockiemedia/lockie/internal/storage"
)

func newServeCmd(configPath *string) *cobra.Command {
	var (
		listen   string
		database string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a self-hosted data service",
		Long: `Run the LockieMedia data service backed by a SQLite file.

The API key comes from service.api_key in the config file or the
LOCKIE_SERVICE_API_KEY environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if listen == "" {
				listen = cfg.Service.Listen
			}
			if database == "" {
				database, err = cfg.DatabasePath()
				if err != nil {
					return err
				}
			}

			logger, closeLog, err := logging.New(logging.Config{
				Level:  cfg.Log.Level,
				Format: format,
			})
			if err != nil {
				return err
			}
			defer closeLog()

			db, err := storage.NewSQLiteStore(database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			srv, err := server.New(db, logger, server.Config{
				Listen:    listen,
				DataPath:  cfg.Server.DataPath,
				KeyHeader: cfg.Server.APIKeyHeader,
				APIKey:    cfg.ServiceAPIKey(),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config)")
	cmd.Flags().StringVar(&database, "database", "", "SQLite database file (default in the data directory)")
	cmd.Flags().StringVar(&format, "log-format", "console", "log format: console or json")
	return cmd
}
