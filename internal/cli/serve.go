package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/cmas/internal/alerting"
	"github.com/erazemk/cmas/internal/api"
	"github.com/erazemk/cmas/internal/auth"
	"github.com/erazemk/cmas/internal/db"
	"github.com/erazemk/cmas/internal/ledger"
	"github.com/erazemk/cmas/internal/logging"
	"github.com/erazemk/cmas/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	logger, closeLog, err := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Auto-init on first run.
	exists, err := dbExists(cfg.Storage.Path)
	if err != nil {
		return err
	}
	if !exists {
		database, password, err := initDatabase(ctx, cfg.Storage.Path, cfg.Admin.Username, cfg.Admin.Phone)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()
		printInitResult(cmd.OutOrStdout(), cfg.Storage.Path, cfg.Admin.Username, cfg.Admin.Phone, password)
		fmt.Fprintln(cmd.OutOrStdout())
	}

	database, err := db.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	logger.Info("database ready", "path", cfg.Storage.Path)

	secret, err := jwtSecret(ctx, cfg, database)
	if err != nil {
		return err
	}

	sender, err := newSender(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("sms channel ready", "driver", cfg.Notify.Driver)

	gw := store.NewGateway(database)

	// The stream is optional; alerts still go out without it.
	var publisher alerting.Publisher
	redisPub, err := newPublisher(ctx, cfg)
	switch {
	case err != nil:
		logger.Error("alert stream unavailable", "error", err)
	case redisPub != nil:
		defer redisPub.Close()
		publisher = redisPub
		logger.Info("alert stream ready", "addr", cfg.Events.Redis.Addr, "stream", cfg.Events.Redis.Stream)
	}

	dispatcher := alerting.NewDispatcher(alerting.Config{
		CountryCode: cfg.Alerts.CountryCode,
		Concurrency: cfg.Alerts.Concurrency,
	}, sender, gw, gw, publisher, logger)

	handler := api.NewRouter(api.Config{
		DB:          database,
		Issuer:      auth.NewIssuer(secret, cfg.Auth.TokenTTL),
		Ledger:      ledger.New(gw, dispatcher, logger),
		Sender:      sender,
		CountryCode: cfg.Alerts.CountryCode,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", cfg.Server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}

	logger.Info("server stopped, closing database")
	return nil
}
