package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/erazemk/cmas/internal/alerting"
	"github.com/erazemk/cmas/internal/auth"
	"github.com/erazemk/cmas/internal/config"
	"github.com/erazemk/cmas/internal/db"
	"github.com/erazemk/cmas/internal/events"
	"github.com/erazemk/cmas/internal/model"
	"github.com/erazemk/cmas/internal/notify"
	"github.com/erazemk/cmas/internal/store"
)

// initDatabase creates a new database with the schema and an admin account
// with a random password, which is returned. The file is removed again if
// any step fails.
func initDatabase(ctx context.Context, path, adminUsername, adminPhone string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", err
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.EnsureSchema(database); err != nil {
		return fail(fmt.Errorf("ensuring schema: %w", err))
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return fail(err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail(err)
	}

	if _, err := store.CreateUser(ctx, database, adminUsername, hash, model.RoleAdmin, adminPhone); err != nil {
		return fail(fmt.Errorf("creating admin user: %w", err))
	}

	return database, password, nil
}

// printInitResult prints the database initialization result.
func printInitResult(w io.Writer, dbPath, username, phone, password string) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w, "Schema initialized.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Username: %s\n", username)
	fmt.Fprintf(w, "  Password: %s\n", password)
	if strings.TrimSpace(phone) == "" {
		fmt.Fprintln(w, "  Phone:    none, low-stock alerts to this admin will fail until one is set")
	} else {
		fmt.Fprintf(w, "  Phone:    %s\n", phone)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintln(w, "The admin can change it after logging in.")
}

func dbExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// jwtSecret returns the configured secret, or the one stored in the database.
func jwtSecret(ctx context.Context, cfg *config.Config, database *sql.DB) (string, error) {
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret, nil
	}
	return store.GetJWTSecret(ctx, database)
}

func newSender(cfg *config.Config, logger *slog.Logger) (alerting.Sender, error) {
	return notify.New(notify.Config{
		Driver:  cfg.Notify.Driver,
		Timeout: cfg.Notify.Timeout,
		Twilio: notify.TwilioConfig{
			AccountSID: cfg.Notify.Twilio.AccountSID,
			AuthToken:  cfg.Notify.Twilio.AuthToken,
			From:       cfg.Notify.Twilio.From,
			BaseURL:    cfg.Notify.Twilio.BaseURL,
		},
		Webhook: notify.WebhookConfig{
			URL:    cfg.Notify.Webhook.URL,
			Secret: cfg.Notify.Webhook.Secret,
		},
	}, logger)
}

// newPublisher connects the alert stream when enabled. A nil publisher with
// a nil error means the stream is disabled.
func newPublisher(ctx context.Context, cfg *config.Config) (*events.RedisPublisher, error) {
	if !cfg.Events.Redis.Enabled {
		return nil, nil
	}
	return events.NewRedisPublisher(ctx, events.RedisConfig{
		Addr:     cfg.Events.Redis.Addr,
		Password: cfg.Events.Redis.Password,
		DB:       cfg.Events.Redis.DB,
		Stream:   cfg.Events.Redis.Stream,
	})
}
