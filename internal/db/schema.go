package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'nurse' CHECK (role IN ('admin', 'nurse')),
    phone         TEXT NOT NULL DEFAULT '',
    created_at    DATETIME NOT NULL,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);

CREATE TABLE IF NOT EXISTS medications (
    id                TEXT PRIMARY KEY,
    name              TEXT NOT NULL,
    current_stock     INTEGER NOT NULL CHECK (current_stock >= 0),
    minimum_threshold INTEGER NOT NULL CHECK (minimum_threshold >= 0),
    unit              TEXT NOT NULL,
    description       TEXT,
    image             BLOB,
    image_mime        TEXT,
    created_at        DATETIME NOT NULL,
    updated_at        DATETIME NOT NULL,
    deleted_at        DATETIME
);

CREATE TABLE IF NOT EXISTS usage_records (
    id              TEXT PRIMARY KEY,
    medication_id   TEXT NOT NULL REFERENCES medications(id),
    medication_name TEXT NOT NULL,
    quantity_used   INTEGER NOT NULL CHECK (quantity_used > 0),
    user_id         TEXT NOT NULL,
    user_name       TEXT NOT NULL,
    timestamp       DATETIME NOT NULL,
    notes           TEXT
);

CREATE INDEX IF NOT EXISTS idx_usage_records_timestamp ON usage_records(timestamp);

CREATE TABLE IF NOT EXISTS alert_records (
    id                TEXT PRIMARY KEY,
    medication_id     TEXT NOT NULL,
    medication_name   TEXT NOT NULL,
    current_stock     INTEGER NOT NULL,
    minimum_threshold INTEGER NOT NULL,
    alert_type        TEXT NOT NULL DEFAULT 'low_stock',
    message           TEXT NOT NULL,
    recipient_id      TEXT,
    sent_to_phone     TEXT NOT NULL,
    status            TEXT NOT NULL CHECK (status IN ('sent', 'failed')),
    error             TEXT,
    sent_at           DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alert_records_sent_at ON alert_records(sent_at);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
