// Package events publishes stored alert records to a Redis stream, so other
// services can follow alerts without polling the database.
package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erazemk/cmas/internal/model"
)

const (
	DefaultStream = "cmas:alerts"
	DefaultMaxLen = 10000
)

// RedisConfig configures the Redis connection and target stream.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

// RedisPublisher appends alert records to a capped Redis stream.
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisPublisher connects to Redis and checks the connection.
func NewRedisPublisher(ctx context.Context, cfg RedisConfig) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisPublisherFromClient(client, cfg.Stream), nil
}

// NewRedisPublisherFromClient wraps an existing client.
func NewRedisPublisherFromClient(client *redis.Client, stream string) *RedisPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisPublisher{client: client, stream: stream, maxLen: DefaultMaxLen}
}

// Publish appends one entry per alert record.
func (p *RedisPublisher) Publish(ctx context.Context, a model.AlertRecord) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"id":                a.ID,
			"type":              a.AlertType,
			"medication_id":     a.MedicationID,
			"medication_name":   a.MedicationName,
			"current_stock":     strconv.Itoa(a.CurrentStock),
			"minimum_threshold": strconv.Itoa(a.MinimumThreshold),
			"recipient_id":      a.RecipientID,
			"sent_to_phone":     a.SentToPhone,
			"status":            a.Status,
			"error":             a.Error,
			"sent_at":           a.SentAt.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publishing alert %s: %w", a.ID, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
