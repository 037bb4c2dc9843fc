package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"rentacar-backend/internal/config"
	"rentacar-backend/internal/logger"
)

type redisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher publishes JSON-encoded events on a Redis pub/sub channel
func NewRedisPublisher(client *redis.Client, channel string) Publisher {
	return &redisPublisher{client: client, channel: channel}
}

// NewPublisher builds the publisher selected by cfg. An empty address disables publishing.
func NewPublisher(cfg config.RedisConfig) Publisher {
	if cfg.Addr == "" {
		logger.Info("Reservation change feed disabled, no redis address configured")
		return NewNoopPublisher()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	logger.Info("Reservation change feed enabled", "addr", cfg.Addr, "channel", cfg.Channel)
	return NewRedisPublisher(client, cfg.Channel)
}

func (p *redisPublisher) Publish(ctx context.Context, ev ReservationChanged) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode reservation event: %w", err)
	}
	logger.ExternalServiceCall("redis", "PUBLISH", "channel", p.channel, "reservation_id", ev.ReservationID, "event", ev.Event)
	err = p.client.Publish(ctx, p.channel, payload).Err()
	logger.ExternalServiceResult("redis", "PUBLISH", err)
	if err != nil {
		return fmt.Errorf("publish reservation event: %w", err)
	}
	return nil
}

func (p *redisPublisher) Close() error {
	return p.client.Close()
}
