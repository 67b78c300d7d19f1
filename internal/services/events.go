package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"fi-advisor-backend/internal/models"
)

// EventPublisher delivers session events (turns, typing, toasts) to whoever
// is watching the session. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, sessionID uuid.UUID, event models.Event) error
}

// PublisherFunc adapts a function to EventPublisher.
type PublisherFunc func(ctx context.Context, sessionID uuid.UUID, event models.Event) error

func (f PublisherFunc) Publish(ctx context.Context, sessionID uuid.UUID, event models.Event) error {
	return f(ctx, sessionID, event)
}

// SessionChannel is the Redis pub/sub channel for a session's events.
func SessionChannel(sessionID uuid.UUID) string {
	return "session_updates:" + sessionID.String()
}

// RedisPublisher fans events out through Redis so any server instance holding
// the session's WebSocket can forward them.
type RedisPublisher struct {
	redis *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{redis: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, sessionID uuid.UUID, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if err := p.redis.Publish(ctx, SessionChannel(sessionID), string(data)).Err(); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}
	return nil
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, uuid.UUID, models.Event) error { return nil }
