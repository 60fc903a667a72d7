package events

import (
	"context"
	"encoding/json"
	"time"

	pkgerrors "fleet-telemetry/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans events out over Redis pub/sub, one PUBLISH per
// channel. A short timeout keeps a slow Redis from stalling ingestion
// workers.
type RedisPublisher struct {
	client  *redis.Client
	timeout time.Duration
}

const defaultPublishTimeout = 2 * time.Second

func NewRedisPublisher(client *redis.Client, timeout time.Duration) *RedisPublisher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &RedisPublisher{client: client, timeout: timeout}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(envelope{
		Event:          event.Name,
		Payload:        event.Payload,
		OriginSocketID: event.OriginSocketID,
	})
	if err != nil {
		return &pkgerrors.PublishError{Event: event.Name, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	pipe := p.client.Pipeline()
	for _, channel := range event.Channels {
		pipe.Publish(ctx, channel, payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return &pkgerrors.PublishError{Event: event.Name, Err: err}
	}

	return nil
}

// envelope is the on-wire frame carried on every channel.
type envelope struct {
	Event          string         `json:"event"`
	Payload        map[string]any `json:"payload"`
	OriginSocketID string         `json:"origin_socket_id,omitempty"`
}
