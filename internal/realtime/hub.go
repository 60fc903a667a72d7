package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"fleet-telemetry/internal/events"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Frame is one message delivered to a websocket subscriber.
type Frame struct {
	Channel string         `json:"channel"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

// wireEnvelope mirrors what the publisher puts on Redis channels.
type wireEnvelope struct {
	Event          string         `json:"event"`
	Payload        map[string]any `json:"payload"`
	OriginSocketID string         `json:"origin_socket_id"`
}

// Hub bridges Redis pub/sub to websocket clients. It holds one
// PSubscribe connection covering all event channels and fans each
// message out to the clients subscribed to that channel, skipping the
// connection that originated the event.
type Hub struct {
	rdb *redis.Client
	log *zap.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub(rdb *redis.Client, log *zap.Logger) *Hub {
	return &Hub{
		rdb:     rdb,
		log:     log.Named("realtime"),
		clients: make(map[*Client]struct{}),
	}
}

// Run consumes the Redis subscription until ctx is cancelled. It blocks
// and is meant to run in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	sub := h.rdb.PSubscribe(ctx,
		events.ChannelDevices,
		events.ChannelAlerts,
		"device.*",
	)
	defer sub.Close()

	h.log.Info("realtime hub subscribed",
		zap.Strings("patterns", []string{events.ChannelDevices, events.ChannelAlerts, "device.*"}),
	)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg, ok := <-ch:
			if !ok {
				h.closeAll()
				return
			}
			h.dispatch(msg.Channel, []byte(msg.Payload))
		}
	}
}

func (h *Hub) dispatch(channel string, raw []byte) {
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.log.Warn("malformed event on channel",
			zap.String("channel", channel),
			zap.Error(err),
		)
		return
	}

	frame, err := json.Marshal(Frame{
		Channel: channel,
		Event:   env.Event,
		Payload: env.Payload,
	})
	if err != nil {
		h.log.Warn("frame encode failed", zap.String("event", env.Event), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.subscribedTo(channel) {
			continue
		}
		if env.OriginSocketID != "" && env.OriginSocketID == client.socketID {
			continue
		}
		client.enqueue(frame)
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Info("websocket client connected",
		zap.String("socket_id", c.socketID),
		zap.Int("clients", count),
	)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	_, present := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	if present {
		h.log.Info("websocket client disconnected",
			zap.String("socket_id", c.socketID),
			zap.Int("clients", count),
		)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.close()
		delete(h.clients, client)
	}
}

// ClientCount reports connected websocket clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
