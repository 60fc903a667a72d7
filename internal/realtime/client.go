package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. It starts with no channel
// subscriptions; the browser subscribes explicitly after connecting.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	socketID string
	send     chan []byte

	mu       sync.RWMutex
	channels map[string]struct{}

	closeOnce sync.Once
	log       *zap.Logger
}

// clientCommand is the inbound control message format.
type clientCommand struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// ServeWS upgrades an HTTP request to a websocket connection and
// attaches it to the hub. The assigned socket id is sent to the client
// in the first frame so it can tag its own REST requests for echo
// suppression.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	socketID := uuid.NewString()
	client := &Client{
		hub:      h,
		conn:     conn,
		socketID: socketID,
		send:     make(chan []byte, sendBuffer),
		channels: make(map[string]struct{}),
		log:      h.log.With(zap.String("socket_id", socketID)),
	}

	h.addClient(client)

	welcome, _ := json.Marshal(map[string]any{
		"event":     "connection.established",
		"socket_id": client.socketID,
	})
	client.enqueue(welcome)

	go client.writePump()
	go client.readPump()
}

// SocketID returns the identifier sent to the client on connect.
func (c *Client) SocketID() string {
	return c.socketID
}

func (c *Client) subscribedTo(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.channels[channel]
	return ok
}

func (c *Client) subscribe(channel string) {
	if channel == "" {
		return
	}
	c.mu.Lock()
	c.channels[channel] = struct{}{}
	c.mu.Unlock()
	c.log.Debug("subscribed", zap.String("channel", channel))
}

func (c *Client) unsubscribe(channel string) {
	c.mu.Lock()
	delete(c.channels, channel)
	c.mu.Unlock()
	c.log.Debug("unsubscribed", zap.String("channel", channel))
}

// enqueue hands a frame to the write pump. Slow consumers are
// disconnected rather than allowed to back-pressure the hub.
func (c *Client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		c.log.Warn("send buffer full, dropping client")
		c.close()
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.log.Debug("malformed client command", zap.Error(err))
			continue
		}

		switch cmd.Action {
		case "subscribe":
			c.subscribe(cmd.Channel)
		case "unsubscribe":
			c.unsubscribe(cmd.Channel)
		default:
			c.log.Debug("unknown client action", zap.String("action", cmd.Action))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
