package socket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Subscriptions are read-only;
	// appends travel over the REST endpoint.
	maxMessageSize = 512
)

// Upgrader upgrades subscription requests to websocket connections
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one live subscription: a websocket connection bound to a single
// resolved stream
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound snapshot payloads
	send chan []byte

	// StreamID is the canonical id of the subscribed stream
	StreamID string

	// UserID is the subscribing principal
	UserID string
}

// NewClient creates a new subscription client
func NewClient(hub *Hub, conn *websocket.Conn, streamID, userID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 16),
		StreamID: streamID,
		UserID:   userID,
	}
}

// Send exposes the outbound snapshot channel, read by WritePump and by tests
func (c *Client) Send() <-chan []byte {
	return c.send
}

// ReadPump drains the connection until the peer goes away, then releases the
// subscription. Inbound frames are discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.S().Debugw("websocket closed", "error", err)
			}
			break
		}
	}
}

// WritePump pushes snapshot payloads and pings to the peer
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub released the subscription
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
