package gateway

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/devbharu/EduSphere-sub001/internal/events"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. SDP payloads fit easily.
	maxMessageSize = 64 * 1024
)

// Client wraps a single authenticated websocket connection. Identity
// fields are bound once at connection time and never change; they are
// the only source of sender identity for everything the connection does.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn

	// ID is the ephemeral per-connection identifier.
	ID string

	UserID   string
	UserName string

	// Send is the buffered channel of outbound envelopes. The write
	// pump is the only reader.
	Send chan *events.Envelope
}

// ReadPump pumps envelopes from the websocket connection to the hub.
//
// The application runs ReadPump in a per-connection goroutine, ensuring
// at most one reader per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env events.Envelope
		if err := c.Conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read failed", "conn", c.ID, "err", err)
			}
			break
		}

		c.Hub.Inbound <- &Inbound{Client: c, Envelope: &env}
	}
}

// WritePump pumps envelopes from the hub to the websocket connection
// and keeps the connection alive with periodic pings.
//
// A goroutine running WritePump is started for each connection,
// ensuring at most one writer per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(env); err != nil {
				slog.Warn("websocket write failed", "conn", c.ID, "err", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
