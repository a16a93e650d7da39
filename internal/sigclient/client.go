package sigclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/devbharu/EduSphere-sub001/internal/events"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client manages the websocket connection to the realtime gateway.
type Client struct {
	conn      *websocket.Conn
	serverURL string
	token     string
	incoming  chan *events.Envelope
	outgoing  chan *events.Envelope
	done      chan struct{}
	closed    bool
}

// NewClient creates a signaling client for the given gateway URL and
// session token.
func NewClient(serverURL, token string) *Client {
	return &Client{
		serverURL: serverURL,
		token:     token,
		incoming:  make(chan *events.Envelope, 32),
		outgoing:  make(chan *events.Envelope, 32),
		done:      make(chan struct{}, 1),
	}
}

// Connect establishes the websocket connection, presenting the token as
// a bearer credential. The server rejects the connection before the
// upgrade if the token is bad.
func (c *Client) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.conn = conn
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()

	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		var env events.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return
		}
		c.incoming <- &env
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
		case env := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Send queues an envelope for the gateway.
func (c *Client) Send(event string, payload any) error {
	env, err := events.New(event, payload)
	if err != nil {
		return err
	}
	c.outgoing <- env
	return nil
}

// JoinChatRoom asks to join a chat room and receive its history.
func (c *Client) JoinChatRoom(roomID string) error {
	return c.Send(events.EventJoinRoom, events.JoinRoom{RoomID: roomID})
}

// SendChat sends a chat message to a room.
func (c *Client) SendChat(roomID, text string) error {
	return c.Send(events.EventSendMessage, events.SendMessage{RoomID: roomID, Message: text})
}

// JoinVideoRoom asks to join a video room by live class ID.
func (c *Client) JoinVideoRoom(roomID string) error {
	return c.Send(events.EventJoinVideoRoom, events.JoinVideoRoom{RoomID: roomID})
}

// LeaveVideoRoom leaves the current video room.
func (c *Client) LeaveVideoRoom(roomID string) error {
	return c.Send(events.EventLeaveVideoRoom, events.LeaveVideoRoom{RoomID: roomID})
}

// SendOffer relays a session description offer toward a target connection.
func (c *Client) SendOffer(target string, sdp json.RawMessage) error {
	return c.Send(events.EventOffer, events.Offer{Target: target, Offer: sdp})
}

// SendAnswer relays a session description answer toward a target connection.
func (c *Client) SendAnswer(target string, sdp json.RawMessage) error {
	return c.Send(events.EventAnswer, events.Answer{Target: target, Answer: sdp})
}

// SendCandidate relays an ICE candidate toward a target connection.
func (c *Client) SendCandidate(target string, candidate json.RawMessage) error {
	return c.Send(events.EventICECandidate, events.ICECandidate{Target: target, Candidate: candidate})
}

// Incoming returns the channel of envelopes from the gateway.
func (c *Client) Incoming() <-chan *events.Envelope {
	return c.incoming
}

// Close closes the websocket connection and cleans up resources.
func (c *Client) Close() {
	if c.closed {
		return
	}
	c.closed = true

	close(c.done)
}
