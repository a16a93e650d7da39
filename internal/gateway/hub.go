package gateway

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/devbharu/EduSphere-sub001/internal/events"
	"github.com/devbharu/EduSphere-sub001/internal/store"
)

// Room identifiers are Mongo-style 24-hex object IDs or UUIDs; anything
// else is malformed and the operation is silently dropped.
var roomIDPattern = regexp.MustCompile(
	`^([0-9a-fA-F]{24}|[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})$`)

// ValidRoomID reports whether id is a well-formed room identifier.
func ValidRoomID(id string) bool {
	return roomIDPattern.MatchString(id)
}

// MessageLog is the durable chat message store the hub appends to and
// reads recent history from.
type MessageLog interface {
	Append(msg *store.Message) (*store.Message, error)
	Recent(roomID string, limit int) ([]store.Message, error)
}

// Inbound is a decoded envelope paired with the connection it arrived on.
type Inbound struct {
	Client   *Client
	Envelope *events.Envelope
}

// Hub is the central brain of the gateway. A single goroutine running
// Run owns all connection, chat room, and video room state; every
// inbound event is handled to completion (including its persistence
// call) before the next one, which is what gives per-room broadcasts
// their ordering guarantee.
type Hub struct {
	// Register is the channel for registering authenticated clients.
	Register chan *Client

	// Unregister is the channel for dropping disconnected clients.
	Unregister chan *Client

	// Inbound carries client events into the hub loop.
	Inbound chan *Inbound

	// Notify carries out-of-band envelopes broadcast to every
	// connected client, used by the REST collaborator handlers.
	Notify chan *events.Envelope

	clients      map[string]*Client
	chat         *Roster
	video        *Directory
	messages     MessageLog
	historyLimit int
}

// NewHub creates a hub over the given message log. historyLimit bounds
// the chat_history reply sent on join.
func NewHub(messages MessageLog, historyLimit int) *Hub {
	return &Hub{
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
		Inbound:      make(chan *Inbound),
		Notify:       make(chan *events.Envelope, 16),
		clients:      make(map[string]*Client),
		chat:         NewRoster(),
		video:        NewDirectory(),
		messages:     messages,
		historyLimit: historyLimit,
	}
}

// Run starts the hub's main processing loop. It must run in exactly one
// goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client.ID] = client
			slog.Info("client registered", "conn", client.ID, "user", client.UserID)

		case client := <-h.Unregister:
			h.handleDisconnect(client)

		case in := <-h.Inbound:
			h.dispatch(in.Client, in.Envelope)

		case env := <-h.Notify:
			for _, client := range h.clients {
				h.deliver(client, env)
			}
		}
	}
}

// dispatch routes one inbound envelope to its handler.
func (h *Hub) dispatch(c *Client, env *events.Envelope) {
	switch env.Event {
	case events.EventJoinRoom:
		h.handleJoinRoom(c, env)
	case events.EventSendMessage:
		h.handleSendMessage(c, env)
	case events.EventJoinVideoRoom:
		h.handleJoinVideoRoom(c, env)
	case events.EventLeaveVideoRoom:
		h.leaveVideoRooms(c)
	case events.EventOffer, events.EventAnswer, events.EventICECandidate:
		h.handleRelay(c, env)
	default:
		slog.Warn("unknown event", "event", env.Event, "conn", c.ID)
	}
}

// deliver queues an envelope for one client without blocking the hub.
// A client whose write pump has stalled loses messages rather than
// stalling every other connection.
func (h *Hub) deliver(c *Client, env *events.Envelope) {
	select {
	case c.Send <- env:
	default:
		slog.Warn("send buffer full, dropping", "conn", c.ID, "event", env.Event)
	}
}

// handleJoinRoom adds the connection to the chat room's broadcast group
// and replies, to the joiner only, with the recent message history.
func (h *Hub) handleJoinRoom(c *Client, env *events.Envelope) {
	var req events.JoinRoom
	if err := env.Decode(&req); err != nil || !ValidRoomID(req.RoomID) {
		slog.Warn("join_room dropped: malformed room id", "conn", c.ID, "room", req.RoomID)
		return
	}

	h.chat.Join(req.RoomID, c)

	msgs, err := h.messages.Recent(req.RoomID, h.historyLimit)
	if err != nil {
		slog.Error("chat history load failed", "room", req.RoomID, "err", err)
		return
	}

	history := make([]events.ChatMessage, 0, len(msgs))
	for i := range msgs {
		history = append(history, toWire(&msgs[i]))
	}

	out, err := events.New(events.EventChatHistory, history)
	if err != nil {
		slog.Error("chat history encode failed", "err", err)
		return
	}
	h.deliver(c, out)
}

// handleSendMessage persists the message and, only after persistence
// succeeds, broadcasts the stored record to the room including the
// sender. Sender identity comes from the bound session, never from the
// payload.
func (h *Hub) handleSendMessage(c *Client, env *events.Envelope) {
	var req events.SendMessage
	if err := env.Decode(&req); err != nil || !ValidRoomID(req.RoomID) {
		slog.Warn("send_message dropped: malformed room id", "conn", c.ID, "room", req.RoomID)
		return
	}

	text := strings.TrimSpace(req.Message)
	if text == "" {
		slog.Warn("send_message dropped: empty text", "conn", c.ID, "room", req.RoomID)
		return
	}

	stored, err := h.messages.Append(&store.Message{
		RoomID:     req.RoomID,
		SenderID:   c.UserID,
		SenderName: c.UserName,
		Message:    text,
	})
	if err != nil {
		slog.Error("message persist failed, dropping", "room", req.RoomID, "err", err)
		return
	}

	out, err := events.New(events.EventReceiveMessage, toWire(stored))
	if err != nil {
		slog.Error("message encode failed", "err", err)
		return
	}
	for _, member := range h.chat.Members(req.RoomID) {
		h.deliver(member, out)
	}
}

// handleJoinVideoRoom adds the connection to the video room directory.
// The joiner gets the snapshot of the other current members and then
// initiates every offer; existing members only get a user-joined notice
// and never initiate toward the newcomer. That fixed rule is what
// prevents the symmetric double-offer race.
func (h *Hub) handleJoinVideoRoom(c *Client, env *events.Envelope) {
	var req events.JoinVideoRoom
	if err := env.Decode(&req); err != nil || !ValidRoomID(req.RoomID) {
		slog.Warn("join-video-room dropped: malformed room id", "conn", c.ID, "room", req.RoomID)
		return
	}

	if !h.video.Join(req.RoomID, c.ID) {
		// Duplicate join is a no-op.
		return
	}

	others := h.video.Others(req.RoomID, c.ID)
	snapshot, err := events.New(events.EventAllUsers, events.AllUsers{Users: others})
	if err != nil {
		slog.Error("all-users encode failed", "err", err)
		return
	}
	h.deliver(c, snapshot)

	joined, err := events.New(events.EventUserJoined, events.UserJoined{
		SocketID: c.ID,
		UserName: c.UserName,
	})
	if err != nil {
		slog.Error("user-joined encode failed", "err", err)
		return
	}
	for _, id := range others {
		if member, ok := h.clients[id]; ok {
			h.deliver(member, joined)
		}
	}

	slog.Info("joined video room", "room", req.RoomID, "conn", c.ID, "peers", len(others))
}

// handleRelay forwards an opaque negotiation payload to its target with
// the sender's connection ID attached. The payload itself is never
// inspected or rewritten. An unreachable target is an expected race,
// not an error: the sender will usually also see a user-left for it.
func (h *Hub) handleRelay(c *Client, env *events.Envelope) {
	var target string
	var out *events.Envelope
	var err error

	switch env.Event {
	case events.EventOffer:
		var p events.Offer
		if err = env.Decode(&p); err == nil {
			target = p.Target
			out, err = events.New(events.EventOffer, events.Offer{Caller: c.ID, Offer: p.Offer})
		}
	case events.EventAnswer:
		var p events.Answer
		if err = env.Decode(&p); err == nil {
			target = p.Target
			out, err = events.New(events.EventAnswer, events.Answer{From: c.ID, Answer: p.Answer})
		}
	case events.EventICECandidate:
		var p events.ICECandidate
		if err = env.Decode(&p); err == nil {
			target = p.Target
			out, err = events.New(events.EventICECandidate, events.ICECandidate{From: c.ID, Candidate: p.Candidate})
		}
	}
	if err != nil {
		slog.Warn("relay dropped: malformed payload", "event", env.Event, "conn", c.ID, "err", err)
		return
	}

	dest, ok := h.clients[target]
	if !ok {
		slog.Debug("relay dropped: target gone", "event", env.Event, "target", target)
		return
	}
	h.deliver(dest, out)
}

// leaveVideoRooms removes the connection from every video room entry
// that contains it and notifies the remaining members per room.
func (h *Hub) leaveVideoRooms(c *Client) {
	for _, remaining := range h.video.RemoveAll(c.ID) {
		if len(remaining) == 0 {
			continue
		}
		left, err := events.New(events.EventUserLeft, c.ID)
		if err != nil {
			continue
		}
		for _, id := range remaining {
			if member, ok := h.clients[id]; ok {
				h.deliver(member, left)
			}
		}
	}
}

// handleDisconnect tears down everything a connection touched: the
// client table, chat broadcast groups, and video room entries (with
// user-left notices). The send channel is closed last to stop the
// write pump.
func (h *Hub) handleDisconnect(c *Client) {
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	h.chat.RemoveAll(c)
	h.leaveVideoRooms(c)
	close(c.Send)
	slog.Info("client unregistered", "conn", c.ID, "user", c.UserID)
}

// BroadcastRoomAdded pushes a room_added notice to every connected
// client. Called from the REST handlers' goroutines.
func (h *Hub) BroadcastRoomAdded(room *store.ChatRoom) {
	if env, err := events.New(events.EventRoomAdded, room); err == nil {
		h.Notify <- env
	}
}

// BroadcastLiveClassAdded pushes a live_class_added notice to every
// connected client.
func (h *Hub) BroadcastLiveClassAdded(class *store.LiveClass) {
	if env, err := events.New(events.EventLiveClassAdded, class); err == nil {
		h.Notify <- env
	}
}

// BroadcastLiveClassDeleted pushes a live_class_deleted notice carrying
// the deleted record's ID.
func (h *Hub) BroadcastLiveClassDeleted(id string) {
	if env, err := events.New(events.EventLiveClassDeleted, id); err == nil {
		h.Notify <- env
	}
}

func toWire(m *store.Message) events.ChatMessage {
	return events.ChatMessage{
		ID:         m.ID,
		RoomID:     m.RoomID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Message:    m.Message,
		CreatedAt:  m.CreatedAt,
	}
}
