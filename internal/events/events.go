package events

import (
	"encoding/json"
	"time"
)

// Event name constants. One constant per named event on the channel;
// event names on the wire are fixed strings shared with web clients.
const (
	// Chat, client to server.
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"

	// Chat, server to client.
	EventChatHistory    = "chat_history"
	EventReceiveMessage = "receive_message"

	// Video rooms, client to server.
	EventJoinVideoRoom  = "join-video-room"
	EventLeaveVideoRoom = "leave-video-room"

	// Video rooms, server to client.
	EventAllUsers   = "all-users"
	EventUserJoined = "user-joined"
	EventUserLeft   = "user-left"

	// Negotiation relay, both directions.
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice-candidate"

	// Out-of-band collaborator notices, server to client.
	EventRoomAdded        = "room_added"
	EventLiveClassAdded   = "live_class_added"
	EventLiveClassDeleted = "live_class_deleted"
)

// Envelope frames every message on the event channel: a tag naming the
// event and the raw payload for that event's variant.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// New builds an envelope for an event, marshaling the payload.
func New(event string, payload any) (*Envelope, error) {
	if payload == nil {
		return &Envelope{Event: event}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{Event: event, Data: data}, nil
}

// Decode unmarshals the envelope payload into v.
func (e *Envelope) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// JoinRoom asks to join a chat room's broadcast group.
type JoinRoom struct {
	RoomID string `json:"roomId"`
}

// SendMessage carries new chat message text for a room.
type SendMessage struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// ChatMessage is a stored chat message as delivered to clients, both in
// chat_history batches and as single receive_message broadcasts.
type ChatMessage struct {
	ID         uint      `json:"id"`
	RoomID     string    `json:"roomId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// JoinVideoRoom asks to join a video room by live class ID.
type JoinVideoRoom struct {
	RoomID string `json:"roomId"`
}

// LeaveVideoRoom asks to leave a video room.
type LeaveVideoRoom struct {
	RoomID string `json:"roomId"`
}

// AllUsers is the joiner's snapshot of the other current members.
type AllUsers struct {
	Users []string `json:"users"`
}

// UserJoined notifies existing members about a new participant.
type UserJoined struct {
	SocketID string `json:"socketId"`
	UserName string `json:"userName"`
}

// Offer relays a session description offer. Clients address the target;
// the server rewrites the addressing to name the caller. The payload is
// opaque to the server and forwarded untouched.
type Offer struct {
	Target string          `json:"target,omitempty"`
	Caller string          `json:"caller,omitempty"`
	Offer  json.RawMessage `json:"offer"`
}

// Answer relays a session description answer.
type Answer struct {
	Target string          `json:"target,omitempty"`
	From   string          `json:"from,omitempty"`
	Answer json.RawMessage `json:"answer"`
}

// ICECandidate relays a discovered network path option.
type ICECandidate struct {
	Target    string          `json:"target,omitempty"`
	From      string          `json:"from,omitempty"`
	Candidate json.RawMessage `json:"candidate"`
}

// user-left carries the bare connection ID as its payload, matching the
// web client contract; UserLeft wraps it for the typed API.
type UserLeft string

// LiveClassDeleted carries the deleted record's ID.
type LiveClassDeleted string
