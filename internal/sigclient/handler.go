package sigclient

import (
	"log/slog"

	"github.com/devbharu/EduSphere-sub001/internal/events"
)

// Handler routes incoming gateway envelopes onto typed channels.
type Handler struct {
	in <-chan *events.Envelope

	History  chan []events.ChatMessage
	Message  chan events.ChatMessage
	AllUsers chan events.AllUsers

	UserJoined chan events.UserJoined
	UserLeft   chan string

	Offer     chan events.Offer
	Answer    chan events.Answer
	Candidate chan events.ICECandidate

	LiveClassAdded   chan events.Envelope
	LiveClassDeleted chan string
	RoomAdded        chan events.Envelope
}

// NewHandler creates a handler over an incoming envelope stream,
// typically Client.Incoming().
func NewHandler(in <-chan *events.Envelope) *Handler {
	return &Handler{
		in:               in,
		History:          make(chan []events.ChatMessage, 1),
		Message:          make(chan events.ChatMessage, 32),
		AllUsers:         make(chan events.AllUsers, 1),
		UserJoined:       make(chan events.UserJoined, 8),
		UserLeft:         make(chan string, 8),
		Offer:            make(chan events.Offer, 32),
		Answer:           make(chan events.Answer, 32),
		Candidate:        make(chan events.ICECandidate, 64),
		LiveClassAdded:   make(chan events.Envelope, 4),
		LiveClassDeleted: make(chan string, 4),
		RoomAdded:        make(chan events.Envelope, 4),
	}
}

// Run consumes the incoming stream until it closes, routing each
// envelope by event name. Malformed payloads are logged and skipped.
func (h *Handler) Run() {
	for env := range h.in {
		switch env.Event {
		case events.EventChatHistory:
			var msgs []events.ChatMessage
			if h.decode(env, &msgs) {
				h.History <- msgs
			}

		case events.EventReceiveMessage:
			var msg events.ChatMessage
			if h.decode(env, &msg) {
				h.Message <- msg
			}

		case events.EventAllUsers:
			var p events.AllUsers
			if h.decode(env, &p) {
				h.AllUsers <- p
			}

		case events.EventUserJoined:
			var p events.UserJoined
			if h.decode(env, &p) {
				h.UserJoined <- p
			}

		case events.EventUserLeft:
			var id string
			if h.decode(env, &id) {
				h.UserLeft <- id
			}

		case events.EventOffer:
			var p events.Offer
			if h.decode(env, &p) {
				h.Offer <- p
			}

		case events.EventAnswer:
			var p events.Answer
			if h.decode(env, &p) {
				h.Answer <- p
			}

		case events.EventICECandidate:
			var p events.ICECandidate
			if h.decode(env, &p) {
				h.Candidate <- p
			}

		case events.EventLiveClassAdded:
			// Notice channels drop when no one is draining them so a
			// consumer that only cares about signaling never stalls.
			select {
			case h.LiveClassAdded <- *env:
			default:
			}

		case events.EventLiveClassDeleted:
			var id string
			if h.decode(env, &id) {
				h.LiveClassDeleted <- id
			}

		case events.EventRoomAdded:
			select {
			case h.RoomAdded <- *env:
			default:
			}

		default:
			slog.Debug("unhandled event", "event", env.Event)
		}
	}
}

func (h *Handler) decode(env *events.Envelope, v any) bool {
	if err := env.Decode(v); err != nil {
		slog.Warn("malformed payload", "event", env.Event, "err", err)
		return false
	}
	return true
}
