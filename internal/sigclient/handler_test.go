package sigclient

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/devbharu/EduSphere-sub001/internal/events"
)

func feedHandler(t *testing.T, envs ...*events.Envelope) *Handler {
	t.Helper()

	in := make(chan *events.Envelope, len(envs))
	for _, env := range envs {
		in <- env
	}
	close(in)

	h := NewHandler(in)
	go h.Run()
	return h
}

func mustEnv(t *testing.T, event string, payload any) *events.Envelope {
	t.Helper()
	env, err := events.New(event, payload)
	if err != nil {
		t.Fatalf("events.New(%s) error = %v", event, err)
	}
	return env
}

func TestHandlerRoutesByEvent(t *testing.T) {
	offerSDP := json.RawMessage(`{"type":"offer","sdp":"v=0\r\n"}`)
	h := feedHandler(t,
		mustEnv(t, events.EventAllUsers, events.AllUsers{Users: []string{"conn-a"}}),
		mustEnv(t, events.EventUserJoined, events.UserJoined{SocketID: "conn-b", UserName: "Bob"}),
		mustEnv(t, events.EventOffer, events.Offer{Caller: "conn-a", Offer: offerSDP}),
		mustEnv(t, events.EventUserLeft, "conn-a"),
	)

	select {
	case p := <-h.AllUsers:
		if len(p.Users) != 1 || p.Users[0] != "conn-a" {
			t.Errorf("AllUsers = %v, want [conn-a]", p.Users)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("all-users never routed")
	}

	select {
	case p := <-h.UserJoined:
		if p.SocketID != "conn-b" || p.UserName != "Bob" {
			t.Errorf("UserJoined = %+v, want conn-b/Bob", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("user-joined never routed")
	}

	select {
	case p := <-h.Offer:
		if p.Caller != "conn-a" || !bytes.Equal(p.Offer, offerSDP) {
			t.Errorf("Offer = %+v, payload intact = %v", p, bytes.Equal(p.Offer, offerSDP))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("offer never routed")
	}

	select {
	case id := <-h.UserLeft:
		if id != "conn-a" {
			t.Errorf("UserLeft = %q, want conn-a", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("user-left never routed")
	}
}

func TestHandlerSkipsMalformedPayloads(t *testing.T) {
	h := feedHandler(t,
		&events.Envelope{Event: events.EventAllUsers, Data: json.RawMessage(`"not-an-object"`)},
		mustEnv(t, events.EventAllUsers, events.AllUsers{Users: []string{"conn-z"}}),
	)

	select {
	case p := <-h.AllUsers:
		if len(p.Users) != 1 || p.Users[0] != "conn-z" {
			t.Errorf("AllUsers = %v, want the well-formed payload", p.Users)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("well-formed payload never routed")
	}
}
