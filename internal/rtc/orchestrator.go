package rtc

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v4"
)

// ErrNotStarted is returned when negotiation is attempted before local
// media has been acquired.
var ErrNotStarted = errors.New("local media not acquired")

// State is the negotiation state of one remote participant's link.
type State int

const (
	StateIdle State = iota
	StateOffering
	StateAnswerPending
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOffering:
		return "offering"
	case StateAnswerPending:
		return "answer-pending"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Signaler sends negotiation payloads toward a specific remote
// connection. sigclient.Client satisfies it.
type Signaler interface {
	SendOffer(target string, sdp json.RawMessage) error
	SendAnswer(target string, sdp json.RawMessage) error
	SendCandidate(target string, candidate json.RawMessage) error
}

// Participant is one entry in the local view of the call.
type Participant struct {
	ConnID string
	Name   string
}

// peerLink is the single negotiation handle for one remote participant.
type peerLink struct {
	pc    *webrtc.PeerConnection
	state State

	// Candidates that arrived before the remote description; applied
	// as soon as it lands.
	pending   []webrtc.ICECandidateInit
	remoteSet bool
}

// Orchestrator owns, per remote participant, exactly one peer
// connection, and drives it through the negotiation state machine. All
// outgoing connections share the same local track objects, so media
// toggles apply to every link at once.
type Orchestrator struct {
	mu sync.Mutex

	cfg      webrtc.Configuration
	signaler Signaler
	media    MediaSource

	tracks       []webrtc.TrackLocal
	peers        map[string]*peerLink
	participants map[string]Participant
	names        map[string]string
	started      bool
	closed       bool
}

// NewOrchestrator creates an orchestrator. Start must be called before
// any negotiation.
func NewOrchestrator(cfg webrtc.Configuration, media MediaSource, signaler Signaler) *Orchestrator {
	return &Orchestrator{
		cfg:          cfg,
		signaler:     signaler,
		media:        media,
		peers:        make(map[string]*peerLink),
		participants: make(map[string]Participant),
		names:        make(map[string]string),
	}
}

// Start acquires local media. It must succeed before joining a video
// room; on failure the join is aborted before any signaling occurs.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		return nil
	}
	tracks, err := o.media.Acquire()
	if err != nil {
		return fmt.Errorf("media acquisition failed: %w", err)
	}
	o.tracks = tracks
	o.started = true
	return nil
}

// Offer initiates negotiation toward a remote connection. If a link for
// that remote already exists this is a no-op: the insert into the peer
// map happens before any asynchronous negotiation step, which closes
// the duplicate-connection race.
func (o *Orchestrator) Offer(remoteID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		return ErrNotStarted
	}
	if _, exists := o.peers[remoteID]; exists {
		return nil
	}

	link := &peerLink{state: StateIdle}
	o.peers[remoteID] = link

	pc, err := o.newPeerConnection(remoteID)
	if err != nil {
		delete(o.peers, remoteID)
		return err
	}
	link.pc = pc

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		o.dropLocked(remoteID)
		return fmt.Errorf("create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		o.dropLocked(remoteID)
		return fmt.Errorf("set local description: %w", err)
	}
	link.state = StateOffering

	payload, err := json.Marshal(pc.LocalDescription())
	if err != nil {
		o.dropLocked(remoteID)
		return err
	}
	return o.signaler.SendOffer(remoteID, payload)
}

// HandleOffer answers an inbound offer from a remote connection with no
// existing link. An offer for a remote we already track is ignored.
func (o *Orchestrator) HandleOffer(from string, sdp json.RawMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		return ErrNotStarted
	}
	if _, exists := o.peers[from]; exists {
		return nil
	}

	link := &peerLink{state: StateAnswerPending}
	o.peers[from] = link

	pc, err := o.newPeerConnection(from)
	if err != nil {
		delete(o.peers, from)
		return err
	}
	link.pc = pc

	var desc webrtc.SessionDescription
	if err := json.Unmarshal(sdp, &desc); err != nil {
		o.dropLocked(from)
		return fmt.Errorf("decode offer: %w", err)
	}
	if err := pc.SetRemoteDescription(desc); err != nil {
		o.dropLocked(from)
		return fmt.Errorf("set remote description: %w", err)
	}
	link.remoteSet = true
	o.flushPending(from, link)

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		o.dropLocked(from)
		return fmt.Errorf("create answer: %w", err)
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		o.dropLocked(from)
		return fmt.Errorf("set local description: %w", err)
	}
	link.state = StateConnected

	payload, err := json.Marshal(pc.LocalDescription())
	if err != nil {
		o.dropLocked(from)
		return err
	}
	return o.signaler.SendAnswer(from, payload)
}

// HandleAnswer applies the remote answer to an offer we initiated.
func (o *Orchestrator) HandleAnswer(from string, sdp json.RawMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	link, ok := o.peers[from]
	if !ok {
		slog.Debug("answer for unknown remote, dropping", "from", from)
		return nil
	}

	var desc webrtc.SessionDescription
	if err := json.Unmarshal(sdp, &desc); err != nil {
		return fmt.Errorf("decode answer: %w", err)
	}
	if err := link.pc.SetRemoteDescription(desc); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	link.remoteSet = true
	o.flushPending(from, link)
	link.state = StateConnected
	return nil
}

// HandleCandidate applies an ICE candidate to the remote's candidate
// pool whenever it arrives: before the description exchange completes
// it is held back, afterwards applied directly. Candidates for unknown
// remotes are dropped.
func (o *Orchestrator) HandleCandidate(from string, candidate json.RawMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	link, ok := o.peers[from]
	if !ok {
		slog.Debug("candidate for unknown remote, dropping", "from", from)
		return nil
	}

	var init webrtc.ICECandidateInit
	if err := json.Unmarshal(candidate, &init); err != nil {
		return fmt.Errorf("decode candidate: %w", err)
	}

	if !link.remoteSet {
		link.pending = append(link.pending, init)
		return nil
	}
	if err := link.pc.AddICECandidate(init); err != nil {
		return fmt.Errorf("add candidate: %w", err)
	}
	return nil
}

func (o *Orchestrator) flushPending(from string, link *peerLink) {
	for _, init := range link.pending {
		if err := link.pc.AddICECandidate(init); err != nil {
			slog.Warn("buffered candidate rejected", "from", from, "err", err)
		}
	}
	link.pending = nil
}

// SetName records a participant's display name from a user-joined
// notice, for the participant view.
func (o *Orchestrator) SetName(connID, name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names[connID] = name
	if p, ok := o.participants[connID]; ok {
		p.Name = name
		o.participants[connID] = p
	}
}

// RemovePeer closes and forgets the link for a departed remote. Remote
// departure is detected via the server's user-left notice or transport
// failure; no goodbye signal is exchanged.
func (o *Orchestrator) RemovePeer(remoteID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropLocked(remoteID)
}

func (o *Orchestrator) dropLocked(remoteID string) {
	if link, ok := o.peers[remoteID]; ok {
		if link.pc != nil {
			link.pc.Close()
		}
		link.state = StateClosed
		delete(o.peers, remoteID)
	}
	delete(o.participants, remoteID)
}

// Close tears down the whole call: every link is closed, the maps are
// cleared, and the local media device is released.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true

	for id, link := range o.peers {
		if link.pc != nil {
			link.pc.Close()
		}
		link.state = StateClosed
		delete(o.peers, id)
	}
	o.participants = make(map[string]Participant)
	o.media.Close()
}

// ToggleVideo flips the outgoing video flag and returns the new value.
// The flag lives on the shared local track, so it applies to every
// attached connection without renegotiation.
func (o *Orchestrator) ToggleVideo() bool {
	on := !o.media.VideoEnabled()
	o.media.SetVideoEnabled(on)
	return on
}

// ToggleAudio flips the outgoing audio flag and returns the new value.
func (o *Orchestrator) ToggleAudio() bool {
	on := !o.media.AudioEnabled()
	o.media.SetAudioEnabled(on)
	return on
}

// PeerState reports the negotiation state for a remote, if tracked.
func (o *Orchestrator) PeerState(remoteID string) (State, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	link, ok := o.peers[remoteID]
	if !ok {
		return StateClosed, false
	}
	return link.state, true
}

// PeerCount returns the number of tracked remote links.
func (o *Orchestrator) PeerCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.peers)
}

// Participants returns the current participant view.
func (o *Orchestrator) Participants() []Participant {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Participant, 0, len(o.participants))
	for _, p := range o.participants {
		out = append(out, p)
	}
	return out
}

// newPeerConnection creates a configured connection with every local
// track attached once, wired to relay its candidates and surface remote
// tracks. Callers hold o.mu; pion fires the handlers on their own
// goroutines.
func (o *Orchestrator) newPeerConnection(remoteID string) (*webrtc.PeerConnection, error) {
	pc, err := webrtc.NewPeerConnection(o.cfg)
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	for _, track := range o.tracks {
		if _, err := pc.AddTrack(track); err != nil {
			pc.Close()
			return nil, fmt.Errorf("attach track: %w", err)
		}
	}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		payload, err := json.Marshal(c.ToJSON())
		if err != nil {
			return
		}
		if err := o.signaler.SendCandidate(remoteID, payload); err != nil {
			slog.Warn("candidate send failed", "target", remoteID, "err", err)
		}
	})

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		o.addParticipant(remoteID)
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		slog.Debug("peer connection state", "remote", remoteID, "state", state.String())
	})

	return pc, nil
}

// addParticipant records a remote in the participant view, deduplicated
// by connection ID: multiple tracks from one remote yield one entry.
func (o *Orchestrator) addParticipant(remoteID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.participants[remoteID]; ok {
		return
	}
	name := o.names[remoteID]
	if name == "" {
		name = "Participant"
	}
	o.participants[remoteID] = Participant{ConnID: remoteID, Name: name}
}
