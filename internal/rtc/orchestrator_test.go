package rtc

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/pion/webrtc/v4"
)

type sentSignal struct {
	target  string
	payload json.RawMessage
}

type stubSignaler struct {
	mu         sync.Mutex
	offers     []sentSignal
	answers    []sentSignal
	candidates []sentSignal
}

func (s *stubSignaler) SendOffer(target string, sdp json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers = append(s.offers, sentSignal{target, sdp})
	return nil
}

func (s *stubSignaler) SendAnswer(target string, sdp json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, sentSignal{target, sdp})
	return nil
}

func (s *stubSignaler) SendCandidate(target string, candidate json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = append(s.candidates, sentSignal{target, candidate})
	return nil
}

func (s *stubSignaler) offerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.offers)
}

func (s *stubSignaler) lastOffer(t *testing.T) sentSignal {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.offers) == 0 {
		t.Fatal("no offer was sent")
	}
	return s.offers[len(s.offers)-1]
}

func (s *stubSignaler) lastAnswer(t *testing.T) sentSignal {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.answers) == 0 {
		t.Fatal("no answer was sent")
	}
	return s.answers[len(s.answers)-1]
}

type stubMedia struct {
	videoOn bool
	audioOn bool
	closed  bool
	failure error
	tracks  []webrtc.TrackLocal
}

func newStubMedia(t *testing.T) *stubMedia {
	t.Helper()
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", "test")
	if err != nil {
		t.Fatalf("create test track: %v", err)
	}
	return &stubMedia{videoOn: true, audioOn: true, tracks: []webrtc.TrackLocal{track}}
}

func (m *stubMedia) Acquire() ([]webrtc.TrackLocal, error) {
	if m.failure != nil {
		return nil, m.failure
	}
	return m.tracks, nil
}

func (m *stubMedia) SetVideoEnabled(on bool) { m.videoOn = on }
func (m *stubMedia) SetAudioEnabled(on bool) { m.audioOn = on }
func (m *stubMedia) VideoEnabled() bool      { return m.videoOn }
func (m *stubMedia) AudioEnabled() bool      { return m.audioOn }
func (m *stubMedia) Close() error            { m.closed = true; return nil }

func newTestOrchestrator(t *testing.T) (*Orchestrator, *stubSignaler, *stubMedia) {
	t.Helper()
	signaler := &stubSignaler{}
	media := newStubMedia(t)
	orch := NewOrchestrator(webrtc.Configuration{}, media, signaler)
	return orch, signaler, media
}

func TestOfferBeforeStartFails(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t)

	if err := orch.Offer("remote-1"); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Offer() error = %v, want ErrNotStarted", err)
	}
}

func TestMediaFailureAbortsBeforeSignaling(t *testing.T) {
	signaler := &stubSignaler{}
	media := &stubMedia{failure: errors.New("camera denied")}
	orch := NewOrchestrator(webrtc.Configuration{}, media, signaler)

	if err := orch.Start(); err == nil {
		t.Fatal("Start() succeeded with failing media source")
	}
	if err := orch.Offer("remote-1"); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Offer() error = %v, want ErrNotStarted", err)
	}
	if signaler.offerCount() != 0 {
		t.Error("signaling happened despite media acquisition failure")
	}
}

func TestOfferIsIdempotentPerRemote(t *testing.T) {
	orch, signaler, _ := newTestOrchestrator(t)
	if err := orch.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer orch.Close()

	if err := orch.Offer("remote-1"); err != nil {
		t.Fatalf("Offer() error = %v", err)
	}
	// Repeated rapid join notifications for the same participant.
	if err := orch.Offer("remote-1"); err != nil {
		t.Fatalf("second Offer() error = %v", err)
	}
	if err := orch.Offer("remote-1"); err != nil {
		t.Fatalf("third Offer() error = %v", err)
	}

	if got := orch.PeerCount(); got != 1 {
		t.Errorf("PeerCount() = %d, want 1", got)
	}
	if got := signaler.offerCount(); got != 1 {
		t.Errorf("offers sent = %d, want 1", got)
	}
	if state, ok := orch.PeerState("remote-1"); !ok || state != StateOffering {
		t.Errorf("PeerState() = %v/%v, want offering/true", state, ok)
	}
}

func TestOfferAnswerFlowReachesConnected(t *testing.T) {
	alice, aliceSig, _ := newTestOrchestrator(t)
	bob, bobSig, _ := newTestOrchestrator(t)
	if err := alice.Start(); err != nil {
		t.Fatalf("alice Start() error = %v", err)
	}
	if err := bob.Start(); err != nil {
		t.Fatalf("bob Start() error = %v", err)
	}
	defer alice.Close()
	defer bob.Close()

	// Alice joined last, so she initiates toward Bob.
	if err := alice.Offer("bob"); err != nil {
		t.Fatalf("Offer() error = %v", err)
	}
	offer := aliceSig.lastOffer(t)
	if offer.target != "bob" {
		t.Errorf("offer target = %q, want bob", offer.target)
	}

	if err := bob.HandleOffer("alice", offer.payload); err != nil {
		t.Fatalf("HandleOffer() error = %v", err)
	}
	if state, _ := bob.PeerState("alice"); state != StateConnected {
		t.Errorf("bob state = %v, want connected", state)
	}

	answer := bobSig.lastAnswer(t)
	if answer.target != "alice" {
		t.Errorf("answer target = %q, want alice", answer.target)
	}
	if err := alice.HandleAnswer("bob", answer.payload); err != nil {
		t.Fatalf("HandleAnswer() error = %v", err)
	}
	if state, _ := alice.PeerState("bob"); state != StateConnected {
		t.Errorf("alice state = %v, want connected", state)
	}
}

func TestInboundOfferForKnownRemoteIsIgnored(t *testing.T) {
	alice, aliceSig, _ := newTestOrchestrator(t)
	bob, bobSig, _ := newTestOrchestrator(t)
	if err := alice.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := bob.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer alice.Close()
	defer bob.Close()

	if err := alice.Offer("bob"); err != nil {
		t.Fatalf("Offer() error = %v", err)
	}
	if err := bob.HandleOffer("alice", aliceSig.lastOffer(t).payload); err != nil {
		t.Fatalf("HandleOffer() error = %v", err)
	}

	// A second offer from the same remote must not create a second handle.
	if err := bob.HandleOffer("alice", aliceSig.lastOffer(t).payload); err != nil {
		t.Fatalf("duplicate HandleOffer() error = %v", err)
	}
	if got := bob.PeerCount(); got != 1 {
		t.Errorf("PeerCount() = %d, want 1", got)
	}
	bobSig.mu.Lock()
	answers := len(bobSig.answers)
	bobSig.mu.Unlock()
	if answers != 1 {
		t.Errorf("answers sent = %d, want 1", answers)
	}
}

func TestCandidateForUnknownRemoteIsDropped(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t)
	if err := orch.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer orch.Close()

	cand := json.RawMessage(`{"candidate":"candidate:1 1 udp 2130706431 127.0.0.1 54321 typ host","sdpMid":"0","sdpMLineIndex":0}`)
	if err := orch.HandleCandidate("ghost", cand); err != nil {
		t.Errorf("HandleCandidate() error = %v, want silent drop", err)
	}
	if got := orch.PeerCount(); got != 0 {
		t.Errorf("PeerCount() = %d, want 0", got)
	}
}

func TestEarlyCandidateIsHeldUntilAnswer(t *testing.T) {
	alice, aliceSig, _ := newTestOrchestrator(t)
	bob, bobSig, _ := newTestOrchestrator(t)
	if err := alice.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := bob.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer alice.Close()
	defer bob.Close()

	if err := alice.Offer("bob"); err != nil {
		t.Fatalf("Offer() error = %v", err)
	}

	// Candidate arrives before the answer completes the exchange.
	cand := json.RawMessage(`{"candidate":"candidate:1 1 udp 2130706431 127.0.0.1 54321 typ host","sdpMid":"0","sdpMLineIndex":0}`)
	if err := alice.HandleCandidate("bob", cand); err != nil {
		t.Fatalf("HandleCandidate() error = %v", err)
	}

	alice.mu.Lock()
	pending := len(alice.peers["bob"].pending)
	alice.mu.Unlock()
	if pending != 1 {
		t.Fatalf("pending candidates = %d, want 1", pending)
	}

	if err := bob.HandleOffer("alice", aliceSig.lastOffer(t).payload); err != nil {
		t.Fatalf("HandleOffer() error = %v", err)
	}
	if err := alice.HandleAnswer("bob", bobSig.lastAnswer(t).payload); err != nil {
		t.Fatalf("HandleAnswer() error = %v", err)
	}

	alice.mu.Lock()
	pending = len(alice.peers["bob"].pending)
	alice.mu.Unlock()
	if pending != 0 {
		t.Errorf("pending candidates after answer = %d, want 0", pending)
	}
}

func TestParticipantViewDedupsByRemoteID(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t)
	orch.SetName("remote-1", "Alice")

	// Multiple tracks from the same remote arrive as repeated callbacks.
	orch.addParticipant("remote-1")
	orch.addParticipant("remote-1")
	orch.addParticipant("remote-2")

	participants := orch.Participants()
	if len(participants) != 2 {
		t.Fatalf("Participants() = %d entries, want 2", len(participants))
	}
	byID := make(map[string]Participant)
	for _, p := range participants {
		byID[p.ConnID] = p
	}
	if byID["remote-1"].Name != "Alice" {
		t.Errorf("remote-1 name = %q, want Alice", byID["remote-1"].Name)
	}
	if byID["remote-2"].Name != "Participant" {
		t.Errorf("remote-2 name = %q, want fallback Participant", byID["remote-2"].Name)
	}
}

func TestRemovePeerAndClose(t *testing.T) {
	orch, _, media := newTestOrchestrator(t)
	if err := orch.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := orch.Offer("remote-1"); err != nil {
		t.Fatalf("Offer() error = %v", err)
	}
	if err := orch.Offer("remote-2"); err != nil {
		t.Fatalf("Offer() error = %v", err)
	}

	orch.RemovePeer("remote-1")
	if got := orch.PeerCount(); got != 1 {
		t.Errorf("PeerCount() after remove = %d, want 1", got)
	}
	if _, ok := orch.PeerState("remote-1"); ok {
		t.Error("removed remote still tracked")
	}

	orch.Close()
	orch.Close() // idempotent
	if got := orch.PeerCount(); got != 0 {
		t.Errorf("PeerCount() after close = %d, want 0", got)
	}
	if !media.closed {
		t.Error("media source not released on close")
	}
}

func TestTogglesFlipSharedFlags(t *testing.T) {
	orch, _, media := newTestOrchestrator(t)

	if on := orch.ToggleVideo(); on {
		t.Error("ToggleVideo() = true, want false after first flip")
	}
	if media.VideoEnabled() {
		t.Error("video flag still set")
	}
	if on := orch.ToggleVideo(); !on {
		t.Error("ToggleVideo() = false, want true after second flip")
	}

	if on := orch.ToggleAudio(); on {
		t.Error("ToggleAudio() = true, want false after first flip")
	}
	if media.AudioEnabled() {
		t.Error("audio flag still set")
	}
}
