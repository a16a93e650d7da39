package rtc

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
)

// ErrMediaClosed is returned when acquiring from a closed source.
var ErrMediaClosed = errors.New("media source closed")

// MediaSource owns the local media lifecycle: one acquisition per call
// session, shared track objects across every outgoing connection, and
// enable flags that apply to all of them at once because the track
// objects are shared.
type MediaSource interface {
	// Acquire obtains the local outgoing tracks. Failure here aborts a
	// video room join before any signaling happens.
	Acquire() ([]webrtc.TrackLocal, error)

	SetVideoEnabled(on bool)
	SetAudioEnabled(on bool)
	VideoEnabled() bool
	AudioEnabled() bool

	// Close stops all local tracks and releases the device.
	Close() error
}

// SyntheticSource is the headless peer's media source: one VP8 video and
// one Opus audio track fed with placeholder samples. Toggling a flag
// pauses the corresponding writer in place; no renegotiation happens.
type SyntheticSource struct {
	mu       sync.Mutex
	video    *webrtc.TrackLocalStaticSample
	audio    *webrtc.TrackLocalStaticSample
	videoOn  atomic.Bool
	audioOn  atomic.Bool
	done     chan struct{}
	acquired bool
	closed   bool
}

// NewSyntheticSource creates an unacquired synthetic source.
func NewSyntheticSource() *SyntheticSource {
	s := &SyntheticSource{done: make(chan struct{})}
	s.videoOn.Store(true)
	s.audioOn.Store(true)
	return s
}

// Acquire creates the track pair and starts the sample writers. A
// second call returns the same tracks.
func (s *SyntheticSource) Acquire() ([]webrtc.TrackLocal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrMediaClosed
	}
	if s.acquired {
		return []webrtc.TrackLocal{s.video, s.audio}, nil
	}

	video, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", "edusphere-peer")
	if err != nil {
		return nil, err
	}
	audio, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", "edusphere-peer")
	if err != nil {
		return nil, err
	}

	s.video = video
	s.audio = audio
	s.acquired = true

	go s.writeVideo()
	go s.writeAudio()

	return []webrtc.TrackLocal{video, audio}, nil
}

func (s *SyntheticSource) writeVideo() {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if !s.videoOn.Load() {
				continue
			}
			s.video.WriteSample(media.Sample{
				Data:     blankVideoFrame,
				Duration: 33 * time.Millisecond,
			})
		}
	}
}

func (s *SyntheticSource) writeAudio() {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if !s.audioOn.Load() {
				continue
			}
			s.audio.WriteSample(media.Sample{
				Data:     silentOpusFrame,
				Duration: 20 * time.Millisecond,
			})
		}
	}
}

// SetVideoEnabled flips the outgoing video flag in place.
func (s *SyntheticSource) SetVideoEnabled(on bool) { s.videoOn.Store(on) }

// SetAudioEnabled flips the outgoing audio flag in place.
func (s *SyntheticSource) SetAudioEnabled(on bool) { s.audioOn.Store(on) }

// VideoEnabled reports the outgoing video flag.
func (s *SyntheticSource) VideoEnabled() bool { return s.videoOn.Load() }

// AudioEnabled reports the outgoing audio flag.
func (s *SyntheticSource) AudioEnabled() bool { return s.audioOn.Load() }

// Close stops the sample writers. Idempotent.
func (s *SyntheticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	return nil
}

var (
	// A minimal Opus frame encoding silence.
	silentOpusFrame = []byte{0xf8, 0xff, 0xfe}

	// Placeholder VP8 payload; receivers render nothing but the RTP
	// flow keeps the transport alive.
	blankVideoFrame = []byte{0x10, 0x02, 0x00, 0x9d, 0x01, 0x2a}
)
