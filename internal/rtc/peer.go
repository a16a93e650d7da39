package rtc

import (
	"github.com/pion/webrtc/v4"

	"github.com/devbharu/EduSphere-sub001/internal/config"
)

// ICEConfiguration builds the pion configuration from peer config:
// always the STUN server, plus TURN when credentials are configured.
func ICEConfiguration(cfg *config.Peer) webrtc.Configuration {
	iceServers := []webrtc.ICEServer{{URLs: cfg.GetSTUNServers()}}

	if turnServers := cfg.GetTURNServers(); turnServers != nil {
		username, password := cfg.GetTURNCredentials()
		iceServers = append(iceServers, webrtc.ICEServer{
			URLs:       turnServers,
			Username:   username,
			Credential: password,
		})
	}

	return webrtc.Configuration{ICEServers: iceServers}
}
