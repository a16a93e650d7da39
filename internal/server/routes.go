package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/devbharu/EduSphere-sub001/internal/auth"
	"github.com/devbharu/EduSphere-sub001/internal/events"
	"github.com/devbharu/EduSphere-sub001/internal/gateway"
	"github.com/devbharu/EduSphere-sub001/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,

	// Browser clients connect cross-origin during development. Lock
	// this down to the frontend's domain in production.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// bearerToken extracts the credential from the Authorization header or,
// for websocket clients that cannot set headers, the token query param.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// ServeWS returns the handler for the event channel endpoint. The
// credential is verified before the upgrade; a connection that fails
// authentication never sees a single event.
func ServeWS(hub *gateway.Hub, authenticator *auth.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := authenticator.Verify(bearerToken(r))
		if err != nil {
			slog.Warn("websocket auth failed", "err", err)
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "err", err)
			return
		}

		client := &gateway.Client{
			Hub:      hub,
			Conn:     conn,
			ID:       uuid.NewString(),
			UserID:   identity.UserID,
			UserName: identity.Name,
			Send:     make(chan *events.Envelope, 256),
		}

		client.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}

// Routes builds the full HTTP mux: health, the event channel, and the
// REST collaborator endpoints.
func Routes(hub *gateway.Hub, st *store.Store, authenticator *auth.Authenticator) *http.ServeMux {
	rest := &restHandlers{hub: hub, store: st}
	authed := requireAuth(authenticator)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Realtime gateway is healthy."))
	})
	mux.HandleFunc("/ws", ServeWS(hub, authenticator))

	mux.Handle("POST /api/rooms", authed(rest.createRoom))
	mux.Handle("GET /api/rooms/all", authed(rest.listRooms))
	mux.Handle("GET /api/chat/rooms/{roomId}/messages", authed(rest.roomMessages))
	mux.Handle("POST /api/liveClasses/create", authed(rest.createLiveClass))
	mux.Handle("GET /api/liveClasses", authed(rest.listLiveClasses))
	mux.Handle("DELETE /api/liveClasses/{id}", authed(rest.deleteLiveClass))

	return mux
}
