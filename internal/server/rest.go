package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/devbharu/EduSphere-sub001/internal/gateway"
	"github.com/devbharu/EduSphere-sub001/internal/store"
)

// restHandlers implements the CRUD collaborator endpoints around the
// realtime core: chat rooms, room message history, and live classes.
// Mutations push their out-of-band notice through the hub so every
// connected dashboard updates instantly.
type restHandlers struct {
	hub   *gateway.Hub
	store *store.Store
}

func (h *restHandlers) createRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Room name is required.")
		return
	}

	room := &store.ChatRoom{ID: uuid.NewString(), Name: req.Name}
	if err := h.store.Rooms.Create(room); err != nil {
		slog.Error("create room failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	h.hub.BroadcastRoomAdded(room)
	writeJSON(w, http.StatusCreated, room)
}

func (h *restHandlers) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.store.Rooms.FindAll()
	if err != nil {
		slog.Error("list rooms failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *restHandlers) roomMessages(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomId")
	if !gateway.ValidRoomID(roomID) {
		writeError(w, http.StatusBadRequest, "Invalid room ID")
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	msgs, err := h.store.Messages.History(roomID, limit, offset)
	if err != nil {
		slog.Error("room messages failed", "room", roomID, "err", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *restHandlers) createLiveClass(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Subject string `json:"subject"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || req.Subject == "" {
		writeError(w, http.StatusBadRequest, "Title and Subject are required to create a class.")
		return
	}

	identity := identityFrom(r)
	class := &store.LiveClass{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Subject:     req.Subject,
		TeacherID:   identity.UserID,
		TeacherName: identity.Name,
	}
	if err := h.store.LiveClasses.Create(class); err != nil {
		slog.Error("create live class failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	h.hub.BroadcastLiveClassAdded(class)
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"class":   class,
		"message": "Live Class created successfully",
	})
}

func (h *restHandlers) listLiveClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.store.LiveClasses.FindAll()
	if err != nil {
		slog.Error("list live classes failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

func (h *restHandlers) deleteLiveClass(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	class, err := h.store.LiveClasses.FindByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Live Class not found")
			return
		}
		slog.Error("find live class failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	// Only the teacher who created the class may delete it.
	if class.TeacherID != identityFrom(r).UserID {
		writeError(w, http.StatusUnauthorized, "Not authorized to delete this class")
		return
	}

	if err := h.store.LiveClasses.Delete(id); err != nil {
		slog.Error("delete live class failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	h.hub.BroadcastLiveClassDeleted(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "Live Class deleted successfully",
		"deletedClassId": id,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
