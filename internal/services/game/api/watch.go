// Package api exposes the read-only room watch endpoint.
//
// Watching is an observer surface: snapshots come from non-transactional
// reads and carry no resolution authority.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/louisbranch/chasse.space/internal/platform/timeouts"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
	"github.com/louisbranch/chasse.space/internal/services/game/storage"
)

// RoomSnapshot is the wire shape pushed to watchers whenever room state
// changes.
type RoomSnapshot struct {
	RoomID  string               `json:"room_id"`
	Mode    room.Mode            `json:"mode"`
	State   room.State           `json:"state"`
	Roles   map[string]room.Role `json:"roles,omitempty"`
	EndedAt *time.Time           `json:"ended_at,omitempty"`
	Players []PlayerSnapshot     `json:"players"`
}

// PlayerSnapshot is one player's public state inside a room snapshot.
type PlayerSnapshot struct {
	UID           string `json:"uid"`
	Score         int    `json:"score"`
	IFrameUntilMs int64  `json:"iframe_until_ms"`
}

// WatchHandler upgrades HTTP requests to websocket sessions that stream
// room snapshots.
type WatchHandler struct {
	store        storage.GameStore
	pollInterval time.Duration
	upgrader     websocket.Upgrader
}

// NewWatchHandler constructs a WatchHandler polling the store at the given
// interval.
func NewWatchHandler(store storage.GameStore, pollInterval time.Duration) *WatchHandler {
	if pollInterval <= 0 {
		pollInterval = timeouts.EventPoll
	}
	return &WatchHandler{
		store:        store,
		pollInterval: pollInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ServeHTTP handles GET /watch?room=<id>.
func (h *WatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimSpace(r.URL.Query().Get("room"))
	if roomID == "" {
		http.Error(w, "room query parameter is required", http.StatusBadRequest)
		return
	}
	if _, err := h.store.Room(r.Context(), roomID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Watchers never send application data; the read loop exists to
	// observe the close handshake.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.stream(ctx, conn, roomID)
}

func (h *WatchHandler) stream(ctx context.Context, conn *websocket.Conn, roomID string) {
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	var last []byte
	for {
		snapshot, err := h.snapshot(ctx, roomID)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("watch room %s: %v", roomID, err)
			}
			return
		}
		payload, err := json.Marshal(snapshot)
		if err != nil {
			log.Printf("encode snapshot for room %s: %v", roomID, err)
			return
		}
		if string(payload) != string(last) {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
			last = payload
		}
		if snapshot.State == room.StateEnded {
			deadline := time.Now().Add(timeouts.Shutdown)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "round ended"), deadline)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *WatchHandler) snapshot(ctx context.Context, roomID string) (RoomSnapshot, error) {
	rm, err := h.store.Room(ctx, roomID)
	if err != nil {
		return RoomSnapshot{}, err
	}
	players, err := h.store.Players(ctx, roomID)
	if err != nil {
		return RoomSnapshot{}, err
	}

	snapshot := RoomSnapshot{
		RoomID:  rm.ID,
		Mode:    rm.Mode,
		State:   rm.State,
		EndedAt: rm.EndedAt,
		Players: make([]PlayerSnapshot, 0, len(players)),
	}
	if len(rm.Roles) > 0 {
		snapshot.Roles = rm.Roles
	}
	for _, p := range players {
		snapshot.Players = append(snapshot.Players, PlayerSnapshot{
			UID:           p.UID,
			Score:         p.Score,
			IFrameUntilMs: p.IFrameUntilMs,
		})
	}
	return snapshot, nil
}
