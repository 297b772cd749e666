// internal/handlers/watch_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/florets/hanabi/internal/service"
)

// WatchHub pushes a fresh per-viewer projection to websocket subscribers
// each time a game mutates. It is a read-only convenience layer: actions
// still go through the REST routes, and a watcher that drops just misses
// updates until it reconnects.
type WatchHub struct {
	Service *service.Service
	Logger  *logrus.Logger

	mu   sync.Mutex
	subs map[uuid.UUID]map[*watcher]struct{}
}

type watcher struct {
	conn   *websocket.Conn
	viewer *string
}

func NewWatchHub(svc *service.Service, logger *logrus.Logger) *WatchHub {
	return &WatchHub{
		Service: svc,
		Logger:  logger,
		subs:    make(map[uuid.UUID]map[*watcher]struct{}),
	}
}

// Handler serves GET /game/ws/{id}?player=name. Omitting player subscribes
// the spectator projection; perspective filtering is the same as GetState.
func (h *WatchHub) Handler(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/game/ws/"), "/")
	id, err := uuid.Parse(rest)
	if err != nil {
		http.Error(w, "malformed game id", http.StatusBadRequest)
		return
	}

	var viewer *string
	if p := r.URL.Query().Get("player"); p != "" {
		viewer = &p
	}

	// Reject unknown games and players before upgrading.
	if _, err := h.Service.GetState(r.Context(), id, viewer); err != nil {
		h.writeRejection(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.Logger.WithError(err).Warn("websocket accept failed")
		return
	}

	sub := &watcher{conn: conn, viewer: viewer}
	h.add(id, sub)
	h.Logger.WithField("game", id).Info("watcher connected")

	// Send the current state immediately so the client starts in sync.
	h.push(id, sub)

	// Reads are only used to detect the client going away.
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}
	h.remove(id, sub)
	conn.Close(websocket.StatusNormalClosure, "")
	h.Logger.WithField("game", id).Info("watcher disconnected")
}

// Notify refreshes every watcher of the game. Wired as the service's Notify
// hook; runs the pushes without blocking the action handler.
func (h *WatchHub) Notify(gameID uuid.UUID) {
	h.mu.Lock()
	watchers := make([]*watcher, 0, len(h.subs[gameID]))
	for sub := range h.subs[gameID] {
		watchers = append(watchers, sub)
	}
	h.mu.Unlock()

	for _, sub := range watchers {
		go h.push(gameID, sub)
	}
}

func (h *WatchHub) push(gameID uuid.UUID, sub *watcher) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	view, err := h.Service.GetState(ctx, gameID, sub.viewer)
	if err != nil {
		h.Logger.WithError(err).WithField("game", gameID).Warn("watch projection failed")
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		h.Logger.WithError(err).Warn("watch marshal failed")
		return
	}
	if err := sub.conn.Write(ctx, websocket.MessageText, data); err != nil {
		h.remove(gameID, sub)
		sub.conn.Close(websocket.StatusGoingAway, "write failed")
	}
}

func (h *WatchHub) add(gameID uuid.UUID, sub *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[*watcher]struct{})
	}
	h.subs[gameID][sub] = struct{}{}
}

func (h *WatchHub) remove(gameID uuid.UUID, sub *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[gameID], sub)
}

func (h *WatchHub) writeRejection(w http.ResponseWriter, err error) {
	kind, status := classify(err)
	writeJSON(w, status, errorResponse{Error: kind, Message: err.Error()})
}
