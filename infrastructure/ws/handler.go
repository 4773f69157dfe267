package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"chat-relay/auth"
	"chat-relay/contract"
	apperrors "chat-relay/errors"
	"chat-relay/repositories"
	"chat-relay/runtime"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 32 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades /api/chat requests, authenticates the identity token,
// and pumps events between the connection and the router.
type Handler struct {
	log      *slog.Logger
	verifier *auth.Verifier
	users    repositories.IUserRepository
	registry contract.Registry
	router   *runtime.Router
	buffer   int
}

func NewHandler(
	log *slog.Logger,
	verifier *auth.Verifier,
	users repositories.IUserRepository,
	registry contract.Registry,
	router *runtime.Router,
	buffer int,
) *Handler {
	return &Handler{
		log:      log,
		verifier: verifier,
		users:    users,
		registry: registry,
		router:   router,
		buffer:   buffer,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	claims, err := h.verifier.Verify(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	// the ban flag is durable state, checked once at connect time
	user, err := h.users.Get(claims.UserID)
	switch {
	case err == nil && user.IsBanned:
		http.Error(w, "Account banned", http.StatusForbidden)
		return
	case err != nil && !errors.Is(err, apperrors.ErrUserNotFound):
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	sink := NewSink(h.buffer)
	h.registry.Register(claims.UserID, sink)
	h.log.Info("client connected", "user_id", claims.UserID)

	defer func() {
		h.registry.Unregister(claims.UserID, sink)
		sink.Close()
		_ = conn.Close()
		h.log.Info("client disconnected", "user_id", claims.UserID)
	}()

	go h.writePump(conn, sink, claims.UserID)
	h.readPump(conn, claims.UserID, r)
}

// readPump processes inbound frames one at a time, preserving per-sender
// event order.
func (h *Handler) readPump(conn *websocket.Conn, userID string, r *http.Request) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket unexpected close", "user_id", userID, "error", err)
			}
			return
		}
		h.router.HandleEvent(r.Context(), userID, raw)
	}
}

func (h *Handler) writePump(conn *websocket.Conn, sink *Sink, userID string) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-sink.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// sink closed: superseded by a newer connection or torn down
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			bytes, err := json.Marshal(evt)
			if err != nil {
				h.log.Error("outbound event encoding failed",
					"user_id", userID,
					"type", evt.Type,
					"error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, bytes); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
