package http

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"quizdeck-service/internal/auth"
	"quizdeck-service/internal/domain"
	"quizdeck-service/internal/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler upgrades connections into the notification hub. Browsers
// cannot set headers on websocket dials, so the token is also accepted as
// a query parameter.
type WSHandler struct {
	tokens *auth.TokenManager
	hub    *notify.Hub
}

func NewWSHandler(tokens *auth.TokenManager, hub *notify.Hub) *WSHandler {
	return &WSHandler{tokens: tokens, hub: hub}
}

func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		header := r.Header.Get("Authorization")
		tokenStr = strings.TrimPrefix(header, "Bearer ")
		if tokenStr == header {
			tokenStr = ""
		}
	}
	if tokenStr == "" {
		writeMessage(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := h.tokens.Verify(r.Context(), tokenStr)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade for user %d: %v", claims.UserID, err)
		return
	}

	client := h.hub.Register(conn, claims.UserID, claims.Role == domain.RoleAdmin)
	defer func() {
		h.hub.Unregister(client)
		conn.Close()
	}()

	// Inbound frames are ignored; the loop exists to detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
