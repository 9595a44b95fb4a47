package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/rating-system/ranking"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin.
		return true
	},
}

type WebSocketHandler struct {
	hub *ranking.Hub
}

func NewWebSocketHandler(hub *ranking.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs подписывает клиента на live-события guild'а (обновления очков и
// синхронизации рангов).
// GET /ws/guilds/{guildID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader сам отправляет HTTP ошибку клиенту.
		slog.ErrorContext(r.Context(), "websocket upgrade failed",
			slog.Int64("guild_id", guildID), slog.Any("error", err))
		return
	}

	client := &ranking.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: ranking.GuildRoom(guildID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
