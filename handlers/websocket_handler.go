package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/bracket-pools/live"
	"github.com/Dosada05/bracket-pools/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the frontend origin once it is deployed.
		return true
	},
}

type WebSocketHandler struct {
	hub         *live.Hub
	poolService services.PoolService
}

func NewWebSocketHandler(hub *live.Hub, poolService services.PoolService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		poolService: poolService,
	}
}

// ServeWs subscribes the caller to one pool's live resolution feed.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.poolService.GetPool(r.Context(), poolID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("failed to upgrade websocket connection", slog.Int("pool_id", poolID), slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, live.PoolRoom(poolID))
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
