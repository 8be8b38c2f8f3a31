package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/football-tournament/live"
	"github.com/Dosada05/football-tournament/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub          *live.Hub
	phaseService services.PhaseService
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// NewWebSocketHandler принимает список разрешённых Origin. Пустой список
// разрешает любые источники.
func NewWebSocketHandler(hub *live.Hub, ps services.PhaseService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &WebSocketHandler{
		hub:          hub,
		phaseService: ps,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// ServeWs подписывает клиента на события фазы: /ws/phases/{phaseID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err = h.phaseService.GetPhase(r.Context(), phaseID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		h.logger.Warn("failed to upgrade websocket connection", slog.String("phase_id", phaseID), slog.Any("error", err))
		return
	}

	client := h.hub.NewClient(conn, live.RoomForPhase(phaseID))
	if !h.hub.RegisterClient(client) {
		h.logger.Warn("websocket hub is stopped, closing connection", slog.String("phase_id", phaseID))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("websocket client subscribed", slog.String("room", client.Room))
}
