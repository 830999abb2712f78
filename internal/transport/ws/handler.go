package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Pitskhela0/pong-game/internal/model"
	"github.com/Pitskhela0/pong-game/internal/router"
)

// Handler upgrades HTTP requests to websocket connections and binds each
// one to the command router under a fresh player identifier.
type Handler struct {
	router   *router.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a websocket handler
func NewHandler(r *router.Router, logger *slog.Logger) *Handler {
	return &Handler{
		router: r,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The game server is origin-agnostic; access control is the
			// deployment's concern
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	playerID := model.PlayerID(uuid.NewString())
	events := h.router.Connect(playerID)

	client := NewClient(playerID, conn, events, h.router, h.logger)

	h.logger.Info("client connected",
		slog.String("player_id", string(playerID)),
		slog.String("remote_addr", r.RemoteAddr),
	)

	go client.WritePump()
	go client.ReadPump()
}
