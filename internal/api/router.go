package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Pitskhela0/pong-game/internal/middleware"
	"github.com/Pitskhela0/pong-game/internal/model"
	"github.com/Pitskhela0/pong-game/internal/session"
)

// RouterConfig holds the dependencies for building the HTTP router
type RouterConfig struct {
	Store     *session.Store
	WSHandler http.Handler
	Logger    *slog.Logger
}

// NewRouter builds the HTTP router with diagnostics endpoints and the
// websocket endpoint mounted at /ws
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler))

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	v1.HandleFunc("/stats", handleStats(cfg.Store)).Methods(http.MethodGet)
	v1.HandleFunc("/rooms", handleRooms(cfg.Store)).Methods(http.MethodGet)

	r.Handle("/ws", cfg.WSHandler)

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleStats(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{
			"rooms":   store.RoomCount(r.Context()),
			"players": store.PlayerCount(r.Context()),
		})
	}
}

// roomSummary is the read-only view of a room exposed by the diagnostics API
type roomSummary struct {
	Name      string       `json:"name"`
	Status    model.Status `json:"status"`
	Players   int          `json:"players"`
	CreatedAt time.Time    `json:"createdAt"`
}

func handleRooms(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms := store.ListRooms(r.Context())

		summaries := make([]roomSummary, 0, len(rooms))
		for _, room := range rooms {
			summaries = append(summaries, roomSummary{
				Name:      room.Name,
				Status:    room.Game.Status,
				Players:   len(room.Game.Players),
				CreatedAt: room.CreatedAt,
			})
		}

		writeJSON(w, http.StatusOK, summaries)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
