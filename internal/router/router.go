package router

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Pitskhela0/pong-game/internal/match"
	"github.com/Pitskhela0/pong-game/internal/model"
	"github.com/Pitskhela0/pong-game/internal/physics"
	"github.com/Pitskhela0/pong-game/internal/session"
)

// Router translates inbound client commands into session store and match
// controller calls, and owns the outbound event fanout. It is the only
// piece that talks to the transport. Every handler is defensive: a command
// referencing a player not currently in a room is logged and ignored, never
// propagated as a crash.
type Router struct {
	store       *session.Store
	controller  *match.Controller
	broadcaster *Broadcaster
	geometry    physics.Config
	logger      *slog.Logger
}

// New creates a command router
func New(
	store *session.Store,
	controller *match.Controller,
	broadcaster *Broadcaster,
	geometry physics.Config,
	logger *slog.Logger,
) *Router {
	return &Router{
		store:       store,
		controller:  controller,
		broadcaster: broadcaster,
		geometry:    geometry,
		logger:      logger.With(slog.String("component", "router")),
	}
}

// Connect registers a client connection and returns the channel its
// outbound events arrive on
func (r *Router) Connect(playerID model.PlayerID) <-chan model.Event {
	return r.broadcaster.Subscribe(playerID)
}

// Join handles the join-room command: the player enters the named room,
// creating it if needed. Capacity rejections go back to the caller only.
func (r *Router) Join(ctx context.Context, playerID model.PlayerID, roomName, playerName string) {
	if roomName == "" {
		r.broadcaster.SendTo(playerID, model.RoomErrorEvent{Message: "room name is required"})
		return
	}
	if playerName == "" {
		playerName = "Player"
	}

	player := &model.Player{
		ID:      playerID,
		Name:    playerName,
		PaddleY: (r.geometry.FieldHeight - r.geometry.PaddleHeight) / 2,
	}

	room, err := r.store.JoinOrCreate(ctx, roomName, player)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrRoomFull):
			r.broadcaster.SendTo(playerID, model.RoomFullEvent{
				Message:  "room is full",
				RoomName: roomName,
			})
		default:
			r.logger.Error("join failed",
				slog.String("room", roomName),
				slog.String("player_id", string(playerID)),
				slog.String("error", err.Error()),
			)
			r.broadcaster.SendTo(playerID, model.RoomErrorEvent{Message: "could not join room"})
		}
		return
	}

	r.broadcaster.JoinRoom(roomName, playerID)
	r.broadcaster.SendTo(playerID, model.RoomJoinedEvent{Room: room, PlayerID: playerID})
	r.broadcaster.Emit(roomName, model.PlayerJoinedEvent{
		Player: room.GetPlayer(playerID),
		Room:   room,
	})
}

// Leave handles the leave-room command: any running loop for the room is
// stopped, the player is removed, and an empty room is deleted.
func (r *Router) Leave(ctx context.Context, playerID model.PlayerID) {
	room, err := r.store.FindByPlayerID(ctx, playerID)
	if err != nil {
		r.logger.Debug("leave from player not in a room",
			slog.String("player_id", string(playerID)))
		return
	}

	// Stop before mutating membership so no tick observes a half-removed
	// player
	r.controller.Stop(room.Name)

	res, err := r.store.RemovePlayer(ctx, playerID)
	if err != nil {
		r.logger.Error("remove player failed",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return
	}
	if res == nil {
		return
	}

	r.broadcaster.LeaveRoom(res.RoomName, playerID)
	if res.Deleted {
		r.broadcaster.DropRoom(res.RoomName)
		r.controller.ReleaseRoom(res.RoomName)
		return
	}
	r.broadcaster.Emit(res.RoomName, model.PlayerLeftEvent{
		PlayerID: playerID,
		Room:     res.Room,
	})
}

// MovePaddle handles the paddle-move command. Out-of-range values are
// rejected silently with a log entry.
func (r *Router) MovePaddle(ctx context.Context, playerID model.PlayerID, paddleY float64) {
	room, err := r.store.FindByPlayerID(ctx, playerID)
	if err != nil {
		r.logger.Debug("paddle move from player not in a room",
			slog.String("player_id", string(playerID)))
		return
	}
	r.controller.MovePaddle(room, playerID, paddleY)
}

// SetReady handles the player-ready command, starting the match once both
// players have flipped ready.
func (r *Router) SetReady(ctx context.Context, playerID model.PlayerID, isReady bool) {
	room, err := r.store.FindByPlayerID(ctx, playerID)
	if err != nil {
		r.logger.Debug("ready toggle from player not in a room",
			slog.String("player_id", string(playerID)))
		return
	}

	player := r.controller.SetReady(room, playerID, isReady)
	if player == nil {
		r.logger.Debug("ready toggle from player missing in room",
			slog.String("room", room.Name),
			slog.String("player_id", string(playerID)),
		)
		return
	}

	r.broadcaster.Emit(room.Name, model.PlayerReadyUpdateEvent{
		PlayerID: playerID,
		IsReady:  isReady,
		Room:     room,
	})

	if r.controller.CanStart(room) {
		r.controller.Start(ctx, room)
	}
}

// ReturnToLobby handles the return-to-lobby command
func (r *Router) ReturnToLobby(ctx context.Context, playerID model.PlayerID) {
	room, err := r.store.FindByPlayerID(ctx, playerID)
	if err != nil {
		r.logger.Debug("lobby return from player not in a room",
			slog.String("player_id", string(playerID)))
		return
	}
	r.controller.ResetToLobby(ctx, room)
}

// Disconnect handles connection loss: equivalent to leave-room plus a
// forced stop of any running loop, and tears down the subscription.
func (r *Router) Disconnect(ctx context.Context, playerID model.PlayerID) {
	r.Leave(ctx, playerID)
	r.broadcaster.Unsubscribe(playerID)
}
