package storage

import (
	"context"

	"github.com/Pitskhela0/pong-game/internal/model"
)

// Storage defines the interface for room-state persistence. Rooms are keyed
// by their human-chosen name, which is the unique key; a secondary index
// maps players to the room that owns them.
//
// The session store holds the authoritative live state and writes snapshots
// here at membership and lifecycle transitions; in-process lookups never go
// through storage. Reads serve the startup sweep of leftover snapshots and
// external consumers of the keyspace (diagnostics tooling, other processes
// inspecting a shared backend).
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, name string) (*model.Room, error)
	DeleteRoom(ctx context.Context, name string) error
	RoomExists(ctx context.Context, name string) (bool, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)

	// Player -> room index operations
	SetPlayerRoom(ctx context.Context, playerID model.PlayerID, name string) error
	GetPlayerRoom(ctx context.Context, playerID model.PlayerID) (string, error)
	DeletePlayerRoom(ctx context.Context, playerID model.PlayerID) error
}
