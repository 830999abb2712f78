package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Pitskhela0/pong-game/internal/dependencies/clock"
	"github.com/Pitskhela0/pong-game/internal/model"
	"github.com/Pitskhela0/pong-game/internal/storage"
)

// Store owns the mapping of room name to room state and the player-to-room
// lookup index, and enforces the capacity and name-uniqueness invariants.
//
// The index holds the live room objects that the match loop mutates in
// place; the storage backend receives snapshots at membership and lifecycle
// transitions, never per tick. All membership mutation is serialized behind
// the store's lock.
type Store struct {
	mu          sync.RWMutex
	rooms       map[string]*model.Room
	playerIndex map[model.PlayerID]string

	persist storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a session store backed by the given storage
func New(persist storage.Storage, clock clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		rooms:       make(map[string]*model.Room),
		playerIndex: make(map[model.PlayerID]string),
		persist:     persist,
		clock:       clock,
		logger:      logger.With(slog.String("component", "session")),
	}
}

// SweepPersisted clears room snapshots left behind by a previous process.
// Connections do not survive a restart, so persisted rooms from an earlier
// run have no live owner and would otherwise linger in the backend until
// their TTL expires (or forever on backends without one). Called once at
// startup, before any live room exists.
func (s *Store) SweepPersisted(ctx context.Context) error {
	rooms, err := s.persist.ListRooms(ctx)
	if err != nil {
		return err
	}
	for _, room := range rooms {
		for _, p := range room.Game.Players {
			if err := s.persist.DeletePlayerRoom(ctx, p.ID); err != nil {
				return err
			}
		}
		if err := s.persist.DeleteRoom(ctx, room.Name); err != nil {
			return err
		}
	}
	if len(rooms) > 0 {
		s.logger.Info("swept stale persisted rooms", slog.Int("count", len(rooms)))
	}
	return nil
}

// RemoveResult describes the outcome of removing a player from their room.
type RemoveResult struct {
	// Room is the post-removal room state, nil if the room was deleted
	Room *model.Room
	// RoomName is the name of the room the player was removed from
	RoomName string
	// Deleted reports whether the room was removed entirely
	Deleted bool
}

// CreateRoom allocates a new empty room with the given name
func (s *Store) CreateRoom(ctx context.Context, name string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[name]; ok {
		return nil, model.ErrRoomExists
	}

	room := s.newRoom(name)
	s.rooms[name] = room

	if err := s.persist.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("room created",
		slog.String("room", name),
		slog.String("room_id", string(room.ID)),
	)
	return room, nil
}

// JoinOrCreate adds the player to the named room, creating the room if it
// does not exist. Joining a room the player is already in is idempotent and
// returns the room unchanged. The second player to join flips the room from
// waiting to ready.
func (s *Store) JoinOrCreate(ctx context.Context, name string, player *model.Player) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[name]
	if !ok {
		room = s.newRoom(name)
		s.rooms[name] = room
	}

	// Re-join by a present player is a no-op, not an error
	if room.GetPlayer(player.ID) != nil {
		return room, nil
	}

	if room.IsFull() {
		return nil, model.ErrRoomFull
	}

	room.Game.Players = append(room.Game.Players, player)
	s.playerIndex[player.ID] = name

	if len(room.Game.Players) == model.MaxPlayers {
		room.Game.Status = model.StatusReady
	}
	room.Game.LastUpdate = s.clock.Now()

	if err := s.saveRoom(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("player joined room",
		slog.String("room", name),
		slog.String("player_id", string(player.ID)),
		slog.Int("player_count", len(room.Game.Players)),
	)
	return room, nil
}

// RemovePlayer locates the room owning the player and removes them. A
// player not currently in any room yields a nil result, not an error. The
// room is demoted to waiting when it drops below capacity and deleted
// entirely once it reaches zero players.
func (s *Store) RemovePlayer(ctx context.Context, playerID model.PlayerID) (*RemoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.playerIndex[playerID]
	if !ok {
		return nil, nil
	}
	delete(s.playerIndex, playerID)

	room, ok := s.rooms[name]
	if !ok {
		return nil, nil
	}

	for i, p := range room.Game.Players {
		if p.ID == playerID {
			room.Game.Players = append(room.Game.Players[:i], room.Game.Players[i+1:]...)
			break
		}
	}

	if len(room.Game.Players) == 0 {
		delete(s.rooms, name)
		if err := s.persist.DeleteRoom(ctx, name); err != nil {
			return nil, err
		}
		if err := s.persist.DeletePlayerRoom(ctx, playerID); err != nil {
			return nil, err
		}
		s.logger.Info("room deleted", slog.String("room", name))
		return &RemoveResult{RoomName: name, Deleted: true}, nil
	}

	if len(room.Game.Players) < model.MaxPlayers {
		room.Game.Status = model.StatusWaiting
	}
	room.Game.LastUpdate = s.clock.Now()

	if err := s.persist.DeletePlayerRoom(ctx, playerID); err != nil {
		return nil, err
	}
	if err := s.persist.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("player removed from room",
		slog.String("room", name),
		slog.String("player_id", string(playerID)),
		slog.Int("player_count", len(room.Game.Players)),
	)
	return &RemoveResult{Room: room, RoomName: name}, nil
}

// FindByPlayerID returns the room the player currently occupies
func (s *Store) FindByPlayerID(ctx context.Context, playerID model.PlayerID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.playerIndex[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	room, ok := s.rooms[name]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// FindByName returns the room with the given name
func (s *Store) FindByName(ctx context.Context, name string) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[name]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// Save persists the room's current state. The match controller calls this
// after lifecycle transitions (start, score, finish, reset).
func (s *Store) Save(ctx context.Context, room *model.Room) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveRoom(ctx, room)
}

// RoomCount returns the number of active rooms
func (s *Store) RoomCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// PlayerCount returns the total number of players across all rooms
func (s *Store) PlayerCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.playerIndex)
}

// ListRooms returns all active rooms for diagnostics
func (s *Store) ListRooms(ctx context.Context) []*model.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (s *Store) newRoom(name string) *model.Room {
	now := s.clock.Now()
	return &model.Room{
		ID:        model.RoomID(uuid.NewString()),
		Name:      name,
		CreatedAt: now,
		Game: model.GameState{
			Players:    []*model.Player{},
			Status:     model.StatusWaiting,
			LastUpdate: now,
		},
	}
}

func (s *Store) saveRoom(ctx context.Context, room *model.Room) error {
	if err := s.persist.SaveRoom(ctx, room); err != nil {
		return err
	}
	for _, p := range room.Game.Players {
		if err := s.persist.SetPlayerRoom(ctx, p.ID, room.Name); err != nil {
			return err
		}
	}
	return nil
}
