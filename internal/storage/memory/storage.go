package memory

import (
	"context"
	"sync"

	"github.com/Pitskhela0/pong-game/internal/model"
	"github.com/Pitskhela0/pong-game/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms       map[string]*model.Room
	playerIndex map[model.PlayerID]string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:       make(map[string]*model.Room),
		playerIndex: make(map[model.PlayerID]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Name] = room
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, name string) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[name]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, name)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[name]
	return ok, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// Player index operations

func (s *Storage) SetPlayerRoom(ctx context.Context, playerID model.PlayerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerIndex[playerID] = name
	return nil
}

func (s *Storage) GetPlayerRoom(ctx context.Context, playerID model.PlayerID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.playerIndex[playerID]
	if !ok {
		return "", model.ErrPlayerNotFound
	}
	return name, nil
}

func (s *Storage) DeletePlayerRoom(ctx context.Context, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.playerIndex, playerID)
	return nil
}
