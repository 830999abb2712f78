package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Pitskhela0/pong-game/internal/model"
	"github.com/Pitskhela0/pong-game/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	// Pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(room.Name), data, s.cfg.RoomTTL)
	pipe.SAdd(ctx, roomIndexKey(), room.Name)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, name string) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, name string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, roomKey(name))
	pipe.SRem(ctx, roomIndexKey(), name)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) RoomExists(ctx context.Context, name string) (bool, error) {
	count, err := s.client.Exists(ctx, roomKey(name)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	names, err := s.client.SMembers(ctx, roomIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]*model.Room, 0, len(names))
	for _, name := range names {
		room, err := s.GetRoom(ctx, name)
		if err != nil {
			if errors.Is(err, model.ErrRoomNotFound) {
				// Room expired; drop the stale index entry
				s.client.SRem(ctx, roomIndexKey(), name)
				continue
			}
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// Player index operations

func (s *Storage) SetPlayerRoom(ctx context.Context, playerID model.PlayerID, name string) error {
	return s.client.Set(ctx, playerRoomKey(playerID), name, s.cfg.RoomTTL).Err()
}

func (s *Storage) GetPlayerRoom(ctx context.Context, playerID model.PlayerID) (string, error) {
	name, err := s.client.Get(ctx, playerRoomKey(playerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrPlayerNotFound
		}
		return "", err
	}
	return name, nil
}

func (s *Storage) DeletePlayerRoom(ctx context.Context, playerID model.PlayerID) error {
	return s.client.Del(ctx, playerRoomKey(playerID)).Err()
}
