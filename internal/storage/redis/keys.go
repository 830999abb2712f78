package redis

import (
	"fmt"

	"github.com/Pitskhela0/pong-game/internal/model"
)

// Key prefix for all pong-related data
const keyPrefix = "pong"

// roomKey returns the Redis key for a Room
func roomKey(name string) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, name)
}

// roomIndexKey returns the Redis key for the SET of all room names
func roomIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// playerRoomKey returns the Redis key for the player -> room name index
func playerRoomKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_room:%s", keyPrefix, playerID)
}
