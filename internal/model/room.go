package model

import "time"

// RoomID is the generated unique identifier for a room.
type RoomID string

// Status represents the current phase of a room's game state machine.
type Status string

const (
	StatusWaiting  Status = "waiting"  // fewer than 2 players
	StatusReady    Status = "ready"    // 2 players present, not started
	StatusPlaying  Status = "playing"  // tick loop active
	StatusPaused   Status = "paused"   // loop stopped, state frozen
	StatusFinished Status = "finished" // terminal until reset to lobby
)

// MaxPlayers is the per-room player capacity.
const MaxPlayers = 2

// Side identifies which edge of the field the ball exited.
type Side string

const (
	SideNone  Side = ""
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// GameState is the aggregate broadcast to clients after every tick or
// transition.
type GameState struct {
	Players    []*Player `json:"players"`
	Ball       Ball      `json:"ball"`
	Status     Status    `json:"status"`
	Winner     PlayerID  `json:"winner,omitempty"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// Room is a named two-player match session and its game state.
type Room struct {
	ID        RoomID    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Game      GameState `json:"game"`
}

// GetPlayer returns the player with the given ID, or nil if not present.
func (r *Room) GetPlayer(id PlayerID) *Player {
	for _, p := range r.Game.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerIndex returns the position of the player in the room's ordered
// player list, or -1 if the player is not in the room. Index 0 is the
// left paddle, index 1 the right.
func (r *Room) PlayerIndex(id PlayerID) int {
	for i, p := range r.Game.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// IsFull reports whether the room is at capacity.
func (r *Room) IsFull() bool {
	return len(r.Game.Players) >= MaxPlayers
}

// AllReady reports whether every present player has flagged ready.
func (r *Room) AllReady() bool {
	if len(r.Game.Players) == 0 {
		return false
	}
	for _, p := range r.Game.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}
