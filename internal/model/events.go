package model

import "time"

// EventType identifies the type of an outbound event.
type EventType string

const (
	EventRoomJoined        EventType = "room-joined"
	EventPlayerJoined      EventType = "player-joined"
	EventPlayerLeft        EventType = "player-left"
	EventRoomFull          EventType = "room-full"
	EventRoomError         EventType = "room-error"
	EventPaddleMoved       EventType = "paddle-moved"
	EventGameStateUpdate   EventType = "game-state-update"
	EventPointScored       EventType = "point-scored"
	EventGameEnded         EventType = "game-ended"
	EventPlayerReadyUpdate EventType = "player-ready-update"
	EventReturnedToLobby   EventType = "returned-to-lobby"
)

// Event is implemented by every outbound event variant. Each variant
// carries exactly the fields the transport relays to clients.
type Event interface {
	EventType() EventType
}

// RoomJoinedEvent is sent to the joining player only.
type RoomJoinedEvent struct {
	Room     *Room    `json:"room"`
	PlayerID PlayerID `json:"playerId"`
}

func (RoomJoinedEvent) EventType() EventType { return EventRoomJoined }

// PlayerJoinedEvent is broadcast to the room when a player joins.
type PlayerJoinedEvent struct {
	Player *Player `json:"player"`
	Room   *Room   `json:"room"`
}

func (PlayerJoinedEvent) EventType() EventType { return EventPlayerJoined }

// PlayerLeftEvent is broadcast to the room when a player leaves.
type PlayerLeftEvent struct {
	PlayerID PlayerID `json:"playerId"`
	Room     *Room    `json:"room"`
}

func (PlayerLeftEvent) EventType() EventType { return EventPlayerLeft }

// RoomFullEvent is sent to a player whose join was rejected by capacity.
type RoomFullEvent struct {
	Message  string `json:"message"`
	RoomName string `json:"roomName"`
}

func (RoomFullEvent) EventType() EventType { return EventRoomFull }

// RoomErrorEvent reports a recoverable room-level failure to the caller.
type RoomErrorEvent struct {
	Message string `json:"message"`
}

func (RoomErrorEvent) EventType() EventType { return EventRoomError }

// PaddleMovedEvent is broadcast when a player repositions their paddle.
type PaddleMovedEvent struct {
	PlayerID  PlayerID  `json:"playerId"`
	PaddleY   float64   `json:"paddleY"`
	Timestamp time.Time `json:"timestamp"`
}

func (PaddleMovedEvent) EventType() EventType { return EventPaddleMoved }

// GameStateUpdateEvent is the per-tick snapshot broadcast while playing.
type GameStateUpdateEvent struct {
	GameState GameState `json:"gameState"`
	Timestamp time.Time `json:"timestamp"`
}

func (GameStateUpdateEvent) EventType() EventType { return EventGameStateUpdate }

// PointScoredEvent is emitted when a ball fully exits a field edge.
type PointScoredEvent struct {
	PlayerID  PlayerID  `json:"playerId"`
	Score     int       `json:"score"`
	Side      Side      `json:"side"`
	GameState GameState `json:"gameState"`
	Timestamp time.Time `json:"timestamp"`
}

func (PointScoredEvent) EventType() EventType { return EventPointScored }

// GameEndedEvent is emitted once a player reaches the win score.
type GameEndedEvent struct {
	WinnerID    PlayerID         `json:"winnerId"`
	FinalScores map[PlayerID]int `json:"finalScores"`
	GameState   GameState        `json:"gameState"`
	Timestamp   time.Time        `json:"timestamp"`
}

func (GameEndedEvent) EventType() EventType { return EventGameEnded }

// PlayerReadyUpdateEvent is broadcast when a player flips their ready flag.
type PlayerReadyUpdateEvent struct {
	PlayerID PlayerID `json:"playerId"`
	IsReady  bool     `json:"isReady"`
	Room     *Room    `json:"room"`
}

func (PlayerReadyUpdateEvent) EventType() EventType { return EventPlayerReadyUpdate }

// ReturnedToLobbyEvent is broadcast after a post-game reset to the lobby.
type ReturnedToLobbyEvent struct {
	Room *Room `json:"room"`
}

func (ReturnedToLobbyEvent) EventType() EventType { return EventReturnedToLobby }
