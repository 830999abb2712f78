package ws

import (
	"encoding/json"

	"github.com/Pitskhela0/pong-game/internal/model"
)

// CommandType identifies an inbound client command
type CommandType string

const (
	CommandJoinRoom      CommandType = "join-room"
	CommandLeaveRoom     CommandType = "leave-room"
	CommandPaddleMove    CommandType = "paddle-move"
	CommandPlayerReady   CommandType = "player-ready"
	CommandReturnToLobby CommandType = "return-to-lobby"
)

// Envelope is the wire frame for inbound commands
type Envelope struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinRoomPayload carries the join-room command fields
type JoinRoomPayload struct {
	RoomName   string `json:"roomName"`
	PlayerName string `json:"playerName"`
}

// PaddleMovePayload carries the paddle-move command fields
type PaddleMovePayload struct {
	PaddleY float64 `json:"paddleY"`
}

// PlayerReadyPayload carries the player-ready command fields
type PlayerReadyPayload struct {
	IsReady bool `json:"isReady"`
}

// OutboundEnvelope is the wire frame for outbound events
type OutboundEnvelope struct {
	Type    model.EventType `json:"type"`
	Payload model.Event     `json:"payload"`
}
