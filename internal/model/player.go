package model

// PlayerID is the opaque connection identifier assigned when a client joins.
type PlayerID string

// Player is one of the (at most two) participants in a room.
type Player struct {
	ID      PlayerID `json:"id"`
	Name    string   `json:"name"`
	PaddleY float64  `json:"paddleY"`
	Score   int      `json:"score"`
	IsReady bool     `json:"isReady"`
}
