package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room name already exists")
	ErrRoomFull     = errors.New("room is full")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
)
