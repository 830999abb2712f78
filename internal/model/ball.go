package model

import "math"

// Vector2 is a 2D point or direction in field coordinates.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Ball is the simulated ball. Speed is the authoritative magnitude; the
// velocity components are always derived from angle and speed, so
// Speed == hypot(VelocityX, VelocityY) must hold after every mutation.
type Ball struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VelocityX float64 `json:"velocityX"`
	VelocityY float64 `json:"velocityY"`
	Speed     float64 `json:"speed"`
}

// Position returns the ball's position as a vector.
func (b Ball) Position() Vector2 {
	return Vector2{X: b.X, Y: b.Y}
}

// VelocityMagnitude returns the actual magnitude of the velocity components.
func (b Ball) VelocityMagnitude() float64 {
	return math.Hypot(b.VelocityX, b.VelocityY)
}
