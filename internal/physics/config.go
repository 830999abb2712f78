package physics

// Config holds the playfield geometry and speed constants. The defaults are
// normative for client compatibility; everything is overridable at startup.
type Config struct {
	// Playfield dimensions
	FieldWidth  float64
	FieldHeight float64

	// Paddle geometry
	PaddleWidth  float64
	PaddleHeight float64
	// PaddleOffset is the gap between a field edge and its paddle
	PaddleOffset float64

	// BallSize is the ball's diameter
	BallSize float64

	// Speed constants, in field units per second
	InitialSpeed   float64
	SpeedIncrement float64
	MaxSpeed       float64

	// MinDeflectionAngle is the floor on the ball's angle from horizontal,
	// in radians, so the ball can never travel perfectly flat
	MinDeflectionAngle float64

	// HitPointFactor scales how strongly the paddle hit position bends the
	// ball's vertical velocity
	HitPointFactor float64

	// Reset deflection angle range, in radians
	ResetAngleMin float64
	ResetAngleMax float64
}

// DefaultConfig returns the standard playfield configuration
func DefaultConfig() Config {
	return Config{
		FieldWidth:         800,
		FieldHeight:        400,
		PaddleWidth:        15,
		PaddleHeight:       80,
		PaddleOffset:       30,
		BallSize:           15,
		InitialSpeed:       200,
		SpeedIncrement:     20,
		MaxSpeed:           400,
		MinDeflectionAngle: 0.2,
		HitPointFactor:     0.7,
		ResetAngleMin:      0.2,
		ResetAngleMax:      0.8,
	}
}

// BallRadius returns half the ball diameter
func (c Config) BallRadius() float64 {
	return c.BallSize / 2
}

// LeftPaddleX returns the x coordinate of the left paddle's left edge
func (c Config) LeftPaddleX() float64 {
	return c.PaddleOffset
}

// RightPaddleX returns the x coordinate of the right paddle's left edge
func (c Config) RightPaddleX() float64 {
	return c.FieldWidth - c.PaddleOffset - c.PaddleWidth
}
