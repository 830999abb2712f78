package physics

import (
	"math"

	"github.com/Pitskhela0/pong-game/internal/dependencies/random"
	"github.com/Pitskhela0/pong-game/internal/model"
)

// CollisionKind distinguishes wall bounces from paddle hits
type CollisionKind string

const (
	CollisionWall   CollisionKind = "wall"
	CollisionPaddle CollisionKind = "paddle"
)

// Collision describes a single collision resolved during an advance step
type Collision struct {
	Kind CollisionKind
	// Side is which paddle was struck, for paddle collisions
	Side model.Side
	// HitPoint is the normalized [-1, 1] strike position from paddle center
	HitPoint float64
}

// Engine advances ball state on a fixed playfield. All operations are pure
// computations over well-formed input; malformed input (such as missing
// players during collision checks) resolves to "no collision", never an
// error.
type Engine struct {
	cfg    Config
	random random.Random
}

// New creates a physics engine with the given configuration and randomness
// source
func New(cfg Config, random random.Random) *Engine {
	return &Engine{
		cfg:    cfg,
		random: random,
	}
}

// Config returns the engine's playfield configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Advance integrates the ball forward by dt seconds and resolves wall and
// paddle collisions. Players are ordered left then right; an absent paddle
// is simply never struck. The returned ball satisfies
// Speed == hypot(VelocityX, VelocityY).
func (e *Engine) Advance(ball model.Ball, players []*model.Player, dt float64) (model.Ball, *Collision) {
	ball.X += ball.VelocityX * dt
	ball.Y += ball.VelocityY * dt

	if c := e.reflectWalls(&ball); c != nil {
		return ball, c
	}

	if c := e.reflectPaddle(&ball, players); c != nil {
		return ball, c
	}

	return ball, nil
}

// reflectWalls clamps the ball against the top and bottom walls with an
// elastic bounce: position clamped to the boundary, vertical velocity
// inverted, horizontal velocity untouched.
func (e *Engine) reflectWalls(ball *model.Ball) *Collision {
	r := e.cfg.BallRadius()

	if ball.Y-r <= 0 && ball.VelocityY < 0 {
		ball.Y = r
		ball.VelocityY = -ball.VelocityY
		return &Collision{Kind: CollisionWall}
	}

	if ball.Y+r >= e.cfg.FieldHeight && ball.VelocityY > 0 {
		ball.Y = e.cfg.FieldHeight - r
		ball.VelocityY = -ball.VelocityY
		return &Collision{Kind: CollisionWall}
	}

	return nil
}

// reflectPaddle tests the ball against the paddle it is moving toward, to
// avoid resolving the same hit twice in consecutive frames.
func (e *Engine) reflectPaddle(ball *model.Ball, players []*model.Player) *Collision {
	var (
		side    model.Side
		paddleX float64
		player  *model.Player
	)

	switch {
	case ball.VelocityX < 0:
		side = model.SideLeft
		paddleX = e.cfg.LeftPaddleX()
		if len(players) > 0 {
			player = players[0]
		}
	case ball.VelocityX > 0:
		side = model.SideRight
		paddleX = e.cfg.RightPaddleX()
		if len(players) > 1 {
			player = players[1]
		}
	}

	if player == nil {
		return nil
	}

	r := e.cfg.BallRadius()
	if !intersects(
		ball.X-r, ball.Y-r, e.cfg.BallSize, e.cfg.BallSize,
		paddleX, player.PaddleY, e.cfg.PaddleWidth, e.cfg.PaddleHeight,
	) {
		return nil
	}

	// Strike position from paddle center, normalized to [-1, 1] by the
	// paddle's half height
	paddleCenter := player.PaddleY + e.cfg.PaddleHeight/2
	hitPoint := (ball.Y - paddleCenter) / (e.cfg.PaddleHeight / 2)
	hitPoint = math.Max(-1, math.Min(1, hitPoint))

	// Remap vertical velocity from the strike position, then floor the
	// deflection angle so the ball never travels perfectly horizontally
	vy := hitPoint * ball.Speed * e.cfg.HitPointFactor
	minVy := ball.Speed * math.Sin(e.cfg.MinDeflectionAngle)
	if math.Abs(vy) < minVy {
		if hitPoint < 0 {
			vy = -minVy
		} else {
			vy = minVy
		}
	}

	// Horizontal velocity points away from the struck paddle, with the
	// magnitude chosen to preserve the speed invariant
	vx := math.Sqrt(ball.Speed*ball.Speed - vy*vy)
	if side == model.SideRight {
		vx = -vx
	}
	ball.VelocityX = vx
	ball.VelocityY = vy

	// Reposition flush outside the paddle to prevent tunneling into a
	// second hit next frame
	if side == model.SideLeft {
		ball.X = paddleX + e.cfg.PaddleWidth + r
	} else {
		ball.X = paddleX - r
	}

	e.rampSpeed(ball)

	return &Collision{Kind: CollisionPaddle, Side: side, HitPoint: hitPoint}
}

// rampSpeed increases the scalar speed up to the cap and rescales both
// velocity components so the direction ratio is preserved.
func (e *Engine) rampSpeed(ball *model.Ball) {
	newSpeed := math.Min(ball.Speed+e.cfg.SpeedIncrement, e.cfg.MaxSpeed)
	if newSpeed == ball.Speed {
		return
	}
	scale := newSpeed / ball.Speed
	ball.VelocityX *= scale
	ball.VelocityY *= scale
	ball.Speed = newSpeed
}

// DetectScoring reports which field edge the ball has fully exited, by its
// full radius rather than its center, or SideNone while in play.
func (e *Engine) DetectScoring(ball model.Ball) model.Side {
	r := e.cfg.BallRadius()
	if ball.X+r < 0 {
		return model.SideLeft
	}
	if ball.X-r > e.cfg.FieldWidth {
		return model.SideRight
	}
	return model.SideNone
}

// NewBall returns a freshly centered ball with a randomized direction: the
// horizontal sign is a coin flip and the deflection angle is drawn uniformly
// from the configured range with a random sign. This is the only place
// randomness enters the simulation.
func (e *Engine) NewBall() model.Ball {
	angle := e.cfg.ResetAngleMin + e.random.Float64()*(e.cfg.ResetAngleMax-e.cfg.ResetAngleMin)

	dirX := 1.0
	if e.random.Intn(2) == 0 {
		dirX = -1.0
	}
	dirY := 1.0
	if e.random.Intn(2) == 0 {
		dirY = -1.0
	}

	speed := e.cfg.InitialSpeed
	return model.Ball{
		X:         e.cfg.FieldWidth / 2,
		Y:         e.cfg.FieldHeight / 2,
		VelocityX: dirX * speed * math.Cos(angle),
		VelocityY: dirY * speed * math.Sin(angle),
		Speed:     speed,
	}
}

// intersects reports axis-aligned bounding box overlap
func intersects(ax, ay, aw, ah, bx, by, bw, bh float64) bool {
	return ax < bx+bw && ax+aw > bx && ay < by+bh && ay+ah > by
}
