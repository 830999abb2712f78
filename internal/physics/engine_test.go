package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Pitskhela0/pong-game/internal/dependencies/mocks"
	"github.com/Pitskhela0/pong-game/internal/model"
)

type EngineSuite struct {
	suite.Suite
	cfg    Config
	random *mocks.MockRandom
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.cfg = DefaultConfig()
	s.random = mocks.NewMockRandom()
	s.engine = New(s.cfg, s.random)
}

// twoPlayers returns a left and right player with paddles vertically centered
func (s *EngineSuite) twoPlayers() []*model.Player {
	centered := (s.cfg.FieldHeight - s.cfg.PaddleHeight) / 2
	return []*model.Player{
		{ID: "left", PaddleY: centered},
		{ID: "right", PaddleY: centered},
	}
}

// assertSpeedInvariant checks Speed == hypot(VelocityX, VelocityY)
func (s *EngineSuite) assertSpeedInvariant(ball model.Ball) {
	s.InDelta(ball.Speed, math.Hypot(ball.VelocityX, ball.VelocityY), 1e-9)
}

// Advance tests

func (s *EngineSuite) TestAdvanceIntegratesPosition() {
	ball := model.Ball{X: 400, Y: 200, VelocityX: 100, VelocityY: 50, Speed: math.Hypot(100, 50)}

	moved, collision := s.engine.Advance(ball, s.twoPlayers(), 0.016)

	s.Nil(collision)
	s.InDelta(401.6, moved.X, 1e-9)
	s.InDelta(200.8, moved.Y, 1e-9)
	s.Equal(ball.VelocityX, moved.VelocityX)
	s.Equal(ball.VelocityY, moved.VelocityY)
}

func (s *EngineSuite) TestAdvanceBouncesOffTopWall() {
	ball := model.Ball{X: 400, Y: 10, VelocityX: 100, VelocityY: -200, Speed: math.Hypot(100, 200)}

	moved, collision := s.engine.Advance(ball, s.twoPlayers(), 0.016)

	s.Require().NotNil(collision)
	s.Equal(CollisionWall, collision.Kind)
	s.Equal(s.cfg.BallRadius(), moved.Y)
	s.Positive(moved.VelocityY)
	s.Equal(ball.VelocityX, moved.VelocityX)
	s.assertSpeedInvariant(moved)
}

func (s *EngineSuite) TestAdvanceBouncesOffBottomWall() {
	ball := model.Ball{X: 400, Y: 392, VelocityX: 100, VelocityY: 200, Speed: math.Hypot(100, 200)}

	moved, collision := s.engine.Advance(ball, s.twoPlayers(), 0.016)

	s.Require().NotNil(collision)
	s.Equal(CollisionWall, collision.Kind)
	s.Equal(s.cfg.FieldHeight-s.cfg.BallRadius(), moved.Y)
	s.Negative(moved.VelocityY)
	s.assertSpeedInvariant(moved)
}

func (s *EngineSuite) TestAdvanceIgnoresWallWhenMovingAway() {
	// Ball overlapping the top boundary but already heading down must not
	// re-bounce
	ball := model.Ball{X: 400, Y: 7, VelocityX: 100, VelocityY: 200, Speed: math.Hypot(100, 200)}

	_, collision := s.engine.Advance(ball, s.twoPlayers(), 0.001)

	s.Nil(collision)
}

// Paddle reflection tests

func (s *EngineSuite) TestLeftPaddleReflectsBallAway() {
	ball := model.Ball{X: 55, Y: 200, VelocityX: -200, VelocityY: 0, Speed: 200}

	moved, collision := s.engine.Advance(ball, s.twoPlayers(), 0.016)

	s.Require().NotNil(collision)
	s.Equal(CollisionPaddle, collision.Kind)
	s.Equal(model.SideLeft, collision.Side)
	s.Positive(moved.VelocityX)
	// Repositioned flush against the paddle face
	s.Equal(s.cfg.LeftPaddleX()+s.cfg.PaddleWidth+s.cfg.BallRadius(), moved.X)
	s.assertSpeedInvariant(moved)
}

func (s *EngineSuite) TestRightPaddleReflectsBallAway() {
	ball := model.Ball{X: 745, Y: 200, VelocityX: 200, VelocityY: 0, Speed: 200}

	moved, collision := s.engine.Advance(ball, s.twoPlayers(), 0.016)

	s.Require().NotNil(collision)
	s.Equal(CollisionPaddle, collision.Kind)
	s.Equal(model.SideRight, collision.Side)
	s.Negative(moved.VelocityX)
	s.Equal(s.cfg.RightPaddleX()-s.cfg.BallRadius(), moved.X)
	s.assertSpeedInvariant(moved)
}

func (s *EngineSuite) TestPaddleHitRampsSpeed() {
	ball := model.Ball{X: 55, Y: 200, VelocityX: -200, VelocityY: 0, Speed: 200}

	moved, collision := s.engine.Advance(ball, s.twoPlayers(), 0.016)

	s.Require().NotNil(collision)
	s.Equal(s.cfg.InitialSpeed+s.cfg.SpeedIncrement, moved.Speed)
	s.assertSpeedInvariant(moved)
}

func (s *EngineSuite) TestSpeedNeverExceedsCap() {
	ball := model.Ball{X: 55, Y: 200, VelocityX: -s.cfg.MaxSpeed, VelocityY: 0, Speed: s.cfg.MaxSpeed}

	moved, collision := s.engine.Advance(ball, s.twoPlayers(), 0.008)

	s.Require().NotNil(collision)
	s.Equal(s.cfg.MaxSpeed, moved.Speed)
	s.assertSpeedInvariant(moved)
}

func (s *EngineSuite) TestCenterHitStillDeflects() {
	// A dead-center hit maps to zero vertical velocity, which the minimum
	// deflection angle must floor
	ball := model.Ball{X: 55, Y: 200, VelocityX: -200, VelocityY: 0, Speed: 200}

	moved, collision := s.engine.Advance(ball, s.twoPlayers(), 0.016)

	s.Require().NotNil(collision)
	minVy := moved.Speed * math.Sin(s.cfg.MinDeflectionAngle)
	s.GreaterOrEqual(math.Abs(moved.VelocityY), minVy-1e-9)
	s.assertSpeedInvariant(moved)
}

func (s *EngineSuite) TestHitAboveCenterDeflectsUpward() {
	players := s.twoPlayers()
	// Paddle spans y 160..240; ball at y 175 strikes above center
	ball := model.Ball{X: 55, Y: 175, VelocityX: -200, VelocityY: 0, Speed: 200}

	moved, collision := s.engine.Advance(ball, players, 0.016)

	s.Require().NotNil(collision)
	s.Negative(collision.HitPoint)
	s.Negative(moved.VelocityY)
	s.assertSpeedInvariant(moved)
}

func (s *EngineSuite) TestHitBelowCenterDeflectsDownward() {
	players := s.twoPlayers()
	ball := model.Ball{X: 55, Y: 225, VelocityX: -200, VelocityY: 0, Speed: 200}

	moved, collision := s.engine.Advance(ball, players, 0.016)

	s.Require().NotNil(collision)
	s.Positive(collision.HitPoint)
	s.Positive(moved.VelocityY)
	s.assertSpeedInvariant(moved)
}

func (s *EngineSuite) TestMissedPaddleDoesNotReflect() {
	players := s.twoPlayers()
	// Paddle spans y 160..240; ball well below it
	ball := model.Ball{X: 55, Y: 350, VelocityX: -200, VelocityY: 0, Speed: 200}

	moved, collision := s.engine.Advance(ball, players, 0.016)

	s.Nil(collision)
	s.Negative(moved.VelocityX)
}

func (s *EngineSuite) TestAbsentPaddleNeverStruck() {
	onlyLeft := []*model.Player{{ID: "left", PaddleY: 160}}
	ball := model.Ball{X: 745, Y: 200, VelocityX: 200, VelocityY: 0, Speed: 200}

	_, collision := s.engine.Advance(ball, onlyLeft, 0.016)

	s.Nil(collision)
}

// DetectScoring tests

func (s *EngineSuite) TestDetectScoringLeftEdge() {
	r := s.cfg.BallRadius()

	s.Equal(model.SideLeft, s.engine.DetectScoring(model.Ball{X: -r - 1}))
	s.Equal(model.SideNone, s.engine.DetectScoring(model.Ball{X: -r + 1}))
}

func (s *EngineSuite) TestDetectScoringRightEdge() {
	r := s.cfg.BallRadius()
	w := s.cfg.FieldWidth

	s.Equal(model.SideRight, s.engine.DetectScoring(model.Ball{X: w + r + 1, Y: 200}))
	s.Equal(model.SideNone, s.engine.DetectScoring(model.Ball{X: w + r - 1, Y: 200}))
}

func (s *EngineSuite) TestDetectScoringInPlay() {
	s.Equal(model.SideNone, s.engine.DetectScoring(model.Ball{X: 400, Y: 200}))
}

// NewBall tests

func (s *EngineSuite) TestNewBallStartsCentered() {
	ball := s.engine.NewBall()

	s.Equal(s.cfg.FieldWidth/2, ball.X)
	s.Equal(s.cfg.FieldHeight/2, ball.Y)
	s.Equal(s.cfg.InitialSpeed, ball.Speed)
	s.assertSpeedInvariant(ball)
}

func (s *EngineSuite) TestNewBallIsDeterministicUnderMockedRandomness() {
	// Angle fraction 0.5 puts the deflection mid-range; coin flips choose
	// left then down
	s.random.QueueFloat64(0.5)
	s.random.QueueIntn(0, 0)

	ball := s.engine.NewBall()

	angle := s.cfg.ResetAngleMin + 0.5*(s.cfg.ResetAngleMax-s.cfg.ResetAngleMin)
	s.InDelta(-s.cfg.InitialSpeed*math.Cos(angle), ball.VelocityX, 1e-9)
	s.InDelta(-s.cfg.InitialSpeed*math.Sin(angle), ball.VelocityY, 1e-9)
}

func (s *EngineSuite) TestNewBallHonorsDirectionFlips() {
	s.random.QueueFloat64(0.0)
	s.random.QueueIntn(1, 1)

	ball := s.engine.NewBall()

	s.Positive(ball.VelocityX)
	s.Positive(ball.VelocityY)
}
