package match

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Pitskhela0/pong-game/internal/dependencies/mocks"
	"github.com/Pitskhela0/pong-game/internal/model"
	"github.com/Pitskhela0/pong-game/internal/physics"
	"github.com/Pitskhela0/pong-game/internal/session"
	"github.com/Pitskhela0/pong-game/internal/storage/memory"
	"github.com/Pitskhela0/pong-game/internal/testutil"
)

// recordingEmitter captures emitted events for assertions. It can be armed
// to panic on the next emit to exercise tick fault isolation.
type recordingEmitter struct {
	mu        sync.Mutex
	events    []model.Event
	rooms     []string
	panicNext bool
}

func (e *recordingEmitter) Emit(roomName string, event model.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.panicNext {
		e.panicNext = false
		panic("emitter exploded")
	}
	e.events = append(e.events, event)
	e.rooms = append(e.rooms, roomName)
}

func (e *recordingEmitter) ofType(t model.EventType) []model.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []model.Event
	for _, ev := range e.events {
		if ev.EventType() == t {
			out = append(out, ev)
		}
	}
	return out
}

func (e *recordingEmitter) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = nil
	e.rooms = nil
}

type ControllerSuite struct {
	suite.Suite
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	sched      *mocks.MockScheduler
	emitter    *recordingEmitter
	store      *session.Store
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.sched = mocks.NewMockScheduler()
	s.emitter = &recordingEmitter{}
	s.store = session.New(memory.New(), s.clock, testutil.NopLogger())
	engine := physics.New(physics.DefaultConfig(), s.random)
	s.controller = NewController(
		DefaultConfig(), engine, s.store, s.sched, s.clock, s.emitter, testutil.NopLogger(),
	)
	s.ctx = context.Background()
}

// fullRoom creates a room with two ready players
func (s *ControllerSuite) fullRoom(name string) *model.Room {
	_, err := s.store.JoinOrCreate(s.ctx, name, &model.Player{ID: "p1", Name: "Left", PaddleY: 160, IsReady: true})
	s.Require().NoError(err)
	room, err := s.store.JoinOrCreate(s.ctx, name, &model.Player{ID: "p2", Name: "Right", PaddleY: 160, IsReady: true})
	s.Require().NoError(err)
	return room
}

// startedRoom creates a full room with a running match whose ball state the
// test then controls directly
func (s *ControllerSuite) startedRoom(name string) *model.Room {
	room := s.fullRoom(name)
	s.controller.Start(s.ctx, room)
	s.emitter.reset()
	return room
}

// setBall places the ball with the speed invariant maintained
func setBall(room *model.Room, x, y, vx, vy float64) {
	room.Game.Ball = model.Ball{X: x, Y: y, VelocityX: vx, VelocityY: vy}
	room.Game.Ball.Speed = room.Game.Ball.VelocityMagnitude()
}

// CanStart tests

func (s *ControllerSuite) TestCanStartWithTwoReadyPlayers() {
	room := s.fullRoom("arena")
	s.True(s.controller.CanStart(room))
}

func (s *ControllerSuite) TestCanStartRequiresAllReady() {
	room := s.fullRoom("arena")
	room.Game.Players[0].IsReady = false
	s.False(s.controller.CanStart(room))
}

func (s *ControllerSuite) TestCanStartRequiresReadyStatus() {
	room := s.fullRoom("arena")
	room.Game.Status = model.StatusPlaying
	s.False(s.controller.CanStart(room))
}

// Start tests

func (s *ControllerSuite) TestStartBeginsPlaying() {
	room := s.fullRoom("arena")
	room.Game.Players[0].Score = 3

	s.controller.Start(s.ctx, room)

	s.Equal(model.StatusPlaying, room.Game.Status)
	s.True(s.sched.Has("arena"))
	s.Equal(float64(400), room.Game.Ball.X)
	s.Equal(float64(200), room.Game.Ball.Y)
	for _, p := range room.Game.Players {
		s.Equal(0, p.Score)
		s.False(p.IsReady)
	}
}

func (s *ControllerSuite) TestStartWithOnePlayerIsNoop() {
	room, err := s.store.JoinOrCreate(s.ctx, "arena", &model.Player{ID: "p1"})
	s.Require().NoError(err)

	s.controller.Start(s.ctx, room)

	s.Equal(model.StatusWaiting, room.Game.Status)
	s.False(s.sched.Has("arena"))
}

func (s *ControllerSuite) TestStartTwiceIsNoop() {
	room := s.startedRoom("arena")
	setBall(room, 100, 100, 50, 50)

	s.controller.Start(s.ctx, room)

	// Second start must not re-randomize the ball
	s.Equal(float64(100), room.Game.Ball.X)
}

// Tick tests

func (s *ControllerSuite) TestTickAdvancesBallAndBroadcasts() {
	room := s.startedRoom("arena")
	setBall(room, 400, 200, 100, 50)

	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))

	s.InDelta(401.6, room.Game.Ball.X, 1e-9)
	s.InDelta(200.8, room.Game.Ball.Y, 1e-9)

	updates := s.emitter.ofType(model.EventGameStateUpdate)
	s.Require().Len(updates, 1)
	snapshot := updates[0].(model.GameStateUpdateEvent).GameState
	s.InDelta(401.6, snapshot.Ball.X, 1e-9)
	s.Equal(model.StatusPlaying, snapshot.Status)
}

func (s *ControllerSuite) TestStaleTickSkipsFrame() {
	room := s.startedRoom("arena")
	setBall(room, 400, 200, 100, 50)

	s.clock.Advance(500 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))

	s.Equal(float64(400), room.Game.Ball.X)
	s.Empty(s.emitter.ofType(model.EventGameStateUpdate))
	// Loop stays alive and the next normal frame advances
	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))
	s.InDelta(401.6, room.Game.Ball.X, 1e-9)
}

func (s *ControllerSuite) TestSnapshotIsIsolatedFromLaterTicks() {
	room := s.startedRoom("arena")
	setBall(room, 400, 200, 100, 0)

	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))
	first := s.emitter.ofType(model.EventGameStateUpdate)[0].(model.GameStateUpdateEvent)

	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))

	// The earlier snapshot must not reflect the later mutation
	s.InDelta(401.6, first.GameState.Ball.X, 1e-9)
}

// Scoring tests

func (s *ControllerSuite) TestLeftExitScoresRightPlayer() {
	room := s.startedRoom("arena")
	setBall(room, -20, 200, -200, 0)
	s.random.QueueFloat64(0.5)

	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))

	s.Equal(0, room.Game.Players[0].Score)
	s.Equal(1, room.Game.Players[1].Score)

	points := s.emitter.ofType(model.EventPointScored)
	s.Require().Len(points, 1)
	ev := points[0].(model.PointScoredEvent)
	s.Equal(model.SideLeft, ev.Side)
	s.Equal(model.PlayerID("p2"), ev.PlayerID)
	s.Equal(1, ev.Score)

	// Ball back at center for the next rally
	s.Equal(float64(400), room.Game.Ball.X)
	s.Equal(float64(200), room.Game.Ball.Y)
}

func (s *ControllerSuite) TestRightExitScoresLeftPlayer() {
	room := s.startedRoom("arena")
	setBall(room, 820, 200, 200, 0)
	s.random.QueueFloat64(0.5)

	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))

	s.Equal(1, room.Game.Players[0].Score)
	s.Equal(0, room.Game.Players[1].Score)

	ev := s.emitter.ofType(model.EventPointScored)[0].(model.PointScoredEvent)
	s.Equal(model.SideRight, ev.Side)
	s.Equal(model.PlayerID("p1"), ev.PlayerID)
}

func (s *ControllerSuite) TestScoringSuspendsTicksUntilGraceElapses() {
	room := s.startedRoom("arena")
	setBall(room, -20, 200, -200, 0)
	s.random.QueueFloat64(0.5)

	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))
	s.True(s.sched.HasOneShot("arena" + scoreResumeSuffix))
	s.emitter.reset()

	// Frames during the grace window neither move the ball nor broadcast
	ballX := room.Game.Ball.X
	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))
	s.Equal(ballX, room.Game.Ball.X)
	s.Empty(s.emitter.events)

	// Grace elapses: broadcasting resumes with a fresh tick baseline
	s.Require().True(s.sched.Fire("arena" + scoreResumeSuffix))
	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))
	s.NotEqual(ballX, room.Game.Ball.X)
	s.Len(s.emitter.ofType(model.EventGameStateUpdate), 1)
}

func (s *ControllerSuite) TestScoringSupersedesMovementFrame() {
	room := s.startedRoom("arena")
	setBall(room, -20, 200, -200, 0)
	s.random.QueueFloat64(0.5)

	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))

	s.Empty(s.emitter.ofType(model.EventGameStateUpdate))
	s.Len(s.emitter.ofType(model.EventPointScored), 1)
}

func (s *ControllerSuite) TestScoringWithEmptySeatCarriesSideOnly() {
	room := s.fullRoom("arena")
	s.controller.Start(s.ctx, room)
	// Simulate the right seat vanishing mid-rally
	room.Game.Players = room.Game.Players[:1]
	ls := &loopState{room: room, lastTick: s.clock.Now()}
	s.random.QueueFloat64(0.5)
	s.emitter.reset()

	ended := s.controller.handleScoring(ls, model.SideLeft, s.clock.Now())

	s.False(ended)
	ev := s.emitter.ofType(model.EventPointScored)[0].(model.PointScoredEvent)
	s.Equal(model.SideLeft, ev.Side)
	s.Empty(ev.PlayerID)
	s.Zero(ev.Score)
}

// Win and finish tests

func (s *ControllerSuite) TestWinningPointSchedulesFinish() {
	room := s.startedRoom("arena")
	room.Game.Players[1].Score = DefaultConfig().WinScore - 1
	setBall(room, -20, 200, -200, 0)
	s.random.QueueFloat64(0.5)

	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))

	// The tick task deregisters itself and the finish transition is pending
	s.False(s.sched.Has("arena"))
	s.True(s.sched.HasOneShot("arena" + finishSuffix))
	// Status stays playing through the finish grace window
	s.Equal(model.StatusPlaying, room.Game.Status)

	s.Require().True(s.sched.Fire("arena" + finishSuffix))

	s.Equal(model.StatusFinished, room.Game.Status)
	s.Equal(model.PlayerID("p2"), room.Game.Winner)

	ends := s.emitter.ofType(model.EventGameEnded)
	s.Require().Len(ends, 1)
	ev := ends[0].(model.GameEndedEvent)
	s.Equal(model.PlayerID("p2"), ev.WinnerID)
	s.Equal(DefaultConfig().WinScore, ev.FinalScores["p2"])
	s.Equal(0, ev.FinalScores["p1"])
}

func (s *ControllerSuite) TestResetDuringFinishGraceCancelsIt() {
	room := s.startedRoom("arena")
	room.Game.Players[1].Score = DefaultConfig().WinScore - 1
	setBall(room, -20, 200, -200, 0)
	s.random.QueueFloat64(0.5)
	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))
	s.Require().True(s.sched.HasOneShot("arena" + finishSuffix))

	s.random.QueueFloat64(0.5)
	s.controller.ResetToLobby(s.ctx, room)

	s.False(s.sched.HasOneShot("arena" + finishSuffix))
	s.Equal(model.StatusReady, room.Game.Status)
	s.Empty(s.emitter.ofType(model.EventGameEnded))
}

func (s *ControllerSuite) TestFinishAfterRoomDeletedIsNoop() {
	room := s.startedRoom("arena")
	room.Game.Players[1].Score = DefaultConfig().WinScore - 1
	setBall(room, -20, 200, -200, 0)
	s.random.QueueFloat64(0.5)
	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))

	_, err := s.store.RemovePlayer(s.ctx, "p1")
	s.Require().NoError(err)
	_, err = s.store.RemovePlayer(s.ctx, "p2")
	s.Require().NoError(err)
	s.emitter.reset()

	s.Require().True(s.sched.Fire("arena" + finishSuffix))

	s.Empty(s.emitter.events)
}

// Pause and resume tests

func (s *ControllerSuite) TestPauseFreezesState() {
	room := s.startedRoom("arena")
	setBall(room, 300, 100, 100, 50)
	room.Game.Players[0].Score = 2

	s.controller.Pause(s.ctx, room)

	s.Equal(model.StatusPaused, room.Game.Status)
	s.False(s.sched.Has("arena"))
	s.Equal(float64(300), room.Game.Ball.X)
	s.Equal(2, room.Game.Players[0].Score)

	updates := s.emitter.ofType(model.EventGameStateUpdate)
	s.Require().Len(updates, 1)
	s.Equal(model.StatusPaused, updates[0].(model.GameStateUpdateEvent).GameState.Status)
}

func (s *ControllerSuite) TestPauseRequiresPlaying() {
	room := s.fullRoom("arena")

	s.controller.Pause(s.ctx, room)

	s.Equal(model.StatusReady, room.Game.Status)
}

func (s *ControllerSuite) TestResumePreservesScoresAndBall() {
	room := s.startedRoom("arena")
	setBall(room, 300, 100, 100, 50)
	room.Game.Players[1].Score = 3
	s.controller.Pause(s.ctx, room)

	s.controller.Resume(s.ctx, room)

	s.Equal(model.StatusPlaying, room.Game.Status)
	s.True(s.sched.Has("arena"))
	s.Equal(float64(300), room.Game.Ball.X)
	s.Equal(3, room.Game.Players[1].Score)
}

func (s *ControllerSuite) TestResumeRequiresPaused() {
	room := s.fullRoom("arena")

	s.controller.Resume(s.ctx, room)

	s.Equal(model.StatusReady, room.Game.Status)
	s.False(s.sched.Has("arena"))
}

func (s *ControllerSuite) TestResumeRequiresTwoPlayers() {
	room := s.startedRoom("arena")
	s.controller.Pause(s.ctx, room)
	room.Game.Players = room.Game.Players[:1]

	s.controller.Resume(s.ctx, room)

	s.Equal(model.StatusPaused, room.Game.Status)
	s.False(s.sched.Has("arena"))
}

// Paddle and ready tests

func (s *ControllerSuite) TestMovePaddleUpdatesAndEmits() {
	room := s.startedRoom("arena")

	s.controller.MovePaddle(room, "p1", 250)

	s.Equal(float64(250), room.Game.Players[0].PaddleY)
	moves := s.emitter.ofType(model.EventPaddleMoved)
	s.Require().Len(moves, 1)
	ev := moves[0].(model.PaddleMovedEvent)
	s.Equal(model.PlayerID("p1"), ev.PlayerID)
	s.Equal(float64(250), ev.PaddleY)
}

func (s *ControllerSuite) TestMovePaddleRejectsOutOfRange() {
	room := s.startedRoom("arena")
	before := room.Game.Players[0].PaddleY

	s.controller.MovePaddle(room, "p1", -5)
	s.controller.MovePaddle(room, "p1", 500)

	s.Equal(before, room.Game.Players[0].PaddleY)
	s.Empty(s.emitter.ofType(model.EventPaddleMoved))
}

func (s *ControllerSuite) TestMovePaddleUnknownPlayer() {
	room := s.startedRoom("arena")

	s.controller.MovePaddle(room, "ghost", 250)

	s.Empty(s.emitter.ofType(model.EventPaddleMoved))
}

func (s *ControllerSuite) TestSetReady() {
	room := s.fullRoom("arena")
	room.Game.Players[0].IsReady = false

	player := s.controller.SetReady(room, "p1", true)

	s.Require().NotNil(player)
	s.True(player.IsReady)
	s.Nil(s.controller.SetReady(room, "ghost", true))
}

// Fault isolation tests

func (s *ControllerSuite) TestTickPanicTearsDownOnlyThatRoom() {
	room := s.startedRoom("arena")
	other := s.startedRoom("other")
	setBall(room, 400, 200, 100, 0)
	setBall(other, 400, 200, 100, 0)

	s.emitter.panicNext = true
	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("arena"))

	s.False(s.sched.Has("arena"))
	s.True(s.sched.Has("other"))

	// The surviving room keeps ticking normally
	s.clock.Advance(16 * time.Millisecond)
	s.Require().True(s.sched.Tick("other"))
	s.Len(s.emitter.ofType(model.EventGameStateUpdate), 1)
}

// Shutdown tests

func (s *ControllerSuite) TestShutdownCancelsEverything() {
	s.startedRoom("arena")
	s.startedRoom("other")

	s.controller.Shutdown()

	s.False(s.sched.Has("arena"))
	s.False(s.sched.Has("other"))
}
