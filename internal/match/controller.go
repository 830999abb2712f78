package match

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Pitskhela0/pong-game/internal/dependencies/clock"
	"github.com/Pitskhela0/pong-game/internal/dependencies/scheduler"
	"github.com/Pitskhela0/pong-game/internal/model"
	"github.com/Pitskhela0/pong-game/internal/physics"
	"github.com/Pitskhela0/pong-game/internal/session"
)

// Task key suffixes for the grace-period timers, keyed alongside the loop
// itself by room name.
const (
	scoreResumeSuffix = "/score-resume"
	finishSuffix      = "/finish"
)

// Emitter receives the state snapshots and discrete events the controller
// produces. The controller never touches the transport directly.
type Emitter interface {
	Emit(roomName string, event model.Event)
}

// Controller runs the per-room fixed-tick simulation loops: it advances
// physics every frame, applies scoring and win transitions, and owns the
// start/stop/pause/resume lifecycle. Each room's loop is independent; a
// fault in one room never stalls another.
type Controller struct {
	cfg     Config
	engine  *physics.Engine
	store   *session.Store
	sched   scheduler.Scheduler
	clock   clock.Clock
	emitter Emitter
	logger  *slog.Logger

	mu        sync.Mutex
	loops     map[string]*loopState
	roomLocks map[string]*sync.Mutex
}

// loopState is the per-room loop runtime. Its fields are guarded by the
// room's lock.
type loopState struct {
	room     *model.Room
	lastTick time.Time
	// waiting suspends physics and broadcasting during the post-score
	// grace window
	waiting bool
}

// NewController creates a match loop controller
func NewController(
	cfg Config,
	engine *physics.Engine,
	store *session.Store,
	sched scheduler.Scheduler,
	clock clock.Clock,
	emitter Emitter,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		cfg:       cfg,
		engine:    engine,
		store:     store,
		sched:     sched,
		clock:     clock,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "match")),
		loops:     make(map[string]*loopState),
		roomLocks: make(map[string]*sync.Mutex),
	}
}

// CanStart reports whether the room is eligible for a match: exactly 2
// players, all ready, in the ready state.
func (c *Controller) CanStart(room *model.Room) bool {
	lock := c.roomLock(room.Name)
	lock.Lock()
	defer lock.Unlock()

	return len(room.Game.Players) == model.MaxPlayers &&
		room.AllReady() &&
		room.Game.Status == model.StatusReady
}

// Start begins the match loop for the room: fresh ball, zeroed scores,
// cleared ready flags, status playing. Starting a room that already has a
// registered loop, or that has fewer than 2 players, is a warned no-op.
func (c *Controller) Start(ctx context.Context, room *model.Room) {
	c.mu.Lock()
	if _, ok := c.loops[room.Name]; ok {
		c.mu.Unlock()
		c.logger.Warn("match loop already registered", slog.String("room", room.Name))
		return
	}
	if len(room.Game.Players) < model.MaxPlayers {
		c.mu.Unlock()
		c.logger.Warn("cannot start match with fewer than 2 players",
			slog.String("room", room.Name),
			slog.Int("player_count", len(room.Game.Players)),
		)
		return
	}
	now := c.clock.Now()
	c.loops[room.Name] = &loopState{room: room, lastTick: now}
	c.mu.Unlock()

	lock := c.roomLock(room.Name)
	lock.Lock()
	room.Game.Status = model.StatusPlaying
	room.Game.Ball = c.engine.NewBall()
	room.Game.Winner = ""
	for _, p := range room.Game.Players {
		p.Score = 0
		p.IsReady = false
	}
	room.Game.LastUpdate = now
	lock.Unlock()

	c.saveRoom(ctx, room)
	c.registerLoop(room.Name)

	c.logger.Info("match started", slog.String("room", room.Name))
}

// Stop cancels the room's tick registration and any pending grace timers.
// Stopping a room with no active loop is a no-op.
func (c *Controller) Stop(roomName string) {
	c.sched.Cancel(roomName)
	c.sched.Cancel(roomName + scoreResumeSuffix)
	c.sched.Cancel(roomName + finishSuffix)

	c.mu.Lock()
	_, had := c.loops[roomName]
	delete(c.loops, roomName)
	c.mu.Unlock()

	if had {
		c.logger.Info("match loop stopped", slog.String("room", roomName))
	}
}

// Pause stops the loop and freezes the room without touching ball or
// scores. Only a playing room can be paused.
func (c *Controller) Pause(ctx context.Context, room *model.Room) {
	lock := c.roomLock(room.Name)
	lock.Lock()
	if room.Game.Status != model.StatusPlaying {
		lock.Unlock()
		c.logger.Warn("cannot pause a room that is not playing",
			slog.String("room", room.Name),
			slog.String("status", string(room.Game.Status)),
		)
		return
	}
	room.Game.Status = model.StatusPaused
	room.Game.LastUpdate = c.clock.Now()
	snapshot := snapshotGame(room)
	lock.Unlock()

	c.Stop(room.Name)
	c.saveRoom(ctx, room)
	c.emitter.Emit(room.Name, model.GameStateUpdateEvent{
		GameState: snapshot,
		Timestamp: snapshot.LastUpdate,
	})
	c.logger.Info("match paused", slog.String("room", room.Name))
}

// Resume restarts the loop from the frozen state. Only a paused room with
// both players present can resume; ball and scores are untouched.
func (c *Controller) Resume(ctx context.Context, room *model.Room) {
	lock := c.roomLock(room.Name)
	lock.Lock()
	if room.Game.Status != model.StatusPaused {
		lock.Unlock()
		c.logger.Warn("cannot resume a room that is not paused",
			slog.String("room", room.Name),
			slog.String("status", string(room.Game.Status)),
		)
		return
	}
	if len(room.Game.Players) < model.MaxPlayers {
		lock.Unlock()
		c.logger.Warn("cannot resume match with fewer than 2 players",
			slog.String("room", room.Name))
		return
	}
	room.Game.Status = model.StatusPlaying
	room.Game.LastUpdate = c.clock.Now()
	lock.Unlock()

	c.mu.Lock()
	if _, ok := c.loops[room.Name]; ok {
		c.mu.Unlock()
		c.logger.Warn("match loop already registered", slog.String("room", room.Name))
		return
	}
	c.loops[room.Name] = &loopState{room: room, lastTick: c.clock.Now()}
	c.mu.Unlock()

	c.saveRoom(ctx, room)
	c.registerLoop(room.Name)
	c.logger.Info("match resumed", slog.String("room", room.Name))
}

// ResetToLobby stops any active loop and returns the room to the lobby:
// zeroed scores and ready flags, fresh ball, winner cleared, status waiting
// or ready depending on player count.
func (c *Controller) ResetToLobby(ctx context.Context, room *model.Room) {
	c.Stop(room.Name)

	lock := c.roomLock(room.Name)
	lock.Lock()
	for _, p := range room.Game.Players {
		p.Score = 0
		p.IsReady = false
	}
	room.Game.Winner = ""
	room.Game.Ball = c.engine.NewBall()
	if len(room.Game.Players) == model.MaxPlayers {
		room.Game.Status = model.StatusReady
	} else {
		room.Game.Status = model.StatusWaiting
	}
	room.Game.LastUpdate = c.clock.Now()
	lock.Unlock()

	c.saveRoom(ctx, room)
	c.emitter.Emit(room.Name, model.ReturnedToLobbyEvent{Room: room})
	c.logger.Info("room reset to lobby", slog.String("room", room.Name))
}

// MovePaddle repositions a player's paddle. Out-of-range values and unknown
// players are rejected silently with a log entry.
func (c *Controller) MovePaddle(room *model.Room, playerID model.PlayerID, paddleY float64) {
	geo := c.engine.Config()
	if paddleY < 0 || paddleY > geo.FieldHeight-geo.PaddleHeight {
		c.logger.Debug("paddle position out of range",
			slog.String("room", room.Name),
			slog.String("player_id", string(playerID)),
			slog.Float64("paddle_y", paddleY),
		)
		return
	}

	lock := c.roomLock(room.Name)
	lock.Lock()
	player := room.GetPlayer(playerID)
	if player == nil {
		lock.Unlock()
		c.logger.Debug("paddle move from player not in room",
			slog.String("room", room.Name),
			slog.String("player_id", string(playerID)),
		)
		return
	}
	player.PaddleY = paddleY
	lock.Unlock()

	c.emitter.Emit(room.Name, model.PaddleMovedEvent{
		PlayerID:  playerID,
		PaddleY:   paddleY,
		Timestamp: c.clock.Now(),
	})
}

// SetReady flips a player's ready flag and returns the updated player, or
// nil if the player is not in the room.
func (c *Controller) SetReady(room *model.Room, playerID model.PlayerID, isReady bool) *model.Player {
	lock := c.roomLock(room.Name)
	lock.Lock()
	defer lock.Unlock()

	player := room.GetPlayer(playerID)
	if player == nil {
		return nil
	}
	player.IsReady = isReady
	room.Game.LastUpdate = c.clock.Now()
	return player
}

// Shutdown cancels every outstanding loop and pending delayed transition
func (c *Controller) Shutdown() {
	c.sched.Shutdown()

	c.mu.Lock()
	count := len(c.loops)
	c.loops = make(map[string]*loopState)
	c.mu.Unlock()

	c.logger.Info("match controller shut down", slog.Int("cancelled_loops", count))
}

// registerLoop schedules the periodic tick for the room
func (c *Controller) registerLoop(roomName string) {
	c.sched.Every(roomName, c.cfg.TickInterval, func() bool {
		return c.safeTick(roomName)
	})
}

// safeTick runs one tick and treats a panic as fatal for this room only:
// the loop is torn down and the fault logged, other rooms are unaffected.
func (c *Controller) safeTick(roomName string) (alive bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("tick panic, tearing down room loop",
				slog.String("room", roomName),
				slog.Any("panic", r),
			)
			// Returning false deregisters the tick task itself; the
			// grace timers are cancelled from outside it.
			c.sched.Cancel(roomName + scoreResumeSuffix)
			c.sched.Cancel(roomName + finishSuffix)
			c.mu.Lock()
			delete(c.loops, roomName)
			c.mu.Unlock()
			alive = false
		}
	}()
	return c.tick(roomName)
}

// tick advances the room by the wall-clock time elapsed since the previous
// tick. A stale elapsed time (scheduler jitter, externally frozen room) is
// absorbed by skipping the frame rather than integrating a huge step.
func (c *Controller) tick(roomName string) bool {
	c.mu.Lock()
	ls := c.loops[roomName]
	c.mu.Unlock()
	if ls == nil {
		return false
	}

	lock := c.roomLock(roomName)
	lock.Lock()
	defer lock.Unlock()

	room := ls.room
	if room.Game.Status != model.StatusPlaying {
		return false
	}
	if ls.waiting {
		return true
	}

	now := c.clock.Now()
	elapsed := now.Sub(ls.lastTick)
	ls.lastTick = now
	if elapsed > c.cfg.StaleTickThreshold {
		return true
	}

	ball, _ := c.engine.Advance(room.Game.Ball, room.Game.Players, elapsed.Seconds())
	room.Game.Ball = ball

	if side := c.engine.DetectScoring(ball); side != model.SideNone {
		// The scoring transition supersedes the movement frame
		return !c.handleScoring(ls, side, now)
	}

	room.Game.LastUpdate = now
	c.emitter.Emit(roomName, model.GameStateUpdateEvent{
		GameState: snapshotGame(room),
		Timestamp: now,
	})
	return true
}

// handleScoring applies a point: increments the scorer, resets the ball,
// and emits the point-scored event. At the win score the loop is torn down
// and the finished transition is scheduled after the finish grace period;
// otherwise broadcasting resumes after the score grace period. Both delayed
// continuations re-check room status before acting. Reports whether the
// game ended. Called with the room lock held.
func (c *Controller) handleScoring(ls *loopState, side model.Side, now time.Time) bool {
	room := ls.room

	// The exit side names the edge the ball left; the opposite player
	// takes the point. The attribution holds even when that seat is
	// empty.
	scorerIdx := 0
	if side == model.SideLeft {
		scorerIdx = 1
	}
	var scorer *model.Player
	if scorerIdx < len(room.Game.Players) {
		scorer = room.Game.Players[scorerIdx]
		scorer.Score++
	}

	room.Game.Ball = c.engine.NewBall()
	room.Game.LastUpdate = now

	ev := model.PointScoredEvent{
		Side:      side,
		GameState: snapshotGame(room),
		Timestamp: now,
	}
	if scorer != nil {
		ev.PlayerID = scorer.ID
		ev.Score = scorer.Score
	}
	c.emitter.Emit(room.Name, ev)

	c.saveRoom(context.Background(), room)

	if scorer != nil && scorer.Score >= c.cfg.WinScore {
		winnerID := scorer.ID
		// The tick task deregisters itself by reporting the game over;
		// only the loop state needs dropping here.
		c.mu.Lock()
		delete(c.loops, room.Name)
		c.mu.Unlock()

		c.sched.After(room.Name+finishSuffix, c.cfg.FinishDelay, func() {
			c.finishGame(room.Name, winnerID)
		})
		c.logger.Info("winning point scored",
			slog.String("room", room.Name),
			slog.String("player_id", string(winnerID)),
		)
		return true
	}

	ls.waiting = true
	c.sched.After(room.Name+scoreResumeSuffix, c.cfg.ScoreResumeDelay, func() {
		c.resumeBroadcast(room.Name)
	})

	c.logger.Info("point scored",
		slog.String("room", room.Name),
		slog.String("side", string(side)),
	)
	return false
}

// finishGame is the delayed continuation of a winning point. It no-ops if
// the room has been deleted, reset, or paused during the grace window.
func (c *Controller) finishGame(roomName string, winnerID model.PlayerID) {
	room, err := c.store.FindByName(context.Background(), roomName)
	if err != nil {
		return
	}

	lock := c.roomLock(roomName)
	lock.Lock()
	if room.Game.Status != model.StatusPlaying {
		lock.Unlock()
		return
	}
	now := c.clock.Now()
	room.Game.Status = model.StatusFinished
	room.Game.Winner = winnerID
	finalScores := make(map[model.PlayerID]int, len(room.Game.Players))
	for _, p := range room.Game.Players {
		p.IsReady = false
		finalScores[p.ID] = p.Score
	}
	room.Game.LastUpdate = now
	snapshot := snapshotGame(room)
	lock.Unlock()

	c.saveRoom(context.Background(), room)
	c.emitter.Emit(roomName, model.GameEndedEvent{
		WinnerID:    winnerID,
		FinalScores: finalScores,
		GameState:   snapshot,
		Timestamp:   now,
	})
	c.logger.Info("game ended",
		slog.String("room", roomName),
		slog.String("winner_id", string(winnerID)),
	)
}

// resumeBroadcast is the delayed continuation of a non-winning point. It
// no-ops unless the room is still playing.
func (c *Controller) resumeBroadcast(roomName string) {
	c.mu.Lock()
	ls := c.loops[roomName]
	c.mu.Unlock()
	if ls == nil {
		return
	}

	lock := c.roomLock(roomName)
	lock.Lock()
	defer lock.Unlock()

	if ls.room.Game.Status != model.StatusPlaying {
		return
	}
	ls.waiting = false
	ls.lastTick = c.clock.Now()
}

// roomLock returns the lock serializing game-state mutation for the room
func (c *Controller) roomLock(roomName string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.roomLocks[roomName]
	if !ok {
		lock = &sync.Mutex{}
		c.roomLocks[roomName] = lock
	}
	return lock
}

// ReleaseRoom drops the per-room lock entry once the room is gone
func (c *Controller) ReleaseRoom(roomName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.roomLocks, roomName)
}

func (c *Controller) saveRoom(ctx context.Context, room *model.Room) {
	if err := c.store.Save(ctx, room); err != nil {
		c.logger.Error("failed to persist room state",
			slog.String("room", room.Name),
			slog.String("error", err.Error()),
		)
	}
}

// snapshotGame deep-copies the game aggregate so a broadcast payload is
// never mutated by a later tick while the transport serializes it.
func snapshotGame(room *model.Room) model.GameState {
	players := make([]*model.Player, len(room.Game.Players))
	for i, p := range room.Game.Players {
		copied := *p
		players[i] = &copied
	}
	return model.GameState{
		Players:    players,
		Ball:       room.Game.Ball,
		Status:     room.Game.Status,
		Winner:     room.Game.Winner,
		LastUpdate: room.Game.LastUpdate,
	}
}
