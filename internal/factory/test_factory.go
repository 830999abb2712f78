package factory

import (
	"time"

	"github.com/Pitskhela0/pong-game/internal/dependencies/mocks"
	"github.com/Pitskhela0/pong-game/internal/match"
	"github.com/Pitskhela0/pong-game/internal/physics"
	"github.com/Pitskhela0/pong-game/internal/storage/memory"
	"github.com/Pitskhela0/pong-game/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
	MockScheduler *mocks.MockScheduler
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockScheduler := mocks.NewMockScheduler()

	app := newWithDependencies(
		store,
		mockClock,
		mockRandom,
		mockScheduler,
		physics.DefaultConfig(),
		match.DefaultConfig(),
		testutil.NopLogger(),
	)

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MockScheduler: mockScheduler,
	}
}

// QueueServe queues the random draws NewBall consumes so a serve is
// deterministic: launch angle fraction, horizontal direction, vertical
// direction.
func (t *TestApp) QueueServe(angleFrac float64, dirX, dirY int) {
	t.MockRandom.QueueFloat64(angleFrac)
	t.MockRandom.QueueIntn(dirX, dirY)
}
