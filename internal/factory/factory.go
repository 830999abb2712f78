package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/Pitskhela0/pong-game/internal/dependencies/clock"
	"github.com/Pitskhela0/pong-game/internal/dependencies/random"
	"github.com/Pitskhela0/pong-game/internal/dependencies/scheduler"
	"github.com/Pitskhela0/pong-game/internal/match"
	"github.com/Pitskhela0/pong-game/internal/physics"
	"github.com/Pitskhela0/pong-game/internal/router"
	"github.com/Pitskhela0/pong-game/internal/session"
	"github.com/Pitskhela0/pong-game/internal/storage"
	"github.com/Pitskhela0/pong-game/internal/storage/memory"
	redisstorage "github.com/Pitskhela0/pong-game/internal/storage/redis"
	"github.com/Pitskhela0/pong-game/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock     clock.Clock
	Random    random.Random
	Scheduler scheduler.Scheduler

	// Core components
	Engine      *physics.Engine
	Store       *session.Store
	Controller  *match.Controller
	Broadcaster *router.Broadcaster
	Router      *router.Router
	WSHandler   *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Physics holds the field geometry and ball speed settings (optional)
	// If zero value, defaults to physics.DefaultConfig()
	Physics physics.Config
	// Match holds the loop timing and win condition settings (optional)
	// If zero value, defaults to match.DefaultConfig()
	Match match.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	physicsCfg := cfg.Physics
	if physicsCfg.FieldWidth == 0 {
		physicsCfg = physics.DefaultConfig()
	}

	matchCfg := cfg.Match
	if matchCfg.TickInterval == 0 {
		matchCfg = match.DefaultConfig()
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()
	sched := scheduler.New()

	return newWithDependencies(store, clk, rnd, sched, physicsCfg, matchCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	sched scheduler.Scheduler,
	physicsCfg physics.Config,
	matchCfg match.Config,
	logger *slog.Logger,
) *App {
	engine := physics.New(physicsCfg, rnd)
	sessionStore := session.New(store, clk, logger)
	broadcaster := router.NewBroadcaster(logger)
	controller := match.NewController(matchCfg, engine, sessionStore, sched, clk, broadcaster, logger)
	cmdRouter := router.New(sessionStore, controller, broadcaster, physicsCfg, logger)
	wsHandler := ws.NewHandler(cmdRouter, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Scheduler:   sched,
		Engine:      engine,
		Store:       sessionStore,
		Controller:  controller,
		Broadcaster: broadcaster,
		Router:      cmdRouter,
		WSHandler:   wsHandler,
	}
}
