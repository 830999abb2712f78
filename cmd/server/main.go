package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pitskhela0/pong-game/internal/api"
	"github.com/Pitskhela0/pong-game/internal/factory"
	"github.com/Pitskhela0/pong-game/internal/match"
	"github.com/Pitskhela0/pong-game/internal/physics"
	redisstorage "github.com/Pitskhela0/pong-game/internal/storage/redis"
)

type serverFlags struct {
	host        string
	port        int
	storageType string
	redisURL    string
	fieldWidth  float64
	fieldHeight float64
	tickRate    int
	winScore    int
	logLevel    string
}

func main() {
	flags := &serverFlags{}

	rootCmd := &cobra.Command{
		Use:   "pong-server",
		Short: "Authoritative pong game server",
		Long: `pong-server runs the authoritative real-time pong server.

Clients connect over websocket at /ws and drive the game with JSON
commands; the server simulates all physics and broadcasts state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&flags.host, "host", "", "Listen host (empty for all interfaces)")
	rootCmd.Flags().IntVar(&flags.port, "port", 8080, "Listen port")
	rootCmd.Flags().StringVar(&flags.storageType, "storage", envOrDefault("STORAGE_TYPE", "memory"), "Storage backend: memory, redis")
	rootCmd.Flags().StringVar(&flags.redisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis connection URL (required with --storage=redis)")
	rootCmd.Flags().Float64Var(&flags.fieldWidth, "field-width", 0, "Playing field width (0 for default)")
	rootCmd.Flags().Float64Var(&flags.fieldHeight, "field-height", 0, "Playing field height (0 for default)")
	rootCmd.Flags().IntVar(&flags.tickRate, "tick-rate", 0, "Simulation ticks per second (0 for default)")
	rootCmd.Flags().IntVar(&flags.winScore, "win-score", 0, "Points needed to win a match (0 for default)")
	rootCmd.Flags().StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(flags *serverFlags) error {
	logger := newLogger(flags.logLevel)
	slog.SetDefault(logger)

	physicsCfg := physics.DefaultConfig()
	if flags.fieldWidth > 0 {
		physicsCfg.FieldWidth = flags.fieldWidth
	}
	if flags.fieldHeight > 0 {
		physicsCfg.FieldHeight = flags.fieldHeight
	}

	matchCfg := match.DefaultConfig()
	if flags.tickRate > 0 {
		matchCfg.TickInterval = time.Second / time.Duration(flags.tickRate)
	}
	if flags.winScore > 0 {
		matchCfg.WinScore = flags.winScore
	}

	cfg := factory.Config{
		Physics:     physicsCfg,
		Match:       matchCfg,
		Logger:      logger,
		StorageType: flags.storageType,
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		if flags.redisURL == "" {
			logger.Error("--redis-url (or REDIS_URL) required with --storage=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = flags.redisURL
		cfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Persisted rooms from an earlier run have no surviving connections
	if err := app.Store.SweepPersisted(context.Background()); err != nil {
		logger.Error("failed to sweep persisted rooms", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handler := api.NewRouter(api.RouterConfig{
		Store:     app.Store,
		WSHandler: app.WSHandler,
		Logger:    logger,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = flags.host
	serverConfig.Port = flags.port
	server := api.NewServer(handler, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		// Stop match loops before cutting off the connections they
		// broadcast to
		app.Controller.Shutdown()
		app.Scheduler.Shutdown()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
