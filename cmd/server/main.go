package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/proxydeck/backend/config"
	"github.com/proxydeck/backend/src/api"
	"github.com/proxydeck/backend/src/bus"
	"github.com/proxydeck/backend/src/notify"
	"github.com/proxydeck/backend/src/store"
)

func main() {
	// A missing .env file is fine; env vars win either way.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	logger := setupLogger(cfg)
	clock := clockwork.NewRealClock()

	hub := bus.New(logger, clock)
	go hub.Run()

	st, closeStore := setupStore(cfg, logger)
	defer closeStore()

	notifier := notify.New(hub, clock, logger)
	handler := api.New(hub, notifier, st, logger)

	app := fiber.New()
	handler.RegisterRoutes(app)

	srv := &fasthttp.Server{
		Handler: routeWebSocket(app.Handler(), handler.FastHTTPHandler()),
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("server listening")
		if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	waitForShutdown(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	hub.Stop()
	logger.Info().Msg("shutdown complete")
}

// routeWebSocket intercepts the /ws path for the raw upgrade handler and
// passes everything else to the Fiber app.
func routeWebSocket(app, ws fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) == "/ws" {
			ws(ctx)
			return
		}
		app(ctx)
	}
}

func setupLogger(cfg *config.ServerConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.DevLog {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return logger
}

// setupStore probes Redis and falls back to the file store when it is
// disabled or unreachable. Fallback is non-fatal: the backend runs
// standalone on local files.
func setupStore(cfg *config.ServerConfig, logger zerolog.Logger) (store.Store, func()) {
	if cfg.UseRedis {
		rcfg := store.RedisConfigFromEnv()
		rs := store.NewRedisStore(rcfg, logger)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rs.Ping(ctx)
		cancel()
		if err == nil {
			logger.Info().Str("redis_addr", rcfg.Addr).Msg("using redis state store")
			return rs, func() { rs.Close() }
		}
		logger.Warn().Err(err).Msg("redis unavailable, falling back to file store")
		rs.Close()
	}

	fs, err := store.NewFileStore(cfg.DataDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("file store init failed")
	}
	logger.Info().Str("dir", cfg.DataDir).Msg("using file state store")
	return fs, func() {}
}

func waitForShutdown(logger zerolog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info().Msg("shutdown signal received")
}
