package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Sahana-1004/HCI-CIA-2/config"
	"github.com/Sahana-1004/HCI-CIA-2/providers"
	"github.com/Sahana-1004/HCI-CIA-2/src/hub"
	"github.com/Sahana-1004/HCI-CIA-2/src/storage"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug().Err(err).Msg("no .env file, using environment")
	}
	cfg := config.Load()

	store := storage.NewMemStore()

	h := hub.New(logger)
	h.SetStore(store)
	go h.Run()
	defer h.Stop()

	// Chat history is optional: without Redis the relay runs standalone.
	if cfg.RedisEnabled {
		history := storage.NewHistory(cfg.Redis, logger)
		if err := history.Start(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, chat history disabled")
		} else {
			h.SetHistory(history)
			defer history.Close()
			logger.Info().Str("redis_addr", cfg.Redis.Addr).Msg("chat history enabled")
		}
	}

	app := fiber.New()
	api := providers.New(h, store, cfg, logger)
	api.RegisterRoutes(app)

	// Fiber v3 does not expose *fasthttp.RequestCtx, so the WebSocket
	// upgrade is dispatched ahead of the app handler.
	appHandler := app.Handler()
	wsHandler := api.FastHTTPHandler()
	srv := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Path()) == "/ws" {
				wsHandler(ctx)
				return
			}
			appHandler(ctx)
		},
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe(cfg.Addr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		if err := srv.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}
}
