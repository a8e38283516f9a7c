// cmd/cerebrum/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cerebrum/internal/ai"
	"cerebrum/internal/cognition"
	"cerebrum/internal/config"
	"cerebrum/internal/logging"
	"cerebrum/internal/storage"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFile)
	logger.Info().Msg("starting cerebrum...")

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	var oracle ai.Provider
	if cfg.OracleURL != "" {
		oracle = ai.NewHTTPProvider(cfg.OracleURL, cfg.OracleKey, cfg.OracleModel)
	} else {
		logger.Warn().Msg("no oracle endpoint configured, using canned fallback")
		oracle = ai.NewFallbackProvider()
	}

	throttle := config.NewThrottleFile(cfg.ThrottlePath)

	engineCfg := cognition.DefaultConfig()
	engineCfg.GoalPolicy.AutoApprove = cfg.AutoApproveGoals

	engine := cognition.NewEngine(engineCfg, cognition.Deps{
		Oracle:            oracle,
		GoalStore:         store,
		ConversationStore: store,
		Emotions:          cognition.NewDecayingEmotionProvider(0.2, nil),
		Throttle:          throttle.Load,
		Logger:            logger,
	})

	if err := engine.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("engine start failed")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down...")
	case <-ctx.Done():
	}

	engine.Stop()
	logger.Info().Msg("cerebrum exited cleanly")
}
