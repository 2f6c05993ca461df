package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numberguess/assets"
	"github.com/robalobadob/numberguess/internal/config"
	"github.com/robalobadob/numberguess/internal/game"
	"github.com/robalobadob/numberguess/internal/httpserver"
	"github.com/robalobadob/numberguess/internal/progress"
	"github.com/robalobadob/numberguess/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	difficulty, err := game.ParseDifficulty(cfg.DefaultDifficulty)
	if err != nil {
		log.Warn().Err(err).Msg("DEFAULT_DIFFICULTY ignored")
		difficulty = game.DefaultDifficulty
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs := store.OpenOrMemory(cfg.StoreOptions())
	defer docs.Close()

	tracker, err := progress.NewTracker(ctx, docs)
	if err != nil {
		log.Fatal().Err(err).Msg("load progress")
	}

	srv := httpserver.New(game.NewController(), tracker, httpserver.Options{
		LeaderboardSize:   cfg.LeaderboardSize,
		DefaultDifficulty: difficulty,
		Page:              assets.Page(),
	})
	log.Info().Str("addr", cfg.Addr).Str("store", cfg.StoreBackend).Msg("starting numberguess")
	if err := srv.Run(ctx, cfg.Addr); err != nil {
		log.Error().Err(err).Msg("server exited")
		return
	}
	log.Info().Msg("bye")
}
