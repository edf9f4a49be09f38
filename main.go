package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"selfplay/config"
	"selfplay/experiments"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	path := flag.String("config", "", "Path to a YAML config file (MCTS_* environment variables take precedence)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	level, _ := zerolog.ParseLevel(cfg.LogLevel) // Validated by Load
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dir, err := experiments.Run(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("experiment failed")
	}
	log.Info().Msgf("results stored in %s", dir)
}
