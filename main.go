package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ojisan/apps/go-server/internal/config"
	"github.com/robalobadob/ojisan/apps/go-server/internal/faces"
	"github.com/robalobadob/ojisan/apps/go-server/internal/httpserver"
	"github.com/robalobadob/ojisan/apps/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	cat, err := faces.Load(cfg.FacesFile, cfg.WinVideo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load face pool")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore()
	go store.RunJanitor(ctx, mem, cfg.SweepInterval, cfg.IdleTTL)

	srv := httpserver.New(cfg, mem, cat)
	log.Info().Str("port", cfg.Port).Int("tiles", cfg.TileCount).Int("faces", cat.Stats()).Msg("starting go-server")
	if err := srv.Serve(ctx, cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

// setupLogging applies LOG_LEVEL and uses a console writer outside production.
func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
