package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"play4peace-server/internal/api"
	"play4peace-server/internal/auth"
	"play4peace-server/internal/config"
	"play4peace-server/internal/core"
	database "play4peace-server/internal/db"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if isatty.IsTerminal(os.Stdout.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}

	cfg, v, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	config.SetupLogging(cfg.LogLevel)
	config.Watch(v)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Storage.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}

	var games core.GameRepository = database.NewGameStore(db)
	if cfg.Storage.Driver == "memory" {
		games, err = database.NewMemoryGameStore()
		if err != nil {
			log.Fatal().Err(err).Msg("memory store")
		}
	}

	media := afero.NewBasePathFs(afero.NewOsFs(), cfg.Media.Dir)
	if err := media.MkdirAll("photos", 0o755); err != nil {
		log.Fatal().Err(err).Msg("media dir")
	}

	users, err := core.NewUsers(database.NewUserStore(db), games, cfg.Cache.DisplayNames)
	if err != nil {
		log.Fatal().Err(err).Msg("users")
	}
	users.GrantAdmin(cfg.Auth.Admins...)

	hub := core.NewHub()
	services := api.Services{
		Roster:        core.NewRoster(games, hub, cfg.Roster.MaxAttempts),
		Games:         core.NewGames(games),
		Users:         users,
		Announcements: core.NewAnnouncements(database.NewAnnouncementStore(db)),
		Photos:        core.NewPhotos(database.NewPhotoStore(db), media, cfg.Media.BaseURL),
		Hub:           hub,
		Tokens:        auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL),
	}

	if cfg.Seed.Enabled {
		data := core.DefaultSeed(time.Now())
		if cfg.Seed.File != "" {
			if data, err = core.LoadSeed(cfg.Seed.File); err != nil {
				log.Fatal().Err(err).Str("file", cfg.Seed.File).Msg("load seed")
			}
		}
		if err := core.Seed(ctx, services.Games, services.Announcements, data); err != nil {
			log.Error().Err(err).Msg("seed")
		}
	}

	server := api.NewServer(services, cfg.CORS.Origins)
	if err := api.Serve(ctx, cfg.Addr, cfg.MaxConns, server.Router()); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
	log.Info().Msg("shut down")
}
