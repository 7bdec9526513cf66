package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/solo-server/internal/config"
	"github.com/robalobadob/wordle/apps/solo-server/internal/daily"
	"github.com/robalobadob/wordle/apps/solo-server/internal/dictcache"
	"github.com/robalobadob/wordle/apps/solo-server/internal/game"
	"github.com/robalobadob/wordle/apps/solo-server/internal/httpserver"
	"github.com/robalobadob/wordle/apps/solo-server/internal/store"
	"github.com/robalobadob/wordle/apps/solo-server/internal/wordapi"
	"github.com/robalobadob/wordle/apps/solo-server/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	list, err := words.Load(cfg.WordsAnswersFile, cfg.WordsAllowedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	validator, closeValidator, err := buildValidator(cfg, list)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up dictionary")
	}
	defer closeValidator()

	st := store.NewMemoryStore()
	srv, err := httpserver.New(st, httpserver.Deps{
		Provider:      buildProvider(cfg, list),
		Validator:     validator,
		Game:          game.Config{WordLength: words.Length, MaxAttempts: game.MaxAttempts, Policy: cfg.ValidationPolicy},
		Words:         list,
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
		LoadTimeout:   2 * cfg.LookupTimeout,
		ClientOrigin:  cfg.ClientOrigin,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go store.RunSweeper(ctx, st, cfg.SessionTTL, time.Minute, func(n int) {
		log.Info().Int("evicted", n).Int("live", st.Len()).Msg("swept idle sessions")
	})

	log.Info().
		Str("port", cfg.Port).
		Str("words", cfg.WordSource).
		Str("dictionary", cfg.DictionarySource).
		Str("policy", string(cfg.ValidationPolicy)).
		Msg("starting solo-server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func setupLogging(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// buildProvider picks where target words come from.
func buildProvider(cfg *config.Config, list *words.List) game.Provider {
	switch cfg.WordSource {
	case config.SourceLocal:
		return list
	case config.SourceDaily:
		return &daily.Provider{Answers: list.Answers(), Salt: cfg.DailySalt}
	}
	return wordapi.NewRandomWordClient(cfg.RandomWordURL, cfg.LookupTimeout)
}

// buildValidator picks the dictionary. The returned func releases it.
func buildValidator(cfg *config.Config, list *words.List) (game.Validator, func(), error) {
	noop := func() {}
	switch cfg.DictionarySource {
	case config.SourceNone:
		return nil, noop, nil
	case config.SourceLocal:
		return list, noop, nil
	}

	remote := wordapi.NewDictionaryClient(cfg.DictionaryURL, cfg.LookupTimeout)
	if cfg.CacheDSN == "" {
		return remote, noop, nil
	}
	cache, err := dictcache.Open(cfg.CacheDSN, remote)
	if err != nil {
		return nil, noop, err
	}
	return cache, func() {
		if err := cache.Close(); err != nil {
			log.Warn().Err(err).Msg("close dictionary cache")
		}
	}, nil
}
