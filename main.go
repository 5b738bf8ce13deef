package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/anagram-server/internal/catalogdb"
	"github.com/robalobadob/anagram-server/internal/config"
	"github.com/robalobadob/anagram-server/internal/httpserver"
	"github.com/robalobadob/anagram-server/internal/store"
	"github.com/robalobadob/anagram-server/internal/transport"
	"github.com/robalobadob/anagram-server/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, dict := loadWords(ctx, cfg)
	log.Info().Int("targets", cat.Len()).Int("dictionary", len(dict)).Msg("word lists loaded")

	srv := httpserver.New(ctx, httpserver.Deps{
		Store:   store.NewMemoryStore(),
		Source:  transport.NewPusher(cfg.Pusher),
		Catalog: cat,
		Dict:    dict,
		Config:  cfg,
	})
	log.Info().Str("port", cfg.Port).Str("seed", cfg.SeedMode).Msg("starting anagram-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// loadWords reads the catalogs from SQLite (WORDS_DB) or the text lists. Any
// failure falls back to the built-in catalog so the server stays playable.
func loadWords(ctx context.Context, cfg config.Config) (*words.Catalog, words.Dictionary) {
	var (
		cat  *words.Catalog
		dict words.Dictionary
		err  error
	)
	if cfg.WordsDB != "" {
		cat, dict, err = loadFromDB(ctx, cfg)
	} else {
		cat, dict, err = words.Load(cfg.Words)
	}
	if err != nil {
		log.Warn().Err(err).Msg("word lists unavailable, using fallback catalog")
		return words.Fallback()
	}
	return cat, dict
}

// loadFromDB imports the text lists into an empty database, then loads from it.
func loadFromDB(ctx context.Context, cfg config.Config) (*words.Catalog, words.Dictionary, error) {
	db, err := catalogdb.Open(cfg.WordsDB)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return nil, nil, err
	}
	n, _, err := db.Counts(ctx)
	if err != nil {
		return nil, nil, err
	}
	if n == 0 {
		targets, list, err := words.Read(cfg.Words)
		if err != nil {
			return nil, nil, err
		}
		if len(targets) == 0 {
			return nil, nil, errors.New("no target words to import")
		}
		if err := db.Import(ctx, targets, list); err != nil {
			return nil, nil, err
		}
		log.Info().Str("db", cfg.WordsDB).Int("targets", len(targets)).Int("dictionary", len(list)).Msg("word lists imported")
	}
	return db.Load(ctx)
}
