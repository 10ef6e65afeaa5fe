package main

import (
	"fmt"

	"github.com/dfryer1193/memento/internal/config"
	"github.com/dfryer1193/memento/memento/application"
	"github.com/dfryer1193/memento/memento/domain"
	"github.com/dfryer1193/memento/memento/persistence"
	"github.com/dfryer1193/memento/shared/db"
	"github.com/dfryer1193/memento/shared/db/sqlite"
	"github.com/dfryer1193/memento/shared/llm"
	"github.com/rs/zerolog/log"
)

type configLoader func() (*config.Config, error)

// app holds the wired service and whatever needs closing on exit
type app struct {
	service *application.PostService
	close   func() error
}

func newApp(cfg *config.Config) (*app, error) {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	var generator application.ContentGenerator
	if cfg.Provider.APIKey != "" {
		provider, err := llm.NewChatProvider(cfg.LLMConfig())
		if err != nil {
			closeStore()
			return nil, err
		}
		generator = application.NewPromptGenerator(provider)
	}

	return &app{
		service: application.NewPostService(store, generator),
		close:   closeStore,
	}, nil
}

func openStore(cfg *config.Config) (domain.PostStore, func() error, error) {
	path := cfg.StoragePath()

	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		var database db.Database = sqlite.NewSQLiteDB(sqlite.NewSQLiteConfig(path))
		if err := database.Connect(); err != nil {
			return nil, nil, &domain.StorageError{Op: "connect", Path: path, Err: err}
		}
		log.Debug().Str("path", database.Path()).Msg("Using SQLite post store")
		return persistence.NewSQLitePostStore(database.DB()), database.Close, nil
	case config.DriverJSON:
		log.Debug().Str("path", path).Msg("Using JSON post store")
		return persistence.NewJSONPostStore(path), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
