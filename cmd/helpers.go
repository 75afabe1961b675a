package cmd

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/knagata/kadai/internal/storage"
	"github.com/knagata/kadai/internal/task"
)

// openService opens the configured database and returns the workflow service
// plus a cleanup function. CLI subcommands log nothing unless --verbose.
func openService() (*task.Service, func(), error) {
	cfg := GetConfig()

	level := zerolog.ErrorLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.NewConsoleWriter()).Level(level)

	store, err := storage.Open(cfg.Database.Path, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open database at %s: %w", cfg.Database.Path, err)
	}

	return task.NewService(store), func() { _ = store.Close() }, nil
}
