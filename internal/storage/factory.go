// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/OCAP2/acmi/internal/config"
	"github.com/OCAP2/acmi/internal/database"
	"github.com/OCAP2/acmi/internal/influx"
	gormstorage "github.com/OCAP2/acmi/internal/storage/gorm"
	"github.com/OCAP2/acmi/internal/storage/memory"
	"github.com/rs/zerolog"
)

// Options carries what the non-memory backends need beyond StorageConfig.
type Options struct {
	Logger *slog.Logger
	// DBLogger receives database and InfluxDB client messages.
	DBLogger zerolog.Logger
	DB       config.DBConfig
	Influx   config.InfluxConfig
}

// NewBackend creates a storage backend based on configuration. Backends that
// need a connection are connected here but not initialized; callers still
// call Init.
func NewBackend(cfg config.StorageConfig, opts Options) (Backend, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(cfg.Memory), nil
	case "sqlite":
		if cfg.SQLite.Path != "" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		mgr := database.NewManager(opts.DBLogger)
		if err := mgr.ConnectSQLite(cfg.SQLite.Path); err != nil {
			return nil, err
		}
		return newGorm(cfg, opts, mgr), nil
	case "postgres":
		mgr := database.NewManager(opts.DBLogger)
		if err := mgr.ConnectPostgres(opts.DB); err != nil {
			return nil, err
		}
		return newGorm(cfg, opts, mgr), nil
	case "influx":
		return influx.NewManager(opts.Influx, cfg.BatchSize, opts.DBLogger), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

func newGorm(cfg config.StorageConfig, opts Options, mgr *database.Manager) *gormstorage.Backend {
	return gormstorage.New(gormstorage.Dependencies{
		Manager:       mgr,
		Logger:        opts.Logger,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
	})
}
