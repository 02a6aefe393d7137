package main

import (
	"fmt"
	"path/filepath"

	"github.com/OCAP2/pinmap/internal/config"
	"github.com/OCAP2/pinmap/internal/model"
	"github.com/OCAP2/pinmap/internal/storage"
	"github.com/OCAP2/pinmap/internal/storage/memory"
	pgstorage "github.com/OCAP2/pinmap/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/pinmap/internal/storage/sqlite"
)

func boardFromConfig() model.Board {
	img := config.GetImage()
	return model.Board{
		Name:     AppName,
		ImageURL: img.URL,
		Width:    img.Width,
		Height:   img.Height,
	}
}

func createStorageBackend(rt *runtime, storageCfg config.StorageConfig) (storage.Backend, error) {
	board := boardFromConfig()

	switch storageCfg.Type {
	case "postgres":
		rt.Logger.Info("Postgres storage backend selected")
		return pgstorage.New(pgstorage.Dependencies{
			DB:               config.GetDBConfig(),
			Board:            board,
			Logger:           rt.Logger,
			DBLogger:         rt.zerologFor("database"),
			FallbackDumpPath: fallbackDumpPath(storageCfg, rt),
		}), nil

	case "sqlite":
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: storageCfg.SQLite.DumpInterval,
			DumpPath:     storageCfg.SQLite.DumpPath,
		}, board, rt.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		rt.Logger.Info("SQLite storage backend selected", "dumpPath", storageCfg.SQLite.DumpPath)
		return backend, nil

	case "memory", "":
		rt.Logger.Info("Memory storage backend selected")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// fallbackDumpPath is where the Postgres backend dumps its local SQLite fallback,
// next to the configured SQLite dump and stamped with the session start.
func fallbackDumpPath(storageCfg config.StorageConfig, rt *runtime) string {
	dir := filepath.Dir(storageCfg.SQLite.DumpPath)
	name := fmt.Sprintf("%s_fallback_%s.db", AppName, rt.SessionStart.Format("20060102_150405"))
	return filepath.Join(dir, name)
}
