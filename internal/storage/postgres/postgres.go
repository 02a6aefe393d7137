// Package postgres implements the storage.Backend interface on PostgreSQL through
// GORM. When Postgres cannot be reached it falls back to an in-memory SQLite database
// and dumps it to disk on close, so pins created while offline are not lost.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/OCAP2/pinmap/internal/config"
	"github.com/OCAP2/pinmap/internal/database"
	"github.com/OCAP2/pinmap/internal/model"
	gormstorage "github.com/OCAP2/pinmap/internal/storage/gorm"
	"github.com/rs/zerolog"
)

// Dependencies holds all dependencies for the Postgres storage backend.
type Dependencies struct {
	DB     config.DBConfig
	Board  model.Board
	Logger *slog.Logger
	// DBLogger receives connection diagnostics from the database manager.
	DBLogger zerolog.Logger
	// FallbackDumpPath is where the SQLite fallback is written on close.
	FallbackDumpPath string
}

// Backend implements storage.Backend on the database chosen by database.Manager.
type Backend struct {
	*gormstorage.Backend
	deps    Dependencies
	manager *database.Manager
}

// New creates a new Postgres storage backend. No connection is made until Init.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{deps: deps}
}

// Init connects, migrates the schema and starts the GORM backend.
func (b *Backend) Init() error {
	b.manager = database.NewManager(b.deps.DBLogger)
	if err := b.manager.Connect(b.deps.DB); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	b.manager.SqliteFilePath = b.deps.FallbackDumpPath

	if b.manager.ShouldSaveLocal {
		b.deps.Logger.Warn("Postgres unavailable, storing pins in local SQLite", "dumpPath", b.deps.FallbackDumpPath)
	}

	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:     b.manager.DB,
		Logger: b.deps.Logger,
		Board:  b.deps.Board,
	})
	return b.Backend.Init()
}

// Close flushes pending writes, dumps the fallback database if one is in use and
// closes the connection.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	if b.manager.ShouldSaveLocal && b.manager.SqliteFilePath != "" {
		if err := b.manager.DumpMemoryToDisk(); err != nil {
			b.deps.Logger.Error("Failed to dump fallback database", "error", err)
		}
	}
	return b.manager.Close()
}

// Local reports whether the backend fell back to SQLite.
func (b *Backend) Local() bool {
	return b.manager != nil && b.manager.ShouldSaveLocal
}
