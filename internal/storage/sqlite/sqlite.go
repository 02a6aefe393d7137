// Package sqlitestorage implements the storage.Backend interface using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend; the only SQLite-specific concerns are creating the
// in-memory DB and the dump loop.
package sqlitestorage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/pinmap/internal/database"
	"github.com/OCAP2/pinmap/internal/model"
	gormstorage "github.com/OCAP2/pinmap/internal/storage/gorm"
	"gorm.io/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	DumpInterval time.Duration
	DumpPath     string // Path for periodic VACUUM INTO dumps
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      Config
	log      *slog.Logger
	stopChan chan struct{}
	stopped  chan struct{}
}

// New creates a new SQLite storage backend.
func New(cfg Config, board model.Board, logger *slog.Logger) (*Backend, error) {
	db, err := database.GetSqliteDB("")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:     db,
			Logger: logger,
			Board:  board,
		}),
		db:  db,
		cfg: cfg,
		log: logger.With("component", "sqlite"),
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.stopChan = make(chan struct{})
		b.stopped = make(chan struct{})
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine, writes a final dump and closes the GORM backend.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.stopped
		b.stopChan = nil
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	if b.cfg.DumpPath != "" {
		if err := b.Dump(); err != nil {
			return err
		}
	}
	return nil
}

// Dump writes a point-in-time snapshot of the database to DumpPath.
func (b *Backend) Dump() error {
	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
		return err
	}
	b.log.Debug("Dumped to disk", "path", b.cfg.DumpPath, "duration", time.Since(start))
	return nil
}

// dumpLoop periodically dumps the in-memory SQLite database to disk.
// VACUUM INTO creates a point-in-time snapshot, so writers are never paused.
func (b *Backend) dumpLoop() {
	defer close(b.stopped)

	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Dump(); err != nil {
				b.log.Error("Error dumping to disk", "error", err)
			}
		}
	}
}
