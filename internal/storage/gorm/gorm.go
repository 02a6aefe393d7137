// Package gormstorage implements storage.Backend on any GORM dialect.
// Pin rows are written synchronously; audit rows are queued and written in batches by
// a background goroutine.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OCAP2/pinmap/internal/database"
	"github.com/OCAP2/pinmap/internal/model"
	"github.com/OCAP2/pinmap/internal/model/convert"
	"github.com/OCAP2/pinmap/internal/queue"
	"github.com/OCAP2/pinmap/internal/storage"
	"github.com/OCAP2/pinmap/pkg/core"
	"gorm.io/gorm"
)

const defaultFlushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger

	// Board is seeded on an empty database.
	Board model.Board

	// FlushInterval is how often queued audit rows are written. Defaults to 2s.
	FlushInterval time.Duration
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps     Dependencies
	log      *slog.Logger
	changes  *queue.Queue[model.PinChange]
	stopChan chan struct{}
	done     sync.WaitGroup
	now      func() time.Time
}

var _ storage.Backend = (*Backend)(nil)

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	return &Backend{
		deps:    deps,
		log:     log.With("component", "storage", "dialect", deps.DB.Dialector.Name()),
		changes: queue.New[model.PinChange](),
		now:     time.Now,
	}
}

// Init runs schema migration and starts the audit writer goroutine.
func (b *Backend) Init() error {
	if err := database.Migrate(b.deps.DB, b.deps.Board); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.done.Add(1)
	go b.writeChanges()
	return nil
}

// Close stops the writer goroutine after a last flush.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		b.done.Wait()
		b.stopChan = nil
	}
	return nil
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// ListPins returns every pin ordered by id.
func (b *Backend) ListPins(ctx context.Context) ([]core.Pin, error) {
	var rows []model.Pin
	if err := b.deps.DB.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list pins: %w", err)
	}
	return convert.PinsToCore(rows), nil
}

// CreatePin inserts a pin and names it after its new id.
func (b *Backend) CreatePin(ctx context.Context, x, y float64) (core.Pin, error) {
	row := convert.CoreToPin(core.Pin{X: x, Y: y})

	err := b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		row.Name = storage.DefaultName(int64(row.ID))
		return tx.Model(&row).Update("name", row.Name).Error
	})
	if err != nil {
		return core.Pin{}, fmt.Errorf("create pin: %w", err)
	}

	pin := convert.PinToCore(row)
	b.changes.Push(convert.Change(model.ActionCreate, pin, b.now()))
	return pin, nil
}

// RenamePin sets the name of pin id.
func (b *Backend) RenamePin(ctx context.Context, id int64, name string) (core.Pin, error) {
	var row model.Pin

	err := b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			return err
		}
		row.Name = name
		return tx.Model(&row).Update("name", name).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.Pin{}, storage.ErrPinNotFound
	}
	if err != nil {
		return core.Pin{}, fmt.Errorf("rename pin %d: %w", id, err)
	}

	pin := convert.PinToCore(row)
	b.changes.Push(convert.Change(model.ActionRename, pin, b.now()))
	return pin, nil
}

// Changes returns the audit rows written so far for pin id, oldest first.
func (b *Backend) Changes(ctx context.Context, id int64) ([]model.PinChange, error) {
	var rows []model.PinChange
	err := b.deps.DB.WithContext(ctx).Where("pin_id = ?", id).Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list changes for pin %d: %w", id, err)
	}
	return rows, nil
}

// Flush writes all queued audit rows now.
func (b *Backend) Flush() error {
	items := b.changes.GetAndEmpty()
	if len(items) == 0 {
		return nil
	}
	start := time.Now()
	if err := b.deps.DB.CreateInBatches(items, 500).Error; err != nil {
		// put them back for the next cycle
		b.changes.Push(items...)
		return fmt.Errorf("write %d pin changes: %w", len(items), err)
	}
	b.log.Debug("Wrote pin changes", "count", len(items), "duration", time.Since(start))
	return nil
}

func (b *Backend) writeChanges() {
	defer b.done.Done()

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			if err := b.Flush(); err != nil {
				b.log.Error("Failed to write pin changes on close", "error", err)
			}
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.log.Error("Failed to write pin changes", "error", err)
			}
		}
	}
}
