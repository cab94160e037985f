// Package gormstorage implements the storage.Backend interface on top of GORM.
// The same backend serves Postgres and SQLite; only the dialector differs.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/OCAP2/fingerprint-editor/internal/database"
	"github.com/OCAP2/fingerprint-editor/internal/model"
	"github.com/OCAP2/fingerprint-editor/internal/model/convert"
	"github.com/OCAP2/fingerprint-editor/internal/storage"
	"github.com/OCAP2/fingerprint-editor/pkg/core"

	"gorm.io/gorm"
)

var errNotInitialized = errors.New("backend not initialized")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps    Dependencies
	dbReady bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{
		deps: deps,
	}
}

// Init runs schema migration.
// If no DB was injected via Dependencies, it creates its own postgres connection.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.GetPostgresDBStandalone()
		if err != nil {
			return storage.Wrap("connect", fmt.Errorf("failed to connect to postgres: %w", err))
		}
		sqlDB, err := db.DB()
		if err != nil {
			return storage.Wrap("connect", fmt.Errorf("failed to access sql interface: %w", err))
		}
		if err = sqlDB.Ping(); err != nil {
			return storage.Wrap("connect", fmt.Errorf("failed to validate connection: %w", err))
		}
		sqlDB.SetMaxOpenConns(10)
		b.deps.DB = db
	}

	if err := b.setupDB(); err != nil {
		return storage.Wrap("migrate", err)
	}
	b.dbReady = true
	return nil
}

func (b *Backend) setupDB() error {
	db := b.deps.DB
	for _, m := range model.DatabaseModels {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", m, err)
		}
	}
	b.deps.Logger.Debug("schema migrated",
		"dialect", db.Dialector.Name(),
		"tables", len(model.DatabaseModels))
	return nil
}

// Close closes the underlying connection pool.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return storage.Wrap("close", err)
	}
	b.dbReady = false
	return storage.Wrap("close", sqlDB.Close())
}

// DB exposes the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// InsertLocation writes one capture location row.
func (b *Backend) InsertLocation(ctx context.Context, loc core.Location) error {
	if !b.dbReady {
		return storage.Wrap("insert", errNotInitialized)
	}
	row := convert.CoreToLocation(loc)
	if err := b.deps.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return storage.Wrap("insert", err)
	}
	b.deps.Logger.Debug("location inserted",
		"id", row.ID,
		"name", row.Name,
		"floor", row.Floor)
	return nil
}

// QueryLocations returns the locations of one floor in insertion order.
func (b *Backend) QueryLocations(ctx context.Context, floor int) ([]core.Location, error) {
	if !b.dbReady {
		return nil, storage.Wrap("query", errNotInitialized)
	}
	var rows []model.CaptureLocation
	err := b.deps.DB.WithContext(ctx).
		Where("capture_location_floor = ?", floor).
		Order("capture_location_id").
		Find(&rows).Error
	if err != nil {
		return nil, storage.Wrap("query", err)
	}
	return convert.LocationsToCore(rows), nil
}

// Backup snapshots the database to path. Only SQLite databases support it.
func (b *Backend) Backup(path string) error {
	if !b.dbReady {
		return storage.Wrap("backup", errNotInitialized)
	}
	return storage.Wrap("backup", database.DumpDBToDisk(b.deps.DB, path))
}
