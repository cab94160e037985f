// Package sqlitestorage implements the storage.Backend interface on a SQLite
// file. It wraps the GORM backend; the SQLite-specific concerns are opening
// the file with the right pragmas and snapshotting it with VACUUM INTO.
package sqlitestorage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/OCAP2/fingerprint-editor/internal/database"
	"github.com/OCAP2/fingerprint-editor/internal/storage"
	gormstorage "github.com/OCAP2/fingerprint-editor/internal/storage/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	Path string // empty means an in-memory database
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	cfg Config
	log *slog.Logger
}

// New opens the SQLite database and prepares the embedded GORM backend.
func New(cfg Config, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, storage.Wrap("open", fmt.Errorf("failed to create database dir: %w", err))
		}
	}

	db, err := database.GetSqliteDBStandalone(cfg.Path)
	if err != nil {
		return nil, storage.Wrap("open", fmt.Errorf("failed to open SQLite DB: %w", err))
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: db, Logger: logger}),
		cfg:     cfg,
		log:     logger,
	}, nil
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}
	path := b.cfg.Path
	if path == "" {
		path = ":memory:"
	}
	b.log.Info("sqlite storage ready", "path", path)
	return nil
}

// Backup dumps the database to path.
func (b *Backend) Backup(path string) error {
	if err := b.Backend.Backup(path); err != nil {
		b.log.Error("sqlite backup failed", "path", path, "error", err)
		return err
	}
	b.log.Info("sqlite backup written", "path", path)
	return nil
}
