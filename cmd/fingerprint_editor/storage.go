package main

import (
	"fmt"
	"log/slog"

	"github.com/OCAP2/fingerprint-editor/internal/config"
	"github.com/OCAP2/fingerprint-editor/internal/database"
	"github.com/OCAP2/fingerprint-editor/internal/storage"
	gormstorage "github.com/OCAP2/fingerprint-editor/internal/storage/gorm"
	"github.com/OCAP2/fingerprint-editor/internal/storage/memory"
	sqlitestorage "github.com/OCAP2/fingerprint-editor/internal/storage/sqlite"

	"github.com/rs/zerolog"
)

// initStorage creates and initializes the configured backend and bounds
// every call with the configured timeout.
func initStorage(cfg config.StorageConfig, zl zerolog.Logger, logger *slog.Logger) (storage.Backend, error) {
	backend, err := createStorageBackend(cfg, zl, logger)
	if err != nil {
		logger.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	if err := backend.Init(); err != nil {
		logger.Error("Failed to initialize storage backend", "error", err)
		_ = backend.Close()
		return nil, err
	}
	return storage.WithTimeout(backend, cfg.Timeout), nil
}

func createStorageBackend(cfg config.StorageConfig, zl zerolog.Logger, logger *slog.Logger) (storage.Backend, error) {
	switch cfg.Type {
	case "postgres":
		mgr := database.NewManager(zl, cfg.SQLite.Path)
		if err := mgr.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if mgr.ShouldSaveLocal {
			logger.Warn("Postgres unavailable, capture locations go to local SQLite", "path", cfg.SQLite.Path)
		}
		logger.Info("Postgres storage backend initialized")
		return gormstorage.New(gormstorage.Dependencies{DB: mgr.DB, Logger: logger}), nil

	case "sqlite":
		backend, err := sqlitestorage.New(sqlitestorage.Config{Path: cfg.SQLite.Path}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		logger.Info("SQLite storage backend initialized")
		return backend, nil

	case "memory":
		logger.Info("Memory storage backend initialized")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
