// Package database owns the SQLite connection lifecycle and the
// single-writer discipline for the event store.
package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"weblytics/internal/config"
)

// Manager wraps the gorm connection with migration helpers. Created once
// at process start and held for the process lifetime.
type Manager struct {
	db     *gorm.DB
	logger *slog.Logger
}

// writeMu serializes all writes. SQLite allows many readers but only one
// effective writer; the discipline is enforced here at the storage
// boundary so the aggregation core stays lock-free.
var writeMu sync.Mutex

// NewManager opens the SQLite database in WAL mode with a busy timeout and
// the configured connection pool sizes.
func NewManager(cfg *config.Config, log *slog.Logger) (*Manager, error) {
	path := cfg.GetDatabasePath()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.GetMaxOpenConns())
	sqlDB.SetMaxIdleConns(cfg.GetMaxIdleConns())

	log.Info("database initialized", slog.String("path", path))
	return &Manager{db: db, logger: log}, nil
}

// GetConnection returns the shared gorm handle. Reads may use it
// concurrently; writes must go through PerformWrite.
func (m *Manager) GetConnection() *gorm.DB {
	return m.db
}

// Migrate creates the given tables. The model list is supplied by the
// application wiring so this package stays a leaf.
func (m *Manager) Migrate(models ...any) error {
	err := m.db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(models...)
	})
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// PerformWrite runs fn in a transaction while holding the process-wide
// write lock.
func PerformWrite(log *slog.Logger, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	writeMu.Lock()
	defer writeMu.Unlock()

	if err := db.Transaction(fn); err != nil {
		log.Error("write transaction failed", slog.Any("error", err))
		return err
	}
	return nil
}
