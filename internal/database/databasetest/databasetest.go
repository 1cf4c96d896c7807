// Package databasetest opens migrated in-memory sqlite databases for tests.
package databasetest

import (
	"context"
	"io"
	"log/slog"

	"github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh database with the production schema applied. Each
// call gets its own store; the pool is pinned to one connection so the
// in-memory database lives as long as the returned handle.
func Open() (*gorm.DB, error) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.Open(context.Background(), internal.DatabaseConfig{
		Driver:       database.DriverSQLite,
		Source:       "file::memory:?_foreign_keys=on",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, quiet)
	if err != nil {
		return nil, err
	}
	db.Logger = db.Logger.LogMode(logger.Silent)

	if err := database.Migrate(context.Background(), db, quiet, false); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}
