// Package database opens the relational store behind gorm and keeps its
// schema current.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/office-ticketing/internal"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// NowUTC is the clock gorm uses for autoCreateTime/autoUpdateTime. Keeping every
// timestamp in UTC keeps created_at ordering stable on sqlite, where times are
// stored as text.
func NowUTC() time.Time {
	return time.Now().UTC()
}

func dialector(cfg internal.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return sqlite.Open(cfg.Source), nil
	case DriverPostgres:
		return postgres.New(postgres.Config{DSN: cfg.Source}), nil
	case DriverMySQL:
		return mysql.New(mysql.Config{
			DSN:                       cfg.Source,
			SkipInitializeWithVersion: true,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open connects to the configured store, applies pool settings and verifies
// the connection.
func Open(ctx context.Context, cfg internal.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         NewGormLogger(logger, 200*time.Millisecond),
		NowFunc:        NowUTC,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	pingCtx, cancel := internal.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Debug("database connection established", "driver", cfg.Driver)
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// DriverName reports which of the supported drivers db was opened with.
func DriverName(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "postgres":
		return DriverPostgres
	case "mysql":
		return DriverMySQL
	default:
		return DriverSQLite
	}
}
