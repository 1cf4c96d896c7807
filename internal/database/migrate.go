package database

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/frahmantamala/office-ticketing/db"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

const migrationTable = "schema_migrations"

func gooseDialect(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return "sqlite3", nil
	case DriverPostgres:
		return "postgres", nil
	case DriverMySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

// Migrate runs the embedded migrations for the dialect of gdb. With rollback
// set it reverts the latest applied version instead.
func Migrate(ctx context.Context, gdb *gorm.DB, logger *slog.Logger, rollback bool) error {
	driver := DriverName(gdb)
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	goose.SetBaseFS(db.Migrations)
	goose.SetTableName(migrationTable)
	goose.SetLogger(gooseLogger{logger: logger})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose: %w", err)
	}

	dir := path.Join("migrations", driver)
	if rollback {
		if err := goose.DownContext(ctx, sqlDB, dir); err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
		return nil
	}

	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
