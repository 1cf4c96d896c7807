package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/office-ticketing/internal/database"
	"github.com/frahmantamala/office-ticketing/internal/report"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// sqlxDrivers maps the configured store onto the driver name sqlx uses to
// pick a bind style.
var sqlxDrivers = map[string]string{
	database.DriverSQLite:   "sqlite3",
	database.DriverPostgres: "pgx",
	database.DriverMySQL:    "mysql",
}

type Repository struct {
	db *sqlx.DB
}

// NewRepository shares the connection pool of gormDB.
func NewRepository(gormDB *gorm.DB) (*Repository, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return &Repository{db: sqlx.NewDb(sqlDB, sqlxDrivers[database.DriverName(gormDB)])}, nil
}

// where renders the role scope and the category and date narrowing of f.
func where(f ticket.Filter) (string, []interface{}) {
	clauses := []string{"1 = 1"}
	var args []interface{}

	if !f.IncludeAll {
		if f.CreatedBy != nil {
			clauses = append(clauses, "t.created_by_user_id = ?")
			args = append(args, *f.CreatedBy)
		}
		if f.AssignedTo != nil {
			clauses = append(clauses, "t.assigned_to_user_id = ?")
			args = append(args, *f.AssignedTo)
		}
	}
	if f.CategoryID != nil {
		clauses = append(clauses, "t.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.From != nil {
		clauses = append(clauses, "t.created_at >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		clauses = append(clauses, "t.created_at <= ?")
		args = append(args, f.To.UTC())
	}
	return strings.Join(clauses, " AND "), args
}

type groupRow struct {
	Grp   int   `db:"grp"`
	Total int64 `db:"total"`
}

func (r *Repository) countBy(ctx context.Context, column string, f ticket.Filter) ([]groupRow, error) {
	cond, args := where(f)
	query := r.db.Rebind(fmt.Sprintf(
		"SELECT t.%s AS grp, COUNT(*) AS total FROM tickets t WHERE %s GROUP BY t.%s",
		column, cond, column))

	var rows []groupRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) CountByStatus(ctx context.Context, f ticket.Filter) (map[ticket.Status]int64, error) {
	rows, err := r.countBy(ctx, "status", f)
	if err != nil {
		return nil, err
	}
	counts := make(map[ticket.Status]int64, len(rows))
	for _, row := range rows {
		counts[ticket.Status(row.Grp)] = row.Total
	}
	return counts, nil
}

func (r *Repository) CountByPriority(ctx context.Context, f ticket.Filter) (map[ticket.Priority]int64, error) {
	rows, err := r.countBy(ctx, "priority", f)
	if err != nil {
		return nil, err
	}
	counts := make(map[ticket.Priority]int64, len(rows))
	for _, row := range rows {
		counts[ticket.Priority(row.Grp)] = row.Total
	}
	return counts, nil
}

// CountByCategory lists categories with at least one ticket, largest first.
func (r *Repository) CountByCategory(ctx context.Context, f ticket.Filter) ([]report.CategoryCount, error) {
	cond, args := where(f)
	query := r.db.Rebind(
		"SELECT c.name AS name, COUNT(t.id) AS total FROM tickets t " +
			"JOIN categories c ON c.id = t.category_id " +
			"WHERE " + cond + " GROUP BY c.name ORDER BY total DESC, c.name ASC")

	counts := []report.CategoryCount{}
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, err
	}
	return counts, nil
}

// CountOverdue counts unresolved tickets whose due date lies before now.
func (r *Repository) CountOverdue(ctx context.Context, f ticket.Filter, now time.Time) (int64, error) {
	cond, args := where(f)
	query := r.db.Rebind(
		"SELECT COUNT(*) FROM tickets t WHERE " + cond +
			" AND t.due_date IS NOT NULL AND t.due_date < ? AND t.status NOT IN (?, ?)")
	args = append(args, now.UTC(), int(ticket.StatusResolved), int(ticket.StatusClosed))

	var n int64
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}
