package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/frahmantamala/office-ticketing/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

var _ auth.CredentialStore = (*Repository)(nil)

func (r *Repository) scanCredentials(ctx context.Context, query string, arg interface{}) (*auth.Credentials, error) {
	var c auth.Credentials
	row := r.db.WithContext(ctx).Raw(query, arg).Row()
	if err := row.Scan(&c.UserID, &c.PasswordHash, &c.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repository) GetCredentials(ctx context.Context, username string) (*auth.Credentials, error) {
	return r.scanCredentials(ctx, `SELECT id, password_hash, is_active FROM users WHERE username = ?`, username)
}

func (r *Repository) GetCredentialsByID(ctx context.Context, userID int64) (*auth.Credentials, error) {
	return r.scanCredentials(ctx, `SELECT id, password_hash, is_active FROM users WHERE id = ?`, userID)
}

// UpdatePasswordHash replaces the stored hash without touching any other
// profile column.
func (r *Repository) UpdatePasswordHash(ctx context.Context, userID int64, hash string, updatedBy *int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE users SET password_hash = ?, updated_at = ?, updated_by = ? WHERE id = ?`,
		hash, at, updatedBy, userID,
	)
	return res.RowsAffected > 0, res.Error
}
