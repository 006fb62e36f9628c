package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/staffdir/apiserver/types"
)

// AdminRepository handles persistence for admin accounts.
type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByID(ctx context.Context, id int) (types.Admin, error) {
	const query = `
		SELECT id, username, password_hash, created_at, updated_at
		FROM admins
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (types.Admin, error) {
	const query = `
		SELECT id, username, password_hash, created_at, updated_at
		FROM admins
		WHERE username = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

// First returns any existing admin, or ErrNotFound when the table is
// empty. Used by the bootstrap seeding check.
func (r *AdminRepository) First(ctx context.Context) (types.Admin, error) {
	const query = `
		SELECT id, username, password_hash, created_at, updated_at
		FROM admins
		ORDER BY id
		LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

func (r *AdminRepository) Create(ctx context.Context, admin types.Admin) (types.Admin, error) {
	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	const query = `
		INSERT INTO admins (username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		admin.Username,
		admin.PasswordHash,
		admin.CreatedAt,
		admin.UpdatedAt,
	).Scan(&admin.ID); err != nil {
		return types.Admin{}, err
	}
	return admin, nil
}

func (r *AdminRepository) scanOne(row *sql.Row) (types.Admin, error) {
	var admin types.Admin
	err := row.Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Admin{}, ErrNotFound
		}
		return types.Admin{}, err
	}
	return admin, nil
}
