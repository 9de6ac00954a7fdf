package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openreach/cms-server/internal/common"
	"github.com/openreach/cms-server/internal/dbx"
	"github.com/openreach/cms-server/internal/server/models"
	"github.com/openreach/cms-server/internal/server/rbac"
)

const userColumns = `id, email, name, password_hash, role, active,
	failed_attempts, lock_expiry, must_change_password, last_login_at,
	created_by, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `INSERT INTO users
		(id, email, name, password_hash, role, active, must_change_password, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, string(user.Role),
		user.Active, user.MustChangePassword, user.CreatedBy).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) UpdateLoginState(ctx context.Context, id string, state models.LoginState) error {
	query := `UPDATE users
		SET failed_attempts = $2, lock_expiry = $3, last_login_at = $4
		WHERE id = $1`

	return r.exec(ctx, query, id, state.FailedAttempts, state.LockExpiry, state.LastLoginAt)
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, hash string, mustChangePassword bool) error {
	query := `UPDATE users
		SET password_hash = $2, must_change_password = $3
		WHERE id = $1`

	return r.exec(ctx, query, id, hash, mustChangePassword)
}

func (r *PostgresRepository) UpdateRole(ctx context.Context, id string, role rbac.Role) error {
	return r.exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, string(role))
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, `UPDATE users SET active = $2 WHERE id = $1`, id, active)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUser(s scannable) (*models.User, error) {
	u := &models.User{}
	var role string
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.Active,
		&u.FailedAttempts, &u.LockExpiry, &u.MustChangePassword, &u.LastLoginAt,
		&u.CreatedBy, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.Role = rbac.Role(role)
	return u, nil
}
