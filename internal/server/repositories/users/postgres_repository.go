package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/dbx"
	"github.com/vivamos/vivamos/internal/server/models"
)

// Constraint names from the initial migration; services map violations of
// these to a conflicting field.
const (
	UsernameConstraint = "accounts_username_key"
	EmailConstraint    = "accounts_email_key"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (person_id, username, email, password_hash, registered_at, status_id, role_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.PersonID, account.Username, account.Email, account.PasswordHash,
		account.RegisteredAt, account.StatusID, account.RoleID).Scan(&account.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

const selectAccount = `SELECT a.id, a.person_id, a.username, a.email, a.password_hash,
		 a.registered_at::text, a.status_id, a.role_id, r.name
		 FROM accounts a
		 JOIN roles r ON r.id = a.role_id
		 `

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, username string) (*models.Account, error) {
	return r.getOne(ctx, selectAccount+`WHERE a.username = $1`, username)
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, selectAccount+`WHERE a.email = $1`, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.PersonID, &a.Username, &a.Email, &a.PasswordHash,
		&a.RegisteredAt, &a.StatusID, &a.RoleID, &a.RoleName)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`, username)
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

// List returns every account, newest first, with its role name.
func (r *PostgresRepository) List(ctx context.Context) ([]models.AccountView, error) {
	query :=
		`SELECT a.id, a.username, a.email, a.registered_at::text, a.status_id, a.role_id, r.name
		 FROM accounts a
		 JOIN roles r ON r.id = a.role_id
		 ORDER BY a.id DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.AccountView
	for rows.Next() {
		var v models.AccountView
		if err := rows.Scan(&v.ID, &v.Username, &v.Email, &v.RegisteredAt, &v.StatusID, &v.RoleID, &v.RoleName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
