// Package roles provides read access to the role catalogue.
package roles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/dbx"
	"github.com/vivamos/vivamos/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*models.Role, error)
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the role with id or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Role, error) {
	role := &models.Role{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.Description)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return role, nil
}
