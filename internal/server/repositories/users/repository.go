// Package users declares the account repository and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/vivamos/vivamos/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetUserByLogin(ctx context.Context, username string) (*models.Account, error)
	GetUserByEmail(ctx context.Context, email string) (*models.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]models.AccountView, error)
}
