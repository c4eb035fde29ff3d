// Package persons declares the person repository and its PostgreSQL implementation.
package persons

import (
	"context"

	"github.com/vivamos/vivamos/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, person *models.Person) (*models.Person, error)
	ExistsByDocument(ctx context.Context, documentNumber string) (bool, error)
}
