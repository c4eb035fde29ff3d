// Package beneficiaries stores program enrolments.
package beneficiaries

import (
	"context"

	"github.com/vivamos/vivamos/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, b *models.Beneficiary) (*models.Beneficiary, error)
	Get(ctx context.Context, id int64) (*models.Beneficiary, error)
}
