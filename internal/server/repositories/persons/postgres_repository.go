package persons

import (
	"context"
	"fmt"

	"github.com/vivamos/vivamos/internal/dbx"
	"github.com/vivamos/vivamos/internal/server/models"
)

// DocumentConstraint is the unique constraint on persons.document_number.
const DocumentConstraint = "persons_document_number_key"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Person) (*models.Person, error) {

	query :=
		`INSERT INTO persons (first_name, second_name, third_name, first_last_name, second_last_name,
		   birth_date, gender, document_type, document_number, address, municipality_id, location_id, phone)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.FirstName, p.SecondName, p.ThirdName, p.FirstLastName, p.SecondLastName,
		p.BirthDate, p.Gender, p.DocumentType, p.DocumentNumber, p.Address,
		p.MunicipalityID, p.LocationID, p.Phone).Scan(&p.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) ExistsByDocument(ctx context.Context, documentNumber string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM persons WHERE document_number = $1)`, documentNumber).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}
