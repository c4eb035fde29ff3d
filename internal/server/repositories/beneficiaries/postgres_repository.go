package beneficiaries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/dbx"
	"github.com/vivamos/vivamos/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, b *models.Beneficiary) (*models.Beneficiary, error) {

	query :=
		`INSERT INTO beneficiaries (person_id, status_id, start_date, latitude, longitude)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		b.PersonID, b.StatusID, b.StartDate, b.Latitude, b.Longitude).Scan(&b.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return b, nil
}

// Get loads a beneficiary together with its person.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Beneficiary, error) {

	query :=
		`SELECT b.id, b.person_id, b.status_id, b.start_date::text, b.latitude, b.longitude,
		   p.first_name, p.second_name, p.third_name, p.first_last_name, p.second_last_name,
		   p.birth_date::text, p.gender, p.document_type, p.document_number, p.address,
		   p.municipality_id, p.location_id, p.phone
		 FROM beneficiaries b
		 JOIN persons p ON p.id = b.person_id
		 WHERE b.id = $1
		 `

	b := &models.Beneficiary{Person: &models.Person{}}
	p := b.Person

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.PersonID, &b.StatusID, &b.StartDate, &b.Latitude, &b.Longitude,
		&p.FirstName, &p.SecondName, &p.ThirdName, &p.FirstLastName, &p.SecondLastName,
		&p.BirthDate, &p.Gender, &p.DocumentType, &p.DocumentNumber, &p.Address,
		&p.MunicipalityID, &p.LocationID, &p.Phone)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p.ID = b.PersonID
	return b, nil
}
