package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/dbx"
	"github.com/vivamos/vivamos/internal/server/models"
	"github.com/vivamos/vivamos/internal/server/repositories/repomanager"
)

// BeneficiaryInput is the person and enrolment data of a new beneficiary.
type BeneficiaryInput struct {
	FirstName      string  `json:"firstName"`
	SecondName     *string `json:"secondName,omitempty"`
	ThirdName      *string `json:"thirdName,omitempty"`
	FirstLastName  string  `json:"firstLastName"`
	SecondLastName *string `json:"secondLastName,omitempty"`
	BirthDate      *string `json:"birthDate,omitempty"`
	Gender         *string `json:"gender,omitempty"`
	DocumentType   string  `json:"documentType"`
	DocumentNumber string  `json:"documentNumber"`
	Address        *string `json:"address,omitempty"`
	MunicipalityID *int64  `json:"municipalityId"`
	LocationID     *int64  `json:"locationId,omitempty"`
	Phone          *string `json:"phone,omitempty"`

	StatusID  *int64 `json:"statusId"`
	StartDate string `json:"startDate"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

func (in *BeneficiaryInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.FirstLastName = strings.TrimSpace(in.FirstLastName)
	in.SecondName = trimPtr(in.SecondName)
	in.ThirdName = trimPtr(in.ThirdName)
	in.SecondLastName = trimPtr(in.SecondLastName)
	in.BirthDate = trimPtr(in.BirthDate)
	in.Gender = trimPtr(in.Gender)
	in.DocumentType = strings.TrimSpace(in.DocumentType)
	in.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	in.Address = trimPtr(in.Address)
	in.Phone = trimPtr(in.Phone)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.Latitude = strings.TrimSpace(in.Latitude)
	in.Longitude = strings.TrimSpace(in.Longitude)
}

func (in BeneficiaryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.FirstLastName, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.BirthDate, validation.Date("2006-01-02")),
		validation.Field(&in.DocumentType, validation.Required, validation.Length(1, 15)),
		validation.Field(&in.DocumentNumber, validation.Required, validation.Length(1, 25)),
		validation.Field(&in.MunicipalityID, validation.NotNil),
		validation.Field(&in.StatusID, validation.NotNil),
		validation.Field(&in.StartDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&in.Latitude, validation.Length(0, 20)),
		validation.Field(&in.Longitude, validation.Length(0, 20)),
	)
}

// BeneficiaryService enrols people in the program.
type BeneficiaryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewBeneficiaryService(db *sql.DB, m repomanager.RepositoryManager) *BeneficiaryService {
	return &BeneficiaryService{db: db, repomanager: m}
}

// Create stores the person and the beneficiary in one transaction. A document
// number that is already registered is a conflict.
func (s *BeneficiaryService) Create(ctx context.Context, in BeneficiaryInput) (*models.Beneficiary, error) {
	in.normalize()
	if err := fieldError(in.Validate()); err != nil {
		return nil, err
	}

	found, err := s.repomanager.Persons(s.db).ExistsByDocument(ctx, in.DocumentNumber)
	if err != nil {
		return nil, fmt.Errorf("error checking document number: %w", err)
	}
	if found {
		return nil, common.NewConflictError("documentNumber", "document number already exists")
	}

	person := &models.Person{
		FirstName:      in.FirstName,
		SecondName:     in.SecondName,
		ThirdName:      in.ThirdName,
		FirstLastName:  in.FirstLastName,
		SecondLastName: in.SecondLastName,
		BirthDate:      in.BirthDate,
		Gender:         in.Gender,
		DocumentType:   &in.DocumentType,
		DocumentNumber: &in.DocumentNumber,
		Address:        in.Address,
		MunicipalityID: in.MunicipalityID,
		LocationID:     in.LocationID,
		Phone:          in.Phone,
	}

	var created *models.Beneficiary
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		p, err := s.repomanager.Persons(tx).Create(ctx, person)
		if err != nil {
			return err
		}

		created, err = s.repomanager.Beneficiaries(tx).Create(ctx, &models.Beneficiary{
			PersonID:  p.ID,
			StatusID:  *in.StatusID,
			StartDate: in.StartDate,
			Latitude:  in.Latitude,
			Longitude: in.Longitude,
		})
		if err != nil {
			return err
		}
		created.Person = p
		return nil
	})
	if err != nil {
		if conflict := conflictFromConstraint(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("error creating beneficiary: %w", err)
	}

	return created, nil
}

// Get returns the beneficiary with id and its person, or common.ErrorNotFound.
func (s *BeneficiaryService) Get(ctx context.Context, id int64) (*models.Beneficiary, error) {
	b, err := s.repomanager.Beneficiaries(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading beneficiary: %w", err)
	}
	return b, nil
}
