package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/server/models"
)

func validBeneficiaryInput() BeneficiaryInput {
	return BeneficiaryInput{
		FirstName:      "Rosa",
		FirstLastName:  "Mejia",
		DocumentType:   "DNI",
		DocumentNumber: " 0801-1975-00012 ",
		MunicipalityID: ptr(int64(110)),
		StatusID:       ptr(int64(1)),
		StartDate:      "2026-10-01",
		Latitude:       "14.0723",
		Longitude:      "-87.1921",
	}
}

func TestBeneficiaryCreate_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := newFakeRepoManager()
	s := NewBeneficiaryService(db, rm)

	got, err := s.Create(context.Background(), validBeneficiaryInput())
	require.NoError(t, err)

	assert.Equal(t, int64(3), got.ID)
	assert.Equal(t, int64(7), got.PersonID)
	assert.Equal(t, "2026-10-01", got.StartDate)
	require.NotNil(t, got.Person)
	require.NotNil(t, got.Person.DocumentNumber)
	assert.Equal(t, "0801-1975-00012", *got.Person.DocumentNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBeneficiaryCreate_StatusZeroIsAccepted(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	s := NewBeneficiaryService(db, newFakeRepoManager())

	in := validBeneficiaryInput()
	in.StatusID = ptr(int64(0))

	got, err := s.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Zero(t, got.StatusID)
}

func TestBeneficiaryCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BeneficiaryInput)
		field  string
	}{
		{"first name", func(in *BeneficiaryInput) { in.FirstName = "" }, "firstName"},
		{"document type", func(in *BeneficiaryInput) { in.DocumentType = "" }, "documentType"},
		{"document number", func(in *BeneficiaryInput) { in.DocumentNumber = "  " }, "documentNumber"},
		{"municipality", func(in *BeneficiaryInput) { in.MunicipalityID = nil }, "municipalityId"},
		{"status", func(in *BeneficiaryInput) { in.StatusID = nil }, "statusId"},
		{"start date missing", func(in *BeneficiaryInput) { in.StartDate = "" }, "startDate"},
		{"start date format", func(in *BeneficiaryInput) { in.StartDate = "01-10-2026" }, "startDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := newSQLMockDB(t)
			s := NewBeneficiaryService(db, newFakeRepoManager())

			in := validBeneficiaryInput()
			tt.mutate(&in)

			_, err := s.Create(context.Background(), in)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, tt.field, common.FieldOf(err))
		})
	}
}

func TestBeneficiaryCreate_DocumentConflict(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.persons.documents = map[string]bool{"0801-1975-00012": true}
	s := NewBeneficiaryService(db, rm)

	_, err := s.Create(context.Background(), validBeneficiaryInput())
	require.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "documentNumber", common.FieldOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBeneficiaryCreate_InsertFailureRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := newFakeRepoManager()
	rm.beneficiaries.createErr = errors.New("db error: fk")
	s := NewBeneficiaryService(db, rm)

	_, err := s.Create(context.Background(), validBeneficiaryInput())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBeneficiaryGet(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.beneficiaries.stored = map[int64]*models.Beneficiary{3: {ID: 3, PersonID: 7}}
	s := NewBeneficiaryService(db, rm)

	got, err := s.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.PersonID)

	_, err = s.Get(context.Background(), 4)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	rm.beneficiaries.getErr = errors.New("db error: x")
	_, err = s.Get(context.Background(), 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}
