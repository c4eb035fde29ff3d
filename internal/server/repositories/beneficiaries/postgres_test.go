package beneficiaries

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+beneficiaries\s*\(person_id,\s*status_id,\s*start_date,\s*latitude,\s*longitude\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id\s*$`
	mock.ExpectQuery(q).
		WithArgs(int64(4), int64(1), "2026-10-16", "14.0723", "-87.1921").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(8)))

	got, err := repo.Create(context.Background(), &models.Beneficiary{
		PersonID: 4, StatusID: 1, StartDate: "2026-10-16", Latitude: "14.0723", Longitude: "-87.1921",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+beneficiaries`).WillReturnError(errors.New("fk violation"))

	_, err := repo.Create(context.Background(), &models.Beneficiary{PersonID: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: fk violation")
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+b\.id,.*FROM\s+beneficiaries\s+b\s+JOIN\s+persons\s+p\s+ON\s+p\.id\s*=\s*b\.person_id\s+WHERE\s+b\.id\s*=\s*\$1$`
	cols := []string{"id", "person_id", "status_id", "start_date", "latitude", "longitude",
		"first_name", "second_name", "third_name", "first_last_name", "second_last_name",
		"birth_date", "gender", "document_type", "document_number", "address",
		"municipality_id", "location_id", "phone"}

	mock.ExpectQuery(q).WithArgs(int64(8)).WillReturnRows(sqlmock.NewRows(cols).AddRow(
		int64(8), int64(4), int64(1), "2026-10-16", "14.0723", "-87.1921",
		"Ana", nil, nil, "Perez", "Lopez",
		"1990-01-02", "F", "DNI", "0801", nil,
		int64(3), nil, nil))

	got, err := repo.Get(context.Background(), 8)
	require.NoError(t, err)
	require.NotNil(t, got.Person)
	assert.Equal(t, int64(4), got.Person.ID)
	assert.Equal(t, "Ana", got.Person.FirstName)
	assert.Nil(t, got.Person.SecondName)
	require.NotNil(t, got.Person.DocumentNumber)
	assert.Equal(t, "0801", *got.Person.DocumentNumber)
	require.NotNil(t, got.Person.MunicipalityID)
	assert.Equal(t, int64(3), *got.Person.MunicipalityID)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+b\.id`).WithArgs(int64(404)).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 404)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
