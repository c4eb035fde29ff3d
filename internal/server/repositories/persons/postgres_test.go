package persons

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/vivamos/vivamos/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func ptr[T any](v T) *T { return &v }

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+persons\s*\(first_name,.*phone\)\s*VALUES\s*\(\$1,.*\$13\)\s*RETURNING\s+id\s*$`

	mock.ExpectQuery(q).
		WithArgs("Ana", nil, nil, "Perez", ptr("Lopez"), nil, nil, nil, ptr("0801"), nil, ptr(int64(3)), nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	p := &models.Person{FirstName: "Ana", FirstLastName: "Perez", SecondLastName: ptr("Lopez"), DocumentNumber: ptr("0801"), MunicipalityID: ptr(int64(3))}
	got, err := repo.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 11 {
		t.Fatalf("unexpected id: %d", got.ID)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+persons`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Person{FirstName: "Ana", FirstLastName: "Perez"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestExistsByDocument(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+persons\s+WHERE\s+document_number\s*=\s*\$1\)$`
	mock.ExpectQuery(q).WithArgs("0801").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(q).WithArgs("0802").WillReturnError(errors.New("db err"))

	found, err := repo.ExistsByDocument(context.Background(), "0801")
	if err != nil || !found {
		t.Fatalf("got %v, %v", found, err)
	}
	if _, err := repo.ExistsByDocument(context.Background(), "0802"); err == nil {
		t.Fatal("expected error")
	}
}
