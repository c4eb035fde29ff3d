package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/dbx"
	"github.com/vivamos/vivamos/internal/server/models"
	"github.com/vivamos/vivamos/internal/server/repositories/beneficiaries"
	"github.com/vivamos/vivamos/internal/server/repositories/persons"
	"github.com/vivamos/vivamos/internal/server/repositories/roles"
	"github.com/vivamos/vivamos/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeAccounts struct {
	byUsername map[string]*models.Account
	byEmail    map[string]*models.Account
	lookupErr  error

	takenUsernames map[string]bool
	takenEmails    map[string]bool
	existsErr      error

	createErr error
	created   *models.Account

	list    []models.AccountView
	listErr error

	lookups []string
}

func (f *fakeAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	a.ID = 42
	f.created = a
	if f.takenEmails == nil {
		f.takenEmails = map[string]bool{}
	}
	if f.takenUsernames == nil {
		f.takenUsernames = map[string]bool{}
	}
	f.takenEmails[a.Email] = true
	f.takenUsernames[a.Username] = true
	return a, nil
}

func (f *fakeAccounts) GetUserByLogin(ctx context.Context, username string) (*models.Account, error) {
	f.lookups = append(f.lookups, "username:"+username)
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if a, ok := f.byUsername[username]; ok {
		return a, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) GetUserByEmail(ctx context.Context, email string) (*models.Account, error) {
	f.lookups = append(f.lookups, "email:"+email)
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return f.takenUsernames[username], f.existsErr
}

func (f *fakeAccounts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return f.takenEmails[email], f.existsErr
}

func (f *fakeAccounts) List(ctx context.Context) ([]models.AccountView, error) {
	return f.list, f.listErr
}

type fakePersons struct {
	documents map[string]bool
	existsErr error
	createErr error
	created   *models.Person
}

func (f *fakePersons) Create(ctx context.Context, p *models.Person) (*models.Person, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	p.ID = 7
	f.created = p
	if p.DocumentNumber != nil {
		if f.documents == nil {
			f.documents = map[string]bool{}
		}
		f.documents[*p.DocumentNumber] = true
	}
	return p, nil
}

func (f *fakePersons) ExistsByDocument(ctx context.Context, doc string) (bool, error) {
	return f.documents[doc], f.existsErr
}

type fakeRoles struct {
	roles map[int64]*models.Role
	err   error
}

func (f *fakeRoles) Get(ctx context.Context, id int64) (*models.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.roles[id]; ok {
		return r, nil
	}
	return nil, common.ErrorNotFound
}

type fakeBeneficiaries struct {
	createErr error
	stored    map[int64]*models.Beneficiary
	getErr    error
}

func (f *fakeBeneficiaries) Create(ctx context.Context, b *models.Beneficiary) (*models.Beneficiary, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	b.ID = 3
	return b, nil
}

func (f *fakeBeneficiaries) Get(ctx context.Context, id int64) (*models.Beneficiary, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if b, ok := f.stored[id]; ok {
		return b, nil
	}
	return nil, common.ErrorNotFound
}

type fakeRepoManager struct {
	accounts      *fakeAccounts
	persons       *fakePersons
	roles         *fakeRoles
	beneficiaries *fakeBeneficiaries
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		accounts: &fakeAccounts{},
		persons:  &fakePersons{},
		roles: &fakeRoles{roles: map[int64]*models.Role{
			1: {ID: 1, Name: "admin"},
			2: {ID: 2, Name: "coordinator"},
		}},
		beneficiaries: &fakeBeneficiaries{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error        { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                 { return m.accounts }
func (m *fakeRepoManager) Persons(db dbx.DBTX) persons.Repository             { return m.persons }
func (m *fakeRepoManager) Roles(db dbx.DBTX) roles.Repository                 { return m.roles }
func (m *fakeRepoManager) Beneficiaries(db dbx.DBTX) beneficiaries.Repository { return m.beneficiaries }

type loginCounter struct{ ok, failed int }

func (c *loginCounter) RecordLogin(success bool) {
	if success {
		c.ok++
		return
	}
	c.failed++
}

func ptr[T any](v T) *T { return &v }
