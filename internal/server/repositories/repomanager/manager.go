package repomanager

import (
	"context"
	"database/sql"

	"github.com/vivamos/vivamos/internal/dbx"
	"github.com/vivamos/vivamos/internal/server/repositories/beneficiaries"
	"github.com/vivamos/vivamos/internal/server/repositories/persons"
	"github.com/vivamos/vivamos/internal/server/repositories/roles"
	"github.com/vivamos/vivamos/internal/server/repositories/users"
)

// RepositoryManager binds repositories to a connection or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Persons(db dbx.DBTX) persons.Repository
	Roles(db dbx.DBTX) roles.Repository
	Beneficiaries(db dbx.DBTX) beneficiaries.Repository
}
