package models

// Account is a login identity bound to a person and a role.
type Account struct {
	ID           int64
	PersonID     int64
	Username     string
	Email        string
	PasswordHash string
	RegisteredAt string // YYYY-MM-DD
	StatusID     int64
	RoleID       int64

	// RoleName is filled by lookups that join the role.
	RoleName string
}

// AccountView is the listing projection of an account.
type AccountView struct {
	ID           int64
	Username     string
	Email        string
	RegisteredAt string
	StatusID     int64
	RoleID       int64
	RoleName     string
}
