// Package models defines server-side data models persisted in the database.
package models

// Person holds the identity data shared by accounts and beneficiaries.
// Optional columns are pointers; nil is stored as NULL.
type Person struct {
	ID             int64
	FirstName      string
	SecondName     *string
	ThirdName      *string
	FirstLastName  string
	SecondLastName *string
	BirthDate      *string // YYYY-MM-DD
	Gender         *string
	DocumentType   *string
	DocumentNumber *string
	Address        *string
	MunicipalityID *int64
	LocationID     *int64
	Phone          *string
}
