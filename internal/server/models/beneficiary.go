package models

// Beneficiary is a person enrolled in the program.
type Beneficiary struct {
	ID        int64
	PersonID  int64
	StatusID  int64
	StartDate string // YYYY-MM-DD
	Latitude  string
	Longitude string

	// Person is filled by lookups that join the person.
	Person *Person
}
