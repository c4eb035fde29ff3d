// Package services contains server-side business logic. This file implements
// UserService: account registration, login and listing.
package services

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/cryptox"
	"github.com/vivamos/vivamos/internal/dbx"
	"github.com/vivamos/vivamos/internal/server/auth"
	"github.com/vivamos/vivamos/internal/server/models"
	"github.com/vivamos/vivamos/internal/server/repositories/persons"
	"github.com/vivamos/vivamos/internal/server/repositories/repomanager"
	"github.com/vivamos/vivamos/internal/server/repositories/users"
)

// MaxUsernameLength is the storage limit for account usernames.
const MaxUsernameLength = 25

// DefaultAccountStatus is the status given to new accounts.
const DefaultAccountStatus int64 = 1

// RegisterInput is the person and account data of a registration.
type RegisterInput struct {
	FirstName      string  `json:"firstName"`
	SecondName     *string `json:"secondName,omitempty"`
	ThirdName      *string `json:"thirdName,omitempty"`
	FirstLastName  string  `json:"firstLastName"`
	SecondLastName *string `json:"secondLastName,omitempty"`
	BirthDate      *string `json:"birthDate,omitempty"`
	Gender         *string `json:"gender,omitempty"`
	DocumentType   *string `json:"documentType,omitempty"`
	DocumentNumber *string `json:"documentNumber,omitempty"`
	Address        *string `json:"address,omitempty"`
	MunicipalityID *int64  `json:"municipalityId,omitempty"`
	LocationID     *int64  `json:"locationId,omitempty"`
	Phone          *string `json:"phone,omitempty"`

	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   int64  `json:"roleId"`
	StatusID *int64 `json:"statusId,omitempty"`
}

func (in *RegisterInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.FirstLastName = strings.TrimSpace(in.FirstLastName)
	in.SecondName = trimPtr(in.SecondName)
	in.ThirdName = trimPtr(in.ThirdName)
	in.SecondLastName = trimPtr(in.SecondLastName)
	in.BirthDate = trimPtr(in.BirthDate)
	in.Gender = trimPtr(in.Gender)
	in.DocumentType = trimPtr(in.DocumentType)
	in.DocumentNumber = trimPtr(in.DocumentNumber)
	in.Address = trimPtr(in.Address)
	in.Phone = trimPtr(in.Phone)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.SecondName, validation.Length(0, 50)),
		validation.Field(&in.ThirdName, validation.Length(0, 50)),
		validation.Field(&in.FirstLastName, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.SecondLastName, validation.Length(0, 50)),
		validation.Field(&in.BirthDate, validation.Date("2006-01-02")),
		validation.Field(&in.Gender, validation.Length(0, 10)),
		validation.Field(&in.DocumentType, validation.Length(0, 30)),
		validation.Field(&in.DocumentNumber, validation.Length(0, 30)),
		validation.Field(&in.Phone, validation.Length(0, 20)),
		validation.Field(&in.Email, validation.Required, validation.Length(3, 100), is.Email),
		validation.Field(&in.Password, validation.Required),
		validation.Field(&in.RoleID, validation.Required),
	)
}

// username returns the explicit username, or the non-empty name parts joined
// by single spaces, truncated to MaxUsernameLength runes.
func (in RegisterInput) username() string {
	name := in.Username
	if name == "" {
		parts := make([]string, 0, 5)
		for _, p := range []string{in.FirstName, deref(in.SecondName), deref(in.ThirdName), in.FirstLastName, deref(in.SecondLastName)} {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		name = strings.Join(parts, " ")
	}

	if r := []rune(name); len(r) > MaxUsernameLength {
		name = string(r[:MaxUsernameLength])
	}
	return name
}

func (in RegisterInput) person() *models.Person {
	return &models.Person{
		FirstName:      in.FirstName,
		SecondName:     in.SecondName,
		ThirdName:      in.ThirdName,
		FirstLastName:  in.FirstLastName,
		SecondLastName: in.SecondLastName,
		BirthDate:      in.BirthDate,
		Gender:         in.Gender,
		DocumentType:   in.DocumentType,
		DocumentNumber: in.DocumentNumber,
		Address:        in.Address,
		MunicipalityID: in.MunicipalityID,
		LocationID:     in.LocationID,
		Phone:          in.Phone,
	}
}

// RegisteredAccount describes a freshly created account.
type RegisteredAccount struct {
	AccountID    int64  `json:"accountId"`
	PersonID     int64  `json:"personId"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	RegisteredAt string `json:"registeredAt"`
	StatusID     int64  `json:"statusId"`
	RoleID       int64  `json:"roleId"`
}

// LoginInput identifies an account by username or, failing that, email.
type LoginInput struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type RoleSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type AccountSummary struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     RoleSummary `json:"role"`
	StatusID int64       `json:"statusId"`
}

// LoginResult is returned on successful login. ExpiresIn is in seconds.
type LoginResult struct {
	AccessToken string         `json:"accessToken"`
	TokenType   string         `json:"tokenType"`
	ExpiresIn   int64          `json:"expiresIn"`
	Account     AccountSummary `json:"account"`
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(claims auth.SessionClaims) (string, error)
	ValidityDuration() time.Duration
}

// LoginRecorder observes login outcomes. It may be nil.
type LoginRecorder interface {
	RecordLogin(success bool)
}

// UserService provides credential operations:
// - Register: create a person and its account
// - Login: verify credentials and mint a session token
// - List: enumerate accounts
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	recorder    LoginRecorder
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService over db and the repositories in m.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens TokenIssuer, recorder LoginRecorder) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		recorder:    recorder,
		now:         time.Now,
	}
}

// Register validates in, checks uniqueness of document number, email and
// username, and stores the person and account in one transaction.
//
// Input problems are returned as common.ErrValidation field errors, taken
// values as common.ErrConflict field errors.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*RegisteredAccount, error) {
	in.normalize()
	if err := fieldError(in.Validate()); err != nil {
		return nil, err
	}

	username := in.username()

	if in.DocumentNumber != nil {
		found, err := s.repomanager.Persons(s.db).ExistsByDocument(ctx, *in.DocumentNumber)
		if err != nil {
			return nil, fmt.Errorf("error checking document number: %w", err)
		}
		if found {
			return nil, common.NewConflictError("documentNumber", "document number already exists")
		}
	}

	accounts := s.repomanager.Users(s.db)

	found, err := accounts.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if found {
		return nil, common.NewConflictError("email", "email already exists")
	}

	found, err = accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if found {
		return nil, common.NewConflictError("username", "username already exists")
	}

	role, err := s.repomanager.Roles(s.db).Get(ctx, in.RoleID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewValidationError("roleId", "role does not exist")
		}
		return nil, fmt.Errorf("error loading role: %w", err)
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	status := DefaultAccountStatus
	if in.StatusID != nil {
		status = *in.StatusID
	}

	account := &models.Account{
		Username:     username,
		Email:        in.Email,
		PasswordHash: hash,
		RegisteredAt: s.now().UTC().Format(time.DateOnly),
		StatusID:     status,
		RoleID:       role.ID,
	}

	var person *models.Person
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		p, err := s.repomanager.Persons(tx).Create(ctx, in.person())
		if err != nil {
			return err
		}
		person = p

		account.PersonID = p.ID
		account, err = s.repomanager.Users(tx).Create(ctx, account)
		return err
	})
	if err != nil {
		if conflict := conflictFromConstraint(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	return &RegisteredAccount{
		AccountID:    account.ID,
		PersonID:     person.ID,
		Username:     account.Username,
		Email:        account.Email,
		RegisteredAt: account.RegisteredAt,
		StatusID:     account.StatusID,
		RoleID:       role.ID,
	}, nil
}

// conflictFromConstraint maps a unique violation that slipped past the
// fast-path checks to the same conflict error those checks return.
func conflictFromConstraint(err error) error {
	constraint, ok := dbx.UniqueViolation(err)
	if !ok {
		return nil
	}
	switch constraint {
	case persons.DocumentConstraint:
		return common.NewConflictError("documentNumber", "document number already exists")
	case users.EmailConstraint:
		return common.NewConflictError("email", "email already exists")
	case users.UsernameConstraint:
		return common.NewConflictError("username", "username already exists")
	}
	return common.NewConflictError("", "record already exists")
}

// Login verifies the password of the account named by username (or email)
// and returns a signed session token.
//
// Unknown accounts and wrong passwords both yield common.ErrInvalidCredentials,
// and both pay for one password verification.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Password == "" {
		return nil, common.NewValidationError("password", "password is required")
	}
	if in.Username == "" && in.Email == "" {
		return nil, common.NewValidationError("username", "username or email is required")
	}

	repo := s.repomanager.Users(s.db)

	var (
		account *models.Account
		err     error
	)
	if in.Username != "" {
		account, err = repo.GetUserByLogin(ctx, in.Username)
	} else {
		account, err = repo.GetUserByEmail(ctx, in.Email)
	}

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.VerifyPassword(in.Password, s.placeholderHash())
			s.record(false)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading account: %w", err)
	}

	if !cryptox.VerifyPassword(in.Password, account.PasswordHash) {
		s.record(false)
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.SessionClaims{
		SubjectID:       account.ID,
		Username:        account.Username,
		RoleID:          account.RoleID,
		PersonID:        account.PersonID,
		AccountStatusID: account.StatusID,
	})
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	s.record(true)

	return &LoginResult{
		AccessToken: token,
		TokenType:   common.BearerScheme,
		ExpiresIn:   int64(s.tokens.ValidityDuration() / time.Second),
		Account: AccountSummary{
			ID:       account.ID,
			Username: account.Username,
			Email:    account.Email,
			Role:     RoleSummary{ID: account.RoleID, Name: account.RoleName},
			StatusID: account.StatusID,
		},
	}, nil
}

// List returns all accounts, newest first.
func (s *UserService) List(ctx context.Context) ([]models.AccountView, error) {
	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	if list == nil {
		list = []models.AccountView{}
	}
	return list, nil
}

func (s *UserService) record(success bool) {
	if s.recorder != nil {
		s.recorder.RecordLogin(success)
	}
}

// placeholderHash is verified against when the account does not exist.
func (s *UserService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		h, err := cryptox.HashPassword(hex.EncodeToString(common.GenerateRandByteArray(16)))
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
