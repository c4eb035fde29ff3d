package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/logging"
	"github.com/vivamos/vivamos/internal/server/auth"
	"github.com/vivamos/vivamos/internal/server/models"
	"github.com/vivamos/vivamos/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.RegisteredAccount, error)
	Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	List(ctx context.Context) ([]models.AccountView, error)
}

type BeneficiaryService interface {
	Create(ctx context.Context, in services.BeneficiaryInput) (*models.Beneficiary, error)
	Get(ctx context.Context, id int64) (*models.Beneficiary, error)
}

type handlers struct {
	users         UserService
	beneficiaries BeneficiaryService
	logger        logging.Logger
}

func (h *handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(r.Context(), h.logger, w, err)
		return
	}

	account, err := h.users.Register(r.Context(), in)
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, err)
		return
	}

	h.logger.Info(r.Context(), "account registered", "account_id", account.AccountID, "role_id", account.RoleID)
	writeJSON(w, http.StatusCreated, account)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(r.Context(), h.logger, w, err)
		return
	}

	res, err := h.users.Login(r.Context(), in)
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type accountView struct {
	ID           int64                `json:"id"`
	Username     string               `json:"username"`
	Email        string               `json:"email"`
	RegisteredAt string               `json:"registeredAt"`
	StatusID     int64                `json:"statusId"`
	Role         services.RoleSummary `json:"role"`
}

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, err)
		return
	}

	out := make([]accountView, 0, len(list))
	for _, a := range list {
		out = append(out, accountView{
			ID:           a.ID,
			Username:     a.Username,
			Email:        a.Email,
			RegisteredAt: a.RegisteredAt,
			StatusID:     a.StatusID,
			Role:         services.RoleSummary{ID: a.RoleID, Name: a.RoleName},
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type claimsView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	RoleID   int64  `json:"roleId"`
	PersonID int64  `json:"personId"`
	StatusID int64  `json:"statusId"`
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, common.ErrMissingCredentials.Error(), "")
		return
	}

	writeJSON(w, http.StatusOK, claimsView{
		ID:       claims.SubjectID,
		Username: claims.Username,
		RoleID:   claims.RoleID,
		PersonID: claims.PersonID,
		StatusID: claims.AccountStatusID,
	})
}

type personView struct {
	ID             int64   `json:"id"`
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
}

type beneficiaryView struct {
	ID        int64       `json:"id"`
	PersonID  int64       `json:"personId"`
	StatusID  int64       `json:"statusId"`
	StartDate string      `json:"startDate"`
	Latitude  string      `json:"latitude"`
	Longitude string      `json:"longitude"`
	Person    *personView `json:"person,omitempty"`
}

func newBeneficiaryView(b *models.Beneficiary) beneficiaryView {
	v := beneficiaryView{
		ID:        b.ID,
		PersonID:  b.PersonID,
		StatusID:  b.StatusID,
		StartDate: b.StartDate,
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
	}
	if p := b.Person; p != nil {
		v.Person = &personView{
			ID:             p.ID,
			FirstName:      p.FirstName,
			SecondName:     p.SecondName,
			ThirdName:      p.ThirdName,
			FirstLastName:  p.FirstLastName,
			SecondLastName: p.SecondLastName,
			BirthDate:      p.BirthDate,
			Gender:         p.Gender,
			DocumentType:   p.DocumentType,
			DocumentNumber: p.DocumentNumber,
			Address:        p.Address,
			MunicipalityID: p.MunicipalityID,
			LocationID:     p.LocationID,
			Phone:          p.Phone,
		}
	}
	return v
}

func (h *handlers) createBeneficiary(w http.ResponseWriter, r *http.Request) {
	var in services.BeneficiaryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(r.Context(), h.logger, w, err)
		return
	}

	b, err := h.beneficiaries.Create(r.Context(), in)
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newBeneficiaryView(b))
}

func (h *handlers) getBeneficiary(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id", "id")
		return
	}

	b, err := h.beneficiaries.Get(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, newBeneficiaryView(b))
}
