package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/logging"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, field string) {
	writeJSON(w, status, errorBody{Error: message, Field: field})
}

// writeServiceError maps the error taxonomy to a status code. Anything
// unexpected is logged and answered with a generic 500.
func writeServiceError(ctx context.Context, log logging.Logger, w http.ResponseWriter, err error) {
	var fe *common.FieldError

	switch {
	case errors.As(err, &fe) && errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, fe.Message, fe.Field)
	case errors.As(err, &fe) && errors.Is(err, common.ErrConflict):
		writeError(w, http.StatusConflict, fe.Message, fe.Field)
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, common.ErrInvalidCredentials.Error(), "")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, common.ErrorNotFound.Error(), "")
	default:
		log.Error(ctx, "request failed", "request_id", RequestIDFromContext(ctx), "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error(), "")
	}
}

// decodeJSON reads a single JSON object from the body, rejecting unknown
// fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return common.NewValidationError("", "invalid request body")
	}
	if dec.More() {
		return common.NewValidationError("", "invalid request body")
	}
	return nil
}
