package services

import (
	"errors"
	"maps"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/vivamos/vivamos/internal/common"
)

// fieldError turns ozzo validation errors into a common.FieldError for the
// first offending field, in name order. Other errors pass through.
func fieldError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	field := slices.Sorted(maps.Keys(verrs))[0]
	return common.NewValidationError(field, field+": "+verrs[field].Error())
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
