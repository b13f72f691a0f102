package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"voicenotes-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and reports the first failing
// field as a client error.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			field := strings.ToLower(fe.Field())
			return apperror.Validation(field, fmt.Sprintf("field %s failed on rule %s", field, fe.Tag()))
		}
		return apperror.Validation("", err.Error())
	}
	return nil
}
