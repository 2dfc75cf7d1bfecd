package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"codeframe-be/internal/pkg/apperrors"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and folds failures into a
// single validation error the error handler turns into a 400.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Wrap(apperrors.KindValidation, "invalid request", err)
	}

	var fields []string
	for _, fe := range validationErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return apperrors.Newf(apperrors.KindValidation, "invalid fields: %s", strings.Join(fields, ", "))
}
