package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/sajidkarim/messmate-backend/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates the tagged input struct and converts failures into the
// shared validation error shape.
func Struct(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid input")
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[strings.ToLower(fe.Field())] = fmt.Sprintf("failed %q constraint", fe.Tag())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid input").WithDetails(details)
}
