//nolint:gochecknoglobals
package validator

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator - Validator type.
type Validator struct {
	validate *validator.Validate
}

var (
	once              sync.Once
	validatorInstance *Validator
)

// NewValidator - returns the shared Validator; go-playground caches struct metadata per instance.
func NewValidator() *Validator {
	once.Do(func() {
		validatorInstance = &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
	})

	return validatorInstance
}

// ValidateStruct - apply validation.
func (v *Validator) ValidateStruct(str interface{}) []*ValidationErrorResponse {
	var valErrorsResResult []*ValidationErrorResponse

	err := v.validate.Struct(str)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, err := range validationErrors {
				valErrorsResResult = append(valErrorsResResult, &ValidationErrorResponse{
					FailedField: err.StructNamespace(),
					Tag:         err.Tag(),
					Value:       err.Param(),
				})
			}
		}
	}

	return valErrorsResResult
}

// Validate - apply validation and fold the failures into a *ValidationError, nil when str is valid.
func (v *Validator) Validate(str interface{}) error {
	if errs := v.ValidateStruct(str); len(errs) > 0 {
		return NewValidationError(errs)
	}

	return nil
}
