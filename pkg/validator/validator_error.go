package validator

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ValidationError - the failed rules of a validated struct.
type ValidationError struct {
	details []*ValidationErrorResponse
}

// ValidationErrorResponse - one failed rule: the field namespace, the tag and its parameter.
type ValidationErrorResponse struct {
	FailedField string `json:"failedField"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

func NewValidationError(details []*ValidationErrorResponse) *ValidationError {
	return &ValidationError{details: details}
}

// Error renders the failures as a JSON array, so REST handlers can return it verbatim.
func (v *ValidationError) Error() string {
	data, err := json.Marshal(v.details)
	if err == nil {
		return string(data)
	}

	fields := make([]string, 0, len(v.details))
	for _, d := range v.details {
		fields = append(fields, d.FailedField)
	}

	return fmt.Sprintf("validation failed on %s", strings.Join(fields, ", "))
}

// GetErrorsDetails - return the failed rules.
func (v *ValidationError) GetErrorsDetails() []*ValidationErrorResponse {
	return v.details
}
