package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/graphbulk/graphbulk.go/pkg/constants"
	"github.com/graphbulk/graphbulk.go/pkg/schema"
)

// ValidationError reports every structural violation of a type at once.
type ValidationError struct {
	Type       reflect.Type
	TypeName   string
	Violations []string
}

// NewValidationError builds the aggregate error for t.
func NewValidationError(t reflect.Type, violations []string) *ValidationError {
	return &ValidationError{
		Type:       t,
		TypeName:   schema.TypeName(t),
		Violations: violations,
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s failed validation with the following errors:\n\n* %s",
		e.TypeName, strings.Join(e.Violations, "\n* "))
}

func (e *ValidationError) Is(target error) bool {
	return target == constants.ErrValidation
}
