package mapper

import (
	"fmt"
	"strings"

	"github.com/graphbulk/graphbulk.go/pkg/constants"
	"github.com/graphbulk/graphbulk.go/pkg/schema"
)

// ConversionError reports a failure to extract one object. Field and Role
// are empty when the failure is not tied to a single field.
type ConversionError struct {
	TypeName string
	Field    string
	Role     schema.Role
	Err      error
}

func (e *ConversionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "failed to convert %s", e.TypeName)
	if e.Field != "" {
		fmt.Fprintf(&sb, " field %s (%s)", e.Field, e.Role)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ConversionError) Is(target error) bool {
	return target == constants.ErrConversion
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
