package wire

import (
	"fmt"
	"strings"

	"github.com/graphbulk/graphbulk.go/pkg/constants"
)

// SerializationError reports a failure while writing the document of the
// entity with the given id. Field is empty when no single field is at fault.
type SerializationError struct {
	ID    string
	Field string
	Err   error
}

func (e *SerializationError) Error() string {
	var sb strings.Builder
	sb.WriteString("failed to serialize document")
	if e.ID != "" {
		fmt.Fprintf(&sb, " %s", e.ID)
	}
	if e.Field != "" {
		fmt.Fprintf(&sb, " field %s", e.Field)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *SerializationError) Is(target error) bool {
	return target == constants.ErrSerialization
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
