package models

import (
	"fmt"

	"github.com/graphbulk/graphbulk.go/pkg/constants"
)

// ModelInvariantError reports a canonical vertex or edge missing a required
// attribute.
type ModelInvariantError struct {
	// Entity is "vertex" or "edge".
	Entity string
	// Attribute names what is missing or invalid, e.g. "label".
	Attribute string
	// ID is the entity id when it is known.
	ID  string
	Err error
}

func (e *ModelInvariantError) Error() string {
	msg := fmt.Sprintf("missing %s on %s", e.Attribute, e.Entity)
	if e.ID != "" {
		msg += ": " + e.ID
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelInvariantError) Is(target error) bool {
	return target == constants.ErrModelInvariant
}

func (e *ModelInvariantError) Unwrap() error {
	return e.Err
}
