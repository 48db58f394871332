package models

import (
	"github.com/gofrs/uuid"
)

// IDGenerator returns a fresh identifier on every call.
type IDGenerator func() string

// NewID returns a random UUID v4 string.
// It panics only if the system random source fails.
func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}
