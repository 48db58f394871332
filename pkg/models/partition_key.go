package models

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/graphbulk/graphbulk.go/pkg/constants"
)

// PartitionKey is the document field name and value the store routes a
// document by. The zero value is not valid; use NewPartitionKey.
type PartitionKey struct {
	fieldName string
	value     any
}

// NewPartitionKey returns a partition key after checking that fieldName is
// not blank and that value is a bool, integer, float, string, Char or
// Undefined. Any other value, nil included, is rejected.
//
// Runes and bytes are integers and are written as numbers ('x' becomes 120).
// Use Char for a value written as the one character string "x".
func NewPartitionKey(fieldName string, value any) (PartitionKey, error) {
	if strings.TrimSpace(fieldName) == "" {
		return PartitionKey{}, fmt.Errorf("%w: field name for partition key is missing", constants.ErrInvalidPartitionKey)
	}
	if value == nil {
		return PartitionKey{}, fmt.Errorf("%w: partition key %s cannot be set to a nil value",
			constants.ErrInvalidPartitionKey, fieldName)
	}
	if !IsPartitionKeyValue(value) {
		return PartitionKey{}, fmt.Errorf("%w: partition key %s must be a primitive value, got %T",
			constants.ErrInvalidPartitionKey, fieldName, value)
	}

	return PartitionKey{fieldName: fieldName, value: value}, nil
}

// IsPartitionKeyValue reports whether value may be used as a partition key value.
func IsPartitionKeyValue(value any) bool {
	if value == nil {
		return false
	}
	if _, ok := value.(Undefined); ok {
		return true
	}

	switch reflect.TypeOf(value).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func (pk PartitionKey) FieldName() string {
	return pk.fieldName
}

func (pk PartitionKey) Value() any {
	return pk.value
}

// Validate checks a partition key that may not have come from NewPartitionKey.
func (pk PartitionKey) Validate() error {
	_, err := NewPartitionKey(pk.fieldName, pk.value)
	return err
}

func (pk PartitionKey) String() string {
	return fmt.Sprintf("%s=%v", pk.fieldName, pk.value)
}
