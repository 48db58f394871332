package constants

import "errors"

// Errors
var (
	ErrValidation     = errors.New("graph type failed structural validation")
	ErrConversion     = errors.New("failed to convert object into a graph entity")
	ErrModelInvariant = errors.New("graph entity is missing a required attribute")
	ErrSerialization  = errors.New("failed to serialize graph document")
)

var (
	ErrNotDeclared         = errors.New("type is not declared as a vertex or edge")
	ErrNilObject           = errors.New("object is nil")
	ErrMissingID           = errors.New("id value is missing")
	ErrMissingEndpoint     = errors.New("edge endpoint is missing")
	ErrInvalidPartitionKey = errors.New("invalid partition key")
	ErrUnsupportedValue    = errors.New("unsupported value kind")
	ErrReservedField       = errors.New("property collides with a reserved document field")
	ErrUnknownMode         = errors.New("unknown write mode")
	ErrConflict            = errors.New("document already exists")
	ErrWriteFailed         = errors.New("bulk write operation failed")
	ErrInvalidConfig       = errors.New("invalid configuration")
)
