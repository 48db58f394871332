// Package validator checks that a type's graph tags are internally consistent
// before any instance of it is converted.
//
// Results are memoized per type for the life of the process: struct shapes
// cannot change at runtime, so a type that fails once fails forever.
package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/graphbulk/graphbulk.go/pkg/schema"
)

// Violation messages. Messages ending in Format take arguments.
const (
	NotDeclaredFormat      = "%s must embed schema.Vertex or schema.Edge to be mapped to a graph entity."
	MultipleDeclarations   = "Only one schema.Vertex or schema.Edge declaration can be embedded."
	PartitionKeyMissing    = "Partition key tag is required to be present on only one field, found none."
	PartitionKeyDuplFormat = "Partition key tag is required to be present on only one field, found %d: %s."
	IDMissing              = "Id tag is required to be present on one and only one field, found none."
	IDDuplicateFormat      = "Id tag is required to be present on one and only one field, found %d: %s."
	LabelWithDeclFormat    = "Label tag and GraphLabel method can only be used when the %s declaration hasn't set a label value."
	LabelInvalidFormat     = "Label tag and GraphLabel method are required to be present on only one field or method when there is no label set on the %s declaration."
	EdgeIDFormat           = "Edges can only have one field with the id tag, found %d: %s."
	EdgeEndpointMissing    = "Edges require one field tagged with the %s endpoint direction."
	EdgeEndpointTooMany    = "Only one field can be tagged with the %s endpoint direction, found %d: %s."
	EdgePartitionKey       = "Edges construct the partition key from the source vertex and the partitionKey value of the edge declaration; the partition key tag is not allowed."
)

// Validator validates types and caches the outcome per type.
type Validator struct {
	cache sync.Map // reflect.Type -> []string
}

// New returns a validator with an empty cache.
func New() *Validator {
	return &Validator{}
}

var defaultValidator = New()

// Default returns the process wide validator.
func Default() *Validator {
	return defaultValidator
}

// Validate returns the violations of t using the process wide validator.
func Validate(t reflect.Type) []string {
	return defaultValidator.Validate(t)
}

// Validate returns the ordered list of violations for t. An empty list means
// the type can be converted. Pointer types are validated as their element type.
//
// The returned slice is shared with the cache and must not be modified.
func (v *Validator) Validate(t reflect.Type) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if cached, ok := v.cache.Load(t); ok {
		return cached.([]string)
	}

	// Concurrent first validations of the same type compute identical results;
	// the first stored one wins.
	actual, _ := v.cache.LoadOrStore(t, validate(schema.Inspect(t)))
	return actual.([]string)
}

// Valid reports whether t has no violations.
func (v *Validator) Valid(t reflect.Type) bool {
	return len(v.Validate(t)) == 0
}

// Check returns a *ValidationError when t has violations.
func (v *Validator) Check(t reflect.Type) error {
	violations := v.Validate(t)
	if len(violations) == 0 {
		return nil
	}
	return NewValidationError(t, violations)
}

func validate(ti *schema.TypeInfo) []string {
	results := []string{}

	if !ti.Declared() {
		return append(results, fmt.Sprintf(NotDeclaredFormat, schema.TypeName(ti.Type)))
	}
	if ti.Declarations > 1 {
		results = append(results, MultipleDeclarations)
	}

	switch ti.Declaration.Kind {
	case schema.KindVertex:
		results = validateVertex(ti, results)
	case schema.KindEdge:
		results = validateEdge(ti, results)
	}

	return append(results, ti.TagErrors...)
}

func validateVertex(ti *schema.TypeInfo, results []string) []string {
	results = validatePartitionKey(ti, results)
	results = validateID(ti, results)
	return validateLabel(ti, results)
}

func validateEdge(ti *schema.TypeInfo, results []string) []string {
	results = validateLabel(ti, results)

	if ids := ti.FieldsWithRole(schema.RoleID); len(ids) > 1 {
		results = append(results, fmt.Sprintf(EdgeIDFormat, len(ids), fieldNames(ids)))
	}

	results = validateEndpoint(ti, schema.Destination, results)
	results = validateEndpoint(ti, schema.Source, results)

	if len(ti.FieldsWithRole(schema.RolePartitionKey)) > 0 {
		results = append(results, EdgePartitionKey)
	}

	return results
}

func validatePartitionKey(ti *schema.TypeInfo, results []string) []string {
	switch pks := ti.FieldsWithRole(schema.RolePartitionKey); len(pks) {
	case 0:
		return append(results, PartitionKeyMissing)
	case 1:
		return results
	default:
		return append(results, fmt.Sprintf(PartitionKeyDuplFormat, len(pks), fieldNames(pks)))
	}
}

func validateID(ti *schema.TypeInfo, results []string) []string {
	switch ids := ti.FieldsWithRole(schema.RoleID); len(ids) {
	case 0:
		return append(results, IDMissing)
	case 1:
		return results
	default:
		return append(results, fmt.Sprintf(IDDuplicateFormat, len(ids), fieldNames(ids)))
	}
}

func validateLabel(ti *schema.TypeInfo, results []string) []string {
	count := len(ti.FieldsWithRole(schema.RoleLabel))
	if ti.LabelGetter {
		count++
	}

	kind := ti.Declaration.Kind.String()
	if count > 0 && ti.Declaration.HasLabel() {
		results = append(results, fmt.Sprintf(LabelWithDeclFormat, kind))
	}
	if count != 1 && !ti.Declaration.HasLabel() {
		results = append(results, fmt.Sprintf(LabelInvalidFormat, kind))
	}

	return results
}

func validateEndpoint(ti *schema.TypeInfo, d schema.Direction, results []string) []string {
	fields := ti.Endpoints(d)
	if len(fields) == 0 {
		results = append(results, fmt.Sprintf(EdgeEndpointMissing, d))
	}
	if len(fields) > 1 {
		results = append(results, fmt.Sprintf(EdgeEndpointTooMany, d, len(fields), fieldNames(fields)))
	}
	return results
}

func fieldNames(fields []schema.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}
