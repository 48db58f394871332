// Package mapper converts tagged Go values into canonical vertices and edges.
//
// A type is validated the first time it is seen. Types without violations get
// a descriptor that is cached for the life of the Mapper, so the reflective
// work happens once per type and not once per object.
package mapper

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/graphbulk/graphbulk.go/pkg/constants"
	"github.com/graphbulk/graphbulk.go/pkg/models"
	"github.com/graphbulk/graphbulk.go/pkg/schema"
	"github.com/graphbulk/graphbulk.go/pkg/validator"
)

type Option func(*Mapper)

// WithValidator replaces the process wide validator.
func WithValidator(v *validator.Validator) Option {
	return func(m *Mapper) {
		m.validator = v
	}
}

// WithIDGenerator sets the generator used for edges without an id field.
func WithIDGenerator(gen models.IDGenerator) Option {
	return func(m *Mapper) {
		m.newID = gen
	}
}

// Mapper is safe for concurrent use.
type Mapper struct {
	validator   *validator.Validator
	descriptors sync.Map // reflect.Type -> *descriptor
	newID       models.IDGenerator
}

func New(opts ...Option) *Mapper {
	m := &Mapper{
		validator: validator.Default(),
		newID:     models.NewID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var defaultMapper = New()

// Default returns the mapper used by the package level functions.
func Default() *Mapper {
	return defaultMapper
}

// ToVertex converts obj with the default mapper.
func ToVertex(obj any) (*models.Vertex, error) {
	return defaultMapper.ToVertex(obj)
}

// ToEdge converts obj with the default mapper.
func ToEdge(obj any) (*models.Edge, error) {
	return defaultMapper.ToEdge(obj)
}

// Register validates the types of samples ahead of the first conversion and
// returns every failure joined together.
func Register(samples ...any) error {
	return defaultMapper.Register(samples...)
}

func (m *Mapper) Register(samples ...any) error {
	var errs []error
	for _, sample := range samples {
		t := reflect.TypeOf(sample)
		if t == nil {
			errs = append(errs, &ConversionError{TypeName: "<nil>", Err: constants.ErrNilObject})
			continue
		}
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}

		decl, ok := schema.DeclarationOf(t)
		if !ok {
			errs = append(errs, m.validator.Check(t))
			continue
		}
		if _, err := m.describe(t, decl.Kind); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ToVertex converts obj, a value or pointer of a vertex declared type.
func (m *Mapper) ToVertex(obj any) (*models.Vertex, error) {
	v, d, err := m.prepare(obj, schema.KindVertex)
	if err != nil {
		return nil, err
	}

	label, err := d.resolveLabel(v)
	if err != nil {
		return nil, err
	}
	id, err := d.resolveID(v)
	if err != nil {
		return nil, err
	}
	pk, err := d.resolvePartitionKey(v)
	if err != nil {
		return nil, err
	}
	props, err := d.collectProperties(v)
	if err != nil {
		return nil, err
	}

	return models.NewVertex(id, label, pk, props)
}

// ToEdge converts obj, a value or pointer of an edge declared type. Edges
// without an id field get a generated id.
func (m *Mapper) ToEdge(obj any) (*models.Edge, error) {
	v, d, err := m.prepare(obj, schema.KindEdge)
	if err != nil {
		return nil, err
	}

	label, err := d.resolveLabel(v)
	if err != nil {
		return nil, err
	}

	var id string
	if d.id != nil {
		if id, err = d.resolveID(v); err != nil {
			return nil, err
		}
	} else {
		id = m.newID()
	}

	source, err := m.endpoint(d, d.source, v)
	if err != nil {
		return nil, err
	}
	destination, err := m.endpoint(d, d.destination, v)
	if err != nil {
		return nil, err
	}

	pkName := d.info.Declaration.PartitionKeyFieldName
	if isBlank(pkName) {
		pkName = d.source.GraphName
	}

	props, err := d.collectProperties(v)
	if err != nil {
		return nil, err
	}

	return models.NewEdge(id, label, source, destination, pkName, props)
}

// prepare dereferences obj and returns the descriptor of its type.
func (m *Mapper) prepare(obj any, kind schema.Kind) (reflect.Value, *descriptor, error) {
	v, ok := deref(reflect.ValueOf(obj))
	if !ok {
		name := "<nil>"
		if obj != nil {
			name = schema.TypeName(reflect.TypeOf(obj))
		}
		return reflect.Value{}, nil, &ConversionError{TypeName: name, Err: constants.ErrNilObject}
	}

	d, err := m.describe(v.Type(), kind)
	if err != nil {
		return reflect.Value{}, nil, err
	}
	return v, d, nil
}

// describe returns the cached descriptor of t. Structural violations are
// returned as a *validator.ValidationError; a type declared as the other
// kind is a *ConversionError.
func (m *Mapper) describe(t reflect.Type, kind schema.Kind) (*descriptor, error) {
	if cached, ok := m.descriptors.Load(t); ok {
		d := cached.(*descriptor)
		if d.kind() != kind {
			return nil, kindMismatch(t, kind)
		}
		return d, nil
	}

	if err := m.validator.Check(t); err != nil {
		return nil, err
	}

	actual, _ := m.descriptors.LoadOrStore(t, newDescriptor(schema.Inspect(t)))
	d := actual.(*descriptor)
	if d.kind() != kind {
		return nil, kindMismatch(t, kind)
	}
	return d, nil
}

// endpoint resolves an endpoint field of the edge value v. The field may hold
// an EndpointInfo, a canonical Vertex, or an instance of a vertex declared
// type.
func (m *Mapper) endpoint(d *descriptor, f *schema.Field, v reflect.Value) (models.EndpointInfo, error) {
	fv, ok := deref(v.FieldByIndex(f.Index))
	if !ok {
		return models.EndpointInfo{}, d.fail(f, constants.ErrMissingEndpoint)
	}

	switch fv.Type() {
	case endpointInfoType:
		return fv.Interface().(models.EndpointInfo), nil
	case vertexType:
		vertex := fv.Interface().(models.Vertex)
		return models.EndpointInfoFromVertex(&vertex), nil
	}

	nested := fv.Type()
	decl, declared := schema.DeclarationOf(nested)
	if !declared || decl.Kind != schema.KindVertex {
		return models.EndpointInfo{}, d.fail(f, fmt.Errorf("%w: %s is not declared as a vertex",
			constants.ErrNotDeclared, schema.TypeName(nested)))
	}

	nd, err := m.describe(nested, schema.KindVertex)
	if err != nil {
		return models.EndpointInfo{}, d.fail(f, err)
	}

	info, err := nd.endpointInfo(fv)
	if err != nil {
		return models.EndpointInfo{}, d.fail(f, err)
	}
	return info, nil
}

func kindMismatch(t reflect.Type, kind schema.Kind) error {
	return &ConversionError{
		TypeName: schema.TypeName(t),
		Err:      fmt.Errorf("%w: expected a %s declaration", constants.ErrNotDeclared, kind),
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
