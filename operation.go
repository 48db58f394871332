package graphbulk

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/buger/jsonparser"

	"github.com/graphbulk/graphbulk.go/pkg/constants"
	"github.com/graphbulk/graphbulk.go/pkg/mapper"
	"github.com/graphbulk/graphbulk.go/pkg/models"
	"github.com/graphbulk/graphbulk.go/pkg/schema"
	"github.com/graphbulk/graphbulk.go/pkg/wire"
)

// WriteOperation is one document ready to be handed to a BulkWriteExecutor.
type WriteOperation struct {
	Kind schema.Kind
	// ID is the document id; edge ids may have been generated.
	ID       string
	Document []byte
	// PartitionKey is the raw partition value the document is routed by.
	PartitionKey any
	Mode         Mode
}

// DocumentField returns the raw JSON value of a top level document field.
func (op WriteOperation) DocumentField(key string) ([]byte, jsonparser.ValueType, error) {
	value, dataType, _, err := jsonparser.Get(op.Document, key)
	if err != nil {
		return nil, dataType, fmt.Errorf("document %s field %s: %w", op.ID, key, err)
	}
	return value, dataType, nil
}

// BuilderOption configures an OperationBuilder.
type BuilderOption func(*OperationBuilder)

func WithMapper(m *mapper.Mapper) BuilderOption {
	return func(b *OperationBuilder) {
		b.mapper = m
	}
}

func WithSerializer(s *wire.Serializer) BuilderOption {
	return func(b *OperationBuilder) {
		b.serializer = s
	}
}

// OperationBuilder converts objects into write operations. It is safe for
// concurrent use.
type OperationBuilder struct {
	mapper     *mapper.Mapper
	serializer *wire.Serializer
}

func NewOperationBuilder(opts ...BuilderOption) *OperationBuilder {
	b := &OperationBuilder{
		mapper:     mapper.Default(),
		serializer: wire.NewSerializer(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var defaultBuilder = NewOperationBuilder()

// BuildOperation wraps a canonical *models.Vertex or *models.Edge using the
// default builder.
func BuildOperation(entity any, mode Mode) (WriteOperation, error) {
	return defaultBuilder.Build(entity, mode)
}

// Build validates and serializes a canonical *models.Vertex or *models.Edge.
func (b *OperationBuilder) Build(entity any, mode Mode) (WriteOperation, error) {
	if !mode.valid() {
		return WriteOperation{}, fmt.Errorf("%w: %s", constants.ErrUnknownMode, mode)
	}

	op := WriteOperation{Mode: mode}
	switch e := entity.(type) {
	case *models.Vertex:
		if e == nil {
			break
		}
		op.Kind = schema.KindVertex
		op.ID = e.ID
		if e.PartitionKey != nil {
			op.PartitionKey = e.PartitionKey.Value()
		}
	case *models.Edge:
		if e == nil {
			break
		}
		op.Kind = schema.KindEdge
		op.ID = e.ID
		if e.PartitionKey != nil {
			op.PartitionKey = e.PartitionKey.Value()
		}
	}

	doc, err := b.serializer.Marshal(entity)
	if err != nil {
		return WriteOperation{}, err
	}
	op.Document = doc
	return op, nil
}

// Operation converts obj into a write operation. obj is either a canonical
// entity (pointer or value) or an instance of a declared vertex or edge type.
func (b *OperationBuilder) Operation(obj any, mode Mode) (WriteOperation, error) {
	switch e := obj.(type) {
	case *models.Vertex, *models.Edge:
		return b.Build(e, mode)
	case models.Vertex:
		return b.Build(&e, mode)
	case models.Edge:
		return b.Build(&e, mode)
	}

	var (
		entity any
		err    error
	)
	if decl, ok := declarationOf(obj); ok && decl.Kind == schema.KindEdge {
		entity, err = b.mapper.ToEdge(obj)
	} else {
		// Undeclared types fail validation here.
		entity, err = b.mapper.ToVertex(obj)
	}
	if err != nil {
		return WriteOperation{}, err
	}
	return b.Build(entity, mode)
}

// Operations converts every object. Operations for the objects that failed
// are left out and their errors are joined, each prefixed with its index.
func (b *OperationBuilder) Operations(objs []any, mode Mode) ([]WriteOperation, error) {
	ops := make([]WriteOperation, 0, len(objs))
	var errs []error
	for i, obj := range objs {
		op, err := b.Operation(obj, mode)
		if err != nil {
			errs = append(errs, fmt.Errorf("object %d: %w", i, err))
			continue
		}
		ops = append(ops, op)
	}
	return ops, errors.Join(errs...)
}

func declarationOf(obj any) (schema.Declaration, bool) {
	t := reflect.TypeOf(obj)
	if t == nil {
		return schema.Declaration{}, false
	}
	return schema.DeclarationOf(t)
}
