// Package wire writes canonical vertices and edges as the JSON documents
// accepted by the graph bulk-import service.
//
// Members are written in a fixed order. Some consumers of the bulk format
// read documents positionally, so the order is part of the contract:
//
//	vertex: id, label, <partition key>, <properties...>
//	edge:   _isEdge, id, label, <partition key>, _sinkPartition, _sink,
//	        _sinkLabel, _vertexId, _vertexLabel, <properties...>
//
// Vertex properties are written as single element arrays of
// {"id": <fresh id>, "_value": <value>}; edge properties are written flat.
package wire

import (
	"bytes"
	"fmt"

	"github.com/graphbulk/graphbulk.go/internal/codec"
	"github.com/graphbulk/graphbulk.go/pkg/constants"
	"github.com/graphbulk/graphbulk.go/pkg/models"
)

type Option func(*Serializer)

// WithMarshaler sets the encoder used for keys and values.
func WithMarshaler(m codec.Marshaler) Option {
	return func(s *Serializer) {
		s.marshaler = m
	}
}

// WithPropertyIDGenerator sets the generator of vertex property instance ids.
func WithPropertyIDGenerator(gen models.IDGenerator) Option {
	return func(s *Serializer) {
		s.newID = gen
	}
}

// Serializer is safe for concurrent use when its generator is.
type Serializer struct {
	marshaler codec.Marshaler
	newID     models.IDGenerator
}

func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{
		marshaler: codec.JSON{},
		newID:     models.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultSerializer = NewSerializer()

// MarshalVertex serializes v with the default serializer.
func MarshalVertex(v *models.Vertex) ([]byte, error) {
	return defaultSerializer.MarshalVertex(v)
}

// MarshalEdge serializes e with the default serializer.
func MarshalEdge(e *models.Edge) ([]byte, error) {
	return defaultSerializer.MarshalEdge(e)
}

// Marshal serializes a *models.Vertex or *models.Edge with the default
// serializer.
func Marshal(entity any) ([]byte, error) {
	return defaultSerializer.Marshal(entity)
}

func (s *Serializer) Marshal(entity any) ([]byte, error) {
	switch e := entity.(type) {
	case *models.Vertex:
		return s.MarshalVertex(e)
	case *models.Edge:
		return s.MarshalEdge(e)
	default:
		return nil, &SerializationError{
			Err: fmt.Errorf("%w: %T is not a vertex or edge", constants.ErrUnsupportedValue, entity),
		}
	}
}

// MarshalVertex validates v and writes its document.
func (s *Serializer) MarshalVertex(v *models.Vertex) ([]byte, error) {
	if v == nil {
		return nil, &SerializationError{Err: constants.ErrNilObject}
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	pkName := v.PartitionKey.FieldName()
	if err := checkReserved(v.ID, &v.Properties, constants.VertexID, constants.VertexLabel, pkName); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	obj := newObject(&buf, s.marshaler)
	obj.member(constants.VertexID, v.ID)
	obj.member(constants.VertexLabel, v.Label)
	obj.member(pkName, v.PartitionKey.Value())

	v.Properties.Range(func(key string, value any) bool {
		obj.raw(key, func(buf *bytes.Buffer) error {
			return s.writePropertyInstance(buf, value)
		})
		return obj.err == nil
	})
	obj.close()

	if obj.err != nil {
		return nil, &SerializationError{ID: v.ID, Field: obj.field, Err: obj.err}
	}
	return buf.Bytes(), nil
}

// MarshalEdge validates e and writes its document.
func (s *Serializer) MarshalEdge(e *models.Edge) ([]byte, error) {
	if e == nil {
		return nil, &SerializationError{Err: constants.ErrNilObject}
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	pkName := e.PartitionKey.FieldName()
	err := checkReserved(e.ID, &e.Properties,
		constants.EdgeMarker,
		constants.EdgeID,
		constants.EdgeLabel,
		pkName,
		constants.EdgeDestinationPartition,
		constants.EdgeDestinationID,
		constants.EdgeDestinationLabel,
		constants.EdgeSourceID,
		constants.EdgeSourceLabel,
	)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	obj := newObject(&buf, s.marshaler)
	obj.member(constants.EdgeMarker, true)
	obj.member(constants.EdgeID, e.ID)
	obj.member(constants.EdgeLabel, e.Label)
	obj.member(pkName, e.PartitionKey.Value())
	obj.member(constants.EdgeDestinationPartition, e.Destination.PartitionKey)
	obj.member(constants.EdgeDestinationID, e.Destination.ID)
	obj.member(constants.EdgeDestinationLabel, e.Destination.Label)
	obj.member(constants.EdgeSourceID, e.Source.ID)
	obj.member(constants.EdgeSourceLabel, e.Source.Label)

	e.Properties.Range(func(key string, value any) bool {
		obj.member(key, value)
		return obj.err == nil
	})
	obj.close()

	if obj.err != nil {
		return nil, &SerializationError{ID: e.ID, Field: obj.field, Err: obj.err}
	}
	return buf.Bytes(), nil
}

func (s *Serializer) writePropertyInstance(buf *bytes.Buffer, value any) error {
	buf.WriteByte('[')
	obj := newObject(buf, s.marshaler)
	obj.member(constants.PropertyID, s.newID())
	obj.member(constants.PropertyValue, value)
	obj.close()
	buf.WriteByte(']')
	return obj.err
}

func checkReserved(id string, props *models.Properties, reserved ...string) error {
	for _, name := range reserved {
		if _, ok := props.Get(name); ok {
			return &SerializationError{
				ID:    id,
				Field: name,
				Err:   constants.ErrReservedField,
			}
		}
	}
	return nil
}
