package schema

import (
	"reflect"
	"strings"
)

// Struct tags read from an embedded Vertex or Edge declaration.
const (
	DeclLabel        = "label"
	DeclPartitionKey = "partitionKey"
)

// Vertex is embedded in a struct to declare it a graph vertex.
// It has no value; the optional label is read from its struct tag.
//
//	type Person struct {
//		schema.Vertex `label:"PERSON"`
//		ID        string `graph:"id"`
//		Country   string `graph:"partitionKey" json:"country"`
//		FirstName string `json:"firstName"`
//	}
type Vertex struct{}

// Edge is embedded in a struct to declare it a graph edge.
// The partitionKey struct tag names the document field that receives the
// source vertex's partition value.
//
//	type Knows struct {
//		schema.Edge `label:"knows" partitionKey:"country"`
//		From Person `graph:"source"`
//		To   Person `graph:"destination"`
//	}
type Edge struct{}

// Kind is the entity kind a type is declared as.
type Kind int

const (
	KindNone Kind = iota
	KindVertex
	KindEdge
)

func (k Kind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindEdge:
		return "edge"
	default:
		return "none"
	}
}

// Declaration is the type level graph metadata of a struct.
type Declaration struct {
	Kind                  Kind
	Label                 string
	PartitionKeyFieldName string
}

// HasLabel reports whether the declaration carries a non-blank label.
func (d Declaration) HasLabel() bool {
	return strings.TrimSpace(d.Label) != ""
}

var (
	vertexType = reflect.TypeOf(Vertex{})
	edgeType   = reflect.TypeOf(Edge{})
)

// DeclarationOf returns the declaration of t. Declarations embedded in an
// embedded struct are inherited; the outermost one wins.
func DeclarationOf(t reflect.Type) (Declaration, bool) {
	decls := declarations(indirect(t))
	if len(decls) == 0 {
		return Declaration{}, false
	}
	return decls[0], true
}

func declarations(t reflect.Type) []Declaration {
	if t.Kind() != reflect.Struct {
		return nil
	}

	var own, inherited []Declaration
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.Anonymous {
			continue
		}

		switch field.Type {
		case vertexType:
			own = append(own, Declaration{
				Kind:  KindVertex,
				Label: field.Tag.Get(DeclLabel),
			})
		case edgeType:
			own = append(own, Declaration{
				Kind:                  KindEdge,
				Label:                 field.Tag.Get(DeclLabel),
				PartitionKeyFieldName: field.Tag.Get(DeclPartitionKey),
			})
		default:
			if field.IsExported() && field.Type.Kind() == reflect.Struct {
				inherited = append(inherited, declarations(field.Type)...)
			}
		}
	}

	return append(own, inherited...)
}

func isMarker(t reflect.Type) bool {
	return t == vertexType || t == edgeType
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
