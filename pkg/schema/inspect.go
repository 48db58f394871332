package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// LabelGetter is implemented by types that compute their label at runtime.
// It plays the role of a label-tagged field and is counted as such by the
// structural validator.
type LabelGetter interface {
	GraphLabel() string
}

var labelGetterType = reflect.TypeOf((*LabelGetter)(nil)).Elem()

// HasLabelGetter reports whether t or *t implements LabelGetter.
func HasLabelGetter(t reflect.Type) bool {
	t = indirect(t)
	return t.Implements(labelGetterType) || reflect.PointerTo(t).Implements(labelGetterType)
}

// Field is an exported struct field together with its parsed graph tag.
type Field struct {
	// Name is the Go field name.
	Name string
	// GraphName is the name used in the graph document: the tag's name option,
	// then the json tag name, then the Go field name.
	GraphName string
	// Index is the index path for reflect.Value.FieldByIndex.
	Index []int
	Type  reflect.Type
	Tag   FieldTag
}

// TypeInfo is the graph relevant shape of a struct type.
type TypeInfo struct {
	Type         reflect.Type
	Declaration  Declaration
	Declarations int
	Fields       []Field
	LabelGetter  bool
	// TagErrors lists malformed graph tags, one message per field.
	TagErrors []string
}

// Declared reports whether the type embeds a Vertex or Edge declaration.
func (ti *TypeInfo) Declared() bool {
	return ti.Declarations > 0
}

// FieldsWithRole returns the fields tagged with role, in declaration order.
func (ti *TypeInfo) FieldsWithRole(role Role) []Field {
	var fields []Field
	for _, f := range ti.Fields {
		if f.Tag.Role == role {
			fields = append(fields, f)
		}
	}
	return fields
}

// Endpoints returns the edge endpoint fields for the given direction.
func (ti *TypeInfo) Endpoints(d Direction) []Field {
	var fields []Field
	for _, f := range ti.FieldsWithRole(RoleEdgeEndpoint) {
		if f.Tag.Direction == d {
			fields = append(fields, f)
		}
	}
	return fields
}

// Inspect walks the exported fields of t, including the promoted fields of
// embedded structs, and parses their graph tags. Pointer types are
// dereferenced. Inspect does no caching.
func Inspect(t reflect.Type) *TypeInfo {
	t = indirect(t)
	ti := &TypeInfo{Type: t}
	if t.Kind() != reflect.Struct {
		return ti
	}

	decls := declarations(t)
	ti.Declarations = len(decls)
	if len(decls) > 0 {
		ti.Declaration = decls[0]
	}
	ti.LabelGetter = HasLabelGetter(t)
	ti.collectFields(t, nil)

	return ti
}

func (ti *TypeInfo) collectFields(t reflect.Type, parentIndex []int) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if !field.IsExported() || isMarker(field.Type) {
			continue
		}

		index := append(append([]int(nil), parentIndex...), i)
		rawTag, tagged := field.Tag.Lookup(TagName)

		// Untagged embedded structs contribute their fields as if declared here
		if field.Anonymous && field.Type.Kind() == reflect.Struct && !tagged {
			ti.collectFields(field.Type, index)
			continue
		}

		tag, err := ParseFieldTag(rawTag)
		if err != nil {
			ti.TagErrors = append(ti.TagErrors, fmt.Sprintf("field %s: %v", field.Name, err))
			tag = FieldTag{Role: RoleIgnore}
		}

		ti.Fields = append(ti.Fields, Field{
			Name:      field.Name,
			GraphName: graphName(&field, tag),
			Index:     index,
			Type:      field.Type,
			Tag:       tag,
		})
	}
}

func graphName(field *reflect.StructField, tag FieldTag) string {
	if tag.Name != "" {
		return tag.Name
	}
	if name := jsonTagName(field); name != "" {
		return name
	}
	return field.Name
}

// jsonTagName returns the name part of the json tag, or "" when the tag is
// absent, empty or "-".
func jsonTagName(field *reflect.StructField) string {
	tag := field.Tag.Get("json")
	if idx := strings.Index(tag, ","); idx != -1 {
		tag = tag[:idx]
	}
	if tag == "-" {
		return ""
	}
	return tag
}

// TypeName returns the package qualified name of t, or its string form for
// unnamed types.
func TypeName(t reflect.Type) string {
	t = indirect(t)
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
