package mapper

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/graphbulk/graphbulk.go/pkg/constants"
	"github.com/graphbulk/graphbulk.go/pkg/models"
	"github.com/graphbulk/graphbulk.go/pkg/schema"
)

var (
	partitionKeyType = reflect.TypeOf(models.PartitionKey{})
	endpointInfoType = reflect.TypeOf(models.EndpointInfo{})
	vertexType       = reflect.TypeOf(models.Vertex{})
)

// descriptor is the precomputed extraction plan of a validated type. It only
// exists for types without violations, so every lookup below may assume the
// role counts the validator enforces.
type descriptor struct {
	info     *schema.TypeInfo
	typeName string

	id           *schema.Field
	label        *schema.Field
	partitionKey *schema.Field
	source       *schema.Field
	destination  *schema.Field

	properties []schema.Field
}

func newDescriptor(info *schema.TypeInfo) *descriptor {
	d := &descriptor{
		info:     info,
		typeName: schema.TypeName(info.Type),
	}

	for i := range info.Fields {
		f := &info.Fields[i]
		switch f.Tag.Role {
		case schema.RoleID:
			d.id = f
		case schema.RoleLabel:
			d.label = f
		case schema.RolePartitionKey:
			d.partitionKey = f
		case schema.RoleEdgeEndpoint:
			if f.Tag.Direction == schema.Source {
				d.source = f
			} else {
				d.destination = f
			}
		case schema.RoleNone, schema.RoleProperty, schema.RolePropertyMap:
			d.properties = append(d.properties, *f)
		}
	}

	return d
}

func (d *descriptor) kind() schema.Kind {
	return d.info.Declaration.Kind
}

func (d *descriptor) fail(f *schema.Field, err error) *ConversionError {
	ce := &ConversionError{TypeName: d.typeName, Err: err}
	if f != nil {
		ce.Field = f.Name
		ce.Role = f.Tag.Role
	}
	return ce
}

// resolveLabel applies the label precedence: a declaration label wins, then a
// label field, then the GraphLabel method.
func (d *descriptor) resolveLabel(v reflect.Value) (string, error) {
	if d.info.Declaration.HasLabel() {
		return d.info.Declaration.Label, nil
	}

	var label string
	if d.info.LabelGetter {
		label = callLabelGetter(v)
	}
	if d.label != nil {
		s, ok, err := stringValue(v.FieldByIndex(d.label.Index))
		if err != nil {
			return "", d.fail(d.label, err)
		}
		if ok {
			label = s
		}
	}
	return label, nil
}

// resolveID returns the id field value. A missing or blank id is an error.
func (d *descriptor) resolveID(v reflect.Value) (string, error) {
	s, _, err := stringValue(v.FieldByIndex(d.id.Index))
	if err != nil {
		return "", d.fail(d.id, err)
	}
	if isBlank(s) {
		return "", d.fail(d.id, constants.ErrMissingID)
	}
	return s, nil
}

// partitionValue returns the raw value of the partition key field, unwrapping
// a models.PartitionKey.
func (d *descriptor) partitionValue(v reflect.Value) any {
	fv, ok := deref(v.FieldByIndex(d.partitionKey.Index))
	if !ok {
		return nil
	}
	if fv.Type() == partitionKeyType {
		return fv.Interface().(models.PartitionKey).Value()
	}
	return fv.Interface()
}

func (d *descriptor) resolvePartitionKey(v reflect.Value) (models.PartitionKey, error) {
	pk, err := models.NewPartitionKey(d.partitionKey.GraphName, d.partitionValue(v))
	if err != nil {
		return models.PartitionKey{}, d.fail(d.partitionKey, err)
	}
	return pk, nil
}

// endpointInfo snapshots the vertex v for use as an edge endpoint.
func (d *descriptor) endpointInfo(v reflect.Value) (models.EndpointInfo, error) {
	id, err := d.resolveID(v)
	if err != nil {
		return models.EndpointInfo{}, err
	}
	label, err := d.resolveLabel(v)
	if err != nil {
		return models.EndpointInfo{}, err
	}
	return models.EndpointInfo{
		ID:           id,
		Label:        label,
		PartitionKey: d.partitionValue(v),
	}, nil
}

func (d *descriptor) collectProperties(v reflect.Value) (models.Properties, error) {
	var props models.Properties

	for i := range d.properties {
		f := &d.properties[i]
		fv := v.FieldByIndex(f.Index)

		if f.Tag.Role != schema.RolePropertyMap {
			if value, ok := propertyValue(fv); ok {
				props.Set(f.GraphName, value)
			}
			continue
		}

		m, ok := deref(fv)
		if !ok {
			continue
		}
		if m.Kind() != reflect.Map || m.Type().Key().Kind() != reflect.String {
			return props, d.fail(f, fmt.Errorf("%w: property map must be keyed by string, got %s",
				constants.ErrUnsupportedValue, m.Type()))
		}

		keys := m.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return keys[i].String() < keys[j].String()
		})
		for _, k := range keys {
			if value, ok := propertyValue(m.MapIndex(k)); ok {
				props.Set(k.String(), value)
			}
		}
	}

	return props, nil
}

// callLabelGetter invokes GraphLabel on v, taking the address of a copy when
// the method has a pointer receiver and v is not addressable.
func callLabelGetter(v reflect.Value) string {
	if getter, ok := v.Interface().(schema.LabelGetter); ok {
		return getter.GraphLabel()
	}

	var ptr reflect.Value
	if v.CanAddr() {
		ptr = v.Addr()
	} else {
		ptr = reflect.New(v.Type())
		ptr.Elem().Set(v)
	}
	if getter, ok := ptr.Interface().(schema.LabelGetter); ok {
		return getter.GraphLabel()
	}
	return ""
}

// deref follows pointers and interfaces. ok is false when a nil is reached.
func deref(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

// propertyValue returns the value to store for a property. ok is false for
// nil values, which are never stored.
func propertyValue(v reflect.Value) (any, bool) {
	v, ok := deref(v)
	if !ok {
		return nil, false
	}
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil, false
		}
	}
	return v.Interface(), true
}

// stringValue reads a string kinded value. ok is false when the value is nil.
func stringValue(v reflect.Value) (string, bool, error) {
	v, ok := deref(v)
	if !ok {
		return "", false, nil
	}
	if v.Kind() != reflect.String {
		return "", false, fmt.Errorf("%w: expected a string, got %s", constants.ErrUnsupportedValue, v.Type())
	}
	return v.String(), true, nil
}
