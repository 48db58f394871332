package schema

import (
	"fmt"
	"strings"
)

// TagName is the struct tag key that carries a field's graph role.
const TagName = "graph"

// Field role tags.
const (
	TagID           = "id"
	TagLabel        = "label"
	TagPartitionKey = "partitionKey"
	TagPropertyMap  = "properties"
	TagProperty     = "property"
	TagIgnore       = "-"
	TagSource       = "source"
	TagDestination  = "destination"
)

// OptionName overrides the graph name of a property or partition key field.
const OptionName = "name"

// Role is the graph role a struct field plays.
type Role int

const (
	// RoleNone marks an untagged field. Untagged fields are written as properties.
	RoleNone Role = iota
	RoleID
	RoleLabel
	RolePartitionKey
	RolePropertyMap
	RoleProperty
	RoleIgnore
	RoleEdgeEndpoint
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleID:
		return TagID
	case RoleLabel:
		return TagLabel
	case RolePartitionKey:
		return TagPartitionKey
	case RolePropertyMap:
		return TagPropertyMap
	case RoleProperty:
		return TagProperty
	case RoleIgnore:
		return "ignore"
	case RoleEdgeEndpoint:
		return "endpoint"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Direction identifies which side of an edge an endpoint field represents.
type Direction int

const (
	Source Direction = iota
	Destination
)

func (d Direction) String() string {
	if d == Destination {
		return "DESTINATION"
	}
	return "SOURCE"
}

// FieldTag is the parsed form of a `graph:"..."` struct tag.
type FieldTag struct {
	Role Role
	// Name is the configured graph name, empty when the field name is used.
	Name string
	// Direction is only meaningful for RoleEdgeEndpoint.
	Direction Direction
}

// ParseFieldTag parses the value of a graph struct tag.
// The empty string parses as RoleNone.
//
//	graph:"id"
//	graph:"partitionKey,name=country"
//	graph:"property,name=first_name"
//	graph:"source"
func ParseFieldTag(tag string) (FieldTag, error) {
	if tag == "" {
		return FieldTag{Role: RoleNone}, nil
	}

	parts := strings.Split(tag, ",")
	var ft FieldTag

	switch strings.TrimSpace(parts[0]) {
	case TagID:
		ft.Role = RoleID
	case TagLabel:
		ft.Role = RoleLabel
	case TagPartitionKey:
		ft.Role = RolePartitionKey
	case TagPropertyMap:
		ft.Role = RolePropertyMap
	case TagProperty:
		ft.Role = RoleProperty
	case TagIgnore:
		ft.Role = RoleIgnore
	case TagSource:
		ft.Role = RoleEdgeEndpoint
		ft.Direction = Source
	case TagDestination:
		ft.Role = RoleEdgeEndpoint
		ft.Direction = Destination
	default:
		return FieldTag{}, fmt.Errorf("unknown graph role %q", parts[0])
	}

	for _, opt := range parts[1:] {
		key, value, found := strings.Cut(opt, "=")
		if !found || strings.TrimSpace(key) != OptionName {
			return FieldTag{}, fmt.Errorf("unknown graph tag option %q", opt)
		}
		if ft.Role != RolePartitionKey && ft.Role != RoleProperty {
			return FieldTag{}, fmt.Errorf("graph role %q does not accept a name", parts[0])
		}
		ft.Name = strings.TrimSpace(value)
	}

	if ft.Role == RoleProperty && ft.Name == "" {
		return FieldTag{}, fmt.Errorf("graph role %q requires a name option", TagProperty)
	}

	return ft, nil
}
