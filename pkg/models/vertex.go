package models

import "strings"

// Vertex is the canonical form of a graph node document.
type Vertex struct {
	ID           string
	Label        string
	PartitionKey *PartitionKey
	Properties   Properties
}

// NewVertex returns a vertex that has passed Validate.
func NewVertex(id, label string, pk PartitionKey, properties Properties) (*Vertex, error) {
	v := &Vertex{
		ID:           id,
		Label:        label,
		PartitionKey: &pk,
		Properties:   properties,
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate checks the id, label and partition key. It is safe to call on
// vertices built by hand.
func (v *Vertex) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return &ModelInvariantError{Entity: "vertex", Attribute: "id"}
	}
	if strings.TrimSpace(v.Label) == "" {
		return &ModelInvariantError{Entity: "vertex", Attribute: "label", ID: v.ID}
	}
	if v.PartitionKey == nil {
		return &ModelInvariantError{Entity: "vertex", Attribute: "partition key", ID: v.ID}
	}
	if err := v.PartitionKey.Validate(); err != nil {
		return &ModelInvariantError{Entity: "vertex", Attribute: "partition key", ID: v.ID, Err: err}
	}
	return nil
}

// AddProperty adds a property; nil values are ignored.
func (v *Vertex) AddProperty(key string, value any) {
	v.Properties.Set(key, value)
}
