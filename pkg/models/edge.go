package models

import (
	"fmt"
	"strings"
)

// EndpointInfo is the snapshot of one vertex an edge points at.
type EndpointInfo struct {
	ID    string
	Label string
	// PartitionKey is the raw partition value of the vertex.
	PartitionKey any
}

// EndpointInfoFromVertex snapshots a canonical vertex.
func EndpointInfoFromVertex(v *Vertex) EndpointInfo {
	info := EndpointInfo{ID: v.ID, Label: v.Label}
	if v.PartitionKey != nil {
		info.PartitionKey = v.PartitionKey.Value()
	}
	return info
}

// Edge is the canonical form of a graph relationship document.
type Edge struct {
	ID           string
	Label        string
	Source       *EndpointInfo
	Destination  *EndpointInfo
	PartitionKey *PartitionKey
	Properties   Properties
}

// NewEdge returns an edge that has passed Validate. An empty id is replaced by
// a generated one. The partition key is built from partitionKeyFieldName and
// the partition value of the source endpoint.
func NewEdge(id, label string, source, destination EndpointInfo, partitionKeyFieldName string, properties Properties) (*Edge, error) {
	if id == "" {
		id = NewID()
	}

	pk, err := NewPartitionKey(partitionKeyFieldName, source.PartitionKey)
	if err != nil {
		return nil, &ModelInvariantError{
			Entity:    "edge",
			Attribute: "partition key",
			ID:        fmt.Sprintf("%s, Source ID: %s, Destination ID: %s", id, source.ID, destination.ID),
			Err:       err,
		}
	}

	e := &Edge{
		ID:           id,
		Label:        label,
		Source:       &source,
		Destination:  &destination,
		PartitionKey: &pk,
		Properties:   properties,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks every attribute the wire document needs. It is safe to call
// on edges built by hand.
func (e *Edge) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return &ModelInvariantError{Entity: "edge", Attribute: "id"}
	}
	if strings.TrimSpace(e.Label) == "" {
		return &ModelInvariantError{Entity: "edge", Attribute: "label", ID: e.ID}
	}
	if e.Source == nil || strings.TrimSpace(e.Source.ID) == "" {
		return &ModelInvariantError{Entity: "edge", Attribute: "source vertex information", ID: e.ID}
	}
	if e.Destination == nil || strings.TrimSpace(e.Destination.ID) == "" {
		return &ModelInvariantError{Entity: "edge", Attribute: "destination vertex information", ID: e.ID}
	}
	if e.PartitionKey == nil {
		return &ModelInvariantError{
			Entity:    "edge",
			Attribute: "partition key",
			ID:        fmt.Sprintf("%s, Source ID: %s, Destination ID: %s", e.ID, e.Source.ID, e.Destination.ID),
		}
	}
	if err := e.PartitionKey.Validate(); err != nil {
		return &ModelInvariantError{Entity: "edge", Attribute: "partition key", ID: e.ID, Err: err}
	}
	return nil
}

// AddProperty adds a property; nil values are ignored.
func (e *Edge) AddProperty(key string, value any) {
	e.Properties.Set(key, value)
}
