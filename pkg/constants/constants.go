package constants

// Document field names required by the bulk-import service.
const (
	VertexID    = "id"
	VertexLabel = "label"

	PropertyID    = "id"
	PropertyValue = "_value"

	EdgeMarker               = "_isEdge"
	EdgeID                   = "id"
	EdgeLabel                = "label"
	EdgeDestinationID        = "_sink"
	EdgeDestinationLabel     = "_sinkLabel"
	EdgeDestinationPartition = "_sinkPartition"
	EdgeSourceID             = "_vertexId"
	EdgeSourceLabel          = "_vertexLabel"
)
