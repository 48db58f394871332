// The [graphbulk] package turns tagged Go values into the JSON documents of a
// property-graph bulk-import service.
//
// # Declaring types
//
// A vertex type embeds [schema.Vertex] and tags its fields with the graph role
// they play. An edge type embeds [schema.Edge] and tags the fields holding its
// two endpoints:
//
//	type Person struct {
//		schema.Vertex `label:"PERSON"`
//		ID        string `graph:"id" json:"id"`
//		Country   string `graph:"partitionKey" json:"country"`
//		FirstName string `json:"firstName"`
//	}
//
//	type Knows struct {
//		schema.Edge `label:"knows" partitionKey:"country"`
//		From Person  `graph:"source"`
//		To   *Person `graph:"destination"`
//	}
//
// Untagged exported fields become properties. See [github.com/graphbulk/graphbulk.go/pkg/schema]
// for every tag.
//
// # Pipeline
//
// Each object goes through the same steps:
//
//   - its type is validated once and the result is cached ([github.com/graphbulk/graphbulk.go/pkg/validator])
//   - its fields are extracted into a canonical [models.Vertex] or [models.Edge] ([github.com/graphbulk/graphbulk.go/pkg/mapper])
//   - the canonical entity validates itself and is written as JSON ([github.com/graphbulk/graphbulk.go/pkg/wire])
//   - the document is wrapped in a [WriteOperation] for a [BulkWriteExecutor]
//
// [OperationBuilder] runs all of them. The package never talks to a store;
// [github.com/graphbulk/graphbulk.go/contrib/memstore] is an in-memory
// executor and [github.com/graphbulk/graphbulk.go/contrib/bulkload] batches and
// executes whole loads.
//
// [schema.Vertex]: https://pkg.go.dev/github.com/graphbulk/graphbulk.go/pkg/schema#Vertex
// [schema.Edge]: https://pkg.go.dev/github.com/graphbulk/graphbulk.go/pkg/schema#Edge
// [models.Vertex]: https://pkg.go.dev/github.com/graphbulk/graphbulk.go/pkg/models#Vertex
// [models.Edge]: https://pkg.go.dev/github.com/graphbulk/graphbulk.go/pkg/models#Edge
package graphbulk
