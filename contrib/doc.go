// Package contrib provides additional functionality built on the graphbulk
// pipeline.
//
// Note that this package is outside of the backward compatibility guarantees
// provided by the core graphbulk packages. Changes to this package may
// introduce breaking changes without following semantic versioning.
//
// [github.com/graphbulk/graphbulk.go/contrib/memstore] is an in-memory
// BulkWriteExecutor with failure injection, useful in tests and local runs.
// [github.com/graphbulk/graphbulk.go/contrib/bulkload] converts, batches and
// executes whole loads and reports their results.
package contrib
