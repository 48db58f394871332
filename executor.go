package graphbulk

import "context"

// BulkWriteExecutor writes operations to a store. Implementations own
// timeouts, retries and partial failure; one result is returned per
// operation, in order. The error is reserved for failures of the whole call.
type BulkWriteExecutor interface {
	Execute(ctx context.Context, ops []WriteOperation) ([]OperationResult, error)
}

// OperationResult is the outcome of one operation. StatusCode follows HTTP
// conventions.
type OperationResult struct {
	Operation  WriteOperation
	StatusCode int
	Err        error
}

func (r OperationResult) Succeeded() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}
