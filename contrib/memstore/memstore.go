// Package memstore provides an in-memory BulkWriteExecutor.
//
// It keeps the latest document per (partition key, id) and answers with the
// status codes of the bulk-import service: 201 for a new document, 200 for a
// replaced one, 409 when a create finds an existing document and 400 for a
// document without an id. Failures can be injected per operation for tests of
// callers that handle partial failure.
package memstore

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/buger/jsonparser"

	graphbulk "github.com/graphbulk/graphbulk.go"
	"github.com/graphbulk/graphbulk.go/pkg/constants"
	"github.com/graphbulk/graphbulk.go/pkg/logger"
)

// FailureConfig makes every operation accepted by Matcher fail with
// StatusCode and Err instead of being stored.
type FailureConfig struct {
	// Matcher selects the operations to fail. A nil Matcher matches all.
	Matcher    func(op graphbulk.WriteOperation) bool
	StatusCode int
	Err        error
}

// MatchID matches operations for the document with the given id.
func MatchID(id string) func(op graphbulk.WriteOperation) bool {
	return func(op graphbulk.WriteOperation) bool {
		return op.ID == id
	}
}

type key struct {
	partition string
	id        string
}

type Option func(*Store)

func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Store is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	documents map[key][]byte
	failures  []FailureConfig
	logger    logger.Logger
}

var _ graphbulk.BulkWriteExecutor = (*Store)(nil)

func New(opts ...Option) *Store {
	s := &Store{
		documents: make(map[key][]byte),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddFailure registers a failure. The first matching failure wins.
func (s *Store) AddFailure(f FailureConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, f)
}

// Execute applies ops in order. When ctx is done, the remaining operations
// fail with the context error, which is also returned.
func (s *Store) Execute(ctx context.Context, ops []graphbulk.WriteOperation) ([]graphbulk.OperationResult, error) {
	results := make([]graphbulk.OperationResult, len(ops))

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(ops); j++ {
				results[j] = graphbulk.OperationResult{Operation: ops[j], Err: err}
			}
			return results, err
		}
		results[i] = s.apply(op)
	}

	return results, nil
}

func (s *Store) apply(op graphbulk.WriteOperation) graphbulk.OperationResult {
	result := graphbulk.OperationResult{Operation: op}

	for _, f := range s.failures {
		if f.Matcher == nil || f.Matcher(op) {
			result.StatusCode = f.StatusCode
			result.Err = f.Err
			s.logger.Debug("memstore injected failure", "id", op.ID, "status", f.StatusCode)
			return result
		}
	}

	id, err := jsonparser.GetString(op.Document, constants.VertexID)
	if err != nil {
		result.StatusCode = http.StatusBadRequest
		result.Err = fmt.Errorf("document has no id: %w", err)
		return result
	}

	k := key{partition: partitionString(op.PartitionKey), id: id}
	_, exists := s.documents[k]

	switch {
	case exists && op.Mode == graphbulk.ModeCreate:
		result.StatusCode = http.StatusConflict
		result.Err = fmt.Errorf("%w: %s in partition %s", constants.ErrConflict, id, k.partition)
		return result
	case exists:
		result.StatusCode = http.StatusOK
	default:
		result.StatusCode = http.StatusCreated
	}

	s.documents[k] = append([]byte(nil), op.Document...)
	s.logger.Debug("memstore stored document", "id", id, "kind", op.Kind.String(), "status", result.StatusCode)
	return result
}

// Get returns a copy of the stored document.
func (s *Store) Get(partitionKey any, id string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[key{partition: partitionString(partitionKey), id: id}]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), doc...), true
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// partitionString keeps partition values of different types apart, so the
// string "1" and the number 1 are distinct partitions.
func partitionString(pk any) string {
	return fmt.Sprintf("%T:%v", pk, pk)
}
