// Package bulkload converts whole collections of domain objects and writes
// them through a BulkWriteExecutor.
//
// A load converts the vertices, then the edges, with a bounded number of
// workers, and executes the resulting operations in batches; all vertex
// batches finish before the first edge batch starts. Progress, counts and
// failures are collected in Results.
package bulkload

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/errgroup"

	graphbulk "github.com/graphbulk/graphbulk.go"
	"github.com/graphbulk/graphbulk.go/pkg/constants"
	"github.com/graphbulk/graphbulk.go/pkg/logger"
	"github.com/graphbulk/graphbulk.go/pkg/mapper"
	"github.com/graphbulk/graphbulk.go/pkg/schema"
	"github.com/graphbulk/graphbulk.go/pkg/validator"
)

// Load states.
const (
	StateConvertVertices = "Converting vertices"
	StateConvertEdges    = "Converting edges"
	StateLoadVertices    = "Loading vertices"
	StateLoadEdges       = "Loading edges"
)

type Option func(*Loader)

func WithBuilder(b *graphbulk.OperationBuilder) Option {
	return func(l *Loader) {
		l.builder = b
	}
}

func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		l.logger = log
	}
}

type Loader struct {
	cfg      Config
	executor graphbulk.BulkWriteExecutor
	builder  *graphbulk.OperationBuilder
	logger   logger.Logger
}

func New(executor graphbulk.BulkWriteExecutor, cfg Config, opts ...Option) (*Loader, error) {
	if executor == nil {
		return nil, fmt.Errorf("%w: executor is required", constants.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Loader{
		cfg:      cfg,
		executor: executor,
		builder:  graphbulk.NewOperationBuilder(),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Load converts and writes vertices and edges. The returned Results are
// never nil; the error is set when the load was aborted.
func (l *Loader) Load(ctx context.Context, vertices, edges []any) (*Results, error) {
	results := NewResults(l.logger)
	defer results.End()

	results.TransitionState(StateConvertVertices)
	vertexOps, err := l.convert(ctx, schema.KindVertex, vertices, results)
	if err != nil {
		results.Failure(err)
		return results, err
	}

	results.TransitionState(StateConvertEdges)
	edgeOps, err := l.convert(ctx, schema.KindEdge, edges, results)
	if err != nil {
		results.Failure(err)
		return results, err
	}

	results.SetCounts(len(vertexOps), len(edgeOps))

	results.TransitionState(StateLoadVertices)
	if err := l.execute(ctx, vertexOps, results); err != nil {
		results.Failure(err)
		return results, err
	}

	results.TransitionState(StateLoadEdges)
	if err := l.execute(ctx, edgeOps, results); err != nil {
		results.Failure(err)
		return results, err
	}

	return results, nil
}

// convert builds the operations of objs in parallel, keeping input order.
// With ContinueOnError, a type that fails validation is reported once and
// its remaining instances are skipped.
func (l *Loader) convert(ctx context.Context, kind schema.Kind, objs []any, results *Results) ([]graphbulk.WriteOperation, error) {
	ops := make([]graphbulk.WriteOperation, len(objs))
	built := make([]bool, len(objs))

	var invalidTypes sync.Map // reflect.Type -> struct{}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(l.cfg.Workers)

	for i, obj := range objs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			t := reflect.TypeOf(obj)
			for t != nil && t.Kind() == reflect.Pointer {
				t = t.Elem()
			}
			if t != nil {
				if _, invalid := invalidTypes.Load(t); invalid {
					results.addSkipped(1)
					return nil
				}
			}

			op, err := l.builder.Operation(obj, l.cfg.Mode)
			if err == nil {
				ops[i] = op
				built[i] = true
				return nil
			}

			if !l.cfg.ContinueOnError {
				return fmt.Errorf("%s %d: %w", kind, i, err)
			}

			if invalidType(err, t) {
				if _, seen := invalidTypes.LoadOrStore(t, struct{}{}); seen {
					results.addSkipped(1)
					return nil
				}
			}
			results.addFailed(1)
			results.AddRecordError(RecordError{Index: i, Kind: kind.String(), Err: err})
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	kept := ops[:0]
	for i, op := range ops {
		if built[i] {
			kept = append(kept, op)
		}
	}
	return kept, nil
}

// invalidType reports whether err is the validation failure of t itself. A
// conversion error wrapping the failure of a nested endpoint type does not
// count: only that record is lost.
func invalidType(err error, t reflect.Type) bool {
	if t == nil {
		return false
	}
	var ce *mapper.ConversionError
	if errors.As(err, &ce) {
		return false
	}
	var ve *validator.ValidationError
	if !errors.As(err, &ve) || ve.Type == nil {
		return false
	}
	vt := ve.Type
	for vt.Kind() == reflect.Pointer {
		vt = vt.Elem()
	}
	return vt == t
}

// execute runs ops in batches of BatchSize, at most Workers at a time.
func (l *Loader) execute(ctx context.Context, ops []graphbulk.WriteOperation, results *Results) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(l.cfg.Workers)

	for start := 0; start < len(ops); start += l.cfg.BatchSize {
		batch := ops[start:min(start+l.cfg.BatchSize, len(ops))]

		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return l.executeBatch(ctx, batch, results)
			}
		})
	}

	return eg.Wait()
}

func (l *Loader) executeBatch(ctx context.Context, batch []graphbulk.WriteOperation, results *Results) error {
	l.logger.Debug("bulkload executing batch", "size", len(batch), "first_id", batch[0].ID)

	res, err := l.executor.Execute(ctx, batch)
	if err != nil {
		return fmt.Errorf("%w: %w", constants.ErrWriteFailed, err)
	}

	failed := 0
	for _, r := range res {
		if r.Succeeded() {
			continue
		}
		failed++
		err := r.Err
		if err == nil {
			err = fmt.Errorf("%w: status %d", constants.ErrWriteFailed, r.StatusCode)
		}
		results.AddRecordError(RecordError{
			Index:      -1,
			Kind:       r.Operation.Kind.String(),
			ID:         r.Operation.ID,
			StatusCode: r.StatusCode,
			Err:        err,
		})
	}
	results.addSucceeded(len(res) - failed)
	results.addFailed(failed)

	if failed > 0 && !l.cfg.ContinueOnError {
		return fmt.Errorf("%w: %d of %d operations in batch", constants.ErrWriteFailed, failed, len(batch))
	}
	return nil
}
