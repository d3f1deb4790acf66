// Package collection filters in-memory collections with RSQL. Search is the
// one-shot facade over parse, compile and filter; Collection keeps a set of
// records and emits events for every search run against it.
package collection

import (
	"context"
	"fmt"

	"github.com/asaidimu/go-rsql/core/predicate"
	"github.com/asaidimu/go-rsql/core/query"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SearchError is returned for any failure to parse, compile or evaluate a
// filter. Err holds the cause.
type SearchError struct {
	Filter string
	Err    error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search %q failed: %v", e.Filter, e.Err)
}

// Unwrap returns the cause.
func (e *SearchError) Unwrap() error {
	return e.Err
}

// Option configures a search or a Collection.
type Option func(*options)

type options struct {
	logger      *zap.Logger
	compiler    *predicate.Compiler
	concurrency int
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCompiler sets the compiler used for filters, for example one with
// custom operators registered.
func WithCompiler(c *predicate.Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// WithConcurrency evaluates records on up to n goroutines. Values below 2
// evaluate sequentially.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), concurrency: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.compiler == nil {
		o.compiler = predicate.NewCompiler(o.logger)
	}
	return o
}

// Search parses filter, compiles it and returns the records that match, in
// their original order. Every failure is returned as a *SearchError.
func Search[T any](ctx context.Context, filter string, records []T, opts ...Option) ([]T, error) {
	return search(ctx, filter, records, newOptions(opts))
}

func search[T any](ctx context.Context, filter string, records []T, o options) ([]T, error) {
	n, err := query.Parse(filter)
	if err != nil {
		return nil, &SearchError{Filter: filter, Err: err}
	}
	p, err := o.compiler.Compile(n)
	if err != nil {
		return nil, &SearchError{Filter: filter, Err: err}
	}
	matched, err := apply(ctx, p, records, o.concurrency)
	if err != nil {
		return nil, &SearchError{Filter: filter, Err: err}
	}
	o.logger.Debug("Search completed",
		zap.String("filter", filter),
		zap.Int("records", len(records)),
		zap.Int("matched", len(matched)),
	)
	return matched, nil
}

// Filter returns the records p matches, in their original order. The first
// evaluation error stops the filter and is returned.
func Filter[T any](ctx context.Context, p predicate.Predicate, records []T, opts ...Option) ([]T, error) {
	return apply(ctx, p, records, newOptions(opts).concurrency)
}

// cancelCheckInterval is how many records are evaluated between checks of
// the context.
const cancelCheckInterval = 1024

func apply[T any](ctx context.Context, p predicate.Predicate, records []T, concurrency int) ([]T, error) {
	keep := make([]bool, len(records))
	if concurrency < 2 || len(records) < 2 {
		if err := evaluate(ctx, p, records, keep, 0); err != nil {
			return nil, err
		}
	} else {
		eg, egCtx := errgroup.WithContext(ctx)
		size := (len(records) + concurrency - 1) / concurrency
		for start := 0; start < len(records); start += size {
			end := min(start+size, len(records))
			eg.Go(func() error {
				return evaluate(egCtx, p, records[start:end], keep[start:end], start)
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	matched := make([]T, 0, len(records))
	for i, ok := range keep {
		if ok {
			matched = append(matched, records[i])
		}
	}
	return matched, nil
}

// evaluate applies p to records, storing the results in keep. offset is the
// index of records[0] in the whole collection, used in error messages.
func evaluate[T any](ctx context.Context, p predicate.Predicate, records []T, keep []bool, offset int) error {
	for i, r := range records {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		ok, err := p(r)
		if err != nil {
			return fmt.Errorf("record %d: %w", offset+i, err)
		}
		keep[i] = ok
	}
	return nil
}
