package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/shpandrak/shpanzip"
	"github.com/shpandrak/shpanzip/internal/util"
	"go.uber.org/multierr"
)

// Stream is an immutable, reusable description of an asynchronous sequence.
// Nothing happens until the stream is materialized, and every materialization (Open, Consume, Collect...)
// is an independent execution with its own cursor, so the same Stream can be consumed concurrently.
type Stream[T any] struct {
	open       func(ctx context.Context) (Cursor[T], error)
	knownEmpty bool

	// err is set on streams that are known to fail, see Error
	err error
}

// NewStream creates a stream from a Provider factory. The factory is invoked once per execution.
func NewStream[T any](providerFactory func() Provider[T]) Stream[T] {
	return newStream(func(ctx context.Context) (Cursor[T], error) {
		return openProvider(ctx, providerFactory())
	}, false)
}

func newStream[T any](open func(ctx context.Context) (Cursor[T], error), knownEmpty bool) Stream[T] {
	return Stream[T]{open: open, knownEmpty: knownEmpty}
}

type CreateStreamOption struct {
	openFunc  func(ctx context.Context) error
	closeFunc func() error
}

func WithOpenFuncOption(openFunc func(ctx context.Context) error) CreateStreamOption {
	return CreateStreamOption{openFunc: openFunc}
}

func WithCloseFuncOption(closeFunc func() error) CreateStreamOption {
	return CreateStreamOption{closeFunc: closeFunc}
}

// NewSimpleStream creates a stream from a generator function. providerFuncFactory is called once per
// execution, so the returned ProviderFunc may safely capture per-execution state.
func NewSimpleStream[T any](providerFuncFactory func() ProviderFunc[T], options ...CreateStreamOption) Stream[T] {
	var openFunc func(ctx context.Context) error
	var closeFunc func() error

	for _, option := range options {
		if option.openFunc != nil {
			openFunc = option.openFunc
		}
		if option.closeFunc != nil {
			closeFunc = option.closeFunc
		}
	}

	return NewStream(func() Provider[T] {
		return &simpleProvider[T]{
			Lifecycle: NewLifecycle(openFunc, closeFunc),
			emit:      providerFuncFactory(),
		}
	})
}

type simpleProvider[T any] struct {
	Lifecycle
	emit ProviderFunc[T]
}

func (sp *simpleProvider[T]) Emit(ctx context.Context) (T, error) {
	return sp.emit(ctx)
}

// FromSource wraps any Source as a Stream, keeping its known-empty capability.
func FromSource[T any](src Source[T]) Stream[T] {
	if s, ok := src.(Stream[T]); ok {
		return s
	}
	if isAbsent(src) {
		return Error[T](&ArgumentError{Param: "source"})
	}
	return newStream(src.Open, KnownEmpty(src))
}

// Open starts a new execution of the stream. The caller owns the returned cursor and must close it.
func (s Stream[T]) Open(ctx context.Context) (Cursor[T], error) {
	if s.open == nil {
		return nil, &ArgumentError{Param: "stream"}
	}
	return s.open(ctx)
}

// Err returns the error a stream is known to fail with before it is ever opened, e.g. a zip given a nil source.
// A nil result does not mean the stream will not fail.
func (s Stream[T]) Err() error {
	return s.err
}

// KnownEmpty reports whether the stream is statically known to produce no elements.
func (s Stream[T]) KnownEmpty() bool {
	return s.knownEmpty
}

// Consume consumes the entire stream and applies the provided function to each element (sometimes named ForEach)
// It returns an error if the stream materialization fails in any stage of the pipeline
// For empty streams, it returns immediately with no error
// For infinite streams, it will block until the stream either ctx is cancelled, stream is done or an error occurs
func (s Stream[T]) Consume(ctx context.Context, f func(T)) error {
	return s.ConsumeWithErr(ctx, func(v T) error {
		f(v)
		return nil
	})
}

// MustConsume is a convenience method that panics if the stream errors
func (s Stream[T]) MustConsume(f func(T)) {
	err := s.Consume(context.Background(), f)
	if err != nil {
		panic(err)
	}
}

// ConsumeWithErr consumes the entire stream and applies the provided function to each element (sometimes named ForEach)
// Allows to return an error from the function to stop the pipeline
// It returns an error if the stream materialization fails in any stage of the pipeline
func (s Stream[T]) ConsumeWithErr(ctx context.Context, f func(T) error) error {
	return s.ConsumeWithErrAndCtx(ctx, func(_ context.Context, v T) error {
		return f(v)
	})
}

// ConsumeWithErrAndCtx consumes the entire stream and applies the provided function to each element (sometimes named ForEach)
// Allows to return an error from the function to stop the pipeline,
// passing through the context allowing the function to gracefully cancel
// It returns an error if the stream materialization fails in any stage of the pipeline.
// The cursor is always closed, errors from closing it are appended to the returned error.
func (s Stream[T]) ConsumeWithErrAndCtx(ctx context.Context, f func(ctx context.Context, value T) error) (err error) {

	// Adding a panic recovery to avoid leaking resources and allow returning an error via panic instead of returning it
	defer func() {
		if rvr := recover(); rvr != nil {
			err = multierr.Append(recoveredError(rvr), err)
		}
	}()

	cursor, err := s.Open(ctx)
	if err != nil {
		return err
	}

	defer func() {
		err = multierr.Append(err, cursor.Close())
	}()

	for {

		// Make sure to check if the context is done before trying to get the next item
		if ctx.Err() != nil {
			return ctx.Err()
		}
		v, err := cursor.Next(ctx)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		err = f(ctx, v)
		if err != nil {
			return err
		}
	}
}

func recoveredError(rvr any) error {
	slog.Error(fmt.Sprintf("Panic recovered: %v\n%s", rvr, debug.Stack()))
	asErr, ok := rvr.(error)
	if ok {
		return fmt.Errorf("stream recovered error: %w", asErr)
	}
	return fmt.Errorf("stream recovered error value: %v", rvr)
}

// FindFirst returns the first element of the stream, or nil if the stream is empty.
// Only a single element is pulled from the stream.
func (s Stream[T]) FindFirst(ctx context.Context) (*T, error) {
	itemArr, err := s.Limit(1).Collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(itemArr) > 0 {
		return &itemArr[0], nil
	}
	return nil, nil
}

// MustFindFirst is like FindFirst but panics if the stream errors or is empty
func (s Stream[T]) MustFindFirst() T {
	first, err := s.FindFirst(context.Background())
	if err != nil {
		panic(err)
	}
	if first == nil {
		panic(errors.New("no \"first element\" in an empty stream"))
	}
	return *first
}

// FindLast consumes the stream and returns the last element, or nil if the stream is empty.
func (s Stream[T]) FindLast(ctx context.Context) (*T, error) {
	var result *T
	err := s.Consume(ctx, func(v T) {
		result = &v
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Collect materializes the stream, and collects all elements of the stream into a slice
// It returns an error if the stream materialization fails in any stage of the pipeline
func (s Stream[T]) Collect(ctx context.Context) ([]T, error) {
	var result []T
	err := s.Consume(ctx, func(v T) {
		result = append(result, v)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MustCollect is a convenience method that panics if the stream errors
// should be used for testing purpose or when streams are static (e.g. slice sourced streams)
func (s Stream[T]) MustCollect() []T {
	result, err := s.Collect(context.Background())
	if err != nil {
		panic(err)
	}
	return result
}

func (s Stream[T]) Filter(predicate shpanzip.Predicate[T]) Stream[T] {
	return s.FilterWithErAndCtx(predicate.ToErrCtx())
}

func (s Stream[T]) FilterWithErr(predicate shpanzip.PredicateWithErr[T]) Stream[T] {
	return s.FilterWithErAndCtx(predicate.ToErrCtx())
}

func (s Stream[T]) FilterWithErAndCtx(predicate shpanzip.PredicateWithErrAndCtx[T]) Stream[T] {
	if predicate == nil {
		return Error[T](&ArgumentError{Param: "predicate"})
	}
	return newDownStream(s, func(ctx context.Context, src Cursor[T]) (T, error) {
		for {
			v, err := src.Next(ctx)
			if err != nil {
				return v, err
			}
			shouldKeep, err := predicate(ctx, v)
			if err != nil {
				// Wrapping errors, e.g. we don't want EOF accidentally returned from here
				return util.DefaultValue[T](), fmt.Errorf("filter failed for Stream: %w", err)
			}
			if shouldKeep {
				return v, nil
			}
		}
	}, s.knownEmpty)
}

// Count counts the number of elements in the stream (materializes the stream)
func (s Stream[T]) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.Consume(ctx, func(v T) {
		count++
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MustCount is a convenience method that panics if the stream errors.
// Should be used for testing purpose or when streams are static (e.g. slice sourced streams)
func (s Stream[T]) MustCount() int {
	count, err := s.Count(context.Background())
	if err != nil {
		panic(err)
	}
	return count
}

// IsEmpty checks whether the stream has any element. Known empty streams are not opened at all.
func (s Stream[T]) IsEmpty(ctx context.Context) (bool, error) {
	if s.knownEmpty {
		return true, nil
	}
	first, err := s.FindFirst(ctx)
	if err != nil {
		return false, err
	}
	return first == nil, nil
}

// WithAdditionalLifecycle returns a stream that opens lch before every execution and closes it
// after the execution's cursor is closed.
func (s Stream[T]) WithAdditionalLifecycle(lch Lifecycle) Stream[T] {
	return newStream(func(ctx context.Context) (Cursor[T], error) {
		err := lch.Open(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open stream lifecycle element: %w", err)
		}
		c, err := s.Open(ctx)
		if err != nil {
			return nil, multierr.Append(err, lch.Close())
		}
		return &lifecycleCursor[T]{Cursor: c, lc: lch}, nil
	}, s.knownEmpty)
}

// Peek allows to peek at the elements of the stream without consuming them
// Peek will not materialize the stream, and will be invoked only (and if) the stream is materialized
func (s Stream[T]) Peek(f func(v T)) Stream[T] {
	return Map(
		s,
		func(v T) T {
			f(v)
			return v
		})
}

// FromFetcher converts an optional value fetcher to a Stream (or either a single element, empty stream, or an error stream)
func FromFetcher[T any](fetcher func(ctx context.Context) (*T, error)) Stream[T] {
	if fetcher == nil {
		return Error[T](&ArgumentError{Param: "fetcher"})
	}
	return NewSimpleStream(func() ProviderFunc[T] {
		alreadyFetched := false
		return func(ctx context.Context) (T, error) {
			if alreadyFetched {
				return util.DefaultValue[T](), io.EOF
			}
			alreadyFetched = true

			v, err := fetcher(ctx)
			if err != nil {
				return util.DefaultValue[T](), err
			}
			if v == nil {
				return util.DefaultValue[T](), io.EOF
			}
			return *v, nil
		}
	})
}
