package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Cursor is a single use, stateful reader obtained by opening a Source.
// Next returns io.EOF once the cursor is exhausted.
// Whoever opened the cursor owns it and must Close it exactly once.
type Cursor[T any] interface {
	Next(ctx context.Context) (T, error)
	Close() error
}

// Source is a reusable handle of an asynchronous sequence. Every call to Open starts an
// independent execution with its own Cursor. Stream implements Source.
type Source[T any] interface {
	Open(ctx context.Context) (Cursor[T], error)
}

// KnownEmptySource is an optional capability of a Source, reporting that the source is
// guaranteed to produce no elements. It must be cheap, free of side effects and must never report true
// for a source that could produce elements.
type KnownEmptySource interface {
	KnownEmpty() bool
}

// KnownEmpty reports whether src is statically known to be empty, without opening it.
// Sources that do not implement KnownEmptySource are never known to be empty.
func KnownEmpty[T any](src Source[T]) bool {
	if src == nil {
		return false
	}
	if ke, ok := src.(KnownEmptySource); ok {
		return ke.KnownEmpty()
	}
	return false
}

var (
	// ErrInvalidArgument is wrapped by every ArgumentError
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCursorClosed is returned when pulling from a cursor that was already disposed
	ErrCursorClosed = errors.New("cursor already closed")
)

// ArgumentError reports an absent source or function passed to a stream combinator.
type ArgumentError struct {
	Param string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s must not be nil", ErrInvalidArgument, e.Param)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// isAbsent reports nil sources and zero value streams
func isAbsent[T any](src Source[T]) bool {
	if src == nil {
		return true
	}
	if s, ok := src.(Stream[T]); ok {
		return s.open == nil
	}
	if s, ok := src.(*Stream[T]); ok {
		return s == nil || s.open == nil
	}
	return false
}

// emptyCursor is the cursor of the canonical empty stream
type emptyCursor[T any] struct{}

func (emptyCursor[T]) Next(_ context.Context) (T, error) {
	var zero T
	return zero, io.EOF
}

func (emptyCursor[T]) Close() error {
	return nil
}
