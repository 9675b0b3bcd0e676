package stream

import (
	"context"
	"io"
	"slices"

	"github.com/shpandrak/shpanzip/internal/util"
)

// Just creates a stream of the given values. A stream of no values is known to be empty.
func Just[T any](values ...T) Stream[T] {
	return FromSlice(values)
}

// FromSlice creates a stream of the slice elements. The slice is cloned, later changes to it are not visible
// to the stream.
func FromSlice[T any](slice []T) Stream[T] {
	if len(slice) == 0 {
		return Empty[T]()
	}
	slc := slices.Clone(slice)
	return newStream(func(_ context.Context) (Cursor[T], error) {
		return &sliceCursor[T]{remaining: slc}, nil
	}, false)
}

// sliceCursor only moves a window over the cloned slice, so executions can share it
type sliceCursor[T any] struct {
	remaining []T
}

func (sc *sliceCursor[T]) Close() error {
	sc.remaining = nil
	return nil
}

func (sc *sliceCursor[T]) Next(ctx context.Context) (T, error) {
	if ctx.Err() != nil {
		return util.DefaultValue[T](), ctx.Err()
	}
	if len(sc.remaining) == 0 {
		return util.DefaultValue[T](), io.EOF
	}
	v := sc.remaining[0]
	sc.remaining = sc.remaining[1:]
	return v, nil
}
