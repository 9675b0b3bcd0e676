package stream

import (
	"context"
	"fmt"
	"io"

	"github.com/shpandrak/shpanzip/internal/util"
	"go.uber.org/multierr"
)

// Concat concatenates multiple streams into a single stream. the streams are joined sequentially one after the other.
// At most one inner stream is open at any time.
func Concat[T any](streams Stream[Stream[T]]) Stream[T] {
	return newStream(func(ctx context.Context) (Cursor[T], error) {
		outer, err := streams.Open(ctx)
		if err != nil {
			return nil, err
		}
		return &concatCursor[T]{outer: outer}, nil
	}, streams.knownEmpty)
}

// ConcatStreams concatenates multiple streams into a single stream. the streams are joined sequentially one after the other.
func ConcatStreams[T any](streams ...Stream[T]) Stream[T] {
	for _, s := range streams {
		if !s.knownEmpty {
			return Concat(Just(streams...))
		}
	}
	return Empty[T]()
}

type concatCursor[T any] struct {
	outer Cursor[Stream[T]]
	curr  Cursor[T]
}

func (cc *concatCursor[T]) Next(ctx context.Context) (T, error) {
	for {
		// First check if the context is done
		if ctx.Err() != nil {
			return util.DefaultValue[T](), ctx.Err()
		}

		if cc.curr == nil {
			// try getting the next stream (returning EOF when the outer stream is done)
			nextStream, err := cc.outer.Next(ctx)
			if err != nil {
				return util.DefaultValue[T](), err
			}
			if nextStream.knownEmpty {
				continue
			}
			cc.curr, err = nextStream.Open(ctx)
			if err != nil {
				return util.DefaultValue[T](), fmt.Errorf("failed opening concatenated stream: %w", err)
			}
		}

		v, err := cc.curr.Next(ctx)
		if err != io.EOF {
			return v, err
		}

		// If current Stream is done, close it and continue with the next one
		closeErr := cc.curr.Close()
		cc.curr = nil
		if closeErr != nil {
			return util.DefaultValue[T](), fmt.Errorf("failed closing concatenated stream: %w", closeErr)
		}
	}
}

func (cc *concatCursor[T]) Close() error {
	var err error
	if cc.curr != nil {
		err = cc.curr.Close()
		cc.curr = nil
	}
	return multierr.Append(err, cc.outer.Close())
}
