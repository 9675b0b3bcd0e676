package stream

import (
	"context"
	"io"
	"iter"

	"github.com/shpandrak/shpanzip"
	"github.com/shpandrak/shpanzip/internal/util"
)

// FromIterator creates a stream from a Go iterator. Every execution pulls the sequence from the start,
// and stops it when the cursor is closed.
func FromIterator[E any](seq iter.Seq[E]) Stream[E] {
	if seq == nil {
		return Error[E](&ArgumentError{Param: "seq"})
	}
	return newStream(func(_ context.Context) (Cursor[E], error) {
		next, stop := iter.Pull(seq)
		return &iteratorCursor[E]{next: next, stop: stop}, nil
	}, false)
}

// FromIterator2 creates a stream of entries from a Go key/value iterator.
func FromIterator2[K comparable, V any](seq iter.Seq2[K, V]) Stream[shpanzip.Entry[K, V]] {
	if seq == nil {
		return Error[shpanzip.Entry[K, V]](&ArgumentError{Param: "seq"})
	}
	return FromIterator(func(yield func(shpanzip.Entry[K, V]) bool) {
		for k, v := range seq {
			if !yield(shpanzip.Entry[K, V]{Key: k, Value: v}) {
				return
			}
		}
	})
}

type iteratorCursor[E any] struct {
	next func() (E, bool)
	stop func()
}

func (ic *iteratorCursor[E]) Next(ctx context.Context) (E, error) {
	if ctx.Err() != nil {
		return util.DefaultValue[E](), ctx.Err()
	}
	e, ok := ic.next()
	if !ok {
		return util.DefaultValue[E](), io.EOF
	}
	return e, nil
}

func (ic *iteratorCursor[E]) Close() error {
	ic.stop()
	return nil
}
