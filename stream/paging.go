package stream

import (
	"context"
	"io"

	"github.com/shpandrak/shpanzip/internal/util"
)

// Limit stops the stream after limit elements. The source is never pulled past the limit.
func (s Stream[T]) Limit(limit int) Stream[T] {
	if limit <= 0 {
		return Empty[T]()
	}
	return NewDownStream(s, func() DownStreamProvider[T, T] {
		return &limitProvider[T]{limit: limit}
	}).withKnownEmpty(s.knownEmpty)
}

type limitProvider[T any] struct {
	limit    int
	consumed int
}

func (l *limitProvider[T]) Open(_ context.Context, _ Cursor[T]) error {
	return nil
}

func (l *limitProvider[T]) Emit(ctx context.Context, src Cursor[T]) (T, error) {
	if l.consumed >= l.limit {
		return util.DefaultValue[T](), io.EOF
	}
	v, err := src.Next(ctx)
	if err != nil {
		// this covers for both EOF and any other error
		return util.DefaultValue[T](), err
	}
	l.consumed++
	return v, nil
}

func (l *limitProvider[T]) Close() error {
	return nil
}

// Skip drops the first skip elements of the stream. Skipped elements are pulled lazily, on the first pull.
func (s Stream[T]) Skip(skip int) Stream[T] {
	if skip <= 0 {
		return s
	}
	return NewDownStream(s, func() DownStreamProvider[T, T] {
		return &skipProvider[T]{skip: skip}
	}).withKnownEmpty(s.knownEmpty)
}

type skipProvider[T any] struct {
	skip           int
	alreadySkipped bool
}

func (sp *skipProvider[T]) Open(_ context.Context, _ Cursor[T]) error {
	return nil
}

func (sp *skipProvider[T]) Emit(ctx context.Context, src Cursor[T]) (T, error) {
	if ctx.Err() != nil {
		return util.DefaultValue[T](), ctx.Err()
	}
	if !sp.alreadySkipped {
		sp.alreadySkipped = true
		for i := 0; i < sp.skip; i++ {
			v, err := src.Next(ctx)
			if err != nil {
				return v, err
			}
		}
	}
	return src.Next(ctx)
}

func (sp *skipProvider[T]) Close() error {
	return nil
}

func (s Stream[T]) Page(pageNum int, pageSize int) Stream[T] {
	if pageNum < 0 || pageSize <= 0 {
		return Empty[T]()
	}
	skipped := pageNum * pageSize
	return s.Skip(skipped).Limit(pageSize)
}

func (s Stream[T]) withKnownEmpty(knownEmpty bool) Stream[T] {
	s.knownEmpty = knownEmpty
	return s
}
