package stream

import (
	"context"

	"go.uber.org/multierr"
)

type downStreamProviderFunc[S any, T any] func(ctx context.Context, src Cursor[S]) (T, error)

// DownStreamProvider derives a stream from a single source stream. A provider is created per execution,
// it receives the already opened source cursor, but does not own it.
type DownStreamProvider[SRC any, TGT any] interface {
	Open(ctx context.Context, src Cursor[SRC]) error
	Emit(ctx context.Context, src Cursor[SRC]) (TGT, error)
	Close() error
}

func NewDownStream[S any, T any](
	src Stream[S],
	downStreamProviderFactory func() DownStreamProvider[S, T],
) Stream[T] {
	if src.err != nil {
		return Error[T](src.err)
	}
	return newStream(func(ctx context.Context) (Cursor[T], error) {
		srcCursor, err := src.Open(ctx)
		if err != nil {
			return nil, err
		}
		p := downStreamProviderFactory()
		err = p.Open(ctx, srcCursor)
		if err != nil {
			return nil, multierr.Append(err, srcCursor.Close())
		}
		return &downStreamCursor[S, T]{src: srcCursor, provider: p}, nil
	}, false)
}

func NewDownStreamSimple[S any, T any](
	src Stream[S],
	downStreamProviderFunc downStreamProviderFunc[S, T],
) Stream[T] {
	return newDownStream(src, downStreamProviderFunc, false)
}

// newDownStream is used by operators that are empty whenever their source is empty
func newDownStream[S any, T any](
	src Stream[S],
	emit downStreamProviderFunc[S, T],
	knownEmpty bool,
) Stream[T] {
	ds := NewDownStream[S, T](src, func() DownStreamProvider[S, T] {
		return simpleDownStreamProvider[S, T]{downStreamProviderFunc: emit}
	})
	ds.knownEmpty = knownEmpty
	return ds
}

type downStreamCursor[S any, T any] struct {
	src      Cursor[S]
	provider DownStreamProvider[S, T]
}

func (d *downStreamCursor[S, T]) Next(ctx context.Context) (T, error) {
	return d.provider.Emit(ctx, d.src)
}

// Close releases the down stream provider first, then the source it was reading from
func (d *downStreamCursor[S, T]) Close() error {
	return multierr.Append(d.provider.Close(), d.src.Close())
}

type simpleDownStreamProvider[S any, T any] struct {
	downStreamProviderFunc downStreamProviderFunc[S, T]
}

func (sd simpleDownStreamProvider[S, T]) Open(_ context.Context, _ Cursor[S]) error {
	return nil
}

func (sd simpleDownStreamProvider[S, T]) Emit(ctx context.Context, src Cursor[S]) (T, error) {
	return sd.downStreamProviderFunc(ctx, src)
}

func (sd simpleDownStreamProvider[S, T]) Close() error {
	return nil
}
