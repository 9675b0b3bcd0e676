package stream

import (
	"context"
	"fmt"
	"io"

	"github.com/shpandrak/shpanzip"
	"github.com/shpandrak/shpanzip/internal/util"
)

// Map maps the source stream to a target stream using the provided mapper function.
func Map[SRC any, TGT any](
	src Stream[SRC],
	mapper shpanzip.Mapper[SRC, TGT],
) Stream[TGT] {
	if mapper == nil {
		return Error[TGT](&ArgumentError{Param: "mapper"})
	}
	return MapWithErrAndCtx(src, mapper.ToErrCtx())
}

// MapWithErr maps the source stream to a target stream using the provided mapper function.
func MapWithErr[SRC any, TGT any](
	src Stream[SRC],
	mapper shpanzip.MapperWithErr[SRC, TGT],
) Stream[TGT] {
	if mapper == nil {
		return Error[TGT](&ArgumentError{Param: "mapper"})
	}
	return MapWithErrAndCtx(src, mapper.ToErrCtx())
}

// MapWithErrAndCtx maps the source stream to a target stream using the provided mapper function.
// The mapper is called exactly once per source element, when the target element is pulled.
func MapWithErrAndCtx[SRC any, TGT any](
	src Stream[SRC],
	mapper shpanzip.MapperWithErrAndCtx[SRC, TGT],
) Stream[TGT] {
	if mapper == nil {
		return Error[TGT](&ArgumentError{Param: "mapper"})
	}
	return newDownStream(src, func(ctx context.Context, srcCursor Cursor[SRC]) (TGT, error) {
		v, err := srcCursor.Next(ctx)
		if err != nil {
			return util.DefaultValue[TGT](), err
		}
		mapped, err := mapper(ctx, v)
		if err == io.EOF {
			// A mapper must not be able to end the stream by accident
			return util.DefaultValue[TGT](), fmt.Errorf("mapper failed for Stream: %w", err)
		}
		return mapped, err
	}, src.knownEmpty)
}

// MapWhileFiltering is a function that maps a Stream of SRC to a Stream of TGT while allowing to filter.
// filtering is done by returning nil from the mapper function.
// This is a convenience function to avoid chaining filter and the Map and do it in one go.
func MapWhileFiltering[SRC any, TGT any](
	src Stream[SRC],
	mapper shpanzip.Mapper[SRC, *TGT],
) Stream[TGT] {
	if mapper == nil {
		return Error[TGT](&ArgumentError{Param: "mapper"})
	}
	return MapWhileFilteringWithErrAndCtx(src, mapper.ToErrCtx())
}

// MapWhileFilteringWithErrAndCtx is a function that maps a Stream of SRC to a Stream of TGT while allowing to filter while streaming.
// filtering is done by returning nil from the mapper function.
func MapWhileFilteringWithErrAndCtx[SRC any, TGT any](
	src Stream[SRC],
	mapper shpanzip.MapperWithErrAndCtx[SRC, *TGT],
) Stream[TGT] {
	return Map(

		// First we map the stream to a stream of pointers to TGT using the mapper
		MapWithErrAndCtx(src, mapper).

			// Then we filter the stream to remove nil values
			Filter(func(tgt *TGT) bool {
				return tgt != nil
			}),

		// Finally we map the stream to a stream of TGT by dereferencing the pointers
		func(p *TGT) TGT {
			return *p
		},
	)
}

// FlatMap maps a single element of the source stream to a stream of elements and flattens the result to a single stream.
func FlatMap[SRC any, TGT any](src Stream[SRC], mapper shpanzip.Mapper[SRC, Stream[TGT]]) Stream[TGT] {
	return Concat[TGT](Map[SRC, Stream[TGT]](src, mapper))
}

// Untyped erases the element type of the stream
func (s Stream[T]) Untyped() Stream[any] {
	return Map(s, func(v T) any {
		return v
	})
}
