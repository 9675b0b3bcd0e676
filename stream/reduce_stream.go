package stream

import (
	"context"

	"github.com/shpandrak/shpanzip/internal/util"
)

// Reduce consumes the entire stream and combines values using the given reduceFunc,
// starting from the provided initialValue. It returns the final accumulated result.
func Reduce[T any, R any](
	ctx context.Context,
	s Stream[T],
	initialValue R,
	reduceFunc func(acc R, v T) R,
) (R, error) {
	return ReduceWithErrAndCtx(ctx, s, initialValue, func(_ context.Context, acc R, v T) (R, error) {
		return reduceFunc(acc, v), nil
	})
}

// ReduceWithErrAndCtx is Reduce with a reduceFunc that may fail. Known empty streams are not opened.
func ReduceWithErrAndCtx[T any, R any](
	ctx context.Context,
	s Stream[T],
	initialValue R,
	reduceFunc func(ctx context.Context, acc R, v T) (R, error),
) (R, error) {
	if s.knownEmpty {
		return initialValue, nil
	}
	ret := initialValue
	err := s.ConsumeWithErrAndCtx(ctx, func(ctx context.Context, v T) error {
		var err error
		ret, err = reduceFunc(ctx, ret, v)
		return err
	})
	if err != nil {
		return util.DefaultValue[R](), err
	}
	return ret, nil
}
