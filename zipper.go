package shpanzip

import "context"

// Tuple2 is the identity projection of a 2-ary zip.
type Tuple2[A any, B any] struct {
	A A
	B B
}

// Tuple3 is the identity projection of a 3-ary zip.
type Tuple3[A any, B any, C any] struct {
	A A
	B B
	C C
}

// Zipper combines one element of each zipped stream into a single element.
type Zipper[A any, B any, R any] func(a A, b B) R
type ZipperWithErr[A any, B any, R any] func(a A, b B) (R, error)

// ZipperWithErrAndCtx is the suspending flavour of Zipper, it receives the context of the
// zip execution and should respect its cancellation.
type ZipperWithErrAndCtx[A any, B any, R any] func(ctx context.Context, a A, b B) (R, error)

type Zipper3[A any, B any, C any, R any] func(a A, b B, c C) R
type Zipper3WithErrAndCtx[A any, B any, C any, R any] func(ctx context.Context, a A, b B, c C) (R, error)

func (z Zipper[A, B, R]) ToErrCtx() ZipperWithErrAndCtx[A, B, R] {
	return func(_ context.Context, a A, b B) (R, error) {
		return z(a, b), nil
	}
}

func (z ZipperWithErr[A, B, R]) ToErrCtx() ZipperWithErrAndCtx[A, B, R] {
	return func(_ context.Context, a A, b B) (R, error) {
		return z(a, b)
	}
}

func (z Zipper3[A, B, C, R]) ToErrCtx() Zipper3WithErrAndCtx[A, B, C, R] {
	return func(_ context.Context, a A, b B, c C) (R, error) {
		return z(a, b, c), nil
	}
}

// TupleZipper returns the identity-tuple projection for a 2-ary zip.
func TupleZipper[A any, B any]() Zipper[A, B, Tuple2[A, B]] {
	return func(a A, b B) Tuple2[A, B] {
		return Tuple2[A, B]{A: a, B: b}
	}
}

// Tuple3Zipper returns the identity-tuple projection for a 3-ary zip.
func Tuple3Zipper[A any, B any, C any]() Zipper3[A, B, C, Tuple3[A, B, C]] {
	return func(a A, b B, c C) Tuple3[A, B, C] {
		return Tuple3[A, B, C]{A: a, B: b, C: c}
	}
}
