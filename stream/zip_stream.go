package stream

import (
	"context"
	"fmt"

	"github.com/shpandrak/shpanzip"
)

// Zip zips two streams element by element, using zipper to combine the i-th elements of both streams into
// the i-th element of the result. The result ends as soon as either stream ends.
//
// Sources are pulled in lockstep and in order: a round pulls a, then b, and only then calls the zipper.
// Nothing is pulled ahead of the consumer. Source cursors are opened left to right and closed in reverse order,
// whatever way the execution ends. If either source is known to be empty, no source is opened at all.
//
// A nil source or zipper yields a stream failing with an *ArgumentError, available right away from Err
// and returned by every Open without touching any source.
func Zip[A any, B any, R any](a Source[A], b Source[B], zipper shpanzip.Zipper[A, B, R]) Stream[R] {
	if err := validateZipArgs(
		zipArg{name: "first source", absent: isAbsent(a)},
		zipArg{name: "second source", absent: isAbsent(b)},
		zipArg{name: "zipper", absent: zipper == nil},
	); err != nil {
		return Error[R](err)
	}
	return ZipWithErrAndCtx(a, b, zipper.ToErrCtx())
}

// ZipWithErr is Zip with a zipper that may fail. A zipper error fails the zipped stream.
func ZipWithErr[A any, B any, R any](a Source[A], b Source[B], zipper shpanzip.ZipperWithErr[A, B, R]) Stream[R] {
	if err := validateZipArgs(
		zipArg{name: "first source", absent: isAbsent(a)},
		zipArg{name: "second source", absent: isAbsent(b)},
		zipArg{name: "zipper", absent: zipper == nil},
	); err != nil {
		return Error[R](err)
	}
	return ZipWithErrAndCtx(a, b, zipper.ToErrCtx())
}

// ZipWithErrAndCtx is Zip with a zipper that may block. The zipper gets the context of the execution
// and is expected to return promptly once it is cancelled.
func ZipWithErrAndCtx[A any, B any, R any](
	a Source[A],
	b Source[B],
	zipper shpanzip.ZipperWithErrAndCtx[A, B, R],
) Stream[R] {
	if err := validateZipArgs(
		zipArg{name: "first source", absent: isAbsent(a)},
		zipArg{name: "second source", absent: isAbsent(b)},
		zipArg{name: "zipper", absent: zipper == nil},
	); err != nil {
		return Error[R](err)
	}
	if KnownEmpty(a) || KnownEmpty(b) {
		return Empty[R]()
	}
	return newStream(func(ctx context.Context) (Cursor[R], error) {
		if anyKnownEmpty(
			func() bool { return KnownEmpty(a) },
			func() bool { return KnownEmpty(b) },
		) {
			return emptyCursor[R]{}, nil
		}

		z := &zip2Cursor[A, B, R]{zipper: zipper}
		var err error
		if z.a, err = acquireZipCursor(ctx, &z.zipExecution, 0, a); err != nil {
			return nil, z.stop(ctx, err)
		}
		if z.b, err = acquireZipCursor(ctx, &z.zipExecution, 1, b); err != nil {
			return nil, z.stop(ctx, err)
		}
		z.acquired()
		return z, nil
	}, false)
}

// ZipToTuple zips two streams into a stream of pairs.
func ZipToTuple[A any, B any](a Source[A], b Source[B]) Stream[shpanzip.Tuple2[A, B]] {
	return Zip(a, b, shpanzip.TupleZipper[A, B]())
}

type zip2Cursor[A any, B any, R any] struct {
	zipExecution
	a      Cursor[A]
	b      Cursor[B]
	zipper shpanzip.ZipperWithErrAndCtx[A, B, R]
}

func (z *zip2Cursor[A, B, R]) Next(ctx context.Context) (R, error) {
	var zero R
	if err := z.beginRound(ctx); err != nil {
		return zero, err
	}
	a, err := drawFrom(ctx, &z.zipExecution, 0, z.a)
	if err != nil {
		return zero, err
	}
	b, err := drawFrom(ctx, &z.zipExecution, 1, z.b)
	if err != nil {
		return zero, err
	}
	return project(ctx, &z.zipExecution, func() (R, error) {
		return z.zipper(ctx, a, b)
	})
}

// Zip3 zips three streams element by element, see Zip.
func Zip3[A any, B any, C any, R any](
	a Source[A],
	b Source[B],
	c Source[C],
	zipper shpanzip.Zipper3[A, B, C, R],
) Stream[R] {
	if err := validateZipArgs(
		zipArg{name: "first source", absent: isAbsent(a)},
		zipArg{name: "second source", absent: isAbsent(b)},
		zipArg{name: "third source", absent: isAbsent(c)},
		zipArg{name: "zipper", absent: zipper == nil},
	); err != nil {
		return Error[R](err)
	}
	return Zip3WithErrAndCtx(a, b, c, zipper.ToErrCtx())
}

// Zip3WithErrAndCtx is Zip3 with a zipper that may block or fail, see ZipWithErrAndCtx.
func Zip3WithErrAndCtx[A any, B any, C any, R any](
	a Source[A],
	b Source[B],
	c Source[C],
	zipper shpanzip.Zipper3WithErrAndCtx[A, B, C, R],
) Stream[R] {
	if err := validateZipArgs(
		zipArg{name: "first source", absent: isAbsent(a)},
		zipArg{name: "second source", absent: isAbsent(b)},
		zipArg{name: "third source", absent: isAbsent(c)},
		zipArg{name: "zipper", absent: zipper == nil},
	); err != nil {
		return Error[R](err)
	}
	if KnownEmpty(a) || KnownEmpty(b) || KnownEmpty(c) {
		return Empty[R]()
	}
	return newStream(func(ctx context.Context) (Cursor[R], error) {
		if anyKnownEmpty(
			func() bool { return KnownEmpty(a) },
			func() bool { return KnownEmpty(b) },
			func() bool { return KnownEmpty(c) },
		) {
			return emptyCursor[R]{}, nil
		}

		z := &zip3Cursor[A, B, C, R]{zipper: zipper}
		var err error
		if z.a, err = acquireZipCursor(ctx, &z.zipExecution, 0, a); err != nil {
			return nil, z.stop(ctx, err)
		}
		if z.b, err = acquireZipCursor(ctx, &z.zipExecution, 1, b); err != nil {
			return nil, z.stop(ctx, err)
		}
		if z.c, err = acquireZipCursor(ctx, &z.zipExecution, 2, c); err != nil {
			return nil, z.stop(ctx, err)
		}
		z.acquired()
		return z, nil
	}, false)
}

// Zip3ToTuple zips three streams into a stream of triplets.
func Zip3ToTuple[A any, B any, C any](a Source[A], b Source[B], c Source[C]) Stream[shpanzip.Tuple3[A, B, C]] {
	return Zip3(a, b, c, shpanzip.Tuple3Zipper[A, B, C]())
}

type zip3Cursor[A any, B any, C any, R any] struct {
	zipExecution
	a      Cursor[A]
	b      Cursor[B]
	c      Cursor[C]
	zipper shpanzip.Zipper3WithErrAndCtx[A, B, C, R]
}

func (z *zip3Cursor[A, B, C, R]) Next(ctx context.Context) (R, error) {
	var zero R
	if err := z.beginRound(ctx); err != nil {
		return zero, err
	}
	a, err := drawFrom(ctx, &z.zipExecution, 0, z.a)
	if err != nil {
		return zero, err
	}
	b, err := drawFrom(ctx, &z.zipExecution, 1, z.b)
	if err != nil {
		return zero, err
	}
	c, err := drawFrom(ctx, &z.zipExecution, 2, z.c)
	if err != nil {
		return zero, err
	}
	return project(ctx, &z.zipExecution, func() (R, error) {
		return z.zipper(ctx, a, b, c)
	})
}

// ZipN zips any number of streams of the same type, the i-th element of the result holds the i-th element
// of every stream, in the order the streams were given. See Zip for the pulling and closing order.
func ZipN[T any](s ...Source[T]) Stream[[]T] {
	if len(s) == 0 {
		return Empty[[]T]()
	}
	for i, src := range s {
		if isAbsent(src) {
			return Error[[]T](&ArgumentError{Param: fmt.Sprintf("source %d", i)})
		}
	}
	for _, src := range s {
		if KnownEmpty(src) {
			return Empty[[]T]()
		}
	}

	// The caller may reuse its slice
	sources := append([]Source[T](nil), s...)
	return newStream(func(ctx context.Context) (Cursor[[]T], error) {
		checks := make([]func() bool, len(sources))
		for i := range sources {
			src := sources[i]
			checks[i] = func() bool { return KnownEmpty(src) }
		}
		if anyKnownEmpty(checks...) {
			return emptyCursor[[]T]{}, nil
		}

		z := &zipNCursor[T]{cursors: make([]Cursor[T], 0, len(sources))}
		for i, src := range sources {
			c, err := acquireZipCursor(ctx, &z.zipExecution, i, src)
			if err != nil {
				return nil, z.stop(ctx, err)
			}
			z.cursors = append(z.cursors, c)
		}
		z.acquired()
		return z, nil
	}, false)
}

type zipNCursor[T any] struct {
	zipExecution
	cursors []Cursor[T]
}

func (z *zipNCursor[T]) Next(ctx context.Context) ([]T, error) {
	if err := z.beginRound(ctx); err != nil {
		return nil, err
	}
	row := make([]T, len(z.cursors))
	for i, c := range z.cursors {
		v, err := drawFrom(ctx, &z.zipExecution, i, c)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return project(ctx, &z.zipExecution, func() ([]T, error) {
		return row, nil
	})
}
