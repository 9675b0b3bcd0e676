package stream

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/shpandrak/shpanzip/internal/util"
	"go.uber.org/multierr"
)

var errStopIteration = errors.New("iteration stopped by consumer")

// withoutStopIteration drops the stop marker from err, keeping any close errors aggregated on it
func withoutStopIteration(err error) error {
	var ret error
	for _, e := range multierr.Errors(err) {
		if !errors.Is(e, errStopIteration) {
			ret = multierr.Append(ret, e)
		}
	}
	return ret
}

// loopBodyPanic keeps a panic raised by the body of a range loop, so it can be raised again as is
// once the stream is released.
type loopBodyPanic struct {
	value    any
	panicked bool
}

// call runs yield, a panicking body counts as a request to stop
func (p *loopBodyPanic) call(yield func() bool) (more bool) {
	defer func() {
		if rvr := recover(); rvr != nil {
			p.value = rvr
			p.panicked = true
			more = false
		}
	}()
	return yield()
}

// repanic raises the kept panic, if any. releaseErr is only logged, the panic wins.
func (p *loopBodyPanic) repanic(releaseErr error) {
	if !p.panicked {
		return
	}
	if releaseErr != nil {
		slog.Warn(fmt.Sprintf("error releasing stream after loop body panic: %v", releaseErr))
	}
	panic(p.value)
}

// Iterator allows ranging over the stream. It panics if the stream fails, use All to get the error instead.
func (s Stream[T]) Iterator(yield func(T) bool) {
	var bodyPanic loopBodyPanic
	err := s.ConsumeWithErr(context.Background(), func(v T) error {
		// Yield return false if we need to stop (e.g. break within the loop)
		if !bodyPanic.call(func() bool { return yield(v) }) {
			return errStopIteration
		}
		return nil
	})
	err = withoutStopIteration(err)
	bodyPanic.repanic(err)
	if err != nil {
		panic(err)
	}
}

func (s Stream[T]) IndexedIterator(yield func(int, T) bool) {
	// Use a counter to keep track of the index
	index := -1
	s.Iterator(func(v T) bool {
		index++
		return yield(index, v)
	})
}

// All allows ranging over the stream together with its terminal error, which is yielded last
// with a zero value element. Breaking out of the loop stops the execution and releases the stream.
func (s Stream[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		stopped := false
		var bodyPanic loopBodyPanic
		err := s.ConsumeWithErr(ctx, func(v T) error {
			if !bodyPanic.call(func() bool { return yield(v, nil) }) {
				stopped = true
				return errStopIteration
			}
			return nil
		})
		err = withoutStopIteration(err)
		bodyPanic.repanic(err)
		if err == nil {
			return
		}
		if stopped {
			// The loop body is gone, there is no one left to report to
			slog.Warn(fmt.Sprintf("error releasing stream after iteration was stopped: %v", err))
			return
		}
		yield(util.DefaultValue[T](), err)
	}
}
