package stream

import (
	"context"
)

// Error returns a stream that fails to open with err
func Error[T any](err error) Stream[T] {
	s := newStream(func(_ context.Context) (Cursor[T], error) {
		return nil, err
	}, false)
	s.err = err
	return s
}
