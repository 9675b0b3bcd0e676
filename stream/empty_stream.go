package stream

import (
	"context"
)

// Empty returns the canonical always empty stream. It is known to be empty, so combinators such as Zip
// can skip opening other sources altogether.
func Empty[T any]() Stream[T] {
	return newStream(func(_ context.Context) (Cursor[T], error) {
		return emptyCursor[T]{}, nil
	}, true)
}
