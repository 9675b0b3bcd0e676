package stream

import (
	"context"
	"io"
	"log/slog"

	"github.com/shpandrak/shpanzip/internal/util"
)

type chanelStreamProvider[T any] struct {
	originalChannel <-chan T
}

func (cp chanelStreamProvider[T]) Open(_ context.Context) error {
	return nil
}

func (cp chanelStreamProvider[T]) Close() error {
	return nil
}

func (cp chanelStreamProvider[T]) Emit(ctx context.Context) (T, error) {
	select {
	case <-ctx.Done():
		return util.DefaultValue[T](), ctx.Err()
	case msg, stillGood := <-cp.originalChannel:
		if !stillGood {
			slog.Debug("Stream channel closed externally")
			return util.DefaultValue[T](), io.EOF
		}
		return msg, nil
	}
}

// FromChannel creates a stream reading from ch until it is closed.
// The channel is shared by all executions of the stream, each one continues where the previous one stopped.
func FromChannel[T any](ch <-chan T) Stream[T] {
	if ch == nil {
		return Error[T](&ArgumentError{Param: "channel"})
	}
	return NewStream(func() Provider[T] {
		return chanelStreamProvider[T]{originalChannel: ch}
	})
}
