package ws

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shpandrak/shpanzip/stream"
)

// StreamOption configures a websocket stream
type StreamOption func(*wsOptions)

type wsOptions struct {
	readLimit int64
}

// WithReadLimit sets the maximum size in bytes of a single message read from the websocket
func WithReadLimit(limit int64) StreamOption {
	return func(o *wsOptions) {
		o.readLimit = limit
	}
}

type wsJsonStreamProvider[T any] struct {
	wsFactory func(ctx context.Context) (*websocket.Conn, error)
	opts      wsOptions
	ws        *websocket.Conn
	stopWatch func() bool
}

// CreateJsonStreamFromWebSocket streams the JSON messages read from a websocket. wsFactory is called to dial
// a new connection every time the stream is materialized, and the connection is closed when the execution ends.
func CreateJsonStreamFromWebSocket[T any](
	wsFactory func(ctx context.Context) (*websocket.Conn, error),
	options ...StreamOption,
) stream.Stream[T] {
	if wsFactory == nil {
		return stream.Error[T](&stream.ArgumentError{Param: "wsFactory"})
	}
	opts := wsOptions{}
	for _, o := range options {
		o(&opts)
	}
	return stream.NewStream(func() stream.Provider[T] {
		return &wsJsonStreamProvider[T]{
			wsFactory: wsFactory,
			opts:      opts,
		}
	})
}

func (w *wsJsonStreamProvider[T]) Open(ctx context.Context) error {
	ws, err := w.wsFactory(ctx)
	if err != nil {
		return fmt.Errorf("failed opening websocket stream: %w", err)
	}
	w.ws = ws
	if w.opts.readLimit > 0 {
		w.ws.SetReadLimit(w.opts.readLimit)
	}

	// Closing the connection unblocks a pending read once the execution is cancelled
	w.stopWatch = context.AfterFunc(ctx, func() {
		if closeErr := w.ws.Close(); closeErr != nil {
			slog.Warn(fmt.Sprintf("error closing websocket: %v", closeErr))
		}
	})
	return nil
}

func (w *wsJsonStreamProvider[T]) Close() error {
	if w.ws == nil {
		return nil
	}
	if !w.stopWatch() {
		// Already closed by the cancellation watcher
		return nil
	}
	err := w.ws.Close()
	if err != nil {
		return fmt.Errorf("error closing websocket: %w", err)
	}
	return nil
}

func (w *wsJsonStreamProvider[T]) Emit(ctx context.Context) (T, error) {
	var ret T
	if ctx.Err() != nil {
		return ret, ctx.Err()
	}

	// A pull may carry a context of its own, unblock the read when it is done
	stopDeadline := context.AfterFunc(ctx, func() {
		_ = w.ws.SetReadDeadline(time.Now())
	})
	defer stopDeadline()

	err := w.ws.ReadJSON(&ret)
	if err != nil {
		if ctx.Err() != nil {
			return ret, ctx.Err()
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			slog.Debug("Websocket stream closed by peer")
			return ret, io.EOF
		}
		return ret, fmt.Errorf("error reading from websocket: %w", err)
	}
	return ret, nil
}
