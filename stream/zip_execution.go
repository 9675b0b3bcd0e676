package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.uber.org/multierr"
)

type zipState int

const (
	zipNotStarted zipState = iota
	zipAcquiringCursors
	zipDrawing
	zipProjecting
	zipYielded
	zipExhausted
	zipFailed
	zipCancelled
	zipDisposed
)

func (s zipState) String() string {
	switch s {
	case zipNotStarted:
		return "NotStarted"
	case zipAcquiringCursors:
		return "AcquiringCursors"
	case zipDrawing:
		return "Drawing"
	case zipProjecting:
		return "Projecting"
	case zipYielded:
		return "Yielded"
	case zipExhausted:
		return "Exhausted"
	case zipFailed:
		return "Failed"
	case zipCancelled:
		return "Cancelled"
	case zipDisposed:
		return "Disposed"
	default:
		return fmt.Sprintf("zipState(%d)", int(s))
	}
}

// zipExecution is the arity independent part of a single zip execution: its state, the round being drawn
// and the cursors acquired so far.
// Not safe for concurrent use, an execution is driven by a single consumer.
type zipExecution struct {
	state zipState

	// 1 based number of the current round, and the index of the source being drawn in that round
	round   int
	drawing int

	// release functions of the acquired cursors, in acquisition order
	releaseFuncs []func() error
	released     bool
}

// acquireZipCursor opens the cursor of the source at index idx, and registers it for release
func acquireZipCursor[T any](ctx context.Context, e *zipExecution, idx int, src Source[T]) (Cursor[T], error) {
	e.state = zipAcquiringCursors
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	c, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed opening zip source %d: %w", idx, err)
	}
	e.releaseFuncs = append(e.releaseFuncs, c.Close)
	return c, nil
}

// acquired marks the end of the acquisition phase
func (e *zipExecution) acquired() {
	e.state = zipDrawing
	e.drawing = 0
}

// beginRound checks whether another round can be drawn
func (e *zipExecution) beginRound(ctx context.Context) error {
	switch e.state {
	case zipExhausted:
		return io.EOF
	case zipDrawing, zipYielded:
	default:
		return fmt.Errorf("zip cursor in state %s: %w", e.state, ErrCursorClosed)
	}
	if ctx.Err() != nil {
		return e.stop(ctx, ctx.Err())
	}
	e.state = zipDrawing
	e.round++
	return nil
}

// drawFrom advances the cursor of the source at index idx as part of the current round.
// a non nil error means the execution is over and all cursors were already released.
func drawFrom[T any](ctx context.Context, e *zipExecution, idx int, c Cursor[T]) (T, error) {
	e.drawing = idx
	v, err := c.Next(ctx)
	if err == nil {
		return v, nil
	}
	if err == io.EOF {
		e.state = zipExhausted
		if releaseErr := e.release(); releaseErr != nil {
			e.state = zipFailed
			return v, releaseErr
		}
		return v, io.EOF
	}
	return v, e.stop(ctx, fmt.Errorf("zip source %d failed on round %d: %w", idx, e.round, err))
}

// project applies the projection of the current round
func project[R any](ctx context.Context, e *zipExecution, projection func() (R, error)) (R, error) {
	var zero R
	e.state = zipProjecting
	r, err := projection()
	if err != nil {
		return zero, e.stop(ctx, fmt.Errorf("zip projection failed on round %d: %w", e.round, err))
	}

	// Never hand out an element of a cancelled execution
	if ctx.Err() != nil {
		return zero, e.stop(ctx, ctx.Err())
	}
	e.state = zipYielded
	return r, nil
}

// stop ends the execution with the given primary cause, releasing all acquired cursors.
// Cancellation of ctx is surfaced as is, release errors are appended to the primary cause.
func (e *zipExecution) stop(ctx context.Context, cause error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(cause, ctxErr) {
		e.state = zipCancelled
		cause = ctxErr
	} else {
		e.state = zipFailed
	}
	return multierr.Append(cause, e.release())
}

// release closes the acquired cursors in reverse acquisition order. Every cursor is closed even if closing
// a previous one fails. Calling release more than once is a no-op.
func (e *zipExecution) release() error {
	if e.released {
		return nil
	}
	e.released = true

	var err error
	for i := len(e.releaseFuncs) - 1; i >= 0; i-- {
		if closeErr := e.releaseFuncs[i](); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed closing zip source %d: %w", i, closeErr))
		}
	}
	e.releaseFuncs = nil
	return err
}

// Close disposes the execution, releasing whatever is still open.
func (e *zipExecution) Close() error {
	if e.state == zipDisposed {
		return nil
	}
	err := e.release()
	e.state = zipDisposed
	return err
}

// anyKnownEmpty checks the given sources in order, stopping at the first known empty one
func anyKnownEmpty(checks ...func() bool) bool {
	for i, check := range checks {
		if check() {
			slog.Debug(fmt.Sprintf("zip source %d is known to be empty, skipping all sources", i))
			return true
		}
	}
	return false
}

type zipArg struct {
	name   string
	absent bool
}

func validateZipArgs(args ...zipArg) error {
	for _, a := range args {
		if a.absent {
			return &ArgumentError{Param: a.name}
		}
	}
	return nil
}
