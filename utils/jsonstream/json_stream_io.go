package jsonstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shpandrak/shpanzip/stream"
)

// jsonArrayWriter writes stream elements as a JSON array, lazily starting the array on the first element
type jsonArrayWriter struct {
	w       io.Writer
	initFn  func() error
	started bool
}

func (aw *jsonArrayWriter) start() error {
	aw.started = true
	if err := aw.initFn(); err != nil {
		return err
	}
	if _, err := aw.w.Write([]byte("[")); err != nil {
		return fmt.Errorf("failed writing start of json array: %w", err)
	}
	return nil
}

func (aw *jsonArrayWriter) write(v any) error {
	if !aw.started {
		if err := aw.start(); err != nil {
			return err
		}
	} else if _, err := aw.w.Write([]byte(",")); err != nil {
		return fmt.Errorf("failed writing json delimiter: %w", err)
	}
	rawJson, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal stream element: %w", err)
	}
	_, err = aw.w.Write(rawJson)
	return err
}

// finish ends the array, an empty stream is written as an empty array
func (aw *jsonArrayWriter) finish() error {
	if !aw.started {
		if err := aw.start(); err != nil {
			return err
		}
	}
	if _, err := aw.w.Write([]byte("]")); err != nil {
		return fmt.Errorf("failed writing end of json array: %w", err)
	}
	return nil
}

// StreamJsonToWriter consumes the stream, writing it to w as a JSON array
func StreamJsonToWriter[T any](ctx context.Context, w io.Writer, s stream.Stream[T]) error {
	return StreamJsonToWriterWithInit(ctx, w, s, func() error {
		return nil
	})
}

// StreamJsonToWriterWithInit is StreamJsonToWriter calling initFunc right before the first byte is written.
// Nothing is written if the stream fails before producing its first element.
func StreamJsonToWriterWithInit[T any](
	ctx context.Context,
	w io.Writer,
	s stream.Stream[T],
	initFunc func() error,
) error {
	aw := &jsonArrayWriter{w: w, initFn: initFunc}
	err := s.ConsumeWithErr(ctx, func(v T) error {
		return aw.write(v)
	})
	if err != nil {
		return err
	}
	return aw.finish()
}

// StreamJsonAsReaderAndReturn exposes the stream as a reader of a JSON array, and hands it to consumer.
// The stream is consumed in the background, as the consumer reads.
// If the consumer fails, the reader is closed and the stream is released even if it was never read.
func StreamJsonAsReaderAndReturn[T any, V any](
	ctx context.Context,
	s stream.Stream[T],
	consumer func(ctx context.Context, r io.Reader) (V, error),
) (V, error) {

	// Create a new context with cancel function allowing to cancel the streaming in case of errors
	// The consumer may keep reading after returning (e.g. a response body), so it is not cancelled on return
	ctx, cancelFunc := context.WithCancelCause(ctx)

	// Creating both ends of the pipe
	pr, pw := io.Pipe()
	go func() {
		err := StreamJsonToWriter(ctx, pw, s)
		if err != nil {
			err = fmt.Errorf("failed to read input stream for pipe: %w", err)
			cancelFunc(err)
		}
		_ = pw.CloseWithError(err)
	}()

	// Now allow the consumer to read from the pipe
	ret, err := consumer(ctx, pr)
	if err != nil {
		// Nobody is going to read the rest, fail the pending write so the stream gets released
		cancelFunc(err)
		_ = pr.CloseWithError(err)
	}
	return ret, err
}
