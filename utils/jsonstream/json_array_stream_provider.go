package jsonstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shpandrak/shpanzip/internal/util"
	"github.com/shpandrak/shpanzip/stream"
)

// ReadCloserProvider opens the input of a single stream execution
type ReadCloserProvider func(ctx context.Context) (io.ReadCloser, error)

// jsonDecodingProvider holds the input shared by the array and the object providers
type jsonDecodingProvider struct {
	readCloserProvider ReadCloserProvider
	readCloser         io.ReadCloser
	jsonDecoder        *json.Decoder
}

// openExpecting opens the input and reads the opening delimiter
func (j *jsonDecodingProvider) openExpecting(ctx context.Context, opening json.Delim) error {
	rc, err := j.readCloserProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	j.readCloser = rc
	j.jsonDecoder = json.NewDecoder(j.readCloser)

	t, err := j.jsonDecoder.Token()
	if err == nil {
		if delim, ok := t.(json.Delim); !ok || delim != opening {
			err = fmt.Errorf("expected %v, got %v", opening, t)
		}
	}
	if err != nil {
		// Open failed, so Close will never be called
		_ = j.readCloser.Close()
		j.readCloser = nil
		return fmt.Errorf("failed to open JSON %v stream: %w", opening, err)
	}
	return nil
}

// readClosing reads the closing delimiter once there are no more elements
func (j *jsonDecodingProvider) readClosing(closing json.Delim) error {
	t, err := j.jsonDecoder.Token()
	if err != nil {
		return fmt.Errorf("failed to read closing token: %w", err)
	}
	if delim, ok := t.(json.Delim); !ok || delim != closing {
		return fmt.Errorf("expected %v, got %v", closing, t)
	}
	return io.EOF
}

func (j *jsonDecodingProvider) Close() error {
	j.jsonDecoder = nil
	if j.readCloser == nil {
		return nil
	}
	err := j.readCloser.Close()
	j.readCloser = nil
	return err
}

type jsonArrayStreamProvider[T any] struct {
	jsonDecodingProvider
}

// StreamJsonArray streams the elements of a JSON array, decoding a single element per pull.
// The input is opened whenever the stream is materialized, and closed when the execution ends.
func StreamJsonArray[T any](readCloserProvider ReadCloserProvider) stream.Stream[T] {
	if readCloserProvider == nil {
		return stream.Error[T](&stream.ArgumentError{Param: "readCloserProvider"})
	}
	return stream.NewStream(func() stream.Provider[T] {
		return &jsonArrayStreamProvider[T]{
			jsonDecodingProvider{readCloserProvider: readCloserProvider},
		}
	})
}

func (j *jsonArrayStreamProvider[T]) Open(ctx context.Context) error {
	return j.openExpecting(ctx, '[')
}

func (j *jsonArrayStreamProvider[T]) Emit(ctx context.Context) (T, error) {
	if ctx.Err() != nil {
		return util.DefaultValue[T](), ctx.Err()
	}

	if !j.jsonDecoder.More() {
		return util.DefaultValue[T](), j.readClosing(']')
	}

	var parsedElement T
	if err := j.jsonDecoder.Decode(&parsedElement); err != nil {

		// If there is a parsing error, it is helpful to read the buffered data so this can be debugged
		bufferMessage := ""
		buffText, bufErr := io.ReadAll(j.jsonDecoder.Buffered())
		if bufErr == nil {
			bufferMessage = fmt.Sprintf(". parser buffer %s", buffText)
		}

		return util.DefaultValue[T](), fmt.Errorf("error parsing array element%s: %w", bufferMessage, err)
	}
	return parsedElement, nil
}
