package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/shpandrak/shpanzip/integrations/file"
	"github.com/shpandrak/shpanzip/stream"
	"go.uber.org/multierr"
)

// fileJsonStreamStore keeps a record per line, in a JSON lines file
type fileJsonStreamStore[T any] struct {
	fileMu   sync.RWMutex
	filePath string
}

func NewFileJsonStreamStore[T any](filePath string) (JsonStreamStore[T], error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directories for json stream store %s: %w", filePath, err)
	}
	return &fileJsonStreamStore[T]{
		filePath: filePath,
	}, nil
}

func (fss *fileJsonStreamStore[T]) Put(ctx context.Context, value T) error {
	return fss.PutAll(ctx, stream.Just(value))
}

// PutAll appends all values of the stream. The store is locked for writing while the stream is consumed,
// so the values of a single call are never interleaved with others.
func (fss *fileJsonStreamStore[T]) PutAll(ctx context.Context, values stream.Stream[T]) (err error) {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	fss.fileMu.Lock()
	defer fss.fileMu.Unlock()

	// Open the file in append mode
	f, err := os.OpenFile(fss.filePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0666)
	if err != nil {
		return fmt.Errorf("failed opening json stream store file %s: %w", fss.filePath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("error closing stream file %s after writing: %w", fss.filePath, closeErr))
		}
	}()

	err = values.ConsumeWithErr(ctx, func(entry T) error {
		return doAppendToFile(entry, f)
	})
	if err != nil {
		return err
	}

	// Sync the file to ensure data is written to disk
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync file while persisting to json stream store file %s : %w", f.Name(), err)
	}
	return nil
}

func doAppendToFile[T any](value T, file *os.File) error {
	record, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal record while persisting to json stream store file %s : %w", file.Name(), err)
	}

	// Append a newline, marking this is a record end, record must not contain newline
	if _, err = file.Write(append(record, '\n')); err != nil {
		return fmt.Errorf("failed to write to file while persisting to json stream store file %s : %w", file.Name(), err)
	}
	return nil
}

// ReadStream streams the stored records. Writers are blocked while the stream is being read.
func (fss *fileJsonStreamStore[T]) ReadStream() stream.Stream[T] {
	return stream.MapWhileFiltering(
		file.StreamFromFile(fss.filePath),
		func(src []byte) *T {
			var result T
			err := json.Unmarshal(src, &result)

			// Skip malformed records, this might happen if the process crashed while writing a record,
			// we guarantee newline, so next line should be fine
			if err != nil {
				slog.Warn(fmt.Sprintf(
					"failed to unmarshal record while reading from json stream store file %s : %v", fss.filePath, err,
				))
				return nil
			}
			return &result
		},
	).WithLockWhileMaterializing(fss.fileMu.RLocker())
}
