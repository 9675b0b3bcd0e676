package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shpandrak/shpanzip/stream"
)

// rawFileStreamProvider reads a file line by line
type rawFileStreamProvider struct {
	filePath              string
	file                  *os.File
	scanner               *bufio.Scanner
	fileMissingHenceEmpty bool
}

// StreamFromFile creates a lazy stream of the lines of a file. The file is opened whenever the stream is
// materialized and closed when the execution ends. A missing file is an empty stream.
func StreamFromFile(filePath string) stream.Stream[[]byte] {
	return stream.NewStream(func() stream.Provider[[]byte] {
		return &rawFileStreamProvider{filePath: filePath}
	})
}

// StreamLinesFromFile is StreamFromFile, emitting the lines as strings
func StreamLinesFromFile(filePath string) stream.Stream[string] {
	return stream.Map(StreamFromFile(filePath), func(line []byte) string {
		return string(line)
	})
}

// Open opens the file for reading and initializes the scanner.
func (fsp *rawFileStreamProvider) Open(_ context.Context) error {
	file, err := os.Open(fsp.filePath)
	if err != nil {

		// If no file, that's fine, it means stream is empty
		if errors.Is(err, os.ErrNotExist) {
			fsp.fileMissingHenceEmpty = true
			return nil
		}
		return fmt.Errorf("failed opening stream file %s: %w", fsp.filePath, err)
	}

	fsp.file = file
	fsp.scanner = bufio.NewScanner(file)
	return nil
}

// Close closes the file and releases any resources.
func (fsp *rawFileStreamProvider) Close() error {
	if fsp.file == nil {
		return nil
	}
	err := fsp.file.Close()
	fsp.file = nil
	fsp.scanner = nil
	if err != nil {
		return fmt.Errorf("error closing stream file %s: %w", fsp.filePath, err)
	}
	return nil
}

// Emit reads the next line of the file.
func (fsp *rawFileStreamProvider) Emit(ctx context.Context) ([]byte, error) {
	if fsp.scanner == nil {
		// If we're empty, just return EOF to mark that nothing is here
		if fsp.fileMissingHenceEmpty {
			return nil, io.EOF
		}

		// Otherwise, it means emit is somehow called after Close
		return nil, os.ErrClosed
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if fsp.scanner.Scan() {
		// The scanner reuses its buffer on the next scan
		return bytes.Clone(fsp.scanner.Bytes()), nil
	}
	if err := fsp.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading stream file %s: %w", fsp.filePath, err)
	}
	return nil, io.EOF
}
