package yamlstream

import (
	"context"
	"fmt"
	"io"

	"github.com/shpandrak/shpanzip/internal/util"
	"github.com/shpandrak/shpanzip/stream"
	"gopkg.in/yaml.v3"
)

type yamlDocumentStreamProvider[T any] struct {
	readCloserProvider func(ctx context.Context) (io.ReadCloser, error)
	readCloser         io.ReadCloser
	decoder            *yaml.Decoder
	docIdx             int
}

// StreamYamlDocuments streams the documents of a multi document YAML input, decoding a single document per pull.
// The input is opened whenever the stream is materialized, and closed when the execution ends.
func StreamYamlDocuments[T any](readCloserProvider func(ctx context.Context) (io.ReadCloser, error)) stream.Stream[T] {
	if readCloserProvider == nil {
		return stream.Error[T](&stream.ArgumentError{Param: "readCloserProvider"})
	}
	return stream.NewStream(func() stream.Provider[T] {
		return &yamlDocumentStreamProvider[T]{readCloserProvider: readCloserProvider}
	})
}

func (y *yamlDocumentStreamProvider[T]) Open(ctx context.Context) error {
	rc, err := y.readCloserProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to open yaml stream: %w", err)
	}
	y.readCloser = rc
	y.decoder = yaml.NewDecoder(rc)
	return nil
}

func (y *yamlDocumentStreamProvider[T]) Close() error {
	y.decoder = nil
	if y.readCloser == nil {
		return nil
	}
	err := y.readCloser.Close()
	y.readCloser = nil
	return err
}

func (y *yamlDocumentStreamProvider[T]) Emit(ctx context.Context) (T, error) {
	if ctx.Err() != nil {
		return util.DefaultValue[T](), ctx.Err()
	}
	var doc T
	err := y.decoder.Decode(&doc)
	if err == io.EOF {
		return util.DefaultValue[T](), io.EOF
	}
	if err != nil {
		return util.DefaultValue[T](), fmt.Errorf("error decoding yaml document %d: %w", y.docIdx, err)
	}
	y.docIdx++
	return doc, nil
}
