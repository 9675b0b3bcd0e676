package jsonstream

import (
	"context"
	"fmt"

	"github.com/shpandrak/shpanzip"
	"github.com/shpandrak/shpanzip/internal/util"
	"github.com/shpandrak/shpanzip/stream"
)

type jsonObjectStreamProvider[T any] struct {
	jsonDecodingProvider
}

// StreamJsonObject streams the fields of a JSON object in document order, decoding a single field per pull.
func StreamJsonObject[T any](readCloserProvider ReadCloserProvider) stream.Stream[shpanzip.Entry[string, T]] {
	if readCloserProvider == nil {
		return stream.Error[shpanzip.Entry[string, T]](&stream.ArgumentError{Param: "readCloserProvider"})
	}
	return stream.NewStream(func() stream.Provider[shpanzip.Entry[string, T]] {
		return &jsonObjectStreamProvider[T]{
			jsonDecodingProvider{readCloserProvider: readCloserProvider},
		}
	})
}

func (j *jsonObjectStreamProvider[T]) Open(ctx context.Context) error {
	return j.openExpecting(ctx, '{')
}

func (j *jsonObjectStreamProvider[T]) Emit(ctx context.Context) (shpanzip.Entry[string, T], error) {
	if ctx.Err() != nil {
		return util.DefaultValue[shpanzip.Entry[string, T]](), ctx.Err()
	}

	if !j.jsonDecoder.More() {
		return util.DefaultValue[shpanzip.Entry[string, T]](), j.readClosing('}')
	}

	tok, err := j.jsonDecoder.Token()
	if err != nil {
		return util.DefaultValue[shpanzip.Entry[string, T]](), fmt.Errorf("error reading key token: %w", err)
	}
	fieldName, ok := tok.(string)
	if !ok {
		return util.DefaultValue[shpanzip.Entry[string, T]](),
			fmt.Errorf("expected string key for json, got %T: %v", tok, tok)
	}

	var parsedFieldValue T
	if err := j.jsonDecoder.Decode(&parsedFieldValue); err != nil {
		return util.DefaultValue[shpanzip.Entry[string, T]](), fmt.Errorf("error decoding value of %s: %w", fieldName, err)
	}
	return shpanzip.Entry[string, T]{Key: fieldName, Value: parsedFieldValue}, nil
}
