package store

import (
	"context"

	"github.com/shpandrak/shpanzip/stream"
)

// JsonStreamStore is an append only store of records, read back as a stream in insertion order
type JsonStreamStore[T any] interface {
	Put(ctx context.Context, value T) error
	PutAll(ctx context.Context, values stream.Stream[T]) error
	ReadStream() stream.Stream[T]
}
