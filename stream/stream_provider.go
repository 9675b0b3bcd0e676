package stream

import (
	"context"

	"go.uber.org/multierr"
)

// Provider is what needs to implement to expose a stream.
// it includes the lifecycle methods Open and Close.
// and a "generator method" Emit that returns the next item in the stream.
// A new Provider is created for every execution of the stream (see NewStream), so a provider may keep
// per-execution state in its fields.
type Provider[T any] interface {
	Lifecycle

	// Emit returns the next item in the stream, or an error
	// When the stream is done, it should return io.EOF
	// The package will handle the io.EOF error and will not propagate it to the user
	// Emit is never called concurrently, from multiple goroutines.
	// it is the provider's responsibility to respect context cancellation if supported.
	// the package will check for context cancellation between calls to Emit.
	Emit(ctx context.Context) (T, error)
}

// Lifecycle is an interface that is used to add functionality to the stream lifecycle.
// Close is called exactly once for every successful Open.
type Lifecycle interface {
	Open(ctx context.Context) error
	Close() error
}

type ProviderFunc[T any] func(ctx context.Context) (T, error)

type lifecycleWrapper struct {
	openFunc  func(ctx context.Context) error
	closeFunc func() error
}

func NewLifecycle(openFunc func(ctx context.Context) error, closeFunc func() error) Lifecycle {
	return &lifecycleWrapper{openFunc: openFunc, closeFunc: closeFunc}
}

func (s *lifecycleWrapper) Open(ctx context.Context) error {
	if s.openFunc != nil {
		return s.openFunc(ctx)
	}
	return nil
}

func (s *lifecycleWrapper) Close() error {
	if s.closeFunc != nil {
		return s.closeFunc()
	}
	return nil
}

// providerCursor adapts an opened Provider to a Cursor
type providerCursor[T any] struct {
	provider Provider[T]
}

func openProvider[T any](ctx context.Context, p Provider[T]) (Cursor[T], error) {
	if err := p.Open(ctx); err != nil {
		return nil, err
	}
	return &providerCursor[T]{provider: p}, nil
}

func (p *providerCursor[T]) Next(ctx context.Context) (T, error) {
	return p.provider.Emit(ctx)
}

func (p *providerCursor[T]) Close() error {
	return p.provider.Close()
}

// lifecycleCursor releases an additional lifecycle element after the wrapped cursor
type lifecycleCursor[T any] struct {
	Cursor[T]
	lc Lifecycle
}

func (l *lifecycleCursor[T]) Close() error {
	return multierr.Append(l.Cursor.Close(), l.lc.Close())
}
