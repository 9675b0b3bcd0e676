package stream

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// eventLog records the lifecycle events of tracking sources, in the order they happen
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// trackingSource is a Source of fixed values recording every open, pull and close.
type trackingSource[T any] struct {
	name   string
	log    *eventLog
	values []T

	knownEmpty bool
	openErr    error
	closeErr   error

	// failPull makes the n-th pull (1 based) of every execution fail with pullErr
	failPull int
	pullErr  error

	mu     sync.Mutex
	opens  int
	closes int
	pulls  int
}

func newTrackingSource[T any](log *eventLog, name string, values ...T) *trackingSource[T] {
	return &trackingSource[T]{name: name, log: log, values: values}
}

func (s *trackingSource[T]) KnownEmpty() bool {
	return s.knownEmpty
}

func (s *trackingSource[T]) Open(_ context.Context) (Cursor[T], error) {
	s.log.add("open %s", s.name)
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.mu.Lock()
	s.opens++
	s.mu.Unlock()
	return &trackingCursor[T]{src: s}, nil
}

func (s *trackingSource[T]) counters() (opens int, pulls int, closes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens, s.pulls, s.closes
}

func (s *trackingSource[T]) requireBalanced(t *testing.T, expectedOpens int) {
	t.Helper()
	opens, _, closes := s.counters()
	require.Equal(t, expectedOpens, opens, "%s opens", s.name)
	require.Equal(t, expectedOpens, closes, "%s closes", s.name)
}

type trackingCursor[T any] struct {
	src    *trackingSource[T]
	pulled int
	closed bool
}

func (c *trackingCursor[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if c.closed {
		return zero, fmt.Errorf("%s pulled after close", c.src.name)
	}
	c.src.log.add("next %s", c.src.name)
	c.src.mu.Lock()
	c.src.pulls++
	c.src.mu.Unlock()

	if ctx.Err() != nil {
		return zero, ctx.Err()
	}
	c.pulled++
	if c.src.failPull > 0 && c.pulled == c.src.failPull {
		return zero, c.src.pullErr
	}
	if c.pulled > len(c.src.values) {
		return zero, io.EOF
	}
	return c.src.values[c.pulled-1], nil
}

func (c *trackingCursor[T]) Close() error {
	if c.closed {
		return fmt.Errorf("%s closed twice", c.src.name)
	}
	c.closed = true
	c.src.log.add("close %s", c.src.name)
	c.src.mu.Lock()
	c.src.closes++
	c.src.mu.Unlock()
	return c.src.closeErr
}

// blockingSource emits its values and then blocks until the context is cancelled.
// blocked is signaled every time a pull starts blocking.
type blockingSource[T any] struct {
	*trackingSource[T]
	blocked chan struct{}
}

func newBlockingSource[T any](log *eventLog, name string, values ...T) *blockingSource[T] {
	return &blockingSource[T]{
		trackingSource: newTrackingSource(log, name, values...),
		blocked:        make(chan struct{}, 1),
	}
}

func (s *blockingSource[T]) Open(ctx context.Context) (Cursor[T], error) {
	c, err := s.trackingSource.Open(ctx)
	if err != nil {
		return nil, err
	}
	return &blockingCursor[T]{Cursor: c, src: s, remaining: len(s.values)}, nil
}

type blockingCursor[T any] struct {
	Cursor[T]
	src       *blockingSource[T]
	remaining int
}

func (c *blockingCursor[T]) Next(ctx context.Context) (T, error) {
	if c.remaining > 0 {
		c.remaining--
		return c.Cursor.Next(ctx)
	}
	c.src.log.add("block %s", c.src.name)
	c.src.blocked <- struct{}{}
	<-ctx.Done()
	var zero T
	return zero, ctx.Err()
}

// testStreamUtil tracks lifecycle watchers attached to streams
type testStreamUtil struct {
	watchers map[string]*testLifecycleWatcher
	t        *testing.T
}

func newTestStreamUtil(t *testing.T) *testStreamUtil {
	return &testStreamUtil{
		t:        t,
		watchers: make(map[string]*testLifecycleWatcher),
	}
}

func (t *testStreamUtil) requireAllWatchersVisited() {
	for name, w := range t.watchers {
		require.Equal(t.t, 1, w.openCalled, "%s open called", name)
		require.Equal(t.t, 1, w.closeCalled, "%s close called", name)
	}
}

func (t *testStreamUtil) requireOnlyWatchersVisited(w ...string) {
	expectedWatchersSet := MustCollectToSet(Just(w...))

	for name, w := range t.watchers {
		if _, ok := expectedWatchersSet[name]; !ok {
			require.Equal(t.t, 0, w.openCalled, "%s open called", name)
			require.Equal(t.t, 0, w.closeCalled, "%s close called", name)
		} else {
			require.Equal(t.t, 1, w.openCalled, "%s open called", name)
			require.Equal(t.t, 1, w.closeCalled, "%s close called", name)
		}
	}
}

func (t *testStreamUtil) AddLifecycleWatcher(name string) Lifecycle {
	w := &testLifecycleWatcher{}
	t.watchers[name] = w
	return w
}

type testLifecycleWatcher struct {
	openCalled  int
	closeCalled int
}

func (t *testLifecycleWatcher) Open(_ context.Context) error {
	t.openCalled++
	return nil
}

func (t *testLifecycleWatcher) Close() error {
	t.closeCalled++
	return nil
}

// slowOpenSource blocks in Open until the context is cancelled, it never hands out a cursor.
// blocked is signaled once Open starts blocking.
type slowOpenSource[T any] struct {
	name    string
	log     *eventLog
	blocked chan struct{}
}

func newSlowOpenSource[T any](log *eventLog, name string) *slowOpenSource[T] {
	return &slowOpenSource[T]{name: name, log: log, blocked: make(chan struct{}, 1)}
}

func (s *slowOpenSource[T]) Open(ctx context.Context) (Cursor[T], error) {
	s.log.add("open %s", s.name)
	s.blocked <- struct{}{}
	<-ctx.Done()
	return nil, ctx.Err()
}
