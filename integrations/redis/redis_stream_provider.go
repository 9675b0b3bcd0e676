package redis

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/shpandrak/shpanzip/stream"
)

const defaultPageSize = 100

// Option configures a redis stream
type Option func(*options)

type options struct {
	match    string
	count    int64
	pageSize int64
}

// WithScanMatch only streams keys matching the glob pattern
func WithScanMatch(pattern string) Option {
	return func(o *options) {
		o.match = pattern
	}
}

// WithScanCount hints redis how many keys to go over in a single SCAN round trip
func WithScanCount(count int64) Option {
	return func(o *options) {
		o.count = count
	}
}

// WithPageSize sets how many list elements are fetched in a single LRANGE round trip
func WithPageSize(pageSize int64) Option {
	return func(o *options) {
		o.pageSize = pageSize
	}
}

func buildOptions(opts []Option) options {
	ret := options{pageSize: defaultPageSize}
	for _, o := range opts {
		o(&ret)
	}
	if ret.pageSize <= 0 {
		ret.pageSize = defaultPageSize
	}
	return ret
}

type scanKeysStreamProvider struct {
	client redis.Cmdable
	opts   options
	it     *redis.ScanIterator
}

// StreamScanKeys streams the keys of the database using SCAN. Every materialization starts a new scan,
// keys are fetched from redis as the stream is pulled. SCAN may return a key more than once.
func StreamScanKeys(client redis.Cmdable, opts ...Option) stream.Stream[string] {
	if client == nil {
		return stream.Error[string](&stream.ArgumentError{Param: "client"})
	}
	o := buildOptions(opts)
	return stream.NewStream(func() stream.Provider[string] {
		return &scanKeysStreamProvider{client: client, opts: o}
	})
}

func (s *scanKeysStreamProvider) Open(ctx context.Context) error {
	cmd := s.client.Scan(ctx, 0, s.opts.match, s.opts.count)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("failed opening redis scan stream: %w", err)
	}
	s.it = cmd.Iterator()
	return nil
}

func (s *scanKeysStreamProvider) Emit(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if s.it.Next(ctx) {
		return s.it.Val(), nil
	}
	if err := s.it.Err(); err != nil {
		return "", fmt.Errorf("error reading from redis scan stream: %w", err)
	}
	return "", io.EOF
}

func (s *scanKeysStreamProvider) Close() error {
	s.it = nil
	return nil
}

type listRangeStreamProvider struct {
	client redis.Cmdable
	key    string
	opts   options

	offset int64
	page   []string
	done   bool
}

// StreamListRange streams the elements of the list at key, head to tail, fetching a page of elements
// at a time with LRANGE. A missing key is an empty list.
func StreamListRange(client redis.Cmdable, key string, opts ...Option) stream.Stream[string] {
	if client == nil {
		return stream.Error[string](&stream.ArgumentError{Param: "client"})
	}
	o := buildOptions(opts)
	return stream.NewStream(func() stream.Provider[string] {
		return &listRangeStreamProvider{client: client, key: key, opts: o}
	})
}

func (l *listRangeStreamProvider) Open(ctx context.Context) error {
	// Fetch the first page eagerly, so an unreachable server fails the execution right away
	return l.fetchPage(ctx)
}

func (l *listRangeStreamProvider) fetchPage(ctx context.Context) error {
	page, err := l.client.LRange(ctx, l.key, l.offset, l.offset+l.opts.pageSize-1).Result()
	if err != nil {
		return fmt.Errorf("failed reading redis list %s at %d: %w", l.key, l.offset, err)
	}
	l.offset += int64(len(page))
	l.page = page
	l.done = int64(len(page)) < l.opts.pageSize
	return nil
}

func (l *listRangeStreamProvider) Emit(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if len(l.page) == 0 {
		if l.done {
			return "", io.EOF
		}
		if err := l.fetchPage(ctx); err != nil {
			return "", err
		}
		if len(l.page) == 0 {
			return "", io.EOF
		}
	}
	v := l.page[0]
	l.page = l.page[1:]
	return v, nil
}

func (l *listRangeStreamProvider) Close() error {
	l.page = nil
	return nil
}
