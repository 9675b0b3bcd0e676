package sql

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/shpandrak/shpanzip/internal/util"
	"github.com/shpandrak/shpanzip/stream"
)

// QueryOption configures a query stream
type QueryOption func(*queryOptions)

type queryOptions struct {
	args []any
}

// WithQueryArgs sets the arguments bound to the query placeholders
func WithQueryArgs(args ...any) QueryOption {
	return func(o *queryOptions) {
		o.args = append(o.args, args...)
	}
}

// StreamSqlQuery streams the rows of query, converting every row with scanner.
// The query is executed whenever the stream is materialized, and the rows are closed when the execution ends.
// Materializing the stream more than once runs the query again.
func StreamSqlQuery[T any](
	dbProvider func() (*sql.DB, error),
	query string,
	scanner func(*sql.Rows) (T, error),
	options ...QueryOption,
) stream.Stream[T] {
	if dbProvider == nil {
		return stream.Error[T](&stream.ArgumentError{Param: "dbProvider"})
	}
	if scanner == nil {
		return stream.Error[T](&stream.ArgumentError{Param: "scanner"})
	}
	opts := &queryOptions{}
	for _, o := range options {
		o(opts)
	}
	db, err := dbProvider()
	if err != nil {
		return stream.Error[T](fmt.Errorf("failed to get db for sql query stream: %w", err))
	}
	return stream.NewStream(func() stream.Provider[T] {
		return &sqlQueryStreamProvider[T]{
			db:        db,
			query:     query,
			paramVals: opts.args,
			scanner:   scanner,
		}
	})
}

type sqlQueryStreamProvider[T any] struct {
	db        *sql.DB
	query     string
	paramVals []any
	rows      *sql.Rows
	scanner   func(*sql.Rows) (T, error)
}

func (s *sqlQueryStreamProvider[T]) Open(ctx context.Context) error {
	rows, err := s.db.QueryContext(
		ctx,
		s.query,
		s.paramVals...,
	)
	if err != nil {
		return fmt.Errorf("failed opening sql query stream: %w", err)
	}
	s.rows = rows
	return nil

}

func (s *sqlQueryStreamProvider[T]) Close() error {
	if s.rows == nil {
		return nil
	}
	if err := s.rows.Close(); err != nil {
		return fmt.Errorf("failed closing sql query stream: %w", err)
	}
	return nil
}

func (s *sqlQueryStreamProvider[T]) Emit(ctx context.Context) (T, error) {
	if ctx.Err() != nil {
		return util.DefaultValue[T](), ctx.Err()
	}
	next := s.rows.Next()
	if !next {
		if err := s.rows.Err(); err != nil {
			return util.DefaultValue[T](), fmt.Errorf("error reading from sql query stream: %w", err)
		}
		return util.DefaultValue[T](), io.EOF
	}
	v, err := s.scanner(s.rows)
	if err == io.EOF {
		return util.DefaultValue[T](), fmt.Errorf("scanner failed for sql query stream: %w", err)
	}
	return v, err
}
