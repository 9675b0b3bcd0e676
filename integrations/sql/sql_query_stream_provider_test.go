package sql

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shpandrak/shpanzip"
	"github.com/shpandrak/shpanzip/internal/util"
	"github.com/shpandrak/shpanzip/stream"
	"github.com/stretchr/testify/require"
)

type myRow struct {
	id        string
	name      string
	timestamp time.Time
}

func scanMyRow(rows *sql.Rows) (myRow, error) {
	var row myRow
	err := rows.Scan(&row.id, &row.name, &row.timestamp)
	if err != nil {
		return util.DefaultValue[myRow](), fmt.Errorf("failed scanning row: %w", err)
	}
	return row, nil
}

func scanInt(rows *sql.Rows) (int, error) {
	var v int
	if err := rows.Scan(&v); err != nil {
		return 0, fmt.Errorf("failed scanning row: %w", err)
	}
	return v, nil
}

// openTestDb opens a named in memory db, shared by all connections of the pool, so concurrently open
// queries see the same tables
func openTestDb(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS my_table (
			id TEXT PRIMARY KEY,
			name TEXT,
			timestamp TIMESTAMP
		)`)
	require.NoError(t, err)

	initialTime := time.Date(1981, 3, 4, 13, 30, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		_, err = db.Exec(`
			INSERT INTO my_table (id, name, timestamp)
			VALUES (?, ?, ?)`,
			fmt.Sprintf("%d", i),
			fmt.Sprintf("Name %d", i),
			initialTime.Add(time.Duration(i)*time.Minute),
		)
		require.NoError(t, err)
	}
	return db
}

func TestStreamSqlQuery(t *testing.T) {
	db := openTestDb(t)
	dbProvider := func() (*sql.DB, error) {
		return db, nil
	}

	require.Equal(t, 100, StreamSqlQuery[myRow](dbProvider, "SELECT id, name, timestamp FROM my_table", scanMyRow).MustCount())

	filtered := StreamSqlQuery[myRow](
		dbProvider,
		"SELECT id, name, timestamp FROM my_table WHERE CAST(id AS INTEGER) < ?",
		scanMyRow,
		WithQueryArgs(10),
	)
	require.Equal(t, 10, filtered.MustCount())

	// Every materialization runs the query again
	require.Equal(t, 10, filtered.MustCount())
}

func TestStreamSqlQuery_ZipTwoQueries(t *testing.T) {
	db := openTestDb(t)
	dbProvider := func() (*sql.DB, error) {
		return db, nil
	}

	names := StreamSqlQuery[myRow](dbProvider, "SELECT id, name, timestamp FROM my_table ORDER BY timestamp", scanMyRow)
	ids := StreamSqlQuery[int](
		dbProvider,
		"SELECT CAST(id AS INTEGER) FROM my_table WHERE CAST(id AS INTEGER) >= ? ORDER BY CAST(id AS INTEGER)",
		scanInt,
		WithQueryArgs(97),
	)

	res := stream.Zip(ids, names, func(id int, row myRow) string {
		return fmt.Sprintf("%d:%s", id, row.name)
	}).MustCollect()
	require.Equal(t, []string{"97:Name 0", "98:Name 1", "99:Name 2"}, res)

	// Both result sets were closed, so the pool holds no busy connection
	require.Eventually(t, func() bool {
		return db.Stats().InUse == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStreamSqlQuery_ScannerFailure(t *testing.T) {
	db := openTestDb(t)
	dbProvider := func() (*sql.DB, error) {
		return db, nil
	}

	_, err := stream.ZipToTuple[int, int](
		StreamSqlQuery[int](dbProvider, "SELECT CAST(id AS INTEGER) FROM my_table", scanInt),
		StreamSqlQuery[int](dbProvider, "SELECT name FROM my_table", scanInt),
	).Collect(context.Background())
	require.ErrorContains(t, err, "failed scanning row")
	require.Equal(t, 0, db.Stats().InUse)
}

func TestStreamSqlQuery_BadQueryFailsZipAcquisition(t *testing.T) {
	db := openTestDb(t)
	dbProvider := func() (*sql.DB, error) {
		return db, nil
	}

	_, err := stream.ZipToTuple[int, int](
		StreamSqlQuery[int](dbProvider, "SELECT CAST(id AS INTEGER) FROM my_table", scanInt),
		StreamSqlQuery[int](dbProvider, "SELECT nope FROM no_such_table", scanInt),
	).Collect(context.Background())
	require.ErrorContains(t, err, "failed opening sql query stream")
	require.Equal(t, 0, db.Stats().InUse)
}

func TestStreamSqlQuery_InvalidArguments(t *testing.T) {
	_, err := StreamSqlQuery[int](nil, "SELECT 1", scanInt).Collect(context.Background())
	require.ErrorIs(t, err, stream.ErrInvalidArgument)

	_, err = StreamSqlQuery[int](func() (*sql.DB, error) {
		return nil, fmt.Errorf("no db for you")
	}, "SELECT 1", scanInt).Collect(context.Background())
	require.ErrorContains(t, err, "no db for you")
}

func TestStreamSqlQuery_Tuple(t *testing.T) {
	db := openTestDb(t)
	dbProvider := func() (*sql.DB, error) {
		return db, nil
	}
	first := stream.ZipToTuple[int, myRow](
		StreamSqlQuery[int](dbProvider, "SELECT COUNT(*) FROM my_table", scanInt),
		StreamSqlQuery[myRow](dbProvider, "SELECT id, name, timestamp FROM my_table WHERE id = ?", scanMyRow, WithQueryArgs("42")),
	).MustFindFirst()
	require.Equal(t, shpanzip.Tuple2[int, myRow]{A: 100, B: first.B}, first)
	require.Equal(t, "Name 42", first.B.name)
}
