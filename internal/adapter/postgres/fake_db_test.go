package postgres

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeRow replays one row of values into Scan destinations.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assignAll(dest, r.values)
}

// fakeRows implements pgx.Rows over an in-memory table.
type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return assignAll(dest, r.rows[r.idx-1])
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.idx-1], nil
}

// fakeBatchResults reports closeErr for the whole batch.
type fakeBatchResults struct {
	closeErr error
}

func (b fakeBatchResults) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, b.closeErr }
func (b fakeBatchResults) Query() (pgx.Rows, error)         { return &fakeRows{}, b.closeErr }
func (b fakeBatchResults) QueryRow() pgx.Row                { return fakeRow{err: b.closeErr} }
func (b fakeBatchResults) Close() error                     { return b.closeErr }

// fakeDB routes statements by a substring of their SQL.
type fakeDB struct {
	queryRow   func(sql string, args []any) pgx.Row
	query      func(sql string, args []any) (pgx.Rows, error)
	batchErrs  map[string]error // keyed by table name
	batches    []*pgx.Batch
	pingErr    error
	queryCalls []string
}

func (d *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	d.queryCalls = append(d.queryCalls, sql)
	return d.queryRow(sql, args)
}

func (d *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	d.queryCalls = append(d.queryCalls, sql)
	return d.query(sql, args)
}

func (d *fakeDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	d.batches = append(d.batches, b)
	for table, err := range d.batchErrs {
		if len(b.QueuedQueries) > 0 && strings.Contains(b.QueuedQueries[0].SQL, "INTO "+table) {
			return fakeBatchResults{closeErr: err}
		}
	}
	return fakeBatchResults{}
}

func (d *fakeDB) Ping(context.Context) error { return d.pingErr }

func assignAll(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i := range dest {
		target := reflect.ValueOf(dest[i]).Elem()
		if values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(values[i]))
	}
	return nil
}
