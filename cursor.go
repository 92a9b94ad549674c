package dbconn

import (
	"context"
	"database/sql"
	"strings"

	"github.com/uptrace/bun"
)

// Row is one result row, column values in the query's projected order.
// Column-name based access is not part of the cursor contract.
type Row []any

// Cursor executes statements on one pinned connection and tracks the two
// pieces of connection-global state: the pending transaction and the active
// result set. The first execution after open, Commit, or Rollback begins a
// transaction implicitly; Commit and Rollback finalize it.
//
// A Cursor is not safe for concurrent use. Callers sharing one must serialize
// the whole execute/fetch/commit cycle themselves.
type Cursor struct {
	conn bun.Conn
	tx   *bun.Tx
	rows *sql.Rows
	cols int
}

func newCursor(conn bun.Conn) *Cursor {
	return &Cursor{conn: conn}
}

// Execute binds args positionally into query and runs it inside the pending
// transaction, beginning one if none is pending. A row-producing statement
// replaces the active result set; anything else invalidates it.
//
// Execute performs no arity validation; it is the raw escape hatch underneath
// Connector.Call. Driver errors propagate classified but otherwise verbatim.
func (c *Cursor) Execute(ctx context.Context, query string, args ...any) error {
	if err := c.invalidate(); err != nil {
		return wrapError(err, "Execute")
	}

	tx, err := c.begin(ctx)
	if err != nil {
		return err
	}

	if !returnsRows(query) {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return wrapError(err, "Execute")
		}
		return nil
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return wrapError(err, "Execute")
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return wrapError(err, "Execute")
	}
	c.rows = rows
	c.cols = len(cols)
	return nil
}

// FetchOne returns the next row of the active result set, or (nil, nil) once
// the result set is exhausted. Fetching with no active result set is a
// NO_RESULT_SET error.
func (c *Cursor) FetchOne() (Row, error) {
	if c.rows == nil {
		return nil, noResultSetError("FetchOne")
	}
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return nil, wrapError(err, "FetchOne")
		}
		return nil, nil
	}
	row, err := scanRow(c.rows, c.cols)
	if err != nil {
		return nil, wrapError(err, "FetchOne")
	}
	return row, nil
}

// FetchMany returns up to n rows in result-set order. Exhausting the result
// set early yields fewer rows (possibly none); that is not an error. A
// non-positive n yields no rows.
func (c *Cursor) FetchMany(n int) ([]Row, error) {
	if c.rows == nil {
		return nil, noResultSetError("FetchMany")
	}
	var out []Row
	for len(out) < n && c.rows.Next() {
		row, err := scanRow(c.rows, c.cols)
		if err != nil {
			return nil, wrapError(err, "FetchMany")
		}
		out = append(out, row)
	}
	if err := c.rows.Err(); err != nil {
		return nil, wrapError(err, "FetchMany")
	}
	return out, nil
}

// FetchAll drains the remainder of the active result set in order, returning
// an empty slice when it is already exhausted.
func (c *Cursor) FetchAll() ([]Row, error) {
	if c.rows == nil {
		return nil, noResultSetError("FetchAll")
	}
	out := make([]Row, 0)
	for c.rows.Next() {
		row, err := scanRow(c.rows, c.cols)
		if err != nil {
			return nil, wrapError(err, "FetchAll")
		}
		out = append(out, row)
	}
	if err := c.rows.Err(); err != nil {
		return nil, wrapError(err, "FetchAll")
	}
	return out, nil
}

// Commit finalizes every statement executed since the last Commit or
// Rollback. It is a no-op when nothing is pending. Finalizing closes the
// active result set; a result set does not survive its transaction.
func (c *Cursor) Commit() error {
	if c.tx == nil {
		return nil
	}
	if err := c.invalidate(); err != nil {
		return wrapError(err, "Commit")
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Commit(); err != nil {
		return wrapError(err, "Commit")
	}
	return nil
}

// Rollback discards every statement executed since the last Commit or
// Rollback. It is a no-op when nothing is pending and closes the active
// result set.
func (c *Cursor) Rollback() error {
	if c.tx == nil {
		return nil
	}
	if err := c.invalidate(); err != nil {
		return wrapError(err, "Rollback")
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Rollback(); err != nil {
		if err == sql.ErrTxDone {
			return nil
		}
		return wrapError(err, "Rollback")
	}
	return nil
}

// Pending reports whether uncommitted statements are on the connection.
func (c *Cursor) Pending() bool {
	return c.tx != nil
}

// begin returns the pending transaction, starting one if needed.
func (c *Cursor) begin(ctx context.Context) (*bun.Tx, error) {
	if c.tx != nil {
		return c.tx, nil
	}
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapError(err, "Begin")
	}
	c.tx = &tx
	return c.tx, nil
}

// invalidate closes and forgets the active result set.
func (c *Cursor) invalidate() error {
	if c.rows == nil {
		return nil
	}
	rows := c.rows
	c.rows = nil
	c.cols = 0
	return rows.Close()
}

// close releases cursor state on teardown: open rows are closed and a pending
// transaction is rolled back.
func (c *Cursor) close() error {
	err := c.invalidate()
	if c.tx != nil {
		tx := c.tx
		c.tx = nil
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone && err == nil {
			err = rbErr
		}
	}
	return err
}

func scanRow(rows *sql.Rows, cols int) (Row, error) {
	values := make(Row, cols)
	ptrs := make([]any, cols)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}

// returnsRows classifies a statement as row-producing by its leading keyword
// or a RETURNING clause. Statements classified as row-producing install a
// result set; everything else runs as a plain exec.
func returnsRows(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, kw := range [...]string{"SELECT", "WITH", "VALUES", "SHOW", "EXPLAIN", "TABLE"} {
		if strings.HasPrefix(q, kw) {
			return true
		}
	}
	return strings.Contains(q, "RETURNING")
}
