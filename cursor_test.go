package dbconn

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func seedResultSet(t *testing.T, c *Connector, mock sqlmock.Sqlmock, rowCount int) {
	t.Helper()

	c.AddCommand("SELECT_ALL_PEOPLE", "SELECT id, name FROM people")

	rows := sqlmock.NewRows([]string{"id", "name"})
	names := []string{"Ada", "Grace", "Edsger", "Barbara", "Donald"}
	for i := 0; i < rowCount; i++ {
		rows.AddRow(int64(i+1), names[i%len(names)])
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name FROM people").WillReturnRows(rows)

	if err := c.Call(context.Background(), "SELECT_ALL_PEOPLE"); err != nil {
		t.Fatalf("seeding result set failed: %v", err)
	}
}

func TestFetch_NoExecutionYet(t *testing.T) {
	c, _ := newMockConnector(t)

	if _, err := c.FetchOne(); !IsNoResultSet(err) {
		t.Errorf("FetchOne: expected no result set error, got %v", err)
	}
	if _, err := c.FetchMany(3); !IsNoResultSet(err) {
		t.Errorf("FetchMany: expected no result set error, got %v", err)
	}
	if _, err := c.FetchAll(); !IsNoResultSet(err) {
		t.Errorf("FetchAll: expected no result set error, got %v", err)
	}
}

func TestFetch_AfterNonRowProducingStatement(t *testing.T) {
	c, mock := newMockConnector(t)
	c.AddCommand("BUMP", "UPDATE people SET age = age + 1")

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE people SET age = age \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := c.Call(context.Background(), "BUMP"); err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	if _, err := c.FetchOne(); !IsNoResultSet(err) {
		t.Errorf("expected no result set after UPDATE, got %v", err)
	}

	mock.ExpectRollback()
	_ = c.Rollback()
}

func TestFetchOne_RowThenExhaustion(t *testing.T) {
	c, mock := newMockConnector(t)
	seedResultSet(t, c, mock, 1)

	row, err := c.FetchOne()
	if err != nil {
		t.Fatalf("FetchOne failed: %v", err)
	}
	if row == nil {
		t.Fatal("expected a row")
	}
	if row[0] != int64(1) || row[1] != "Ada" {
		t.Errorf("unexpected row: %v", row)
	}

	// exhaustion is the (nil, nil) sentinel, not an error
	row, err = c.FetchOne()
	if err != nil {
		t.Fatalf("FetchOne on exhausted result set errored: %v", err)
	}
	if row != nil {
		t.Errorf("expected nil row on exhaustion, got %v", row)
	}

	mock.ExpectRollback()
	_ = c.Rollback()
}

func TestFetchMany_FewerRemainingThanRequested(t *testing.T) {
	c, mock := newMockConnector(t)
	seedResultSet(t, c, mock, 3)

	rows, err := c.FetchMany(5)
	if err != nil {
		t.Fatalf("FetchMany failed: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected the 3 remaining rows, got %d", len(rows))
	}

	mock.ExpectRollback()
	_ = c.Rollback()
}

func TestFetchMany_ConsumesInOrder(t *testing.T) {
	c, mock := newMockConnector(t)
	seedResultSet(t, c, mock, 3)

	first, err := c.FetchMany(2)
	if err != nil {
		t.Fatalf("first FetchMany failed: %v", err)
	}
	if len(first) != 2 || first[0][0] != int64(1) || first[1][0] != int64(2) {
		t.Errorf("expected rows 1 and 2, got %v", first)
	}

	rest, err := c.FetchMany(2)
	if err != nil {
		t.Fatalf("second FetchMany failed: %v", err)
	}
	if len(rest) != 1 || rest[0][0] != int64(3) {
		t.Errorf("expected the single remaining row 3, got %v", rest)
	}

	empty, err := c.FetchMany(2)
	if err != nil {
		t.Fatalf("FetchMany on exhausted result set errored: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no rows, got %v", empty)
	}

	mock.ExpectRollback()
	_ = c.Rollback()
}

func TestFetchMany_NonPositiveCount(t *testing.T) {
	c, mock := newMockConnector(t)
	seedResultSet(t, c, mock, 2)

	rows, err := c.FetchMany(0)
	if err != nil {
		t.Fatalf("FetchMany(0) errored: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("FetchMany(0) should yield no rows, got %v", rows)
	}

	rows, err = c.FetchMany(-1)
	if err != nil {
		t.Fatalf("FetchMany(-1) errored: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("FetchMany(-1) should yield no rows, got %v", rows)
	}

	mock.ExpectRollback()
	_ = c.Rollback()
}

func TestFetchAll_DrainsThenReturnsEmpty(t *testing.T) {
	c, mock := newMockConnector(t)
	seedResultSet(t, c, mock, 3)

	rows, err := c.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// same result set, no new execution: empty, not an error
	again, err := c.FetchAll()
	if err != nil {
		t.Fatalf("second FetchAll errored: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("expected empty slice, got %v", again)
	}

	mock.ExpectRollback()
	_ = c.Rollback()
}

func TestFetch_MixedCardinalities(t *testing.T) {
	c, mock := newMockConnector(t)
	seedResultSet(t, c, mock, 4)

	row, err := c.FetchOne()
	if err != nil || row == nil || row[0] != int64(1) {
		t.Fatalf("FetchOne: got %v, err %v", row, err)
	}

	pair, err := c.FetchMany(2)
	if err != nil || len(pair) != 2 || pair[0][0] != int64(2) {
		t.Fatalf("FetchMany: got %v, err %v", pair, err)
	}

	rest, err := c.FetchAll()
	if err != nil || len(rest) != 1 || rest[0][0] != int64(4) {
		t.Fatalf("FetchAll: got %v, err %v", rest, err)
	}

	mock.ExpectRollback()
	_ = c.Rollback()
}

func TestReturnsRows_Classification(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT * FROM people", true},
		{"  select 1", true},
		{"WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"VALUES (1), (2)", true},
		{"SHOW server_version", true},
		{"EXPLAIN SELECT 1", true},
		{"INSERT INTO people (name) VALUES ('Ada')", false},
		{"INSERT INTO people (name) VALUES ('Ada') RETURNING id", true},
		{"UPDATE people SET age = 1", false},
		{"DELETE FROM people", false},
		{"CREATE TABLE t (id INT)", false},
	}

	for _, tt := range tests {
		if got := returnsRows(tt.query); got != tt.want {
			t.Errorf("returnsRows(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
