package dbconn

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestExecScript(t *testing.T) {
	c, mock := newMockConnector(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE people \(id SERIAL PRIMARY KEY, name TEXT, age INT\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO people \(name, age\) VALUES \('Ada', 36\)`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := c.ExecScript(context.Background(), []string{
		"CREATE TABLE people (id SERIAL PRIMARY KEY, name TEXT, age INT)",
		"INSERT INTO people (name, age) VALUES ('Ada', 36)",
	})
	if err != nil {
		t.Fatalf("ExecScript failed: %v", err)
	}
	if c.Cursor().Pending() {
		t.Error("script should leave no pending transaction")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExecScript_RollsBackOnFailure(t *testing.T) {
	c, mock := newMockConnector(t)

	cause := errors.New("pq: relation already exists")
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE a \(id INT\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE b \(id INT\)`).WillReturnError(cause)
	mock.ExpectRollback()

	err := c.ExecScript(context.Background(), []string{
		"CREATE TABLE a (id INT)",
		"CREATE TABLE b (id INT)",
	})
	if err == nil {
		t.Fatal("expected script failure")
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected the driver error, got %v", err)
	}
	if c.Cursor().Pending() {
		t.Error("failed script should leave no pending transaction")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExecScript_RefusesWithPendingTransaction(t *testing.T) {
	c, mock := newMockConnector(t)
	c.AddCommand("BUMP", "UPDATE people SET age = age + 1 WHERE id = ?")

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE people SET age = age \+ 1 WHERE id = 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := c.Call(context.Background(), "BUMP", 1); err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	err := c.ExecScript(context.Background(), []string{"CREATE TABLE t (id INT)"})
	if err == nil {
		t.Fatal("expected refusal while a transaction is pending")
	}
	if !c.Cursor().Pending() {
		t.Error("the caller's pending transaction must survive the refusal")
	}

	mock.ExpectRollback()
	if err := c.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
}
