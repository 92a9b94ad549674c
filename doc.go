/*
Package dbconn maps named, parameterized SQL commands onto one database
session with explicit transaction control.

A Connector holds a command registry (name -> SQL template with ?
placeholders), a pinned connection, and its cursor. Commands are invoked by
name with positional arguments; the argument count is validated against the
template's placeholder count before anything reaches the driver. Results are
pulled through a cursor-style fetch contract, and commit/rollback are explicit
at connection granularity.

# Basic Usage

	db, err := dbconn.NewFromConfigFile("commands.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	defer db.Close()

	if err := db.Call(ctx, "SELECT_PERSON_BY_ID", 1); err != nil {
	    log.Fatal(err)
	}
	row, err := db.FetchOne()

Or construct programmatically:

	cfg := dbconn.DefaultConfig("localhost:5432", "membership")
	cfg.Logger = slog.Default()

	db, err := dbconn.New(cfg)
	db.AddCommand("UPDATE_AGE_BY_ID", "UPDATE people SET age = ? WHERE id = ?")

# Config Files

A config document has a server section and an open-ended command table:

	sql_server:
	  server: db.internal:5432
	  database: membership
	  version: 17
	sql_commands:
	  SELECT_ALL_PEOPLE: SELECT * FROM people
	  SELECT_PERSON_BY_ID: SELECT * FROM people WHERE id = ?

# Transactions

The first execution after open, Commit, or Rollback implicitly begins a
transaction on the pinned connection. Batch as many Call invocations as
needed, then finalize:

	if err := db.CallMany(ctx, "UPDATE_AGE_BY_ID", sets); err != nil {
	    db.Rollback()
	    return err
	}
	return db.Commit()

Both Commit and Rollback are no-ops when nothing is pending. Server-side
failures (constraint violations and the like) propagate verbatim; the caller
decides whether to roll back or retry.

# Fetching

FetchOne returns the next row or (nil, nil) on exhaustion; FetchMany(n)
returns up to n rows, fewer once exhausted; FetchAll drains the rest. All
three fail with a NO_RESULT_SET error when the last execution did not produce
rows. Rows are positional ([]any in projected column order).

# Errors

Failures carry a classification on *Error and match sentinels with errors.Is:

	if err := db.Call(ctx, "GET", 1, 2); err != nil {
	    if dbconn.IsArityMismatch(err) {
	        // wrong argument count, nothing was executed
	    }
	    if dbconn.IsDuplicate(err) {
	        db.Rollback()
	    }
	}

# Concurrency

A Connector assumes one caller sequence at a time: the active result set and
pending transaction are connection-global state. Concurrent callers must
serialize the whole execute/fetch/commit cycle, for example with one mutex.
*/
package dbconn
