package dbconn

import (
	"context"

	"github.com/nremc/dbconn/hooks"
)

// ExecScript runs statements in order inside one transaction and commits it.
// A failure rolls the whole script back and returns the classified error.
// Intended for schema bootstrap and seed data, not for registry commands.
//
// ExecScript refuses to run while a transaction is pending: it would commit
// the caller's unrelated work along with the script.
func (c *Connector) ExecScript(ctx context.Context, statements []string) error {
	if c.cursor.Pending() {
		return &Error{
			Code:    CodeUnknown,
			Message: "transaction pending; commit or rollback before running a script",
			Op:      "ExecScript",
			Index:   -1,
		}
	}

	ctx = hooks.WithCommandName(ctx, "script")
	for _, stmt := range statements {
		if err := c.cursor.Execute(ctx, stmt); err != nil {
			_ = c.cursor.Rollback()
			return err
		}
	}
	return c.cursor.Commit()
}
