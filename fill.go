package dbconn

import (
	"context"
	"fmt"
	"strings"

	"github.com/nremc/dbconn/hooks"
)

// Assignment is one SET column/value pair for FillUpdate.
type Assignment struct {
	Column string
	Value  any
}

// Condition is one WHERE column/value pair for FillUpdate. Successive
// conditions are joined by the caller-supplied AND/OR connectors.
type Condition struct {
	Column string
	Value  any
}

// FillInsert completes an insert template and executes it. The named command
// must contain two %s verbs: the first receives the joined column list, the
// second a matching placeholder list. Values bind positionally to columns.
//
//	c.AddCommand("INSERT_PERSON", "INSERT INTO people (%s) VALUES (%s)")
//	err := c.FillInsert(ctx, "INSERT_PERSON",
//	    []string{"name", "age"}, []any{"Ada", 36})
//
// Columns and values are ordered slices, not a map: the emitted SQL must be
// deterministic and map iteration is not.
func (c *Connector) FillInsert(ctx context.Context, name string, columns []string, values []any) error {
	cmd, err := c.registry.Resolve(name)
	if err != nil {
		return err
	}
	if len(columns) == 0 || len(columns) != len(values) {
		return arityError("FillInsert", name, len(columns), len(values), -1)
	}

	query := fmt.Sprintf(cmd.SQL,
		strings.Join(columns, ", "),
		placeholderList(len(values)),
	)

	ctx = hooks.WithCommandName(ctx, name)
	return c.cursor.Execute(ctx, query, values...)
}

// FillUpdate completes an update template and executes it. The named command
// is the statement head up to and including SET; the assignment list and a
// WHERE clause built from conditions are appended. connectors joins
// successive conditions and must hold len(conditions)-1 entries, each "AND"
// or "OR".
//
//	c.AddCommand("UPDATE_PERSON", "UPDATE people SET")
//	err := c.FillUpdate(ctx, "UPDATE_PERSON",
//	    []Assignment{{"name", "Ada"}, {"age", 36}},
//	    []Condition{{"id", 1}},
//	    nil)
func (c *Connector) FillUpdate(ctx context.Context, name string, assignments []Assignment, conditions []Condition, connectors []string) error {
	cmd, err := c.registry.Resolve(name)
	if err != nil {
		return err
	}
	if len(assignments) == 0 {
		return arityError("FillUpdate", name, 1, 0, -1)
	}
	if len(conditions) == 0 {
		return arityError("FillUpdate", name, 1, 0, -1)
	}
	if len(connectors) != len(conditions)-1 {
		return arityError("FillUpdate", name, len(conditions)-1, len(connectors), -1)
	}
	for _, conn := range connectors {
		if conn != "AND" && conn != "OR" {
			return &Error{
				Code:    CodeArityMismatch,
				Message: fmt.Sprintf("connector must be AND or OR, got %q", conn),
				Op:      "FillUpdate",
				Command: name,
				Index:   -1,
			}
		}
	}

	var b strings.Builder
	args := make([]any, 0, len(assignments)+len(conditions))

	b.WriteString(strings.TrimRight(cmd.SQL, " "))
	for i, a := range assignments {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(" " + a.Column + " = " + Placeholder)
		args = append(args, a.Value)
	}

	b.WriteString(" WHERE")
	for i, cond := range conditions {
		if i > 0 {
			b.WriteString(" " + connectors[i-1])
		}
		b.WriteString(" " + cond.Column + " = " + Placeholder)
		args = append(args, cond.Value)
	}

	ctx = hooks.WithCommandName(ctx, name)
	return c.cursor.Execute(ctx, b.String(), args...)
}

// placeholderList returns n comma-separated placeholder markers.
func placeholderList(n int) string {
	markers := make([]string, n)
	for i := range markers {
		markers[i] = Placeholder
	}
	return strings.Join(markers, ", ")
}
