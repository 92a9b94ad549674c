package dbconn

import (
	"sort"
	"strings"
)

// Placeholder is the positional parameter marker in command templates.
// Arguments bind to markers left to right at execution time.
const Placeholder = "?"

// Command is a named SQL template. The template may contain any number of
// placeholder markers, including none.
type Command struct {
	Name string
	SQL  string
}

// Arity returns the number of placeholder markers in the template, counted by
// a naive token scan. A marker inside a string literal in the SQL text is
// counted too; templates are assumed not to embed the marker in literals.
func (c Command) Arity() int {
	return strings.Count(c.SQL, Placeholder)
}

// Registry maps command names to SQL templates. Names are unique; registering
// under an existing name replaces the prior template (last write wins).
//
// A Registry is not safe for concurrent use; see the package documentation's
// note on serializing access to a Connector.
type Registry struct {
	cmds map[string]Command
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Command)}
}

// Register inserts or overwrites the template stored under name. The SQL text
// is not validated here; the server rejects bad statements at execution time.
func (r *Registry) Register(name, sql string) {
	r.cmds[name] = Command{Name: name, SQL: sql}
}

// Resolve returns the command registered under name, or an UNKNOWN_COMMAND
// error when the name is absent. A miss leaves the registry unchanged.
func (r *Registry) Resolve(name string) (Command, error) {
	cmd, ok := r.cmds[name]
	if !ok {
		return Command{}, unknownCommandError("Resolve", name)
	}
	return cmd, nil
}

// Names returns all registered command names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.cmds)
}
