package dbconn

import "testing"

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	r.Register("SELECT_PERSON_BY_ID", "SELECT * FROM people WHERE id = ?")

	cmd, err := r.Resolve("SELECT_PERSON_BY_ID")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cmd.Name != "SELECT_PERSON_BY_ID" {
		t.Errorf("expected command name SELECT_PERSON_BY_ID, got %s", cmd.Name)
	}
	if cmd.SQL != "SELECT * FROM people WHERE id = ?" {
		t.Errorf("unexpected SQL: %s", cmd.SQL)
	}
}

func TestRegistry_OverwriteIsLastWriteWins(t *testing.T) {
	r := NewRegistry()
	r.Register("X", "A")
	r.Register("X", "B")

	cmd, err := r.Resolve("X")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cmd.SQL != "B" {
		t.Errorf("expected overwritten template B, got %s", cmd.SQL)
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 entry after overwrite, got %d", r.Len())
	}
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := NewRegistry()
	r.Register("KNOWN", "SELECT 1")

	_, err := r.Resolve("MISSING")
	if !IsUnknownCommand(err) {
		t.Fatalf("expected unknown command error, got %v", err)
	}

	// a miss leaves the registry unchanged
	if r.Len() != 1 {
		t.Errorf("expected registry unchanged after miss, got %d entries", r.Len())
	}
	if _, err := r.Resolve("KNOWN"); err != nil {
		t.Errorf("existing entry should still resolve: %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register("B_CMD", "SELECT 2")
	r.Register("A_CMD", "SELECT 1")

	names := r.Names()
	if len(names) != 2 || names[0] != "A_CMD" || names[1] != "B_CMD" {
		t.Errorf("expected sorted names [A_CMD B_CMD], got %v", names)
	}
}

func TestCommand_Arity(t *testing.T) {
	tests := []struct {
		sql  string
		want int
	}{
		{"SELECT * FROM people", 0},
		{"SELECT * FROM people WHERE id = ?", 1},
		{"UPDATE people SET name = ?, age = ? WHERE id = ?", 3},
		{"INSERT INTO people (name, age) VALUES (?, ?)", 2},
		// naive token scan: a marker inside a string literal counts too
		{"SELECT * FROM people WHERE note = 'why?'", 1},
	}

	for _, tt := range tests {
		got := Command{Name: "T", SQL: tt.sql}.Arity()
		if got != tt.want {
			t.Errorf("Arity(%q) = %d, want %d", tt.sql, got, tt.want)
		}
	}
}
