// Package ast builds the ASKL abstract syntax tree: statements, each
// carrying an ordered verb command and a nested scope of child statements.
//
// Statements live in a dense-integer-id arena (Tree.Statements) rather than
// as owning-pointer nodes: a statement references its parent and children
// by id, so the parent back-reference installed in the second pass never
// needs an interior-mutable pointer cycle.
package ast

// VerbArg is one verb argument: either positional (Name == "") or named.
type VerbArg struct {
	Name  string
	Value string
}

// Verb is one parsed verb invocation, e.g. `@select(name="a")` or its sugar
// form `"a"`.
type Verb struct {
	Name string
	Args []VerbArg
	// Pos is the position (byte offset, line, column) of the verb's start,
	// for error location.
	Pos Position
}

// Positional returns the i-th positional argument's value, or ("", false)
// if there is no positional argument at that index.
func (v Verb) Positional(i int) (string, bool) {
	n := -1
	for _, a := range v.Args {
		if a.Name != "" {
			continue
		}
		n++
		if n == i {
			return a.Value, true
		}
	}
	return "", false
}

// Named returns the value of the named argument matching name, or
// ("", false) if absent.
func (v Verb) Named(name string) (string, bool) {
	for _, a := range v.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// StatementID indexes into a Tree's statement arena. Ids start at 0;
// NoStatement (-1) stands for "no statement" (e.g. an unset parent).
type StatementID int

// NoStatement marks the absence of a statement reference.
const NoStatement StatementID = -1

// Statement is one ASKL statement: a verb command plus a nested scope of
// child statement ids. Parent is installed in a second pass after the
// whole tree is built, so construction order never depends on it.
type Statement struct {
	ID       StatementID
	Verbs    []Verb
	Children []StatementID
	Parent   StatementID
}

// Tree is the complete parsed program: a dense arena of statements rooted
// at Root, which is a synthetic statement wrapping the top-level sequence
// (spec §4.1: "one synthetic root statement wraps the top-level sequence").
type Tree struct {
	Statements []Statement
	Root       StatementID
	// HasPreamble is set when the first verb of the first top-level
	// statement is @preamble (spec §4.1/§4.2). It only records that the
	// marker was present: nothing reads it, and the statement's later
	// verbs run at the statement's own position like any other verbs.
	HasPreamble bool
}

// Get returns the statement with the given id.
func (t *Tree) Get(id StatementID) *Statement {
	return &t.Statements[id]
}

// alloc appends a new statement to the arena and returns its id.
func (t *Tree) alloc(verbs []Verb) StatementID {
	id := StatementID(len(t.Statements))
	t.Statements = append(t.Statements, Statement{
		ID:       id,
		Verbs:    verbs,
		Children: nil,
		Parent:   NoStatement,
	})
	return id
}

// installParents walks the tree from Root and sets each statement's Parent
// field from its owner's Children list (spec §4.1's "second pass").
func (t *Tree) installParents() {
	for i := range t.Statements {
		t.Statements[i].Parent = NoStatement
	}
	var walk func(id StatementID)
	walk = func(id StatementID) {
		stmt := t.Get(id)
		for _, child := range stmt.Children {
			t.Statements[child].Parent = id
			walk(child)
		}
	}
	walk(t.Root)
}
