package verb

import "github.com/oxhq/askl/internal/ast"

// BuildCommands walks tree from its root and builds each statement's
// Command, applying the Clone-mode scope inheritance described in spec
// §4.2/§9 ("a nested child scope inherits its parent's Clone-mode
// verbs"): a statement's own parsed verbs are appended after the verbs
// its enclosing statement's Derive() kept, grounded on
// parser_context.rs's ParserContext::derive/consume flow (ported here as
// a post-parse pass over the already-built ast.Tree rather than
// construction-time accumulation, since the Go parser keeps the AST and
// command layers separate).
func BuildCommands(tree *ast.Tree, path string) (map[ast.StatementID]*Command, error) {
	commands := make(map[ast.StatementID]*Command, len(tree.Statements))

	var walk func(id ast.StatementID, inherited *Command) error
	walk = func(id ast.StatementID, inherited *Command) error {
		stmt := tree.Get(id)

		own := make([]Verb, 0, len(stmt.Verbs))
		for _, av := range stmt.Verbs {
			built, err := Build(av, path)
			if err != nil {
				return err
			}
			own = append(own, built)
		}

		cmd := &Command{Verbs: append(append([]Verb{}, inherited.Verbs...), own...)}
		commands[id] = cmd

		childInherited := cmd.Derive()
		for _, child := range stmt.Children {
			if err := walk(child, childInherited); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(tree.Root, &Command{}); err != nil {
		return nil, err
	}
	return commands, nil
}
