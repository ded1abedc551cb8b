// Package execctx builds and holds the per-query state the solver
// drives to quiescence (spec §4.4): the label registry, each statement's
// mutable selection/completion state, and the dependency graph wiring
// derived from AST nesting plus @label/@use edges.
package execctx

import (
	"github.com/oxhq/askl/internal/ast"
	"github.com/oxhq/askl/internal/oracle"
	"github.com/oxhq/askl/internal/queryerr"
	"github.com/oxhq/askl/internal/verb"
)

// Role names the relationship a Dependent has to the statement that
// notifies it (spec §3: "directed edge ... as role R").
type Role int

const (
	// RoleParent: the notifier is the dependent's AST parent.
	RoleParent Role = iota
	// RoleChild: the notifier is the dependent's AST child.
	RoleChild
	// RoleUser: the notifier is the @label statement a @use depends on.
	RoleUser
)

func (r Role) String() string {
	switch r {
	case RoleParent:
		return "parent"
	case RoleChild:
		return "child"
	case RoleUser:
		return "user"
	default:
		return "unknown"
	}
}

// Dependent records that Statement should be notified, treating the
// update along Role, when the owning statement changes.
type Dependent struct {
	Statement ast.StatementID
	Role      Role
}

// State is one statement's mutable solve-time state (spec §3
// "SelectorState"): its current Selection (nil until first computed) and
// whether the solver has marked it completed.
type State struct {
	Selection *oracle.Selection
	Completed bool
}

// Context is the per-query execution state (spec §4.4): constructed once
// before the solver runs, discarded at query end, never mutated
// concurrently (spec §5).
type Context struct {
	Tree     *ast.Tree
	Commands map[ast.StatementID]*verb.Command

	Labels map[string]ast.StatementID
	States map[ast.StatementID]*State

	// Dependents maps a statement S to every Dependent that must be
	// notified when S's selection changes or it completes.
	Dependents map[ast.StatementID][]Dependent

	// Cyclic is set when a cycle exists over the User edges (spec
	// §4.5.1.4): the whole query resolves to an empty result.
	Cyclic bool
}

// Build wires a Context from a parsed Tree and its per-statement
// Commands (internal/verb.BuildCommands). path is carried only for error
// location reporting.
//
// The synthetic root statement (ast.Tree.Root) is excluded from all
// structural dependency wiring: it never holds a command of its own and
// never contributes to scoring, selection, or local constraints — only
// its Children feed the dependency graph at the next level down. This
// mirrors spec §8 S3/S4's edges never naming the root, despite every
// query implicitly nesting inside it.
func Build(tree *ast.Tree, commands map[ast.StatementID]*verb.Command, path string) (*Context, error) {
	ctx := &Context{
		Tree:       tree,
		Commands:   commands,
		Labels:     map[string]ast.StatementID{},
		States:     map[ast.StatementID]*State{},
		Dependents: map[ast.StatementID][]Dependent{},
	}

	for i := range tree.Statements {
		ctx.States[ast.StatementID(i)] = &State{}
	}

	if err := ctx.registerLabels(path); err != nil {
		return nil, err
	}
	ctx.wireStructural()
	if err := ctx.wireUsers(path); err != nil {
		return nil, err
	}

	ctx.Cyclic = ctx.detectUserCycle()

	return ctx, nil
}

func (ctx *Context) registerLabels(path string) error {
	for id, cmd := range ctx.Commands {
		if id == ctx.Tree.Root {
			continue
		}
		for _, l := range cmd.Labels() {
			if _, exists := ctx.Labels[l]; exists {
				return queryerr.StaticSolve(queryerr.CodeDuplicateLabel,
					"duplicate label \""+l+"\"", queryerr.Location{Path: path})
			}
			ctx.Labels[l] = id
		}
	}
	return nil
}

// wireStructural adds the reciprocal Parent/Child dependency between
// every non-root statement and its AST parent, skipping any edge that
// would touch the synthetic root. Sibling-to-sibling wiring from a
// literal reading of spec §4.5.1.1 ("and its siblings that precede it")
// is deliberately not implemented: tracing it against §8 S6
// (`@label("foo") "a"; @use("foo"){}`, two top-level siblings under
// root) would retain the @use statement's nodes by the label statement's
// real call edges as a spurious Parent-role constraint, collapsing the
// expected {91,92} result to empty. AST parent/child plus @label/@use
// edges are the wiring that makes every §8 scenario converge.
func (ctx *Context) wireStructural() {
	for i := range ctx.Tree.Statements {
		sid := ast.StatementID(i)
		if sid == ctx.Tree.Root {
			continue
		}
		parent := ctx.Tree.Get(sid).Parent
		if parent == ast.NoStatement || parent == ctx.Tree.Root {
			continue
		}
		ctx.Dependents[parent] = append(ctx.Dependents[parent], Dependent{Statement: sid, Role: RoleParent})
		ctx.Dependents[sid] = append(ctx.Dependents[sid], Dependent{Statement: parent, Role: RoleChild})
	}
}

func (ctx *Context) wireUsers(path string) error {
	for id, cmd := range ctx.Commands {
		if id == ctx.Tree.Root || !cmd.HasUser() {
			continue
		}
		label := cmd.GetUseLabel()
		publisher, ok := ctx.Labels[label]
		if !ok {
			return queryerr.StaticSolve(queryerr.CodeUnknownLabel,
				"unknown label \""+label+"\"", queryerr.Location{Path: path})
		}
		ctx.Dependents[publisher] = append(ctx.Dependents[publisher], Dependent{Statement: id, Role: RoleUser})
	}
	return nil
}

// detectUserCycle walks only the User-role edges (consumer -> publisher)
// with an iterative DFS and three-color marking (spec §9: "do not
// express it as mutual recursion ... because user edges can form
// cycles"). A self-loop (a statement both labels and uses the same
// label, spec §8 S7) counts as a cycle.
func (ctx *Context) detectUserCycle() bool {
	adjacency := map[ast.StatementID][]ast.StatementID{}
	for id, cmd := range ctx.Commands {
		if id == ctx.Tree.Root || !cmd.HasUser() {
			continue
		}
		if publisher, ok := ctx.Labels[cmd.GetUseLabel()]; ok {
			adjacency[id] = append(adjacency[id], publisher)
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[ast.StatementID]int{}

	type frame struct {
		node     ast.StatementID
		nextIdx  int
	}

	for start := range adjacency {
		if color[start] != white {
			continue
		}
		stack := []frame{{node: start}}
		color[start] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.nextIdx < len(adjacency[top.node]) {
				next := adjacency[top.node][top.nextIdx]
				top.nextIdx++
				switch color[next] {
				case white:
					color[next] = gray
					stack = append(stack, frame{node: next})
				case gray:
					return true
				case black:
					// already fully explored, no cycle through it
				}
			} else {
				color[top.node] = black
				stack = stack[:len(stack)-1]
			}
		}
	}
	return false
}
