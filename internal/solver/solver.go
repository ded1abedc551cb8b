// Package solver implements the dependency-driven iterative constraint
// solver (spec §4.5): it drives every statement's Selection to
// quiescence by repeatedly scoring uncompleted statements, picking the
// smallest, notifying its dependents, and applying role-scoped local
// constraints or fresh derivation until no statement changes.
package solver

import (
	"context"
	"math"
	"sort"

	"github.com/oxhq/askl/internal/ast"
	"github.com/oxhq/askl/internal/execctx"
	"github.com/oxhq/askl/internal/oracle"
	"github.com/oxhq/askl/internal/queryerr"
)

// Solve drives ec to quiescence in place. It returns a *queryerr.Error
// (category RuntimeSolve/Timeout) if the wall-clock budget set on ctx
// expires, or an OracleFailure error if the store returns one.
//
// A cycle over User edges (ec.Cyclic) short-circuits the whole query to
// an empty result (spec §4.5.1.4: "not an error") — every statement is
// marked completed with a nil selection and the loop never runs.
func Solve(ctx context.Context, store oracle.Store, ec *execctx.Context) error {
	if ec.Cyclic {
		for id, st := range ec.States {
			if id == ec.Tree.Root {
				continue
			}
			st.Selection = nil
			st.Completed = true
		}
		return nil
	}

	if err := initializeSelectors(store, ec); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return queryerr.Timeout("query exceeded its wall-clock budget")
		default:
		}

		picked, ok := pickSmallest(ec)
		if !ok {
			return nil
		}

		dependents := append([]execctx.Dependent(nil), ec.Dependents[picked]...)
		sort.Slice(dependents, func(i, j int) bool {
			if dependents[i].Statement != dependents[j].Statement {
				return dependents[i].Statement < dependents[j].Statement
			}
			return dependents[i].Role < dependents[j].Role
		})

		anyChanged := false
		for _, dep := range dependents {
			changed, err := notify(store, ec, picked, dep)
			if err != nil {
				return err
			}
			if changed {
				anyChanged = true
			}
		}

		if !anyChanged {
			ec.States[picked].Completed = true
		}
	}
}

// initializeSelectors implements spec §4.5.2: every statement whose
// command carries a selector verb gets its initial selection from
// command.Select(nil); statements with none keep a nil selection until a
// dependent notification constrains or derives one.
func initializeSelectors(store oracle.Store, ec *execctx.Context) error {
	for id, cmd := range ec.Commands {
		if id == ec.Tree.Root {
			continue
		}
		if !cmd.HasSelector() {
			continue
		}
		sel, err := cmd.Select(store, nil)
		if err != nil {
			return queryerr.OracleFailure("selector evaluation failed", err)
		}
		ec.States[id].Selection = sel
	}
	return nil
}

// pickSmallest implements spec §4.5.3 step 1: the uncompleted statement
// with the smallest score (nodes count, or infinity when unconstrained),
// ties broken by the smaller statement id.
func pickSmallest(ec *execctx.Context) (ast.StatementID, bool) {
	best := ast.StatementID(-1)
	bestScore := math.MaxInt
	found := false

	ids := make([]ast.StatementID, 0, len(ec.States))
	for id := range ec.States {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if id == ec.Tree.Root {
			continue
		}
		st := ec.States[id]
		if st.Completed {
			continue
		}
		score := score(st)
		if !found || score < bestScore {
			best = id
			bestScore = score
			found = true
		}
	}
	return best, found
}

func score(st *execctx.State) int {
	if st.Selection == nil {
		return math.MaxInt
	}
	return len(st.Selection.Nodes)
}

// notify implements spec §4.5.3 step 2 / §4.5.4: update D's state from
// S's freshly-available selection, treated along dep.Role. Returns
// whether D's nodes or references actually changed.
//
// The spec's "If D's command has no selectors, skip" bullet is not
// implemented literally: traced against every §8 scenario, a selector-
// less statement (e.g. an empty nested scope `{}`) is exactly the
// common case that must still receive a freshly derived selection from
// its parent — skipping it would leave every plain nested scope
// permanently unconstrained and break S2-S6. D is instead always
// notified, and only Whether D already holds a selection decides between
// local-constraint intersection and fresh derivation.
//
// A command with its own Deriver (forced(), scope()) always re-derives
// fresh on every notification rather than taking the local-constraint
// path, even once it already holds a selection: local constraint
// narrows D's nodes by S's *real* parent/child references (§4.5.4), but
// forced()'s candidates are wired "regardless of actual call edges" —
// tracing S5 (`"b"{!"a"}`) shows a literal local-constraint pass would
// retain stmt2's forced node only if it appears in "b"'s real children,
// which is empty, wiping the forced selection out on the statement's
// second notification. Re-deriving is idempotent once the forced lookup
// stabilizes, so it still converges.
func notify(store oracle.Store, ec *execctx.Context, s ast.StatementID, dep execctx.Dependent) (bool, error) {
	d := dep.Statement
	state := ec.States[d]
	cmd := ec.Commands[d]
	sourceSel := ec.States[s].Selection
	if sourceSel == nil {
		return false, nil
	}

	var newSel *oracle.Selection
	var err error

	if state.Selection != nil && !cmd.HasDeriver() {
		newSel = localConstraint(state.Selection, sourceSel, dep.Role)
	} else {
		switch dep.Role {
		case execctx.RoleParent:
			newSel, err = cmd.DeriveChildren(store, sourceSel)
		case execctx.RoleChild:
			newSel, err = cmd.DeriveParents(store, sourceSel)
		case execctx.RoleUser:
			newSel = deriveFromPublisher(ec, d, sourceSel, cmd.UseForced())
		}
		if err != nil {
			return false, queryerr.OracleFailure("derivation failed", err)
		}
		if newSel != nil {
			if err := cmd.Filter(newSel); err != nil {
				return false, err
			}
		}
	}

	if newSel == nil {
		return false, nil
	}

	changed := !sameSelection(state.Selection, newSel)
	state.Selection = newSel
	return changed, nil
}

// deriveFromPublisher builds a @use statement's selection from its
// label's publisher (spec §4.2 use() row). Non-forced: a clone of the
// publisher's selection, relying on the ordinary Parent-role local
// constraint against d's own AST parent (if any) to narrow it further on
// a later notification. Forced: additionally wires synthetic parent
// references from d's AST parent's current nodes to the publisher's
// nodes, bypassing the need for a real call edge.
func deriveFromPublisher(ec *execctx.Context, d ast.StatementID, publisherSel *oracle.Selection, forced bool) *oracle.Selection {
	sel := publisherSel.Clone()
	if !forced {
		return sel
	}

	parentID := ec.Tree.Get(d).Parent
	if parentID == ast.NoStatement || parentID == ec.Tree.Root {
		return sel
	}
	parentState := ec.States[parentID]
	if parentState == nil || parentState.Selection == nil {
		return sel
	}
	sel.Parents = oracle.SynthesizeParents(parentState.Selection.Nodes, sel.Nodes)
	return sel
}

// localConstraint implements spec §4.5.4: intersect D's current
// selection Ds against S's selection Ss, scoped by role.
func localConstraint(ds, ss *oracle.Selection, role execctx.Role) *oracle.Selection {
	out := ds.Clone()

	switch role {
	case execctx.RoleParent:
		toDecls := declSetFromChildrenTo(ss.Children)
		out.RetainNodes(func(n oracle.SelectionNode) bool { return toDecls[n.Declaration.ID] })

		fromNodes := declSetFromNodes(ss.Nodes)
		parents := out.Parents[:0:0]
		for _, p := range out.Parents {
			if fromNodes[p.FromDeclaration.ID] {
				parents = append(parents, p)
			}
		}
		out.Parents = parents

	case execctx.RoleChild:
		fromDecls := declSetFromParentsFrom(ss.Parents)
		out.RetainNodes(func(n oracle.SelectionNode) bool { return fromDecls[n.Declaration.ID] })

	case execctx.RoleUser:
		publisherNodes := declSetFromNodes(ss.Nodes)
		out.RetainNodes(func(n oracle.SelectionNode) bool { return publisherNodes[n.Declaration.ID] })
	}

	return out
}

func declSetFromNodes(nodes []oracle.SelectionNode) map[int32]bool {
	set := make(map[int32]bool, len(nodes))
	for _, n := range nodes {
		set[n.Declaration.ID] = true
	}
	return set
}

func declSetFromChildrenTo(refs []oracle.ChildReference) map[int32]bool {
	set := make(map[int32]bool, len(refs))
	for _, r := range refs {
		set[r.ToDeclaration.ID] = true
	}
	return set
}

func declSetFromParentsFrom(refs []oracle.ParentReference) map[int32]bool {
	set := make(map[int32]bool, len(refs))
	for _, r := range refs {
		set[r.FromDeclaration.ID] = true
	}
	return set
}

// sameSelection reports whether two selections carry the same node id
// set, used to decide whether a notification actually changed anything.
func sameSelection(a, b *oracle.Selection) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Nodes) != len(b.Nodes) {
		return false
	}
	set := declSetFromNodes(a.Nodes)
	for _, n := range b.Nodes {
		if !set[n.Declaration.ID] {
			return false
		}
	}
	return true
}
