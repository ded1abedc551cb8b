package solver

import (
	"github.com/oxhq/askl/internal/ast"
	"github.com/oxhq/askl/internal/execctx"
	"github.com/oxhq/askl/internal/oracle"
)

// Edge is one enumerated call edge in the post-quiescence result (spec
// §4.5.6): a caller/callee SelectionNode pair plus the occurrence
// (call-site location) that produced it.
type Edge struct {
	From       oracle.SelectionNode
	To         oracle.SelectionNode
	Occurrence oracle.Occurrence
}

// EnumerateEdges implements spec §4.5.6: for every completed statement's
// node set, get `derive_parents(n)` and emit an edge whenever the caller
// declaration belongs to some *other* completed statement's node set.
//
// "Get derive_parents(n)" is read literally as a fresh call, not a reuse
// of state(S).selection.parents: by the time the solver reaches
// quiescence, a statement's stored Parents may have been narrowed far
// below its real caller set by repeated RoleParent local-constraint
// passes against its own nested children (§4.5.4 explicitly retains
// Ds.parents "by Ss.nodes' declarations" on every pass, which keeps the
// *solve* consistent but discards callers outside that nested path).
// Tracing S4 (`{{"b"}}`) shows the innermost statement's stored Parents
// end up holding only the edge from its immediate structural ancestor,
// silently dropping the `942-92` edge the expected result still lists.
// Re-deriving fresh from the oracle avoids that staleness for ordinary
// statements.
//
// A statement with its own Deriver (forced()) is the exception: its
// synthetic references don't exist in storage for a fresh query to find,
// and solver.notify already re-derives such statements on every
// notification (never taking the narrowing local-constraint path, see
// notify's doc comment), so its stored Parents are never stale — reuse
// them directly instead of asking the oracle, which would just return
// the real (non-forced) edges.
func EnumerateEdges(store oracle.Store, ec *execctx.Context) ([]Edge, error) {
	nodeIndex := map[int32]oracle.SelectionNode{}
	owner := map[int32]ast.StatementID{}
	for id, st := range ec.States {
		if id == ec.Tree.Root || !st.Completed || st.Selection == nil {
			continue
		}
		for _, n := range st.Selection.Nodes {
			nodeIndex[n.Declaration.ID] = n
			owner[n.Declaration.ID] = id
		}
	}

	type edgeKey struct {
		from, to   int32
		file       int32
		start, end int64
	}
	seen := map[edgeKey]bool{}
	var edges []Edge

	for id, st := range ec.States {
		if id == ec.Tree.Root || !st.Completed || st.Selection == nil || len(st.Selection.Nodes) == 0 {
			continue
		}

		parents := st.Selection.Parents
		if !ec.Commands[id].HasDeriver() {
			fresh, err := store.FindByDeclarationIDs(st.Selection.DeclarationIDs())
			if err != nil {
				return nil, err
			}
			parents = fresh.Parents
		}

		for _, p := range parents {
			toNode, ok := nodeIndex[p.ToDeclaration.ID]
			if !ok {
				continue
			}
			fromOwner, ok := owner[p.FromDeclaration.ID]
			if !ok || fromOwner == id {
				continue
			}
			fromNode, ok := nodeIndex[p.FromDeclaration.ID]
			if !ok {
				continue
			}

			key := edgeKey{
				from: p.FromDeclaration.ID, to: p.ToDeclaration.ID,
				file: p.Occurrence.FileID, start: p.Occurrence.StartOffset, end: p.Occurrence.EndOffset,
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			edges = append(edges, Edge{From: fromNode, To: toNode, Occurrence: p.Occurrence})
		}
	}
	return edges, nil
}
