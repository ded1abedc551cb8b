// Package oracle adapts the index oracle's read-only storage (models.*,
// GORM) to the solver's Selection-shaped query surface described in spec
// §3 and §4.3: a primary Find(mixins) operation plus convenience wrappers,
// each returning a Selection whose nodes/parents/children arrays satisfy
// the "every reference points at a node" invariant.
package oracle

import "github.com/oxhq/askl/models"

// Occurrence identifies a textual reference site: the file plus the byte
// range of the call expression that produced a Reference row.
type Occurrence struct {
	FileID      int32
	ProjectID   int32
	StartOffset int64
	EndOffset   int64
}

// SelectionNode bundles one candidate declaration with everything a
// statement's filters/labeler/graph assembler need without another round
// trip: its symbol, the owning module/file/project, per spec §3.
type SelectionNode struct {
	Symbol      models.Symbol
	Declaration models.Declaration
	Module      models.Module
	File        models.File
	Project     models.Project
}

// ParentReference records that FromDeclaration calls ToDeclaration, where
// ToDeclaration belongs to the Selection this reference lives in (spec §3
// invariant 4: "every entry of parents has its to_declaration.id equal to
// some node's declaration.id"). FromDeclaration is the caller, resolved
// from the underlying Reference row's (from_file, from_offset_range).
type ParentReference struct {
	FromDeclaration models.Declaration
	FromSymbol      models.Symbol
	FromModuleName  string
	ToDeclaration   models.Declaration
	ToSymbol        models.Symbol
	ReferenceID     int32
	Occurrence      Occurrence
}

// ChildReference is the symmetric counterpart: FromDeclaration belongs to
// the Selection (invariant 4: "every entry of children has its
// from_declaration.id equal to some node's declaration.id") and calls
// ToDeclaration.
type ChildReference struct {
	FromDeclaration models.Declaration
	FromSymbol      models.Symbol
	ToDeclaration   models.Declaration
	ToSymbol        models.Symbol
	ToModuleName    string
	ReferenceID     int32
	Occurrence      Occurrence
}

// Selection is the materialized per-statement state of spec §3: an
// ordered node list plus the parent/child reference lists that connect
// those nodes to the rest of the call graph. A nil *Selection means "no
// candidates have been computed yet"; an empty, non-nil Selection means
// "computed, and nothing matched".
type Selection struct {
	Nodes    []SelectionNode
	Parents  []ParentReference
	Children []ChildReference
}

// New returns an empty, non-nil Selection.
func New() *Selection {
	return &Selection{}
}

// Clone performs a shallow copy of the three slices so that mutating the
// copy (e.g. during local-constraint retention) never mutates the
// original — Selections are value-shared between statements (e.g. a
// @use(label) statement starts from the publisher's Selection) and must
// not alias slice backing arrays.
func (s *Selection) Clone() *Selection {
	if s == nil {
		return nil
	}
	out := &Selection{
		Nodes:    make([]SelectionNode, len(s.Nodes)),
		Parents:  make([]ParentReference, len(s.Parents)),
		Children: make([]ChildReference, len(s.Children)),
	}
	copy(out.Nodes, s.Nodes)
	copy(out.Parents, s.Parents)
	copy(out.Children, s.Children)
	return out
}

// DeclarationIDs returns the declaration ids of every node, in order.
func (s *Selection) DeclarationIDs() []int32 {
	ids := make([]int32, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[i] = n.Declaration.ID
	}
	return ids
}

// HasNode reports whether id belongs to one of the Selection's nodes.
func (s *Selection) HasNode(id int32) bool {
	for _, n := range s.Nodes {
		if n.Declaration.ID == id {
			return true
		}
	}
	return false
}

// PruneReferences restores spec §3 invariant 4 after a mutation: drop any
// parent/child reference whose node-side declaration no longer appears in
// Nodes.
func (s *Selection) PruneReferences() {
	nodeIDs := make(map[int32]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		nodeIDs[n.Declaration.ID] = true
	}

	parents := s.Parents[:0:0]
	for _, p := range s.Parents {
		if nodeIDs[p.ToDeclaration.ID] {
			parents = append(parents, p)
		}
	}
	s.Parents = parents

	children := s.Children[:0:0]
	for _, c := range s.Children {
		if nodeIDs[c.FromDeclaration.ID] {
			children = append(children, c)
		}
	}
	s.Children = children
}

// RetainNodes keeps only the nodes for which keep returns true, then
// restores invariant 4. It reports whether the node set actually shrank.
func (s *Selection) RetainNodes(keep func(SelectionNode) bool) bool {
	before := len(s.Nodes)
	nodes := s.Nodes[:0:0]
	for _, n := range s.Nodes {
		if keep(n) {
			nodes = append(nodes, n)
		}
	}
	s.Nodes = nodes
	s.PruneReferences()
	return len(s.Nodes) != before
}

// SynthesizeParents builds a ParentReference for every (from, to) pair
// across fromNodes x toNodes, used by ForcedVerb and the forced @use
// path to wire a call edge "regardless of actual call edges" (spec
// §4.2's forced() semantics).
func SynthesizeParents(fromNodes, toNodes []SelectionNode) []ParentReference {
	var out []ParentReference
	for _, from := range fromNodes {
		for _, to := range toNodes {
			out = append(out, ParentReference{
				FromDeclaration: from.Declaration,
				FromSymbol:      from.Symbol,
				FromModuleName:  from.Module.Name,
				ToDeclaration:   to.Declaration,
				ToSymbol:        to.Symbol,
			})
		}
	}
	return out
}

// SynthesizeChildren is the symmetric counterpart of SynthesizeParents.
func SynthesizeChildren(fromNodes, toNodes []SelectionNode) []ChildReference {
	var out []ChildReference
	for _, from := range fromNodes {
		for _, to := range toNodes {
			out = append(out, ChildReference{
				FromDeclaration: from.Declaration,
				FromSymbol:      from.Symbol,
				ToDeclaration:   to.Declaration,
				ToSymbol:        to.Symbol,
				ToModuleName:    to.Module.Name,
			})
		}
	}
	return out
}
