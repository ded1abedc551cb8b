package verb

import (
	"github.com/oxhq/askl/internal/oracle"
)

// NameSelector implements `select(name)` (spec §4.2 table): candidates
// are symbols whose symbol_path matches the L-tree query built from
// name, i.e. an ordered-subset compound-name match rather than exact
// equality — ported from generic.rs's NameSelector, grounded on the
// oracle's CompoundNameMixin.
type NameSelector struct {
	Query string
}

func (NameSelector) Name() string           { return "select" }
func (NameSelector) DeriveMode() DeriveMode  { return Skip }

func (v NameSelector) SelectFromAll(store oracle.Store) (*oracle.Selection, error) {
	return store.Find(oracle.CompoundNameMixin{Query: v.Query})
}

// ForcedVerb implements `forced(name)`: Filter + Deriver. On parent
// propagation it synthesizes child candidates matching name against
// every parent node regardless of whether a real call edge exists
// (generic.rs's ForcedVerb.derive_children_impl); as a filter it keeps
// only nodes whose symbol name exactly equals name.
type ForcedVerb struct {
	Query string
}

func (ForcedVerb) Name() string          { return "forced" }
func (ForcedVerb) DeriveMode() DeriveMode { return Skip }

func (v ForcedVerb) Filter(sel *oracle.Selection) error {
	sel.RetainNodes(func(n oracle.SelectionNode) bool {
		return n.Symbol.Name == v.Query
	})
	return nil
}

// DeriveChildren ignores parent's real Children edges and instead looks
// up candidates by exact name, then wires a synthetic ParentReference
// from every parent node to every candidate — the "regardless of actual
// call edges" synthesis.
func (v ForcedVerb) DeriveChildren(store oracle.Store, parent *oracle.Selection) (*oracle.Selection, error) {
	found, err := store.FindByName(v.Query)
	if err != nil {
		return nil, err
	}
	found.Parents = oracle.SynthesizeParents(parent.Nodes, found.Nodes)
	return found, nil
}

// DeriveParents is the symmetric synthesis in the other direction:
// candidates matching name, wired as callers of every child node.
func (v ForcedVerb) DeriveParents(store oracle.Store, child *oracle.Selection) (*oracle.Selection, error) {
	found, err := store.FindByName(v.Query)
	if err != nil {
		return nil, err
	}
	found.Children = oracle.SynthesizeChildren(found.Nodes, child.Nodes)
	return found, nil
}

// IgnoreVerb implements `ignore(name?, package?)`: drops nodes matching
// the given bare name or package-prefix glob, grounded on generic.rs's
// IgnoreVerb (partial_name_match / package_match).
type IgnoreVerb struct {
	Name_   string
	Package string
}

func (IgnoreVerb) Name() string          { return "ignore" }
func (IgnoreVerb) DeriveMode() DeriveMode { return Clone }

func (v IgnoreVerb) Filter(sel *oracle.Selection) error {
	sel.RetainNodes(func(n oracle.SelectionNode) bool {
		if v.Name_ != "" && oracle.MatchesPathGlob(n.Symbol.SymbolPath, v.Name_) {
			return false
		}
		if v.Package != "" && oracle.MatchesPackageGlob(n.Symbol.SymbolPath, v.Package) {
			return false
		}
		return true
	})
	return nil
}

// ModuleFilter implements `module(m)`: retains only nodes whose module
// name equals m exactly, grounded on generic.rs's ModuleFilter.
type ModuleFilter struct {
	Module string
}

func (ModuleFilter) Name() string          { return "module" }
func (ModuleFilter) DeriveMode() DeriveMode { return Clone }

func (v ModuleFilter) Filter(sel *oracle.Selection) error {
	sel.RetainNodes(func(n oracle.SelectionNode) bool {
		return n.Module.Name == v.Module
	})
	return nil
}

// IsolatedScope implements `scope(isolated=...)`: when isolated, it
// blocks parent/child derivation across the statement's scope boundary
// by returning an empty Selection rather than walking real edges,
// grounded on generic.rs's IsolatedScope (both derive methods return
// None unconditionally).
type IsolatedScope struct {
	Isolated bool
}

func (IsolatedScope) Name() string          { return "scope" }
func (IsolatedScope) DeriveMode() DeriveMode { return Skip }

func (v IsolatedScope) DeriveChildren(store oracle.Store, parent *oracle.Selection) (*oracle.Selection, error) {
	if v.Isolated {
		return oracle.New(), nil
	}
	return defaultDeriveChildren(store, parent)
}

func (v IsolatedScope) DeriveParents(store oracle.Store, child *oracle.Selection) (*oracle.Selection, error) {
	if v.Isolated {
		return oracle.New(), nil
	}
	return defaultDeriveParents(store, child)
}
