package oracle

import "gorm.io/gorm"

// Mixin narrows a Find query along one dimension (compound name,
// declaration-id set, module, project), composably, grounded on
// index/src/db_diesel/mixins.rs's SymbolSearchMixin trait. The oracle's
// node query is a plain SQL join, so FilterNodes narrows it the way the
// Rust mixin narrows its boxed Diesel query; the parent/child queries
// require resolving a Reference's call-site offsets against an enclosing
// Declaration client-side (SQL has no direct FK for that), so their two
// mixin hooks are Go-side predicates over the already-resolved reference
// instead of a second SQL filter, with MatchesNode as a fourth hook for
// node filters SQL can't express.
type Mixin interface {
	// FilterNodes narrows the query that selects the candidate
	// declarations themselves.
	FilterNodes(q *gorm.DB) *gorm.DB
	// MatchesNode reports whether a scanned node row survives a filter
	// that SQL can't express, applied after FilterNodes has done what it
	// can at the query level.
	MatchesNode(r nodeRow) bool
	// MatchesParent reports whether a resolved caller reference should
	// be kept (mirrors filter_parents).
	MatchesParent(p ParentReference) bool
	// MatchesChildren reports whether a resolved callee reference should
	// be kept (mirrors filter_children).
	MatchesChildren(c ChildReference) bool
}

// passthroughMixin can be embedded by a Mixin that only cares about one or
// two of the four hooks, mirroring the Rust trait's default no-op method
// bodies.
type passthroughMixin struct{}

func (passthroughMixin) FilterNodes(q *gorm.DB) *gorm.DB       { return q }
func (passthroughMixin) MatchesNode(r nodeRow) bool            { return true }
func (passthroughMixin) MatchesParent(p ParentReference) bool  { return true }
func (passthroughMixin) MatchesChildren(c ChildReference) bool { return true }

// CompoundNameMixin narrows by the glossary's symbol-path/L-tree match
// (PathGlob/MatchesPathGlob), grounded on mixins.rs's CompoundNameMixin
// (symbol_query_to_lquery + an ltree "~" filter). GORM/SQL has no native
// ltree operator, so FilterNodes only applies a cheap LIKE prefilter on
// the first token to shrink the candidate set, and MatchesNode applies
// the real ordered-subset check in Go against each scanned row before it
// is hydrated.
//
// filter_parents/filter_children in mixins.rs both constrain the node
// side of the reference — the callee's symbol_path for a parent
// reference (its to_symbol, the thing actually being selected), the
// caller's symbol_path for a child reference (its from_symbol) — since
// resolveParents/resolveChildren already constrain the far endpoint by
// symbol id. MatchesParent/MatchesChildren mirror that.
type CompoundNameMixin struct {
	passthroughMixin
	Query string
}

func (m CompoundNameMixin) FilterNodes(q *gorm.DB) *gorm.DB {
	tokens := NormalizeSymbolTokens(m.Query)
	if len(tokens) == 0 {
		return q
	}
	return q.Where("symbols.symbol_path LIKE ?", "%"+tokens[0]+"%")
}

func (m CompoundNameMixin) MatchesNode(r nodeRow) bool {
	return MatchesPathGlob(r.SymbolPath, m.Query)
}

func (m CompoundNameMixin) MatchesParent(p ParentReference) bool {
	return MatchesPathGlob(p.ToSymbol.SymbolPath, m.Query)
}

func (m CompoundNameMixin) MatchesChildren(c ChildReference) bool {
	return MatchesPathGlob(c.FromSymbol.SymbolPath, m.Query)
}

// DeclarationIDMixin narrows to a fixed set of declaration ids, grounded
// on mixins.rs's DeclarationIdMixin — used by FindByDeclarationIDs to
// re-resolve a set of ids a deriver produced (e.g. the default children
// deriver) back
// into full SelectionNode/reference data.
type DeclarationIDMixin struct {
	passthroughMixin
	IDs []int32
}

func (m DeclarationIDMixin) FilterNodes(q *gorm.DB) *gorm.DB {
	return q.Where("declarations.id IN ?", m.IDs)
}

func (m DeclarationIDMixin) MatchesParent(p ParentReference) bool {
	return containsID(m.IDs, p.ToDeclaration.ID)
}

func (m DeclarationIDMixin) MatchesChildren(c ChildReference) bool {
	return containsID(m.IDs, c.FromDeclaration.ID)
}

func containsID(ids []int32, id int32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ModuleNameMixin narrows to declarations whose owning module matches
// name exactly, grounded on mixins.rs's ModuleFilterMixin.
type ModuleNameMixin struct {
	passthroughMixin
	Name string
}

func (m ModuleNameMixin) FilterNodes(q *gorm.DB) *gorm.DB {
	return q.Where("modules.name = ?", m.Name)
}

func (m ModuleNameMixin) MatchesParent(p ParentReference) bool {
	return p.FromModuleName == m.Name
}

func (m ModuleNameMixin) MatchesChildren(c ChildReference) bool {
	return c.ToModuleName == m.Name
}

// ProjectNameMixin narrows to declarations whose owning project matches
// name exactly, grounded on mixins.rs's ProjectFilterMixin.
type ProjectNameMixin struct {
	passthroughMixin
	Name string
}

func (m ProjectNameMixin) FilterNodes(q *gorm.DB) *gorm.DB {
	return q.Where("projects.name = ?", m.Name)
}

// NameMixin narrows node candidates to symbols whose bare name exactly
// equals Name, grounded on generic.rs's ForcedVerb exact name match
// (@forced selects by literal symbol name; the plain string sugar uses
// CompoundNameMixin's compound-path match instead).
type NameMixin struct {
	passthroughMixin
	Name string
}

func (m NameMixin) FilterNodes(q *gorm.DB) *gorm.DB {
	return q.Where("symbols.name = ?", m.Name)
}

func (m NameMixin) MatchesParent(p ParentReference) bool {
	return p.ToSymbol.Name == m.Name
}

func (m NameMixin) MatchesChildren(c ChildReference) bool {
	return c.FromSymbol.Name == m.Name
}
