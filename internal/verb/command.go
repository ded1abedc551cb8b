package verb

import "github.com/oxhq/askl/internal/oracle"

// Command is the ordered verb list attached to one statement, exposing
// the protocol spec §4.2 names: select/filter/derive_children/
// derive_parents/labels/has_user/get_use_label.
type Command struct {
	Verbs []Verb
}

// HasSelector reports whether any verb in the command carries the
// Selector role.
func (c *Command) HasSelector() bool {
	return len(c.selectors()) > 0
}

func (c *Command) selectors() []Selector {
	var out []Selector
	for _, v := range c.Verbs {
		if s, ok := v.(Selector); ok {
			out = append(out, s)
		}
	}
	return out
}

func (c *Command) filters() []Filter {
	var out []Filter
	for _, v := range c.Verbs {
		if f, ok := v.(Filter); ok {
			out = append(out, f)
		}
	}
	return out
}

// HasDeriver reports whether any verb in the command carries the Deriver
// role (e.g. forced(), scope()) rather than relying on the implicit
// real-edge default.
func (c *Command) HasDeriver() bool {
	return len(c.derivers()) > 0
}

func (c *Command) derivers() []Deriver {
	var out []Deriver
	for _, v := range c.Verbs {
		if d, ok := v.(Deriver); ok {
			out = append(out, d)
		}
	}
	return out
}

// Select implements the §4.2 protocol: if any selector verb is present,
// ignore the input and call the first selector's SelectFromAll; if none,
// return the input unchanged (the implicit "select-all" identity verb of
// the table, never materialized as its own Verb value).
func (c *Command) Select(store oracle.Store, input *oracle.Selection) (*oracle.Selection, error) {
	selectors := c.selectors()
	if len(selectors) == 0 {
		return input, nil
	}
	return selectors[0].SelectFromAll(store)
}

// Filter applies every filter verb in order, then restores invariant 4.
func (c *Command) Filter(sel *oracle.Selection) error {
	if sel == nil {
		return nil
	}
	for _, f := range c.filters() {
		if err := f.Filter(sel); err != nil {
			return err
		}
	}
	sel.PruneReferences()
	return nil
}

// DeriveChildren uses the last deriver verb in the chain, or the
// implicit "children" default (the table's default deriver used to walk
// real call edges) when the command has none of its own.
func (c *Command) DeriveChildren(store oracle.Store, parent *oracle.Selection) (*oracle.Selection, error) {
	derivers := c.derivers()
	if len(derivers) == 0 {
		return defaultDeriveChildren(store, parent)
	}
	return derivers[len(derivers)-1].DeriveChildren(store, parent)
}

// DeriveParents is the symmetric counterpart of DeriveChildren.
func (c *Command) DeriveParents(store oracle.Store, child *oracle.Selection) (*oracle.Selection, error) {
	derivers := c.derivers()
	if len(derivers) == 0 {
		return defaultDeriveParents(store, child)
	}
	return derivers[len(derivers)-1].DeriveParents(store, child)
}

// Labels returns every label this command's verbs publish.
func (c *Command) Labels() []string {
	var out []string
	for _, v := range c.Verbs {
		if l, ok := v.(Labeler); ok {
			out = append(out, l.Label())
		}
	}
	return out
}

// HasUser reports whether this command consumes a published label.
func (c *Command) HasUser() bool {
	_, ok := c.userVerb()
	return ok
}

// GetUseLabel returns the label a @use verb consumes, or "" if none.
func (c *Command) GetUseLabel() string {
	if u, ok := c.userVerb(); ok {
		return u.UseLabel()
	}
	return ""
}

// UseForced reports whether the command's @use verb was given
// forced="true".
func (c *Command) UseForced() bool {
	if u, ok := c.userVerb(); ok {
		return u.Forced()
	}
	return false
}

func (c *Command) userVerb() (User, bool) {
	for _, v := range c.Verbs {
		if u, ok := v.(User); ok {
			return u, true
		}
	}
	return nil, false
}

// Derive builds the command a nested child scope inherits at parse time:
// only Clone-mode verbs survive (spec §4.2: "Clone verbs are inherited,
// Skip verbs are not"), grounded on parser_context.rs's
// ParserContext::derive.
func (c *Command) Derive() *Command {
	var kept []Verb
	for _, v := range c.Verbs {
		if v.DeriveMode() == Clone {
			kept = append(kept, v)
		}
	}
	return &Command{Verbs: kept}
}

// defaultDeriveChildren is the implicit "children" deriver (spec §4.2
// table): candidates are the real callees already resolved onto parent's
// Children references by the oracle, re-resolved into a full Selection
// so the result carries its own parents/children for further
// propagation.
func defaultDeriveChildren(store oracle.Store, parent *oracle.Selection) (*oracle.Selection, error) {
	ids := uniqueToDeclIDs(parent.Children)
	if len(ids) == 0 {
		return oracle.New(), nil
	}
	return store.FindByDeclarationIDs(ids)
}

// defaultDeriveParents is the symmetric default, walking the already-
// resolved Parents references of a child Selection.
func defaultDeriveParents(store oracle.Store, child *oracle.Selection) (*oracle.Selection, error) {
	ids := uniqueFromDeclIDs(child.Parents)
	if len(ids) == 0 {
		return oracle.New(), nil
	}
	return store.FindByDeclarationIDs(ids)
}

func uniqueToDeclIDs(refs []oracle.ChildReference) []int32 {
	seen := map[int32]bool{}
	var out []int32
	for _, r := range refs {
		if !seen[r.ToDeclaration.ID] {
			seen[r.ToDeclaration.ID] = true
			out = append(out, r.ToDeclaration.ID)
		}
	}
	return out
}

func uniqueFromDeclIDs(refs []oracle.ParentReference) []int32 {
	seen := map[int32]bool{}
	var out []int32
	for _, r := range refs {
		if !seen[r.FromDeclaration.ID] {
			seen[r.FromDeclaration.ID] = true
			out = append(out, r.FromDeclaration.ID)
		}
	}
	return out
}
