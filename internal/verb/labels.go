package verb

import "github.com/oxhq/askl/internal/oracle"

// LabelVerb implements `label(l)`: publishes the owning statement's
// Selection under name l for a later `@use(l)` to consume. It has no
// selector/filter/deriver role of its own — the solver's execution
// context is what performs the publication, driven by Command.Labels().
type LabelVerb struct {
	Label_ string
}

func (LabelVerb) Name() string          { return "label" }
func (LabelVerb) DeriveMode() DeriveMode { return Skip }
func (v LabelVerb) Label() string       { return v.Label_ }

// UserVerb implements `use(l, forced?)`. It carries the Selector role
// only in the formal sense that Command.Select() will find it and call
// SelectFromAll — which always returns nil, since a @use statement has
// no value until its publisher's label notification arrives (solver
// §4.5.3 User-role dependency). The actual selection is assigned by the
// solver's User-role dependency handling, not by this method.
type UserVerb struct {
	Label_  string
	Forced_ bool
}

func (UserVerb) Name() string          { return "use" }
func (UserVerb) DeriveMode() DeriveMode { return Skip }
func (v UserVerb) UseLabel() string     { return v.Label_ }
func (v UserVerb) Forced() bool         { return v.Forced_ }

func (v UserVerb) SelectFromAll(store oracle.Store) (*oracle.Selection, error) {
	return nil, nil
}
