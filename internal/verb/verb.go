// Package verb implements ASKL's closed verb library (spec §4.2): a
// tagged set of verb kinds, each declaring zero or more of four
// capability roles (selector/filter/deriver/labeler) plus the distinct
// user role, dispatched by type assertion rather than open subclassing,
// per the design notes in spec §9 ("represent them as a tagged sum type
// with one method per role").
package verb

import "github.com/oxhq/askl/internal/oracle"

// DeriveMode governs whether a verb is inherited when a parent
// statement's command seeds a nested child statement's command at parse
// time (spec §4.2: "Clone verbs are inherited, Skip verbs are not").
type DeriveMode int

const (
	Clone DeriveMode = iota
	Skip
)

// Verb is the minimal surface every verb kind implements. Capability
// roles are optional additional interfaces a concrete verb may also
// satisfy; Command type-asserts for each one it needs.
type Verb interface {
	Name() string
	DeriveMode() DeriveMode
}

// Selector can produce an initial Selection "from all" — i.e. without
// reference to any other statement's state.
type Selector interface {
	Verb
	SelectFromAll(store oracle.Store) (*oracle.Selection, error)
}

// Filter mutates a Selection in place, dropping nodes that fail a
// predicate. Callers prune dangling references afterward.
type Filter interface {
	Verb
	Filter(sel *oracle.Selection) error
}

// Deriver knows how to walk from a parent statement's Selection to child
// candidates, and from a child statement's Selection to parent
// candidates.
type Deriver interface {
	Verb
	DeriveChildren(store oracle.Store, parent *oracle.Selection) (*oracle.Selection, error)
	DeriveParents(store oracle.Store, child *oracle.Selection) (*oracle.Selection, error)
}

// Labeler publishes a statement's Selection under a name other
// statements can consume via @use.
type Labeler interface {
	Verb
	Label() string
}

// User consumes a published label.
type User interface {
	Verb
	UseLabel() string
	Forced() bool
}
