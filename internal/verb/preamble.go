package verb

// PreambleVerb implements `@preamble`: a syntactic marker only. The
// grammar checks its position (internal/ast's allowPreamble check: first
// verb of the first statement); subsequent verbs of that statement are
// not rewired to the outer-most context. By the time a Command reaches
// the solver, PreambleVerb carries no selector, filter, deriver, or
// label role at all.
type PreambleVerb struct{}

func (PreambleVerb) Name() string          { return "preamble" }
func (PreambleVerb) DeriveMode() DeriveMode { return Skip }
