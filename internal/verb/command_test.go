package verb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommand_Derive_KeepsOnlyCloneVerbs(t *testing.T) {
	cmd := &Command{Verbs: []Verb{
		NameSelector{Query: "a"},       // Skip
		IgnoreVerb{Name_: "b"},         // Clone
		ModuleFilter{Module: "m"},      // Clone
		PreambleVerb{},                 // Skip
	}}

	derived := cmd.Derive()
	assert.Len(t, derived.Verbs, 2)
	_, ok := derived.Verbs[0].(IgnoreVerb)
	assert.True(t, ok)
	_, ok = derived.Verbs[1].(ModuleFilter)
	assert.True(t, ok)
}

func TestCommand_HasSelectorAndHasDeriver(t *testing.T) {
	plain := &Command{Verbs: []Verb{IgnoreVerb{Name_: "b"}}}
	assert.False(t, plain.HasSelector())
	assert.False(t, plain.HasDeriver())

	withSelect := &Command{Verbs: []Verb{NameSelector{Query: "a"}}}
	assert.True(t, withSelect.HasSelector())
	assert.False(t, withSelect.HasDeriver())

	withForced := &Command{Verbs: []Verb{ForcedVerb{Query: "a"}}}
	assert.False(t, withForced.HasSelector())
	assert.True(t, withForced.HasDeriver())
}

func TestCommand_HasUserAndLabels(t *testing.T) {
	cmd := &Command{Verbs: []Verb{LabelVerb{Label_: "x"}}}
	assert.Equal(t, []string{"x"}, cmd.Labels())
	assert.False(t, cmd.HasUser())

	use := &Command{Verbs: []Verb{UserVerb{Label_: "x", Forced_: true}}}
	assert.True(t, use.HasUser())
	assert.Equal(t, "x", use.GetUseLabel())
	assert.True(t, use.UseForced())
}
