package verb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/askl/internal/ast"
)

func TestBuild_Select(t *testing.T) {
	v, err := Build(ast.Verb{Name: "select", Args: []ast.VerbArg{{Value: "foo.bar"}}}, "<test>")
	require.NoError(t, err)
	sel, ok := v.(NameSelector)
	require.True(t, ok)
	assert.Equal(t, "foo.bar", sel.Query)
}

func TestBuild_SelectMissingName(t *testing.T) {
	_, err := Build(ast.Verb{Name: "select"}, "<test>")
	require.Error(t, err)
}

func TestBuild_Forced(t *testing.T) {
	v, err := Build(ast.Verb{Name: "forced", Args: []ast.VerbArg{{Name: "name", Value: "a"}}}, "<test>")
	require.NoError(t, err)
	fv, ok := v.(ForcedVerb)
	require.True(t, ok)
	assert.Equal(t, "a", fv.Query)
}

func TestBuild_IgnoreRequiresNameOrPackage(t *testing.T) {
	_, err := Build(ast.Verb{Name: "ignore"}, "<test>")
	require.Error(t, err)

	v, err := Build(ast.Verb{Name: "ignore", Args: []ast.VerbArg{{Name: "package", Value: "foo"}}}, "<test>")
	require.NoError(t, err)
	iv, ok := v.(IgnoreVerb)
	require.True(t, ok)
	assert.Equal(t, "foo", iv.Package)
}

func TestBuild_UseDefaultsNotForced(t *testing.T) {
	v, err := Build(ast.Verb{Name: "use", Args: []ast.VerbArg{{Value: "foo"}}}, "<test>")
	require.NoError(t, err)
	uv, ok := v.(UserVerb)
	require.True(t, ok)
	assert.Equal(t, "foo", uv.UseLabel())
	assert.False(t, uv.Forced())
}

func TestBuild_UseForced(t *testing.T) {
	v, err := Build(ast.Verb{Name: "use", Args: []ast.VerbArg{{Value: "foo"}, {Name: "forced", Value: "true"}}}, "<test>")
	require.NoError(t, err)
	uv := v.(UserVerb)
	assert.True(t, uv.Forced())
}

func TestBuild_UnknownVerb(t *testing.T) {
	_, err := Build(ast.Verb{Name: "nonsense"}, "<test>")
	require.Error(t, err)
}
